package tasks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes task throughput and queue pressure. A nil *Metrics is a
// valid no-op sink, so callers that do not scrape can pass nothing.
type Metrics struct {
	queuedTotal   prometheus.Counter
	finishedTotal *prometheus.CounterVec
	running       prometheus.Gauge
	queueDepth    prometheus.Gauge
	duration      prometheus.Histogram
}

// NewMetrics creates the task metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recalc_tasks_queued_total",
			Help: "Total number of tasks submitted to the queue.",
		}),
		finishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recalc_tasks_finished_total",
			Help: "Total number of tasks that reached a terminal state, by outcome.",
		}, []string{"outcome"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recalc_tasks_running",
			Help: "Number of tasks currently executing.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recalc_task_queue_depth",
			Help: "Number of tasks waiting in the queue.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recalc_task_duration_seconds",
			Help:    "Execution time of tasks that started running.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.queuedTotal, m.finishedTotal, m.running, m.queueDepth, m.duration)
	return m
}

func (m *Metrics) taskQueued(depth int) {
	if m == nil {
		return
	}
	m.queuedTotal.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) taskStarted(depth, running int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
	m.running.Set(float64(running))
}

func (m *Metrics) taskFinished(final State, d time.Duration, running int) {
	if m == nil {
		return
	}
	outcome := "completed"
	if final == StateCancelled {
		outcome = "cancelled"
	}
	m.finishedTotal.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
	m.running.Set(float64(running))
}

// taskDropped records a task cancelled straight out of the queue.
func (m *Metrics) taskDropped(depth int) {
	if m == nil {
		return
	}
	m.finishedTotal.WithLabelValues("cancelled").Inc()
	m.queueDepth.Set(float64(depth))
}
