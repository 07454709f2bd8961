package tasks

import (
	"container/heap"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/signals"
)

// Manager owns the task queue and the running set. One mutex guards both;
// every signal emission happens outside it so slots may call back into the
// manager.
type Manager struct {
	baseCtx context.Context
	logger  *slog.Logger
	metrics *Metrics

	mu            sync.Mutex
	maxConcurrent int
	queue         taskQueue
	records       map[uuid.UUID]*record
	running       map[uuid.UUID]*record
	seq           uint64
	// idle tracks the drained condition so QueueDrained fires exactly once
	// per transition to (queue empty && running empty).
	idle        bool
	idleWaiters []chan struct{}

	queued       *signals.Signal[uuid.UUID]
	started      *signals.Signal[uuid.UUID]
	finished     *signals.Signal[Finished]
	cancelled    *signals.Signal[uuid.UUID]
	progress     *signals.Signal[Progress]
	queueDrained *signals.Signal[struct{}]
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxConcurrent sets the number of tasks allowed to run in parallel.
// Values below 1 are clamped to 1. The default is 1, which is also the
// required setting when the tasks drive a single equation manager.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n < 1 {
			n = 1
		}
		m.maxConcurrent = n
	}
}

// WithMetrics attaches task metrics; nil is a valid no-op sink.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger sets the manager's logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a task manager. ctx is the parent of every task
// context: cancelling it requests cancel on all current and future tasks.
func NewManager(ctx context.Context, opts ...Option) *Manager {
	m := &Manager{
		baseCtx:       ctx,
		logger:        slog.Default(),
		maxConcurrent: 1,
		records:       make(map[uuid.UUID]*record),
		running:       make(map[uuid.UUID]*record),
		idle:          true,
		queued:        signals.NewSignal[uuid.UUID](),
		started:       signals.NewSignal[uuid.UUID](),
		finished:      signals.NewSignal[Finished](),
		cancelled:     signals.NewSignal[uuid.UUID](),
		progress:      signals.NewSignal[Progress](),
		queueDrained:  signals.NewSignal[struct{}](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnQueued subscribes to task enqueue events.
func (m *Manager) OnQueued(fn func(uuid.UUID)) signals.Connection { return m.queued.Connect(fn) }

// OnStarted subscribes to task dispatch events.
func (m *Manager) OnStarted(fn func(uuid.UUID)) signals.Connection { return m.started.Connect(fn) }

// OnFinished subscribes to task completion events (both outcomes).
func (m *Manager) OnFinished(fn func(Finished)) signals.Connection { return m.finished.Connect(fn) }

// OnCancelled subscribes to task cancellation events.
func (m *Manager) OnCancelled(fn func(uuid.UUID)) signals.Connection { return m.cancelled.Connect(fn) }

// OnProgress subscribes to task progress reports.
func (m *Manager) OnProgress(fn func(Progress)) signals.Connection { return m.progress.Connect(fn) }

// OnQueueDrained subscribes to the drained event, fired on every transition
// to an empty queue with no running tasks.
func (m *Manager) OnQueueDrained(fn func(struct{})) signals.Connection {
	return m.queueDrained.Connect(fn)
}

// Enqueue submits a task and returns its fresh id. Higher priority dequeues
// first; within one priority, earlier submissions win.
func (m *Manager) Enqueue(task Task, priority int) uuid.UUID {
	id := uuid.New()

	m.mu.Lock()
	rec := &record{id: id, task: task, priority: priority, seq: m.seq, state: StatePending}
	m.seq++
	m.records[id] = rec
	heap.Push(&m.queue, rec)
	m.idle = false
	depth := m.queue.Len()
	m.mu.Unlock()

	m.metrics.taskQueued(depth)
	m.logger.Debug("Task queued.", "task", task.Name(), "id", id, "priority", priority)
	m.queued.Emit(id)
	m.dispatch()
	return id
}

// Cancel requests cancellation of the task. A queued task is dropped
// immediately; a running one has its context cancelled and winds down
// cooperatively. Returns true when the request was accepted (the task is now
// Cancelled or Cancelling); false for unknown ids and tasks already in a
// terminal state. Repeated calls are safe.
func (m *Manager) Cancel(id uuid.UUID) bool {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	switch rec.state {
	case StatePending:
		heap.Remove(&m.queue, rec.index)
		rec.state = StateCancelled
		depth := m.queue.Len()
		drained := m.markIdleLocked()
		m.mu.Unlock()

		m.metrics.taskDropped(depth)
		m.logger.Debug("Queued task cancelled.", "task", rec.task.Name(), "id", id)
		m.cancelled.Emit(id)
		m.notifyDrained(drained)
		return true

	case StateRunning:
		rec.state = StateCancelling
		cancel := rec.cancel
		m.mu.Unlock()

		m.logger.Debug("Cancel requested for running task.", "task", rec.task.Name(), "id", id)
		cancel()
		return true

	case StateCancelling:
		m.mu.Unlock()
		return true

	default:
		m.mu.Unlock()
		return false
	}
}

// ClearQueue drops every queued task, emitting Cancelled for each. Running
// tasks are unaffected.
func (m *Manager) ClearQueue() {
	m.mu.Lock()
	var dropped []*record
	for m.queue.Len() > 0 {
		rec := heap.Pop(&m.queue).(*record)
		rec.state = StateCancelled
		dropped = append(dropped, rec)
	}
	drained := m.markIdleLocked()
	m.mu.Unlock()

	for _, rec := range dropped {
		m.metrics.taskDropped(0)
		m.logger.Debug("Queued task cancelled.", "task", rec.task.Name(), "id", rec.id)
		m.cancelled.Emit(rec.id)
	}
	m.notifyDrained(drained)
}

// Shutdown cancels all queued tasks, requests cancel on running ones, and
// waits until the running set drains or ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	var dropped []*record
	for m.queue.Len() > 0 {
		rec := heap.Pop(&m.queue).(*record)
		rec.state = StateCancelled
		dropped = append(dropped, rec)
	}
	var cancels []context.CancelFunc
	for _, rec := range m.running {
		if rec.state == StateRunning {
			rec.state = StateCancelling
			cancels = append(cancels, rec.cancel)
		}
	}
	drained := m.markIdleLocked()
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	for _, rec := range dropped {
		m.metrics.taskDropped(0)
		m.cancelled.Emit(rec.id)
	}
	m.notifyDrained(drained)

	m.mu.Lock()
	if m.idle {
		m.mu.Unlock()
		return nil
	}
	wait := make(chan struct{})
	m.idleWaiters = append(m.idleWaiters, wait)
	m.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetMaxConcurrent changes the parallelism bound; raising it dispatches
// queued tasks immediately. Values below 1 are clamped to 1.
func (m *Manager) SetMaxConcurrent(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.maxConcurrent = n
	m.mu.Unlock()
	m.dispatch()
}

// PendingCount returns the number of queued tasks.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// RunningCount returns the number of tasks currently executing.
func (m *Manager) RunningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}

// IsIdle reports whether the queue is empty and nothing is running.
func (m *Manager) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len() == 0 && len(m.running) == 0
}

// State returns the lifecycle state of the task with the given id.
func (m *Manager) State(id uuid.UUID) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return 0, false
	}
	return rec.state, true
}

// RunningIDs returns the ids of currently running tasks, sorted for
// deterministic iteration.
func (m *Manager) RunningIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// dispatch starts queued tasks while capacity allows.
func (m *Manager) dispatch() {
	for {
		m.mu.Lock()
		if len(m.running) >= m.maxConcurrent || m.queue.Len() == 0 {
			m.mu.Unlock()
			return
		}
		rec := heap.Pop(&m.queue).(*record)
		rec.state = StateRunning
		rec.startedAt = time.Now()
		taskCtx, cancel := context.WithCancel(m.baseCtx)
		rec.cancel = cancel
		m.running[rec.id] = rec
		depth := m.queue.Len()
		runningCount := len(m.running)
		m.mu.Unlock()

		m.metrics.taskStarted(depth, runningCount)
		m.logger.Debug("Task started.", "task", rec.task.Name(), "id", rec.id)
		m.started.Emit(rec.id)

		go m.run(rec, taskCtx)
	}
}

// run executes one task on its own goroutine and settles its terminal state.
func (m *Manager) run(rec *record, ctx context.Context) {
	defer rec.cancel()

	progress := func(percent int, message string) {
		if percent < 0 {
			percent = 0
		} else if percent > 100 {
			percent = 100
		}
		m.progress.Emit(Progress{ID: rec.id, Percent: percent, Message: message})
	}

	result, err := rec.task.Execute(ctx, progress)
	duration := time.Since(rec.startedAt)

	m.mu.Lock()
	delete(m.running, rec.id)
	// Cancelling never settles as Completed, even when the task ignored the
	// cancel request and returned normally.
	if rec.state == StateCancelling {
		rec.state = StateCancelled
	} else {
		rec.state = StateCompleted
	}
	final := rec.state
	runningCount := len(m.running)
	m.mu.Unlock()

	m.metrics.taskFinished(final, duration, runningCount)
	if final == StateCancelled {
		m.logger.Debug("Task cancelled.", "task", rec.task.Name(), "id", rec.id, "duration", duration)
		m.cancelled.Emit(rec.id)
	} else {
		m.logger.Debug("Task completed.", "task", rec.task.Name(), "id", rec.id, "duration", duration, "error", err)
	}
	m.finished.Emit(Finished{ID: rec.id, Result: result, Err: err})

	m.dispatch()

	m.mu.Lock()
	drained := m.markIdleLocked()
	m.mu.Unlock()
	m.notifyDrained(drained)
}

// markIdleLocked records a transition to the drained state. It returns true
// exactly once per transition; callers emit QueueDrained outside the lock.
func (m *Manager) markIdleLocked() bool {
	if m.queue.Len() != 0 || len(m.running) != 0 || m.idle {
		return false
	}
	m.idle = true
	for _, ch := range m.idleWaiters {
		close(ch)
	}
	m.idleWaiters = nil
	return true
}

func (m *Manager) notifyDrained(drained bool) {
	if !drained {
		return
	}
	m.logger.Debug("Task queue drained.")
	m.queueDrained.Emit(struct{}{})
}
