package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// record tracks one submitted task through its whole lifecycle. Guarded by
// the manager mutex; records are never deleted so State(id) keeps answering
// after the task is done.
type record struct {
	id       uuid.UUID
	task     Task
	priority int
	seq      uint64
	state    State
	// index is the record's position in the queue heap; -1 once dequeued.
	index int
	// cancel aborts the task's context; set while the task is running.
	cancel    context.CancelFunc
	startedAt time.Time
}

// taskQueue is a heap ordered by (priority desc, enqueue sequence asc), so
// equal priorities dequeue in FIFO order.
type taskQueue []*record

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	rec := x.(*record)
	rec.index = len(*q)
	*q = append(*q, rec)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	rec := old[n-1]
	old[n-1] = nil
	rec.index = -1
	*q = old[:n-1]
	return rec
}
