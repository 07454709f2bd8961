// Package tasks runs background work for the equation engine: a bounded
// worker pool fed from a priority queue, with per-task cooperative
// cancellation and signal-based lifecycle reporting.
//
// Tasks move through Pending -> Running -> Completed, with two cancel paths:
// a queued task drops straight to Cancelled, a running one passes through
// Cancelling while it winds down. Terminal states are absorbing.
package tasks

import (
	"context"

	"github.com/google/uuid"
)

// State is the lifecycle state of a submitted task.
type State int32

const (
	// StatePending means the task is queued and not yet dispatched.
	StatePending State = iota
	// StateRunning means a worker goroutine is executing the task.
	StateRunning
	// StateCancelling means cancel was requested while the task was running;
	// the task is winding down toward Cancelled.
	StateCancelling
	// StateCompleted means the task ran to completion.
	StateCompleted
	// StateCancelled means the task was dropped from the queue or finished
	// after a cancel request.
	StateCancelled
)

var stateNames = map[State]string{
	StatePending:    "Pending",
	StateRunning:    "Running",
	StateCancelling: "Cancelling",
	StateCompleted:  "Completed",
	StateCancelled:  "Cancelled",
}

// String returns the canonical state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s == StateCompleted || s == StateCancelled
}

// ProgressFunc reports task progress. Percent is clamped to 0..100 before it
// reaches observers.
type ProgressFunc func(percent int, message string)

// Task is a unit of background work. Execute runs on a worker goroutine;
// cancellation is cooperative via ctx, checked at the task's own safe points.
// The result and error are delivered through the Finished signal.
type Task interface {
	Name() string
	Execute(ctx context.Context, progress ProgressFunc) (any, error)
}

// Finished is the payload of the finished signal, emitted for every task
// that started running, whatever its terminal state.
type Finished struct {
	ID     uuid.UUID
	Result any
	Err    error
}

// Progress is the payload of the progress signal.
type Progress struct {
	ID      uuid.UUID
	Percent int
	Message string
}
