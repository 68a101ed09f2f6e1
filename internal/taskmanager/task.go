package taskmanager

import (
	"context"
	"sync"
)

// Action starts a task's work and returns a channel that delivers exactly one
// value when the work is done: nil on success, the failure otherwise.
type Action func(ctx context.Context) <-chan error

// Sync adapts a blocking function into an Action.
func Sync(fn func(ctx context.Context) error) Action {
	return func(ctx context.Context) <-chan error {
		done := make(chan error, 1)
		go func() {
			done <- fn(ctx)
		}()
		return done
	}
}

// Status is the completion state of a task.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	// StatusSkipped marks a task that was not started because an earlier task in the plan failed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Task is a named unit of work with declared prerequisites and an optional action.
type Task struct {
	Name          string
	Description   string
	Prerequisites []string // names of tasks that must run first, in declared order
	Action        Action   // nil for aggregator tasks

	mu     sync.RWMutex
	status Status
}

// Status returns the task's state in the most recently started run. Tasks
// are shared by every run of a registry, so overlapping runs overwrite each
// other's status; RunResult holds the outcome of a single run.
func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Task) setStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
}
