package taskmanager

import (
	"time"

	"github.com/google/uuid"
)

// TaskResult contains the result of a single task within a run
type TaskResult struct {
	Name      string
	Status    Status
	Error     error
	StartTime *time.Time
	EndTime   *time.Time
	Duration  time.Duration
}

// RunResult contains the results of executing one plan
type RunResult struct {
	// ID distinguishes overlapping runs in logs
	ID      string
	Targets []string

	// Tasks holds one result per planned task, in plan order
	Tasks []*TaskResult

	Success       bool
	Error         error
	ExecutionTime time.Duration
}

func newRunResult(plan Plan) *RunResult {
	result := &RunResult{
		ID:      uuid.New().String(),
		Targets: plan.Targets,
		Tasks:   make([]*TaskResult, len(plan.Tasks)),
	}
	for i, t := range plan.Tasks {
		result.Tasks[i] = &TaskResult{Name: t.Name, Status: StatusPending}
	}
	return result
}

// Task returns the result for the named task.
func (r *RunResult) Task(name string) (*TaskResult, bool) {
	for _, tr := range r.Tasks {
		if tr.Name == name {
			return tr, true
		}
	}
	return nil, false
}

// Executed returns the names of tasks that were started, in order.
func (r *RunResult) Executed() []string {
	var names []string
	for _, tr := range r.Tasks {
		if tr.StartTime != nil {
			names = append(names, tr.Name)
		}
	}
	return names
}

func (tr *TaskResult) markStarted() {
	now := time.Now()
	tr.StartTime = &now
	tr.Status = StatusRunning
}

func (tr *TaskResult) markCompleted(err error) {
	now := time.Now()
	tr.EndTime = &now
	tr.Error = err
	if err != nil {
		tr.Status = StatusFailed
	} else {
		tr.Status = StatusSucceeded
	}
	if tr.StartTime != nil {
		tr.Duration = now.Sub(*tr.StartTime)
	}
}
