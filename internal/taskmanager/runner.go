package taskmanager

import (
	"context"
	"fmt"
	"time"

	"github.com/maxkimambo/taskwatch/internal/logger"
)

// Runner executes plans. Tasks within a plan run strictly one after another;
// separate Run calls are independent and may overlap.
type Runner struct {
	registry *Registry
}

// NewRunner creates a Runner that resolves targets against registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

// Registry returns the registry targets are resolved against.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// RunTargets resolves a fresh plan for names and runs it. Resolution errors
// are returned before any action starts.
func (r *Runner) RunTargets(ctx context.Context, names ...string) (*RunResult, error) {
	plan, err := r.registry.ResolveAll(names...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, plan)
}

// Run executes the plan in order. Each action is started only after the
// previous one has signalled completion. After a failure the remaining tasks
// are skipped; tasks that already completed are left as they are.
func (r *Runner) Run(ctx context.Context, plan Plan) (*RunResult, error) {
	start := time.Now()
	result := newRunResult(plan)

	runLog := logger.Op.WithFields(map[string]interface{}{
		"run": result.ID,
	})
	runLog.Debugf("Running plan %v for %v", plan.Names(), plan.Targets)

	for i, task := range plan.Tasks {
		tr := result.Tasks[i]
		tr.markStarted()
		task.setStatus(StatusRunning)

		if task.Action != nil {
			logger.User.Startingf("Starting task: %s", task.Name)
		}

		err := r.runTask(ctx, task)
		tr.markCompleted(err)

		if err != nil {
			task.setStatus(StatusFailed)
			logger.User.Errorf("Task failed: %s - %v", task.Name, err)
			for _, rest := range result.Tasks[i+1:] {
				rest.Status = StatusSkipped
			}
			for _, rest := range plan.Tasks[i+1:] {
				rest.setStatus(StatusSkipped)
			}
			result.Error = fmt.Errorf("task %s failed: %w", task.Name, err)
			result.ExecutionTime = time.Since(start)
			return result, result.Error
		}

		task.setStatus(StatusSucceeded)
		if task.Action != nil {
			logger.User.Successf("Task completed: %s (%v)", task.Name, tr.Duration.Round(time.Millisecond))
		} else {
			runLog.Debugf("Task %s has no action, prerequisites done", task.Name)
		}
	}

	result.Success = true
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// runTask starts the task's action and waits for its completion signal.
func (r *Runner) runTask(ctx context.Context, task *Task) error {
	if task.Action == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := task.Action(ctx)
	if done == nil {
		return nil
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
