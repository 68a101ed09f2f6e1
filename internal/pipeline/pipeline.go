// Package pipeline registers the build, watch and default tasks described by
// a Config and runs them.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/maxkimambo/taskwatch/internal/config"
	taskerrors "github.com/maxkimambo/taskwatch/internal/errors"
	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
	"github.com/maxkimambo/taskwatch/internal/watcher"
)

// Task names.
const (
	TaskBuild   = "build"
	TaskWatch   = "watch"
	TaskDefault = "default"
)

// Pipeline owns the task registry and the runner and watcher built on it.
type Pipeline struct {
	cfg      *config.Config
	registry *taskmanager.Registry
	runner   *taskmanager.Runner
	watcher  *watcher.Watcher

	watchOpts []watcher.Option
	// watching counts watch tasks that have not finished stopping their subscription
	watching sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWatcherOptions passes options to the watcher used by the watch task.
func WithWatcherOptions(opts ...watcher.Option) Option {
	return func(p *Pipeline) {
		p.watchOpts = append(p.watchOpts, opts...)
	}
}

// New validates cfg and registers the tasks:
//
//	build    runs the build command
//	watch    re-runs the watch targets on every matching file change until cancelled
//	default  build, then watch
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cmd, err := cfg.BuildCommand()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		watchOpts: []watcher.Option{watcher.WithErrorSummary(taskerrors.DisplayErrorSummary)},
	}
	for _, opt := range opts {
		opt(p)
	}

	reg, err := taskmanager.NewBuilder().
		AddTask(TaskBuild, "Run "+cmd.Line, cmd.Action()).
		AddTask(TaskWatch, fmt.Sprintf("Run %s when %s changes", strings.Join(cfg.Watch.Targets, ", "), cfg.Watch.Pattern), p.watchAction()).
		AddTask(TaskDefault, "Build, then watch for changes", nil).
		AddDependency(TaskDefault, TaskBuild).
		AddDependency(TaskDefault, TaskWatch).
		Build()
	if err != nil {
		return nil, err
	}

	if err := checkWatchTargets(reg, cfg.Watch.Targets); err != nil {
		return nil, err
	}

	p.registry = reg
	p.runner = taskmanager.NewRunner(reg)
	p.watcher = watcher.New(p.runner, p.watchOpts...)
	return p, nil
}

// checkWatchTargets rejects targets that are unknown or would start another watch.
func checkWatchTargets(reg *taskmanager.Registry, targets []string) error {
	plan, err := reg.ResolveAll(targets...)
	if err != nil {
		return fmt.Errorf("invalid watch targets: %w", err)
	}
	for _, t := range plan.Tasks {
		if t.Name == TaskWatch {
			return fmt.Errorf("invalid watch targets %v: they would run the %s task", targets, TaskWatch)
		}
	}
	return nil
}

func (p *Pipeline) watchAction() taskmanager.Action {
	return func(ctx context.Context) <-chan error {
		// counted before the goroutine starts so Run cannot miss it
		p.watching.Add(1)
		done := make(chan error, 1)
		go func() {
			defer p.watching.Done()
			done <- p.watch(ctx)
		}()
		return done
	}
}

// watch subscribes the watch targets and blocks until ctx is cancelled.
func (p *Pipeline) watch(ctx context.Context) error {
	sub, err := p.watcher.Watch(ctx, p.cfg.Watch.Pattern, p.cfg.Watch.Targets)
	if err != nil {
		return err
	}
	logger.User.Watchf("Watching %s (runs %s on change)", p.cfg.Watch.Pattern, strings.Join(p.cfg.Watch.Targets, ", "))

	<-ctx.Done()
	sub.Stop()

	logger.Op.WithFields(map[string]interface{}{
		"pattern":   p.cfg.Watch.Pattern,
		"triggered": sub.Triggered(),
	}).Debug("Watch subscription stopped")
	return nil
}

// Registry returns the task registry.
func (p *Pipeline) Registry() *taskmanager.Registry {
	return p.registry
}

// Runner returns the runner bound to the registry.
func (p *Pipeline) Runner() *taskmanager.Runner {
	return p.runner
}

// Plan resolves targets, or the default task when none are given.
func (p *Pipeline) Plan(targets ...string) (taskmanager.Plan, error) {
	if len(targets) == 0 {
		targets = []string{TaskDefault}
	}
	return p.registry.ResolveAll(targets...)
}

// Run runs targets, or the default task when none are given. It returns once
// the plan has finished and any watch subscription it started has stopped.
func (p *Pipeline) Run(ctx context.Context, targets ...string) (*taskmanager.RunResult, error) {
	plan, err := p.Plan(targets...)
	if err != nil {
		return nil, err
	}

	result, err := p.runner.Run(ctx, plan)
	p.watching.Wait()
	return result, err
}
