// Package watcher re-runs tasks when files matching a glob pattern change.
//
// A Watcher turns a pattern and a list of target task names into a
// Subscription. Every matching create, write, remove or rename event starts a
// new run of the targets in its own goroutine. Events are not debounced or
// queued, so a burst of changes produces one run per event and runs may
// overlap.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
)

// ErrInvalidPattern is returned by Watch for malformed glob patterns.
var ErrInvalidPattern = errors.New("invalid watch pattern")

// Runner starts runs of named tasks. *taskmanager.Runner implements it.
type Runner interface {
	RunTargets(ctx context.Context, names ...string) (*taskmanager.RunResult, error)
}

// NotifierFactory creates the notifier for one subscription.
type NotifierFactory func() (Notifier, error)

// ErrorSummary renders a failed triggered run for the log.
type ErrorSummary func(error) string

// Watcher creates subscriptions that re-run tasks on file changes.
type Watcher struct {
	runner      Runner
	root        string
	newNotifier NotifierFactory
	summarize   ErrorSummary
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRoot sets the directory relative patterns are resolved against.
// Defaults to the working directory.
func WithRoot(dir string) Option {
	return func(w *Watcher) {
		w.root = dir
	}
}

// WithNotifierFactory replaces the fsnotify backed notifier.
func WithNotifierFactory(f NotifierFactory) Option {
	return func(w *Watcher) {
		w.newNotifier = f
	}
}

// WithErrorSummary sets how failed triggered runs are described in the log.
// Defaults to the error text.
func WithErrorSummary(f ErrorSummary) Option {
	return func(w *Watcher) {
		w.summarize = f
	}
}

// New creates a Watcher that starts runs through runner.
func New(runner Runner, opts ...Option) *Watcher {
	w := &Watcher{
		runner: runner,
		newNotifier: func() (Notifier, error) {
			return NewFSNotify()
		},
		summarize: func(err error) string {
			return err.Error()
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch subscribes targets to changes of files matching pattern and returns
// once the subscription is active. It does not wait for events. The
// subscription ends when Stop is called or ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, pattern string, targets []string) (*Subscription, error) {
	if len(targets) == 0 {
		return nil, errors.New("watch requires at least one target task")
	}

	m, err := w.newMatcher(pattern)
	if err != nil {
		return nil, err
	}

	notifier, err := w.newNotifier()
	if err != nil {
		return nil, err
	}

	if err := m.register(notifier); err != nil {
		notifier.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		Pattern:   pattern,
		Targets:   append([]string(nil), targets...),
		matcher:   m,
		notifier:  notifier,
		runner:    w.runner,
		summarize: w.summarize,
		ctx:       subCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	logger.Op.WithFields(map[string]interface{}{
		"pattern": pattern,
		"base":    m.baseDir,
		"targets": s.Targets,
	}).Debug("Watch subscription active")

	go s.loop()
	return s, nil
}

// matcher decides which event paths belong to a pattern.
type matcher struct {
	pattern   string // slash separated, relative to root unless absolute
	absolute  bool
	root      string
	baseDir   string
	recursive bool
}

func (w *Watcher) newMatcher(pattern string) (*matcher, error) {
	root := w.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	slashed := filepath.ToSlash(pattern)
	if !path.IsAbs(slashed) {
		slashed = strings.TrimPrefix(slashed, "./")
	}
	if slashed == "" || !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	// wildcards above the last segment can match files in any subdirectory of base
	base, rest := doublestar.SplitPattern(slashed)
	m := &matcher{
		pattern:   slashed,
		absolute:  path.IsAbs(slashed),
		root:      root,
		recursive: strings.Contains(rest, "/") || strings.Contains(rest, "**"),
	}
	if m.absolute {
		m.baseDir = filepath.FromSlash(base)
	} else {
		m.baseDir = filepath.Join(root, filepath.FromSlash(base))
	}
	return m, nil
}

func (m *matcher) register(n Notifier) error {
	if !m.recursive {
		return n.Add(m.baseDir)
	}
	if rn, ok := n.(RecursiveNotifier); ok {
		return rn.AddRecursive(m.baseDir)
	}
	return filepath.WalkDir(m.baseDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return n.Add(p)
		}
		return nil
	})
}

// match reports whether an absolute event path matches the pattern.
func (m *matcher) match(name string) bool {
	candidate := filepath.ToSlash(name)
	if !m.absolute {
		rel, err := filepath.Rel(m.root, name)
		if err != nil {
			return false
		}
		candidate = filepath.ToSlash(rel)
	}
	ok, err := doublestar.Match(m.pattern, candidate)
	return err == nil && ok
}

// display returns the path shown in watch logs.
func (m *matcher) display(name string) string {
	if rel, err := filepath.Rel(m.root, name); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return name
}

// Subscription is an active watch. Duplicate subscriptions for the same
// pattern are independent.
type Subscription struct {
	Pattern string
	Targets []string

	matcher   *matcher
	notifier  Notifier
	runner    Runner
	summarize ErrorSummary

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	runs      sync.WaitGroup
	triggered atomic.Int64
}

// Stop ends the subscription: no further runs are triggered, the notifier is
// closed and Stop returns once in-flight runs have returned. Stopping an
// already stopped subscription is a no-op.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Triggered returns how many runs this subscription has started.
func (s *Subscription) Triggered() int64 {
	return s.triggered.Load()
}

func (s *Subscription) loop() {
	defer func() {
		s.cancel()
		if err := s.notifier.Close(); err != nil {
			logger.Op.Warnf("Failed to close file notifier: %v", err)
		}
		s.runs.Wait()
		close(s.done)
	}()

	events := s.notifier.Events()
	errs := s.notifier.Errors()

	for {
		select {
		case <-s.ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Op&triggerOps == 0 || !s.matcher.match(ev.Path) {
				continue
			}
			// a cancelled subscription starts nothing, even if an event was ready
			if s.ctx.Err() != nil {
				return
			}
			s.trigger(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Op.WithFields(map[string]interface{}{
				"pattern": s.Pattern,
			}).Warnf("File watcher error: %v", err)
		}
	}
}

func (s *Subscription) trigger(ev Event) {
	s.triggered.Add(1)
	logger.User.Watchf("%s %s, running %s", strings.ToLower(ev.Op.String()), s.matcher.display(ev.Path), strings.Join(s.Targets, ", "))

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		result, err := s.runner.RunTargets(s.ctx, s.Targets...)
		if err == nil {
			return
		}

		fields := map[string]interface{}{
			"pattern": s.Pattern,
			"targets": s.Targets,
		}
		if result != nil {
			fields["run"] = result.ID
		}
		entry := logger.Op.WithFields(fields)
		if errors.Is(err, context.Canceled) {
			entry.Debugf("Triggered run cancelled: %v", err)
			return
		}
		entry.Errorf("Triggered run failed: %s", s.summarize(err))
	}()
}
