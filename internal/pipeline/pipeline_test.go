package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxkimambo/taskwatch/internal/config"
	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
	"github.com/maxkimambo/taskwatch/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(command string) *config.Config {
	cfg := config.Default()
	cfg.Build.Command = command
	cfg.Watch.Pattern = "src/*.txt"
	return cfg
}

func countMessages(c *logger.Capture, msg string) int {
	n := 0
	for _, m := range c.Messages(logger.UserLog) {
		if m == msg {
			n++
		}
	}
	return n
}

func TestNew_RegistersTasks(t *testing.T) {
	p, err := New(config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{TaskBuild, TaskDefault, TaskWatch}, p.Registry().Names())

	def, ok := p.Registry().Task(TaskDefault)
	require.True(t, ok)
	assert.Equal(t, []string{TaskBuild, TaskWatch}, def.Prerequisites)
	assert.Nil(t, def.Action)

	build, ok := p.Registry().Task(TaskBuild)
	require.True(t, ok)
	assert.Empty(t, build.Prerequisites)
	assert.Equal(t, "Run nimble build", build.Description)

	plan, err := p.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{TaskBuild, TaskWatch, TaskDefault}, plan.Names())
	assert.Equal(t, []string{TaskDefault}, plan.Targets)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Build.FailMode = "never"

	_, err := New(cfg)

	var verr *config.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNew_RejectsBadWatchTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
	}{
		{"unknown task", []string{"docs"}},
		{"watch itself", []string{TaskWatch}},
		{"depends on watch", []string{TaskBuild, TaskDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Watch.Targets = tt.targets

			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestPipeline_RunBuild(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	capture, stop := logger.StartCapture()
	defer stop()

	p, err := New(testConfig("echo ok"))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), TaskBuild)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{TaskBuild}, result.Executed())
	assert.Equal(t, 1, countMessages(capture, "ok"))
}

func TestPipeline_UnknownTarget(t *testing.T) {
	p, err := New(config.Default())
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "deploy")

	var unknown *taskmanager.UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "deploy", unknown.Name)
}

func TestPipeline_HaltModeSkipsWatch(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	cfg := testConfig(`sh -c 'echo "compile error" >&2; exit 2'`)
	cfg.Build.FailMode = "halt"

	p, err := New(cfg)
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{TaskBuild}, result.Executed())
	watch, _ := result.Task(TaskWatch)
	assert.Equal(t, taskmanager.StatusSkipped, watch.Status)
}

func TestPipeline_DefaultBuildsThenWatches(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	capture, stop := logger.StartCapture()
	defer stop()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))

	p, err := New(testConfig("echo ok"), WithWatcherOptions(watcher.WithRoot(root)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type runOutcome struct {
		result *taskmanager.RunResult
		err    error
	}
	finished := make(chan runOutcome, 1)
	go func() {
		result, err := p.Run(ctx)
		finished <- runOutcome{result, err}
	}()

	// the initial build has run and the subscription is active
	require.Eventually(t, func() bool {
		return countMessages(capture, "ok") == 1 && capture.Contains("Watching src/*.txt")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.txt"), []byte("change"), 0o644))

	assert.Eventually(t, func() bool {
		return countMessages(capture, "ok") >= 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case out := <-finished:
		assert.ErrorIs(t, out.err, context.Canceled)
		build, _ := out.result.Task(TaskBuild)
		assert.Equal(t, taskmanager.StatusSucceeded, build.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish after cancellation")
	}
}

func TestPipeline_TriggeredFailureIsSummarised(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	capture, stop := logger.StartCapture()
	defer stop()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))

	cfg := testConfig(`sh -c 'exit 2'`)
	cfg.Build.FailMode = "halt"
	p, err := New(cfg, WithWatcherOptions(watcher.WithRoot(root)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, TaskWatch)
		finished <- err
	}()

	require.Eventually(t, func() bool {
		return capture.Contains("Watching src/*.txt")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.txt"), []byte("change"), 0o644))

	assert.Eventually(t, func() bool {
		return capture.Contains("Triggered run failed: BUILD-002: Build command failed")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
