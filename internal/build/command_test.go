package build

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestParseFailMode(t *testing.T) {
	tests := []struct {
		in      string
		want    FailMode
		wantErr bool
	}{
		{"", FailModeLog, false},
		{"log", FailModeLog, false},
		{" HALT ", FailModeHalt, false},
		{"explode", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFailMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_Finish_EchoOK(t *testing.T) {
	requireShell(t)
	capture, stop := logger.StartCapture()
	defer stop()

	c := &Command{Line: "echo ok"}
	p, err := c.Start()
	require.NoError(t, err)

	res, err := c.finish(p)
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitStatus)
	assert.Equal(t, "ok\n", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Contains(t, capture.Messages(logger.UserLog), "ok")
}

func TestCommand_Finish_NonZeroExit(t *testing.T) {
	requireShell(t)
	capture, stop := logger.StartCapture()
	defer stop()

	c := &Command{Line: `sh -c 'echo partial; echo "compile error" >&2; exit 2'`}
	p, err := c.Start()
	require.NoError(t, err)

	res, err := c.finish(p)

	var failed *CommandFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 2, failed.ExitStatus)
	assert.Equal(t, "compile error\n", failed.Stderr)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.ExitStatus)

	// stdout is reported before stderr
	lines := capture.Messages(logger.UserLog)
	assert.Equal(t, []string{"partial", "compile error"}, lines)
}

func TestCommand_Start_SpawnErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing executable", "taskwatch-no-such-binary --flag"},
		{"unterminated quote", "echo 'oops"},
		{"empty command", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := (&Command{Line: tt.line}).Start()

			var spawnErr *SpawnError
			require.ErrorAs(t, err, &spawnErr)
			assert.Equal(t, tt.line, spawnErr.Command)
			assert.Nil(t, p)
		})
	}
}

func TestCommand_Start_MissingExecutableWrapsNotFound(t *testing.T) {
	_, err := (&Command{Line: "taskwatch-no-such-binary"}).Start()
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCommand_Start_ExpandsEnvironment(t *testing.T) {
	requireShell(t)
	t.Setenv("TASKWATCH_GREETING", "hello world")

	p, err := (&Command{Line: `echo "$TASKWATCH_GREETING"`}).Start()
	require.NoError(t, err)

	res := p.Wait()
	assert.Equal(t, "hello world\n", res.Stdout)
}

func TestCommand_Start_WorkingDirectory(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	p, err := (&Command{Line: "pwd", Dir: dir}).Start()
	require.NoError(t, err)

	assert.Contains(t, p.Wait().Stdout, filepath.Base(dir))
}

func TestCommand_Action_LogModeCompletesOnFailure(t *testing.T) {
	requireShell(t)
	capture, stop := logger.StartCapture()
	defer stop()

	cmd := &Command{Line: `sh -c 'echo "compile error" >&2; exit 2'`, FailMode: FailModeLog}

	err := <-cmd.Action()(context.Background())

	assert.NoError(t, err)
	assert.True(t, capture.Contains("compile error"))
}

func TestCommand_Action_HaltModeFailsTask(t *testing.T) {
	requireShell(t)
	cmd := &Command{Line: `sh -c 'exit 3'`, FailMode: FailModeHalt}

	err := <-cmd.Action()(context.Background())

	var failed *CommandFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 3, failed.ExitStatus)
}

func TestCommand_Action_SpawnErrorIsImmediate(t *testing.T) {
	cmd := &Command{Line: "taskwatch-no-such-binary"}

	select {
	case err := <-cmd.Action()(context.Background()):
		var spawnErr *SpawnError
		assert.ErrorAs(t, err, &spawnErr)
	default:
		t.Fatal("spawn error should be delivered without waiting")
	}
}

func TestCommand_Action_InRunnerPlan(t *testing.T) {
	requireShell(t)
	capture, stop := logger.StartCapture()
	defer stop()

	reg := taskmanager.NewRegistry()
	require.NoError(t, reg.Define("build", nil, (&Command{Line: "echo ok"}).Action()))
	require.NoError(t, reg.Define("default", []string{"build"}, nil))

	plan, err := reg.Resolve("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "default"}, plan.Names())

	result, err := taskmanager.NewRunner(reg).Run(context.Background(), plan)
	require.NoError(t, err)

	assert.True(t, result.Success)
	def, _ := result.Task("default")
	assert.Equal(t, taskmanager.StatusSucceeded, def.Status)
	assert.Contains(t, capture.Messages(logger.UserLog), "ok")
}

func TestCommand_Action_NonZeroExitStillCompletesBuild(t *testing.T) {
	requireShell(t)
	capture, stop := logger.StartCapture()
	defer stop()

	reg := taskmanager.NewRegistry()
	require.NoError(t, reg.Define("build", nil, (&Command{Line: `sh -c 'echo "compile error" >&2; exit 2'`}).Action()))

	result, err := taskmanager.NewRunner(reg).RunTargets(context.Background(), "build")
	require.NoError(t, err)

	tr, _ := result.Task("build")
	assert.Equal(t, taskmanager.StatusSucceeded, tr.Status)
	assert.True(t, capture.Contains("compile error"))
}
