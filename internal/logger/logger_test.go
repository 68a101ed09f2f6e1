package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitialization(t *testing.T) {
	if User == nil {
		t.Error("User logger should not be nil after init")
	}
	if Op == nil {
		t.Error("Op logger should not be nil after init")
	}
}

func TestUnifiedLoggerInitialization(t *testing.T) {
	ul := GetLogger()
	if ul == nil {
		t.Fatal("GetLogger should never return nil")
	}

	if ul != GetLogger() {
		t.Error("GetLogger should return the same instance")
	}
}

func TestLoggerSetup(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		jsonLogs bool
		quiet    bool
		level    logrus.Level
	}{
		{"Default", false, false, false, logrus.InfoLevel},
		{"Verbose", true, false, false, logrus.DebugLevel},
		{"Quiet", false, false, true, logrus.ErrorLevel},
		{"JSON", false, true, false, logrus.InfoLevel},
		{"Verbose JSON", true, true, false, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_MODE", "")
			t.Setenv("LOG_FORMAT", "")
			Setup(tt.verbose, tt.jsonLogs, tt.quiet)

			assert.NotNil(t, User)
			assert.NotNil(t, Op)
			assert.Equal(t, tt.level, GetLogger().GetInternalLogger().GetLevel())
		})
	}
	Setup(false, false, false)
}

func TestLoggerSetup_EnvOverride(t *testing.T) {
	t.Setenv("LOG_MODE", "quiet")
	Setup(true, false, false)
	assert.Equal(t, logrus.ErrorLevel, GetLogger().GetInternalLogger().GetLevel())

	t.Setenv("LOG_MODE", "")
	Setup(false, false, false)
}

func TestUserLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.InfoLevel)

	userLogger := &UserLogger{logger: testLogger}

	userLogger.Output("compile error")
	assert.Contains(t, buf.String(), "compile error")

	buf.Reset()
	userLogger.Starting("starting build")
	assert.Contains(t, buf.String(), "starting build")
}

func TestOpLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.InfoLevel)

	opLogger := &OpLogger{logger: testLogger}

	opLogger.Info("operational message")
	if !strings.Contains(buf.String(), "operational message") {
		t.Errorf("Expected output to contain 'operational message', got: %s", buf.String())
	}

	buf.Reset()
	opLogger.WithFields(map[string]interface{}{
		"task": "build",
	}).Info("task finished")
	assert.Contains(t, buf.String(), "task finished")
	assert.Contains(t, buf.String(), "task=build")
}

func TestOutputRouterHook_RoutesByLogType(t *testing.T) {
	var userBuf, opBuf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&bytes.Buffer{})
	hook := NewOutputRouterHook()
	hook.UserWriter = &userBuf
	hook.OpWriter = &opBuf
	hook.OpFormatter = &CLIFormatter{DisableTimestamp: true, DisableColors: true}
	testLogger.AddHook(hook)

	(&UserLogger{logger: testLogger}).Success("build done")
	(&OpLogger{logger: testLogger}).Warn("watch error")

	assert.Equal(t, "✓ build done\n", userBuf.String())
	assert.Equal(t, "WARNING: watch error\n", opBuf.String())
}

func TestCLIFormatter_SortedFields(t *testing.T) {
	f := &CLIFormatter{DisableTimestamp: true, DisableColors: true}
	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.InfoLevel
	entry.Message = "run finished"
	entry.Data = logrus.Fields{"task": "build", "run": "abc", "log_type": "op"}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO: run finished run=abc task=build\n", string(out))
}

func TestCapture(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")
	Setup(false, false, false)

	capture, stop := StartCapture()
	User.Output("hello")
	Op.Info("op line")
	stop()
	User.Output("after stop")

	assert.Equal(t, []string{"hello"}, capture.Messages(UserLog))
	assert.Equal(t, []string{"op line"}, capture.Messages(OpLog))
	assert.True(t, capture.Contains("hello"))
	assert.False(t, capture.Contains("after stop"))
}

func TestCapture_SeesMessageWithoutPrefix(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")
	Setup(false, false, false)

	capture, stop := StartCapture()
	defer stop()

	User.Success("build done")
	User.Watchf("write %s", "src/main.nim")

	assert.Equal(t, []string{"build done", "write src/main.nim"}, capture.Messages(UserLog))
}
