package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Capture records messages fired through the shared logger. Used by tests in
// packages that report through User/Op rather than returning text.
type Capture struct {
	mu      sync.Mutex
	entries []capturedEntry
}

type capturedEntry struct {
	logType LogType
	level   logrus.Level
	message string
}

// StartCapture installs a capturing hook on the shared logger. The returned
// function restores the previous hooks.
func StartCapture() (*Capture, func()) {
	c := &Capture{}
	internal := GetLogger().GetInternalLogger()

	hooks := make(logrus.LevelHooks)
	for level, hs := range internal.Hooks {
		hooks[level] = append(hooks[level], hs...)
	}
	hooks.Add(c)
	previous := internal.ReplaceHooks(hooks)

	return c, func() {
		internal.ReplaceHooks(previous)
	}
}

func (c *Capture) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (c *Capture) Fire(entry *logrus.Entry) error {
	logType, _ := entry.Data["log_type"].(string)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, capturedEntry{
		logType: LogType(logType),
		level:   entry.Level,
		message: entry.Message,
	})
	return nil
}

// Messages returns captured messages of the given type in firing order.
func (c *Capture) Messages(logType LogType) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.entries {
		if e.logType == logType {
			out = append(out, e.message)
		}
	}
	return out
}

// Contains reports whether any captured message contains substr.
func (c *Capture) Contains(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if strings.Contains(e.message, substr) {
			return true
		}
	}
	return false
}
