// Package config loads taskwatch settings from defaults, an optional config
// file and TASKWATCH_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maxkimambo/taskwatch/internal/build"
)

const (
	DefaultCommand  = "nimble build"
	DefaultPattern  = "src/*.nim"
	DefaultFailMode = string(build.FailModeLog)
)

// DefaultTargets are the tasks re-run when a watched file changes.
var DefaultTargets = []string{"build"}

// Config is the root configuration.
type Config struct {
	Build BuildConfig `json:"build" yaml:"build"`
	Watch WatchConfig `json:"watch" yaml:"watch"`

	// Source is the file the configuration was read from, empty for defaults only.
	Source string `json:"-" yaml:"-"`
}

// BuildConfig configures the build task.
type BuildConfig struct {
	Command  string `json:"command" yaml:"command"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"` // working directory (default: current)
	FailMode string `json:"fail_mode" yaml:"fail_mode"`         // "log" or "halt"
}

// WatchConfig configures the watch task.
type WatchConfig struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	Targets []string `json:"targets" yaml:"targets"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in zero-value fields.
func applyDefaults(cfg *Config) {
	if cfg.Build.Command == "" {
		cfg.Build.Command = DefaultCommand
	}
	if cfg.Build.FailMode == "" {
		cfg.Build.FailMode = DefaultFailMode
	}
	if cfg.Watch.Pattern == "" {
		cfg.Watch.Pattern = DefaultPattern
	}
	if len(cfg.Watch.Targets) == 0 {
		cfg.Watch.Targets = append([]string(nil), DefaultTargets...)
	}
}

// FailMode returns the parsed build fail mode.
func (c *Config) FailMode() (build.FailMode, error) {
	return build.ParseFailMode(c.Build.FailMode)
}

// BuildCommand returns the build command described by the configuration.
func (c *Config) BuildCommand() (*build.Command, error) {
	mode, err := c.FailMode()
	if err != nil {
		return nil, err
	}
	return &build.Command{
		Line:     c.Build.Command,
		Dir:      c.Build.Dir,
		FailMode: mode,
	}, nil
}

// Validate checks the configuration for values that cannot work at run time.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Build.Command) == "" {
		problems = append(problems, "build.command must not be empty")
	}
	if _, err := c.FailMode(); err != nil {
		problems = append(problems, "build.fail_mode: "+err.Error())
	}
	if c.Watch.Pattern == "" {
		problems = append(problems, "watch.pattern must not be empty")
	} else if !doublestar.ValidatePattern(c.Watch.Pattern) {
		problems = append(problems, fmt.Sprintf("watch.pattern %q is not a valid glob", c.Watch.Pattern))
	}
	if len(c.Watch.Targets) == 0 {
		problems = append(problems, "watch.targets must name at least one task")
	}
	for _, t := range c.Watch.Targets {
		if strings.TrimSpace(t) == "" {
			problems = append(problems, "watch.targets must not contain empty names")
			break
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Source: c.Source, Problems: problems}
	}
	return nil
}

// ValidationError lists every invalid setting found by Validate.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	prefix := "invalid configuration"
	if e.Source != "" {
		prefix += " in " + e.Source
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}
