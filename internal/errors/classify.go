package errors

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/maxkimambo/taskwatch/internal/build"
	"github.com/maxkimambo/taskwatch/internal/config"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
	"github.com/maxkimambo/taskwatch/internal/watcher"
)

// Error codes, unique within a category
const (
	CodeDuplicateTask = "001"
	CodeUnknownTask   = "002"
	CodeCyclicGraph   = "003"

	CodeSpawn         = "001"
	CodeCommandFailed = "002"

	CodeInvalidPattern = "001"

	CodeInvalidConfig = "001"

	CodeRunFailed      = "001"
	CodeRunInterrupted = "002"
)

// Classify maps an error returned by a run into a Diagnostic. Wrapped errors
// are recognised anywhere in the chain; unrecognised errors become a generic
// run failure.
func Classify(err error) *Diagnostic {
	if err == nil {
		return nil
	}

	var diag *Diagnostic
	if stderrors.As(err, &diag) {
		return diag
	}

	var (
		dup     *taskmanager.DuplicateTaskError
		unknown *taskmanager.UnknownTaskError
		cycle   *taskmanager.CyclicDependencyError
		spawn   *build.SpawnError
		failed  *build.CommandFailedError
		invalid *config.ValidationError
	)

	switch {
	case stderrors.As(err, &dup):
		return NewDiagnostic(CategoryTaskGraph, CodeDuplicateTask, dup.Error(), "Task definition").
			WithContext("task", dup.Name).
			WithOriginalError(err).
			WithTroubleshooting("Give every task a unique name")

	case stderrors.As(err, &unknown):
		d := NewDiagnostic(CategoryTaskGraph, CodeUnknownTask, unknown.Error(), "Task resolution").
			WithContext("task", unknown.Name).
			WithOriginalError(err)
		if unknown.RequiredBy != "" {
			d.WithContext("required_by", unknown.RequiredBy)
		}
		return d.WithTroubleshooting(
			"Check the task name for typos",
			"Run 'taskwatch list' to see the defined tasks",
			"If the task is a watch target, check watch.targets in the config file",
		)

	case stderrors.As(err, &cycle):
		return NewDiagnostic(CategoryTaskGraph, CodeCyclicGraph, cycle.Error(), "Task resolution").
			WithContext("task", cycle.Name).
			WithContext("cycle", strings.Join(cycle.Path, " -> ")).
			WithOriginalError(err).
			WithTroubleshooting("Remove one of the prerequisites on the cycle path")

	case stderrors.As(err, &spawn):
		return NewDiagnostic(CategoryBuild, CodeSpawn, "Build command could not be started", "Spawn build command").
			WithContext("command", spawn.Command).
			WithOriginalError(err).
			WithTroubleshooting(
				"Check that the executable is installed and on PATH",
				"Check the quoting of build.command (or --command / TASKWATCH_COMMAND)",
			)

	case stderrors.As(err, &failed):
		d := NewDiagnostic(CategoryBuild, CodeCommandFailed, "Build command failed", "Run build command").
			WithContext("command", failed.Command).
			WithContext("exit_status", failed.ExitStatus).
			WithOriginalError(err).
			WithTroubleshooting(
				"Read the build output above for the compiler error",
				"Use --fail-mode log to keep watching after a failed build",
			)
		if stderr := strings.TrimSpace(failed.Stderr); stderr != "" {
			d.WithContext("stderr", lastLine(stderr))
		}
		return d

	case stderrors.As(err, &invalid):
		d := NewDiagnostic(CategoryConfiguration, CodeInvalidConfig, "Invalid configuration", "Load configuration").
			WithContext("problems", strings.Join(invalid.Problems, "; ")).
			WithOriginalError(err).
			WithTroubleshooting("Fix the listed settings in the config file, flags or TASKWATCH_* variables")
		if invalid.Source != "" {
			d.WithContext("file", invalid.Source)
		}
		return d

	case stderrors.Is(err, watcher.ErrInvalidPattern):
		return NewDiagnostic(CategoryWatch, CodeInvalidPattern, "Invalid watch pattern", "Start watching").
			WithOriginalError(err).
			WithTroubleshooting(
				"Use glob syntax such as 'src/*.nim' or 'src/**/*.nim'",
				"Check for unbalanced brackets or braces",
			)

	case stderrors.Is(err, context.Canceled):
		return NewDiagnostic(CategoryRun, CodeRunInterrupted, "Run interrupted", "").
			WithOriginalError(err)
	}

	return NewDiagnostic(CategoryRun, CodeRunFailed, err.Error(), "").
		WithOriginalError(err)
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
