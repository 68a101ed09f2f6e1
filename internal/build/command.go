// Package build runs the external build command and reports its output.
package build

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/taskmanager"
	"mvdan.cc/sh/v3/shell"
)

// FailMode controls what a non-zero exit status does to the running plan.
type FailMode string

const (
	// FailModeLog reports the failure through the build output only; the task still completes.
	FailModeLog FailMode = "log"
	// FailModeHalt fails the task, which halts the rest of the plan.
	FailModeHalt FailMode = "halt"
)

// ParseFailMode validates a fail mode string. Empty means FailModeLog.
func ParseFailMode(s string) (FailMode, error) {
	switch FailMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailModeLog:
		return FailModeLog, nil
	case FailModeHalt:
		return FailModeHalt, nil
	default:
		return "", fmt.Errorf("invalid fail mode %q (expected %q or %q)", s, FailModeLog, FailModeHalt)
	}
}

// Result is the outcome of one build command invocation.
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
	Duration   time.Duration
}

// Command is the build command configuration.
type Command struct {
	// Line is the command string, split into words with shell quoting rules.
	Line string
	// Dir is the working directory; empty means the current directory.
	Dir      string
	FailMode FailMode
}

// Process is a started build command.
type Process struct {
	command string
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	started time.Time
	done    chan struct{}
	result  *Result
}

// Start spawns the command. A *SpawnError is returned when the command string
// cannot be parsed or the executable cannot be started; the process never runs.
func (c *Command) Start() (*Process, error) {
	args, err := shell.Fields(c.Line, os.Getenv)
	if err != nil {
		return nil, &SpawnError{Command: c.Line, Err: err}
	}
	if len(args) == 0 {
		return nil, &SpawnError{Command: c.Line, Err: errors.New("empty command")}
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, &SpawnError{Command: c.Line, Err: err}
	}

	// Not bound to a context: a spawned build always runs to completion.
	cmd := exec.Command(path, args[1:]...)
	cmd.Dir = c.Dir

	p := &Process{
		command: c.Line,
		cmd:     cmd,
		done:    make(chan struct{}),
	}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr

	logger.Op.WithFields(map[string]interface{}{
		"command": c.Line,
		"dir":     c.Dir,
	}).Debug("Spawning build command")

	p.started = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: c.Line, Err: err}
	}

	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()

	status := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			status = exitErr.ExitCode()
		} else {
			status = -1
			p.stderr.WriteString(err.Error())
		}
	}

	p.result = &Result{
		ExitStatus: status,
		Stdout:     p.stdout.String(),
		Stderr:     p.stderr.String(),
		Duration:   time.Since(p.started),
	}
	close(p.done)
}

// Wait blocks until the process exits and returns its result.
func (p *Process) Wait() *Result {
	<-p.done
	return p.result
}

// finish waits for p, reports its output and checks its exit status. A
// non-zero exit status is returned as *CommandFailedError together with the result.
func (c *Command) finish(p *Process) (*Result, error) {
	res := p.Wait()
	Report(res)
	return res, c.check(res)
}

// Action adapts the command into a task action. With FailModeLog the task
// completes on process exit whatever the status; with FailModeHalt a non-zero
// status fails the task.
func (c *Command) Action() taskmanager.Action {
	return func(ctx context.Context) <-chan error {
		done := make(chan error, 1)

		p, err := c.Start()
		if err != nil {
			done <- err
			return done
		}

		go func() {
			res, err := c.finish(p)
			if err != nil && c.FailMode != FailModeHalt {
				logger.User.Warnf("Build exited with status %d", res.ExitStatus)
				err = nil
			}
			done <- err
		}()
		return done
	}
}

func (c *Command) check(res *Result) error {
	if res.ExitStatus == 0 {
		return nil
	}
	return &CommandFailedError{
		Command:    c.Line,
		ExitStatus: res.ExitStatus,
		Stderr:     res.Stderr,
	}
}

// Report emits captured stdout then stderr, verbatim, line by line.
func Report(res *Result) {
	emit(res.Stdout)
	emit(res.Stderr)
}

func emit(text string) {
	if text == "" {
		return
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for scanner.Scan() {
		logger.User.Output(scanner.Text())
	}
}
