package build

import "fmt"

// SpawnError is returned when the build command could not be started at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot start build command %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// CommandFailedError is returned when the build command ran and exited non-zero.
type CommandFailedError struct {
	Command    string
	ExitStatus int
	Stderr     string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("build command %q exited with status %d", e.Command, e.ExitStatus)
}
