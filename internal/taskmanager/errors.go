package taskmanager

import (
	"fmt"
	"strings"
)

// DuplicateTaskError is returned when a task name is defined twice.
type DuplicateTaskError struct {
	Name string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q is already defined", e.Name)
}

// UnknownTaskError is returned when a requested task, or a prerequisite, is not registered.
type UnknownTaskError struct {
	Name string
	// RequiredBy names the dependent task when Name was reached as a prerequisite.
	RequiredBy string
}

func (e *UnknownTaskError) Error() string {
	if e.RequiredBy != "" {
		return fmt.Sprintf("task %q depends on unknown task %q", e.RequiredBy, e.Name)
	}
	return fmt.Sprintf("task %q is not defined", e.Name)
}

// CyclicDependencyError is returned when resolution reaches a task that is
// still being visited.
type CyclicDependencyError struct {
	Name string
	Path []string // e.g. [a b a]
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("cyclic dependency on task %q: %s", e.Name, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("cyclic dependency on task %q", e.Name)
}
