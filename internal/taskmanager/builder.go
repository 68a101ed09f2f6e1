package taskmanager

import (
	"fmt"
)

// Builder assembles a Registry and validates the complete graph before
// handing it out.
type Builder struct {
	tasks        []*Task
	dependencies map[string][]string // task name -> prerequisite names
	err          error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		dependencies: make(map[string][]string),
	}
}

// AddTask adds a task; action may be nil.
func (b *Builder) AddTask(name, description string, action Action) *Builder {
	for _, t := range b.tasks {
		if t.Name == name && b.err == nil {
			b.err = &DuplicateTaskError{Name: name}
		}
	}
	b.tasks = append(b.tasks, &Task{
		Name:        name,
		Description: description,
		Action:      action,
	})
	return b
}

// AddDependency declares that taskName requires dependencyName to run first.
func (b *Builder) AddDependency(taskName string, dependencyName string) *Builder {
	b.dependencies[taskName] = append(b.dependencies[taskName], dependencyName)
	return b
}

// Build validates and constructs the Registry.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	if err := b.validateDependencies(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, t := range b.tasks {
		t.Prerequisites = b.dependencies[t.Name]
		if err := reg.DefineTask(t); err != nil {
			return nil, err
		}
	}

	reg.mu.RLock()
	_, err := reg.createDAG().TopologicalSort()
	reg.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	return reg, nil
}

// validateDependencies ensures dependencies are only declared for tasks that were added
func (b *Builder) validateDependencies() error {
	known := make(map[string]bool, len(b.tasks))
	for _, t := range b.tasks {
		known[t.Name] = true
	}
	for name := range b.dependencies {
		if !known[name] {
			return &UnknownTaskError{Name: name}
		}
	}
	return nil
}
