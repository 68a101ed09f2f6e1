package taskmanager

import (
	"fmt"
	"sort"
	"sync"
)

// Plan is an ordered sequence of tasks in which every prerequisite precedes
// its dependents.
type Plan struct {
	Targets []string
	Tasks   []*Task
}

// Names returns the task names in execution order.
func (p Plan) Names() []string {
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name
	}
	return names
}

// Registry holds task definitions and resolves run requests into plans.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string // definition order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Define registers a task. action may be nil for tasks that only run their prerequisites.
func (r *Registry) Define(name string, prerequisites []string, action Action) error {
	return r.DefineTask(&Task{
		Name:          name,
		Prerequisites: prerequisites,
		Action:        action,
	})
}

// DefineTask registers a fully described task.
func (r *Registry) DefineTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.Name]; exists {
		return &DuplicateTaskError{Name: task.Name}
	}

	prerequisites := make([]string, len(task.Prerequisites))
	copy(prerequisites, task.Prerequisites)

	r.tasks[task.Name] = &Task{
		Name:          task.Name,
		Description:   task.Description,
		Prerequisites: prerequisites,
		Action:        task.Action,
	}
	r.order = append(r.order, task.Name)
	return nil
}

// Task returns the named task.
func (r *Registry) Task(name string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns all task names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Resolve returns the execution plan for name and all its transitive prerequisites.
func (r *Registry) Resolve(name string) (Plan, error) {
	return r.ResolveAll(name)
}

// ResolveAll returns a single plan covering every named target. Each task
// appears once, in the order it is first required.
func (r *Registry) ResolveAll(names ...string) (Plan, error) {
	if len(names) == 0 {
		return Plan{}, fmt.Errorf("no task requested")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if _, exists := r.tasks[name]; !exists {
			return Plan{}, &UnknownTaskError{Name: name}
		}
	}

	order, err := r.createDAG().TopologicalSort(names...)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Targets: append([]string(nil), names...),
		Tasks:   make([]*Task, 0, len(order)),
	}
	for _, n := range order {
		plan.Tasks = append(plan.Tasks, r.tasks[n])
	}
	return plan, nil
}

// createDAG creates a DAG from the registry's current state
func (r *Registry) createDAG() *DAG {
	dag := NewDAG()

	for _, name := range r.order {
		dag.AddNode(name)
	}

	for _, name := range r.order {
		for _, dep := range r.tasks[name].Prerequisites {
			dag.AddEdge(name, dep)
		}
	}

	return dag
}
