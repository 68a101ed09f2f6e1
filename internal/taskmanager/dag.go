package taskmanager

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// DAG represents a dependency graph of task names.
type DAG struct {
	nodes map[string]bool
	order []string            // nodes in insertion order
	edges map[string][]string // node -> nodes it depends on, in declared order
}

// NewDAG creates a new empty DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes: make(map[string]bool),
		edges: make(map[string][]string),
	}
}

// AddNode adds a node to the DAG.
func (d *DAG) AddNode(id string) {
	if !d.nodes[id] {
		d.nodes[id] = true
		d.order = append(d.order, id)
	}
}

// AddEdge adds a dependency edge from 'from' to 'to' (from depends on to).
// Repeated edges are ignored. 'to' is not added as a node; an edge to an
// unknown node is reported by TopologicalSort.
func (d *DAG) AddEdge(from, to string) {
	d.AddNode(from)
	for _, existing := range d.edges[from] {
		if existing == to {
			return
		}
	}
	d.edges[from] = append(d.edges[from], to)
}

// TopologicalSort returns the given roots and everything they depend on, with
// every dependency before its dependents. Dependencies are visited depth-first
// in declared order, so the result is deterministic. With no roots, every node
// is visited in insertion order.
func (d *DAG) TopologicalSort(roots ...string) ([]string, error) {
	if len(roots) == 0 {
		roots = d.order
	}

	state := make(map[string]visitState, len(d.nodes))
	var stack []string
	var result []string

	var visit func(id, requiredBy string) error
	visit = func(id, requiredBy string) error {
		if !d.nodes[id] {
			return &UnknownTaskError{Name: id, RequiredBy: requiredBy}
		}

		switch state[id] {
		case visited:
			return nil
		case visiting:
			return &CyclicDependencyError{Name: id, Path: cyclePath(stack, id)}
		}

		state[id] = visiting
		stack = append(stack, id)

		for _, dep := range d.edges[id] {
			if err := visit(dep, id); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = visited
		result = append(result, id)
		return nil
	}

	for _, root := range roots {
		if err := visit(root, ""); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// cyclePath returns the portion of the walk stack that loops back to id.
func cyclePath(stack []string, id string) []string {
	for i, n := range stack {
		if n == id {
			path := make([]string, 0, len(stack)-i+1)
			path = append(path, stack[i:]...)
			return append(path, id)
		}
	}
	return []string{id, id}
}
