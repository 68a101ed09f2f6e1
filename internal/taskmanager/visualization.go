package taskmanager

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeInfo describes one task of a plan for visualization
type NodeInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	HasAction   bool   `json:"hasAction"`
}

// EdgeInfo points from a task to one of its prerequisites
type EdgeInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PlanInfo is the graph behind a plan, in plan order
type PlanInfo struct {
	Targets []string   `json:"targets"`
	Nodes   []NodeInfo `json:"nodes"`
	Edges   []EdgeInfo `json:"edges"`
}

// Describe returns the plan's tasks and prerequisite edges.
func (p Plan) Describe() PlanInfo {
	info := PlanInfo{
		Targets: p.Targets,
		Nodes:   make([]NodeInfo, 0, len(p.Tasks)),
		Edges:   []EdgeInfo{},
	}
	for _, t := range p.Tasks {
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:          t.Name,
			Description: t.Description,
			Status:      t.Status().String(),
			HasAction:   t.Action != nil,
		})
		for _, dep := range t.Prerequisites {
			info.Edges = append(info.Edges, EdgeInfo{From: t.Name, To: dep})
		}
	}
	return info
}

// JSON renders the plan graph as indented JSON.
func (info PlanInfo) JSON() (string, error) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	return string(data) + "\n", nil
}

// DOT renders the plan graph in Graphviz format. Tasks without an action are drawn as ellipses.
func (info PlanInfo) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph Plan {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=filled, fillcolor=\"white\"];\n")
	sb.WriteString(fmt.Sprintf("  label=%q;\n", "Plan for "+strings.Join(info.Targets, ", ")))
	sb.WriteString("  labelloc=\"t\";\n\n")

	for _, n := range info.Nodes {
		shape := "box"
		if !n.HasAction {
			shape = "ellipse"
		}
		label := n.ID
		if n.Description != "" {
			label += "\\n" + strings.ReplaceAll(n.Description, `"`, `'`)
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\", shape=%s, fillcolor=\"%s\"];\n",
			n.ID, label, shape, statusColor(n.Status)))
	}

	if len(info.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range info.Edges {
		// drawn prerequisite first so the graph reads in run order
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", e.To, e.From))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func statusColor(status string) string {
	switch status {
	case StatusRunning.String():
		return "lightblue"
	case StatusSucceeded.String():
		return "lightgreen"
	case StatusFailed.String():
		return "salmon"
	case StatusSkipped.String():
		return "orange"
	default:
		return "lightgrey"
	}
}
