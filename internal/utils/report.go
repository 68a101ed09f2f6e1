package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/maxkimambo/taskwatch/internal/taskmanager"
)

// PlanReport lists the tasks of a plan in execution order.
func PlanReport(plan taskmanager.Plan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plan for %s:\n", strings.Join(plan.Targets, ", ")))
	for i, task := range plan.Tasks {
		line := fmt.Sprintf("  %d. %s", i+1, task.Name)
		if len(task.Prerequisites) > 0 {
			line += fmt.Sprintf(" (after %s)", strings.Join(task.Prerequisites, ", "))
		}
		if task.Action == nil {
			line += " [no action]"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// TaskTable lists every registered task with its prerequisites and description.
func TaskTable(reg *taskmanager.Registry) *TableFormatter {
	table := NewTableFormatter("TASK", "PREREQUISITES", "DESCRIPTION")
	for _, name := range reg.Names() {
		task, _ := reg.Task(name)
		prereqs := "-"
		if len(task.Prerequisites) > 0 {
			prereqs = strings.Join(task.Prerequisites, ", ")
		}
		table.AddRow(name, prereqs, task.Description)
	}
	return table
}

// ResultTable shows the outcome of each task in a run.
func ResultTable(result *taskmanager.RunResult) *TableFormatter {
	table := NewTableFormatter("TASK", "STATUS", "DURATION")
	for _, tr := range result.Tasks {
		duration := "-"
		if tr.EndTime != nil {
			duration = tr.Duration.Round(time.Millisecond).String()
		}
		table.AddRow(tr.Name, tr.Status.String(), duration)
	}
	return table
}

// RunSummary renders a message box describing a finished run. When detailed
// is set the box also carries the per-task result table.
func RunSummary(result *taskmanager.RunResult, detailed bool) *Box {
	var box *Box
	if result.Success {
		box = NewBox(SuccessMessage, fmt.Sprintf("Completed %s", strings.Join(result.Targets, ", "))).
			AddKeyValue("Tasks", strings.Join(result.Executed(), " → ")).
			AddKeyValue("Time", result.ExecutionTime.Round(time.Millisecond).String())
	} else {
		box = NewBox(ErrorMessage, fmt.Sprintf("Failed %s", strings.Join(result.Targets, ", ")))
		for _, tr := range result.Tasks {
			switch tr.Status {
			case taskmanager.StatusFailed:
				box.AddBullet(fmt.Sprintf("%s failed: %v", tr.Name, tr.Error))
			case taskmanager.StatusSkipped:
				box.AddBullet(tr.Name + " skipped")
			}
		}
	}

	if detailed && len(result.Tasks) > 0 {
		box.AddLine("")
		for _, line := range strings.Split(strings.TrimRight(ResultTable(result).String(), "\n"), "\n") {
			box.AddLine(line)
		}
	}
	return box
}
