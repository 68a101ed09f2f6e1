package errors

import (
	"fmt"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	d := Classify(err)
	if d == nil {
		return ""
	}
	summary := fmt.Sprintf("%s: %s", d.FullCode(), d.Message)
	if runes := []rune(summary); len(runes) > 100 {
		return string(runes[:97]) + "..."
	}
	return summary
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	d := Classify(err)
	if d == nil {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n%s Error [%s]\n", d.Category, d.FullCode()))
	sb.WriteString(fmt.Sprintf("  %s\n", d.Message))

	if d.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", d.Operation))
	}

	if len(d.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range d.contextKeys() {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, d.Context[key]))
		}
	}

	if len(d.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range d.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	// skip the technical details when they would only repeat the message
	if d.OriginalError != nil && d.OriginalError.Error() != d.Message {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", d.OriginalError))
	}

	return sb.String()
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	d := Classify(err)
	if d == nil {
		return false
	}
	return d.Category == CategoryConfiguration ||
		d.Category == CategoryTaskGraph ||
		d.Category == CategoryWatch
}

// IsInterrupted reports whether err only records a cancelled run
func IsInterrupted(err error) bool {
	d := Classify(err)
	return d != nil && d.Category == CategoryRun && d.Code == CodeRunInterrupted
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	d := Classify(err)
	if d == nil {
		return ""
	}
	return d.FullCode()
}
