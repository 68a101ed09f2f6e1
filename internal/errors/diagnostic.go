package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups diagnostics by the part of the tool that failed
type Category string

const (
	// CategoryTaskGraph covers task definition and resolution errors
	CategoryTaskGraph Category = "GRAPH"
	// CategoryBuild covers spawning and running the build command
	CategoryBuild Category = "BUILD"
	// CategoryWatch covers watch subscriptions
	CategoryWatch Category = "WATCH"
	// CategoryConfiguration covers config files, flags and environment overrides
	CategoryConfiguration Category = "CONFIG"
	// CategoryRun covers everything else that ends a run
	CategoryRun Category = "RUN"
)

// Diagnostic is a structured error with context and troubleshooting information
type Diagnostic struct {
	Category        Category
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", d.Category, d.Code, d.Message))

	if d.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", d.Operation))
	}

	if len(d.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range d.contextKeys() {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, d.Context[key]))
		}
	}

	if len(d.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range d.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if d.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", d.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (d *Diagnostic) Unwrap() error {
	return d.OriginalError
}

// FullCode returns the combined category and code, e.g. "BUILD-002"
func (d *Diagnostic) FullCode() string {
	return fmt.Sprintf("%s-%s", d.Category, d.Code)
}

func (d *Diagnostic) contextKeys() []string {
	keys := make([]string, 0, len(d.Context))
	for k := range d.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewDiagnostic creates a diagnostic with the specified parameters
func NewDiagnostic(category Category, code, message, operation string) *Diagnostic {
	return &Diagnostic{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the diagnostic
func (d *Diagnostic) WithContext(key string, value interface{}) *Diagnostic {
	d.Context[key] = value
	return d
}

// WithTroubleshooting adds troubleshooting steps
func (d *Diagnostic) WithTroubleshooting(steps ...string) *Diagnostic {
	d.Troubleshooting = append(d.Troubleshooting, steps...)
	return d
}

// WithOriginalError records the error the diagnostic was built from
func (d *Diagnostic) WithOriginalError(err error) *Diagnostic {
	d.OriginalError = err
	return d
}
