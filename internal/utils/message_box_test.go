package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short line", 20, []string{"short line"}},
		{"wraps on words", "one two three four", 9, []string{"one two", "three", "four"}},
		{"long word kept whole", "abcdefghij xy", 5, []string{"abcdefghij", "xy"}},
		{"blank", "", 5, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}

func TestBox_Render(t *testing.T) {
	out := NewBox(ErrorMessage, "Failed default").
		Width(60).
		AddBullet("build failed: exit status 2").
		AddKeyValue("Time", "1s").
		Render()

	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╯")
	assert.Contains(t, out, "✗ Failed default")
	assert.Contains(t, out, "• build failed: exit status 2")
	assert.Contains(t, out, "Time: 1s")
}

func TestBox_WrapsToWidth(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := NewBox(InfoMessage, "Info").Width(40).AddLine(long).Render()

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(stripANSI(line))), 40, "line %q", line)
	}
}

func TestConvenienceBoxes(t *testing.T) {
	assert.Contains(t, Success("Done"), "✓ Done")
	assert.Contains(t, Warning("Careful", "detail"), "detail")
	assert.Contains(t, Info("Note"), "ℹ Note")
	assert.Contains(t, Error("Broken"), "✗ Broken")
}

// stripANSI removes colour escape sequences.
func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
