package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFormatter(t *testing.T) {
	table := NewTableFormatter("TASK", "PREREQUISITES").
		AddRow("build", "-").
		AddRow("default", "build, watch")

	want := "" +
		"┌─────────┬───────────────┐\n" +
		"│ TASK    │ PREREQUISITES │\n" +
		"├─────────┼───────────────┤\n" +
		"│ build   │ -             │\n" +
		"│ default │ build, watch  │\n" +
		"└─────────┴───────────────┘\n"

	assert.Equal(t, want, table.String())
	assert.Equal(t, 2, table.Len())
}

func TestTableFormatter_RaggedRowsAndRunes(t *testing.T) {
	table := NewTableFormatter("A", "B").
		AddRow("→").
		AddRow("x", "y", "dropped")

	want := "" +
		"┌───┬───┐\n" +
		"│ A │ B │\n" +
		"├───┼───┤\n" +
		"│ → │   │\n" +
		"│ x │ y │\n" +
		"└───┴───┘\n"

	assert.Equal(t, want, table.String())
}

func TestTableFormatter_WriteTo(t *testing.T) {
	table := NewTableFormatter("TASK").AddRow("build")

	var buf bytes.Buffer
	n, err := table.WriteTo(&buf)
	require.NoError(t, err)

	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, table.String(), buf.String())
}
