// FILE: devconsole/src/internal/format/raw_test.go
package format

import (
	"testing"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawFormatter_Format(t *testing.T) {
	formatter, err := NewRawFormatter(map[string]any{"indent": "\t"}, newTestLogger())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		entry    core.LogEntry
		expected string
	}{
		{name: "Message", entry: core.LogEntry{Message: "plain line", Level: core.LevelError}, expected: "plain line\n"},
		{name: "Indented", entry: core.LogEntry{Message: "inner", GroupDepth: 2}, expected: "\t\tinner\n"},
		{name: "GroupStart", entry: core.NewMarker("o", core.MarkerGroupStart, 1, "build"), expected: "\tbuild:\n"},
		{name: "GroupEnd", entry: core.NewMarker("o", core.MarkerGroupEnd, 1, "build"), expected: ""},
		{name: "Ping", entry: core.LogEntry{Marker: core.MarkerPing, Message: core.PingConnected}, expected: "pong\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := formatter.Format(tc.entry)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(output))
		})
	}
}
