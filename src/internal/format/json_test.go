// FILE: devconsole/src/internal/format/json_test.go
package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	logger := newTestLogger()
	testTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := core.LogEntry{
		Time:    testTime,
		Origin:  "app@host",
		Level:   core.LevelInfo,
		Message: "this is a test",
		Fields:  core.KV("user", "ann", "attempt", 2),
	}

	t.Run("BasicFormatting", func(t *testing.T) {
		formatter, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		output, err := formatter.Format(entry)
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(output, &result), "Output should be valid JSON")

		assert.Equal(t, testTime.Format(time.RFC3339Nano), result["time"])
		assert.Equal(t, "info", result["level"])
		assert.Equal(t, "app@host", result["origin"])
		assert.Equal(t, "this is a test", result["message"])
		assert.Equal(t, "ann", result["user"])
		assert.Equal(t, float64(2), result["attempt"])
		assert.True(t, strings.HasSuffix(string(output), "\n"), "Output should end with a newline")
	})

	t.Run("PrettyFormatting", func(t *testing.T) {
		formatter, err := NewJSONFormatter(map[string]any{"pretty": true}, logger)
		require.NoError(t, err)

		output, err := formatter.Format(entry)
		require.NoError(t, err)
		assert.Contains(t, string(output), `  "level": "info"`)
	})

	t.Run("FieldsDoNotOverrideStandardKeys", func(t *testing.T) {
		conflicting := entry
		conflicting.Fields = core.KV("level", "bogus")
		formatter, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		output, err := formatter.Format(conflicting)
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(output, &result))
		assert.Equal(t, "info", result["level"])
	})

	t.Run("MarkerHasNoLevel", func(t *testing.T) {
		formatter, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		output, err := formatter.Format(core.NewMarker("app", core.MarkerGroupStart, 1, "setup"))
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(output, &result))
		assert.Equal(t, "group_start", result["marker"])
		assert.Equal(t, "setup", result["group"])
		_, hasLevel := result["level"]
		assert.False(t, hasLevel)
	})
}
