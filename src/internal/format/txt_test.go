// FILE: devconsole/src/internal/format/txt_test.go
package format

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxtFormatter(t *testing.T) {
	t.Run("InvalidTemplate", func(t *testing.T) {
		options := map[string]any{"template": "{{ .Timestamp | InvalidFunc }}"}
		_, err := NewTxtFormatter(options, newTestLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid template")
	})
}

func TestTxtFormatter_Format(t *testing.T) {
	logger := newTestLogger()
	testTime := time.Date(2023, 10, 27, 10, 30, 0, 0, time.UTC)
	entry := core.LogEntry{
		Time:    testTime,
		Origin:  "api",
		Level:   core.LevelWarn,
		Message: "rate limit exceeded",
	}

	t.Run("DefaultTemplate", func(t *testing.T) {
		formatter, err := NewTxtFormatter(nil, logger)
		require.NoError(t, err)

		output, err := formatter.Format(entry)
		require.NoError(t, err)

		expected := fmt.Sprintf("[%s] [WARN] api - rate limit exceeded\n", testTime.Format(defaultTimeFormat))
		assert.Equal(t, expected, string(output))
	})

	t.Run("CustomTemplate", func(t *testing.T) {
		options := map[string]any{"template": "{{.Level}}:{{.Origin}}:{{.Message}}"}
		formatter, err := NewTxtFormatter(options, logger)
		require.NoError(t, err)

		output, err := formatter.Format(entry)
		require.NoError(t, err)
		assert.Equal(t, "warn:api:rate limit exceeded\n", string(output))
	})

	t.Run("CustomTimestampFormat", func(t *testing.T) {
		options := map[string]any{"timestamp_format": "2006-01-02"}
		formatter, err := NewTxtFormatter(options, logger)
		require.NoError(t, err)

		output, err := formatter.Format(entry)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(output), "[2023-10-27]"))
	})

	t.Run("MetadataLinesAreIndented", func(t *testing.T) {
		withFields := entry
		withFields.Fields = core.KV("path", "/v1/items", "status", 429)
		formatter, err := NewTxtFormatter(map[string]any{"template": "{{.Message}}"}, logger)
		require.NoError(t, err)

		output, err := formatter.Format(withFields)
		require.NoError(t, err)
		assert.Equal(t, "rate limit exceeded\n  path: /v1/items\n  status: 429\n", string(output))
	})

	t.Run("GroupDepthIndents", func(t *testing.T) {
		nested := entry
		nested.GroupDepth = 2
		formatter, err := NewTxtFormatter(map[string]any{"template": "{{.Indent}}{{.Message}}"}, logger)
		require.NoError(t, err)

		output, err := formatter.Format(nested)
		require.NoError(t, err)
		assert.Equal(t, "    rate limit exceeded\n", string(output))
	})

	t.Run("Markers", func(t *testing.T) {
		formatter, err := NewTxtFormatter(nil, logger)
		require.NoError(t, err)

		start, err := formatter.Format(core.NewMarker("api", core.MarkerGroupStart, 0, "boot"))
		require.NoError(t, err)
		assert.Equal(t, "boot {\n", string(start))

		end, err := formatter.Format(core.NewMarker("api", core.MarkerGroupEnd, 0, "boot"))
		require.NoError(t, err)
		assert.Equal(t, "} boot\n", string(end))

		hr, err := formatter.Format(core.NewMarker("api", core.MarkerHR, 0, ""))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("-", hrWidth)+"\n", string(hr))

		ping := core.NewMarker("api", core.MarkerPing, 0, "")
		ping.Message = core.PingConnected
		out, err := formatter.Format(ping)
		require.NoError(t, err)
		assert.Equal(t, "ping from api: pong\n", string(out))
	})
}
