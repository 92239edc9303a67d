// FILE: devconsole/src/internal/handler/handler_test.go
package handler

import (
	"testing"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandler struct{ enabled bool }

func (h *nopHandler) Enable() error { h.enabled = true; return nil }
func (h *nopHandler) Disable() { h.enabled = false }
func (h *nopHandler) Enabled() bool { return h.enabled }
func (h *nopHandler) Handle(_ core.LogEntry) error { return nil }

func TestFactories(t *testing.T) {
	t.Run("BuiltinTypes", func(t *testing.T) {
		types := Types()
		assert.Contains(t, types, "file")
		assert.Contains(t, types, "terminal")
		assert.Contains(t, types, "logfile")
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := New("carrier-pigeon", nil, newTestLogger())
		assert.Error(t, err)
	})

	t.Run("RegisterCustom", func(t *testing.T) {
		Register("nop", func(options map[string]any, logger *log.Logger) (Handler, error) {
			return &nopHandler{}, nil
		})

		h, err := New("nop", nil, newTestLogger())
		require.NoError(t, err)
		assert.False(t, h.Enabled())
		assert.Contains(t, Types(), "nop")
	})

	t.Run("FileOptionsFromConfig", func(t *testing.T) {
		h, err := New("file", map[string]any{"path": "x.log", "max_entries": int64(7), "max_backups": 2.0}, newTestLogger())
		require.NoError(t, err)

		fh := h.(*FileHandler)
		assert.Equal(t, "x.log", fh.Path())
		assert.Equal(t, int64(7), fh.config.MaxEntries)
		assert.Equal(t, 2, fh.config.MaxBackups)
		assert.Equal(t, int64(core.DefaultMaxBytes), fh.config.MaxBytes)
	})
}
