// FILE: devconsole/src/internal/registry/registry_test.go
package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"devconsole/src/internal/core"
	"devconsole/src/internal/handler"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// recordingHandler keeps every entry it handles and can be told to fail or panic
type recordingHandler struct {
	enabled    bool
	received   []core.LogEntry
	failWith   error
	panicWith  any
	terminated bool
	enableErr  error
}

func (h *recordingHandler) Enable() error {
	if h.enableErr != nil {
		return h.enableErr
	}
	h.enabled = true
	return nil
}

func (h *recordingHandler) Disable() { h.enabled = false }

func (h *recordingHandler) Enabled() bool { return h.enabled }

func (h *recordingHandler) Handle(entry core.LogEntry) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	if h.failWith != nil {
		return h.failWith
	}
	h.received = append(h.received, entry)
	return nil
}

type terminatingHandler struct {
	recordingHandler
}

func (h *terminatingHandler) Terminate() {
	h.terminated = true
	h.enabled = false
}

func TestNew_ImplicitFileHandler(t *testing.T) {
	r := New(newTestLogger())

	list := r.List()
	require.Contains(t, list, core.FileHandlerName)
	assert.Equal(t, Info{Type: "file", Enabled: false}, list[core.FileHandlerName])

	err := r.Enable(core.FileHandlerName)
	assert.ErrorIs(t, err, core.ErrNoPathConfigured)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("AutoEnable", func(t *testing.T) {
		r := New(newTestLogger())
		path := filepath.Join(t.TempDir(), "out.log")
		require.NoError(t, r.Register("audit", "file", map[string]any{"path": path}, true))

		assert.True(t, r.List()["audit"].Enabled)
		r.Shutdown()
		assert.False(t, r.List()["audit"].Enabled)
	})

	t.Run("AutoEnableFailureKeepsHandlerDisabled", func(t *testing.T) {
		r := New(newTestLogger())
		require.NoError(t, r.Register("nopath", "file", nil, true))
		assert.Equal(t, Info{Type: "file", Enabled: false}, r.List()["nopath"])
	})

	t.Run("UnknownType", func(t *testing.T) {
		r := New(newTestLogger())
		err := r.Register("x", "nonexistent", nil, true)
		assert.Error(t, err)
		assert.NotContains(t, r.List(), "x")
	})

	t.Run("ReplaceTerminatesPrevious", func(t *testing.T) {
		r := New(newTestLogger())
		old := &terminatingHandler{}
		r.Add("x", "custom", old, true)
		r.Add("x", "custom", &recordingHandler{}, false)

		assert.True(t, old.terminated)
		assert.Equal(t, []string{core.FileHandlerName, "x"}, r.Names())
	})
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Run("OnlyEnabledHandlersReceive", func(t *testing.T) {
		r := New(newTestLogger())
		on := &recordingHandler{}
		off := &recordingHandler{}
		r.Add("on", "custom", on, true)
		r.Add("off", "custom", off, false)

		r.Dispatch(core.LogEntry{Message: "m"})
		assert.Len(t, on.received, 1)
		assert.Empty(t, off.received)
	})

	t.Run("FaultIsolation", func(t *testing.T) {
		r := New(newTestLogger())
		a := &recordingHandler{failWith: errors.New("disk on fire")}
		b := &recordingHandler{}
		r.Add("a", "custom", a, true)
		r.Add("b", "custom", b, true)

		entry := core.LogEntry{Message: "same"}
		r.Dispatch(entry)

		assert.False(t, a.Enabled())
		assert.Equal(t, []core.LogEntry{entry}, b.received)
		assert.True(t, r.List()["b"].Enabled)
		assert.False(t, r.List()["a"].Enabled)

		// A is never called again until re-enabled
		a.failWith = nil
		r.Dispatch(core.LogEntry{Message: "second"})
		assert.Empty(t, a.received)
		assert.Len(t, b.received, 2)

		require.NoError(t, r.Enable("a"))
		r.Dispatch(core.LogEntry{Message: "third"})
		assert.Len(t, a.received, 1)
	})

	t.Run("PanicIsTreatedAsFailure", func(t *testing.T) {
		r := New(newTestLogger())
		bad := &recordingHandler{panicWith: "boom"}
		good := &recordingHandler{}
		r.Add("bad", "custom", bad, true)
		r.Add("good", "custom", good, true)

		assert.NotPanics(t, func() { r.Dispatch(core.LogEntry{Message: "m"}) })
		assert.False(t, bad.Enabled())
		assert.Len(t, good.received, 1)
		assert.Equal(t, uint64(1), r.Stats()["total_failures"])
	})

	t.Run("MarkersAreDispatched", func(t *testing.T) {
		r := New(newTestLogger())
		h := &recordingHandler{}
		r.Add("h", "custom", h, true)

		r.Dispatch(core.NewMarker("app", core.MarkerHR, 0, ""))
		require.Len(t, h.received, 1)
		assert.True(t, h.received[0].IsMarker())
	})
}

func TestRegistry_EnableDisable(t *testing.T) {
	t.Run("ToggleRoundTrip", func(t *testing.T) {
		r := New(newTestLogger())
		r.Add("x", "custom", &recordingHandler{}, false)
		assert.False(t, r.List()["x"].Enabled)

		require.NoError(t, r.Enable("x"))
		assert.True(t, r.List()["x"].Enabled)

		require.NoError(t, r.Disable("x"))
		assert.False(t, r.List()["x"].Enabled)

		require.NoError(t, r.Disable("x"))
		assert.False(t, r.List()["x"].Enabled)
	})

	t.Run("HandlerNotFound", func(t *testing.T) {
		r := New(newTestLogger())
		assert.ErrorIs(t, r.Enable("ghost"), core.ErrHandlerNotFound)
		assert.ErrorIs(t, r.Disable("ghost"), core.ErrHandlerNotFound)
	})

	t.Run("EnableErrorIsReturned", func(t *testing.T) {
		r := New(newTestLogger())
		r.Add("x", "custom", &recordingHandler{enableErr: errors.New("no")}, false)
		assert.Error(t, r.Enable("x"))
		assert.False(t, r.List()["x"].Enabled)
	})

	t.Run("DisableKeepsFileCounters", func(t *testing.T) {
		r := New(newTestLogger())
		path := filepath.Join(t.TempDir(), "x.log")
		require.NoError(t, r.Register("f", "file", map[string]any{"path": path, "format": "raw"}, true))
		r.Dispatch(core.LogEntry{Message: "abc"})
		require.NoError(t, r.Disable("f"))
		require.NoError(t, r.Disable("f"))

		h, ok := r.Get("f")
		require.True(t, ok)
		entries, bytes := h.(*handler.FileHandler).Counts()
		assert.Equal(t, int64(1), entries)
		assert.Equal(t, int64(4), bytes)
	})
}

func TestRegistry_Shutdown(t *testing.T) {
	r := New(newTestLogger())
	term := &terminatingHandler{}
	plain := &recordingHandler{}
	r.Add("t", "custom", term, true)
	r.Add("p", "custom", plain, true)

	r.Shutdown()
	assert.True(t, term.terminated)
	assert.False(t, plain.Enabled())
}

func TestRegistry_Filters(t *testing.T) {
	rec := &recordingHandler{}
	handler.Register("recording_filter_test", func(options map[string]any, logger *log.Logger) (handler.Handler, error) {
		return rec, nil
	})

	r := New(newTestLogger())
	require.NoError(t, r.Register("errors", "recording_filter_test", map[string]any{
		"min_level": "warn",
		"filters": []any{
			map[string]any{"type": "exclude", "patterns": []any{"flaky"}},
		},
	}, true))

	r.Dispatch(core.NewEntry("o", core.LevelInfo, "routine"))
	r.Dispatch(core.NewEntry("o", core.LevelError, "flaky test"))
	r.Dispatch(core.NewEntry("o", core.LevelError, "real failure"))
	r.Dispatch(core.NewMarker("o", core.MarkerHR, 0, ""))

	require.Len(t, rec.received, 2)
	assert.Equal(t, "real failure", rec.received[0].Message)
	assert.Equal(t, core.MarkerHR, rec.received[1].Marker)

	stats := r.Stats()
	require.Contains(t, stats, "filters")
	assert.Contains(t, stats["filters"], "errors")

	err := r.Register("bad", "recording_filter_test", map[string]any{"min_level": "loud"}, true)
	assert.Error(t, err)
}
