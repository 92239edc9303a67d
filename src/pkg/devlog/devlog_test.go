// FILE: devconsole/src/pkg/devlog/devlog_test.go
package devlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"
	"devconsole/src/internal/wire"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op  string
	arg string
}

// fakeConsole stands in for a linked console
type fakeConsole struct {
	mu      sync.Mutex
	got     []core.LogEntry
	calls   []call
	results map[string]any
	errs    map[string]error
	done    chan struct{}
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{
		results: make(map[string]any),
		errs:    make(map[string]error),
		done:    make(chan struct{}),
	}
}

func (c *fakeConsole) Name() string          { return "console@test" }
func (c *fakeConsole) Done() <-chan struct{} { return c.done }
func (c *fakeConsole) Close() error          { return nil }

func (c *fakeConsole) Receive(entry core.LogEntry) {
	c.mu.Lock()
	c.got = append(c.got, entry)
	c.mu.Unlock()
}

func (c *fakeConsole) Call(ctx context.Context, op, arg string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{op: op, arg: arg})
	if err := c.errs[op]; err != nil {
		return nil, err
	}
	if result, ok := c.results[op]; ok {
		return json.Marshal(result)
	}
	return nil, nil
}

func (c *fakeConsole) entries() []core.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.LogEntry(nil), c.got...)
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Discovery.RegistryDir = t.TempDir()
	cfg.Discovery.Watch = false
	return cfg
}

func newTestLogger(t *testing.T) *Logger {
	l, err := New(testConfig(t), log.NewLogger())
	require.NoError(t, err)
	return l
}

func linked(t *testing.T) (*Logger, *fakeConsole) {
	l := newTestLogger(t)
	console := newFakeConsole()
	l.buffer.Connect(console)
	return l, console
}

func TestNew_InvalidFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fallback = "bogus"
	_, err := New(cfg, log.NewLogger())
	assert.Error(t, err)
}

func TestOrigin(t *testing.T) {
	l := newTestLogger(t)
	assert.True(t, strings.HasPrefix(l.Origin(), core.ClientRole+"@"))
	assert.NotEqual(t, l.Origin(), newTestLogger(t).Origin(), "each producer has its own instance id")
}

func TestLogging_Forwarded(t *testing.T) {
	l, console := linked(t)

	l.Info("started", "port", 80)
	l.Error("failed")

	got := console.entries()
	require.Len(t, got, 2)
	assert.Equal(t, "started", got[0].Message)
	assert.Equal(t, core.LevelInfo, got[0].Level)
	assert.Equal(t, []core.Field{{Key: "port", Value: 80}}, got[0].Fields)
	assert.Equal(t, l.Origin(), got[0].Origin)
	assert.Equal(t, core.LevelError, got[1].Level)
}

func TestOff_SkipsThunk(t *testing.T) {
	l, console := linked(t)
	l.Off()
	assert.False(t, l.IsEnabled())

	called := false
	l.InfoFn(func() string {
		called = true
		return "expensive"
	})
	l.Warn("dropped")
	l.Ping()

	assert.False(t, called)
	assert.Empty(t, console.entries())

	l.On()
	l.DebugFn(func() string { return "lazy" })
	got := console.entries()
	require.Len(t, got, 1)
	assert.Equal(t, "lazy", got[0].Message)
}

func TestOff_NoBufferGrowth(t *testing.T) {
	l := newTestLogger(t)
	l.Off()
	for i := 0; i < 10; i++ {
		l.Info(fmt.Sprint(i))
	}
	assert.Empty(t, l.buffer.Pending())
}

func TestGroup_Depth(t *testing.T) {
	l, console := linked(t)

	l.Group(context.Background(), "outer", func(ctx context.Context) {
		l.InfoCtx(ctx, "one")
		l.Group(ctx, "inner", func(ctx context.Context) {
			assert.Equal(t, 2, GroupDepth(ctx))
			l.InfoCtx(ctx, "two")
		})
	})

	got := console.entries()
	require.Len(t, got, 6)

	assert.Equal(t, core.MarkerGroupStart, got[0].Marker)
	assert.Equal(t, 0, got[0].GroupDepth)
	assert.Equal(t, "one", got[1].Message)
	assert.Equal(t, 1, got[1].GroupDepth)
	assert.Equal(t, "outer", got[1].GroupName)
	assert.Equal(t, core.MarkerGroupStart, got[2].Marker)
	assert.Equal(t, 1, got[2].GroupDepth)
	assert.Equal(t, 2, got[3].GroupDepth)
	assert.Equal(t, core.MarkerGroupEnd, got[4].Marker)
	assert.Equal(t, "inner", got[4].GroupName)
	assert.Equal(t, core.MarkerGroupEnd, got[5].Marker)
	assert.Equal(t, 0, got[5].GroupDepth)
}

func TestGroup_EndOnPanic(t *testing.T) {
	l, console := linked(t)

	assert.Panics(t, func() {
		l.Group(context.Background(), "g", func(ctx context.Context) {
			panic("boom")
		})
	})

	got := console.entries()
	require.Len(t, got, 2)
	assert.Equal(t, core.MarkerGroupEnd, got[1].Marker)
}

func TestPing_Connected(t *testing.T) {
	l, console := linked(t)
	l.Ping()
	got := console.entries()
	require.Len(t, got, 1)
	assert.Equal(t, core.PingConnected, got[0].Message)
}

func TestConsoleCalls_NotFound(t *testing.T) {
	l := newTestLogger(t)

	assert.ErrorIs(t, l.File("/tmp/x.log"), ErrConsoleNotFound)
	assert.ErrorIs(t, l.DisableFile(), ErrConsoleNotFound)
	assert.ErrorIs(t, l.EnableHandler("terminal"), ErrConsoleNotFound)
	assert.ErrorIs(t, l.DisableHandler("terminal"), ErrConsoleNotFound)

	_, err := l.FilePath()
	assert.ErrorIs(t, err, ErrConsoleNotFound)
	_, err = l.Handlers()
	assert.ErrorIs(t, err, ErrConsoleNotFound)
}

func TestConsoleCalls_Linked(t *testing.T) {
	l, console := linked(t)
	console.results[wire.OpFilePath] = "/var/log/app.log"
	console.results[wire.OpListHandlers] = map[string]HandlerInfo{
		"file":     {Type: "file", Enabled: true},
		"terminal": {Type: "terminal", Enabled: false},
	}
	console.errs[wire.OpEnableHandler] = fmt.Errorf("%w (console: nope)", ErrHandlerNotFound)

	require.NoError(t, l.File("/var/log/app.log"))
	require.NoError(t, l.File(""))

	path, err := l.FilePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/app.log", path)

	handlers, err := l.Handlers()
	require.NoError(t, err)
	assert.True(t, handlers["file"].Enabled)
	assert.False(t, handlers["terminal"].Enabled)

	assert.ErrorIs(t, l.EnableHandler("nope"), ErrHandlerNotFound)
	require.NoError(t, l.DisableHandler("terminal"))

	assert.Equal(t, []call{
		{op: wire.OpConfigureFile, arg: "/var/log/app.log"},
		{op: wire.OpDisableFile},
		{op: wire.OpFilePath},
		{op: wire.OpListHandlers},
		{op: wire.OpEnableHandler, arg: "nope"},
		{op: wire.OpDisableHandler, arg: "terminal"},
	}, console.calls)
}

func TestApplyConfig(t *testing.T) {
	l := newTestLogger(t)

	cfg := testConfig(t)
	cfg.Enabled = false
	cfg.Fallback = "silent"
	require.NoError(t, l.ApplyConfig(cfg))
	assert.False(t, l.IsEnabled())

	cfg.Enabled = true
	require.NoError(t, l.ApplyConfig(cfg))
	l.Info("gone")
	assert.Empty(t, l.buffer.Pending(), "silent policy drops while disconnected")

	cfg.Fallback = "bogus"
	assert.Error(t, l.ApplyConfig(cfg))
}

func TestDefault(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	// No default: wrappers are no-ops
	Info("ignored")
	assert.False(t, IsEnabled())
	ran := false
	Group(context.Background(), "g", func(ctx context.Context) { ran = true })
	assert.True(t, ran)

	l, console := linked(t)
	SetDefault(l)
	Info("hello")
	Ping()
	assert.True(t, IsEnabled())
	assert.Len(t, console.entries(), 2)
	assert.Same(t, l, Default())
}

func TestWaitConnected(t *testing.T) {
	l := newTestLogger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.WaitConnected(ctx), ErrConsoleNotFound)

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.buffer.Connect(newFakeConsole())
	}()
	require.NoError(t, l.WaitConnected(context.Background()))
	assert.True(t, l.Connected())
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devconsole.toml")
	write := func(body string) {
		content := body + fmt.Sprintf("\n[discovery]\nregistry_dir = %q\nwatch = false\n", dir)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("enabled = true\nfallback = \"buffer\"\nauto_reload = true")
	cfg, err := config.LoadFile(path, nil)
	require.NoError(t, err)
	require.True(t, cfg.AutoReload)

	l, err := New(cfg, log.NewLogger())
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.WatchConfig(context.Background(), path, cfg))
	assert.Error(t, l.WatchConfig(context.Background(), path, cfg), "one watch per producer")
	assert.True(t, l.IsEnabled())

	write("enabled = false\nfallback = \"silent\"\nauto_reload = true")
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	require.Eventually(t, func() bool {
		return !l.IsEnabled()
	}, 10*time.Second, 50*time.Millisecond)
	assert.Equal(t, "silent", l.Stats()["buffer"].(map[string]any)["policy"])
}
