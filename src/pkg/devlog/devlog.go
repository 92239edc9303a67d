// FILE: devconsole/src/pkg/devlog/devlog.go
package devlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"devconsole/src/internal/client"
	"devconsole/src/internal/config"
	"devconsole/src/internal/connector"
	"devconsole/src/internal/core"
	"devconsole/src/internal/discovery"
	"devconsole/src/internal/registry"
	"devconsole/src/internal/transport"
	"devconsole/src/internal/wire"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
)

// Errors returned by console-backed calls
var (
	ErrConsoleNotFound  = core.ErrConsoleNotFound
	ErrNoPathConfigured = core.ErrNoPathConfigured
	ErrHandlerNotFound  = core.ErrHandlerNotFound
)

// HandlerInfo describes one handler registered on the console
type HandlerInfo = registry.Info

const callTimeout = 5 * time.Second

// Logger is the producer side of devconsole, embedded in an application.
// Logging calls never block and never fail; console-backed calls return
// ErrConsoleNotFound while no console is linked.
type Logger struct {
	origin    string
	buffer    *client.Buffer
	connector *connector.Connector
	logger    *log.Logger

	mu        sync.Mutex
	watcher   *config.Watcher
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a producer from configuration. Discovery starts with Start.
func New(cfg *config.Config, logger *log.Logger) (*Logger, error) {
	policy, err := core.ParseFallback(cfg.Fallback)
	if err != nil {
		return nil, err
	}

	origin := discovery.NodeName(core.ClientRole) + "/" + uuid.NewString()[:8]
	dialTimeout := time.Duration(cfg.Discovery.DialTimeoutMS) * time.Millisecond

	buffer := client.New(client.Config{
		Enabled:  cfg.Enabled,
		Fallback: policy,
		Capacity: int(cfg.BufferSize),
	}, logger)

	linkCfg := transport.DefaultConfig(origin)
	linkCfg.Cookie = cfg.Cookie
	if dialTimeout > 0 {
		linkCfg.DialTimeout = dialTimeout
	}

	claims := discovery.New(cfg.Discovery.RegistryDir, cfg.Cluster, dialTimeout, logger)
	connCfg := connector.Config{
		Interval:    time.Duration(cfg.Discovery.IntervalMS) * time.Millisecond,
		DialTimeout: dialTimeout,
		Candidates:  discovery.Candidates(int(cfg.Discovery.Port)),
	}
	if cfg.Discovery.Watch {
		connCfg.WatchDir = claims.Dir()
	}

	dialer := connector.TransportDialer{Config: linkCfg, Logger: logger}

	return &Logger{
		origin:    origin,
		buffer:    buffer,
		connector: connector.New(connCfg, buffer, dialer, claims, logger),
		logger:    logger,
		closed:    make(chan struct{}),
	}, nil
}

// Start begins console discovery
func (l *Logger) Start(ctx context.Context) {
	l.connector.Start(ctx)
	l.logger.Debug("msg", "Producer started",
		"component", "devlog",
		"origin", l.origin)
}

// Close stops discovery and says goodbye to the console. Buffered entries that
// never reached a console are discarded.
func (l *Logger) Close() {
	l.closeOnce.Do(func() { close(l.closed) })

	l.mu.Lock()
	watcher := l.watcher
	l.mu.Unlock()
	if watcher != nil {
		watcher.Stop()
	}
	l.wg.Wait()

	l.connector.Stop()
}

// WatchConfig follows the config file at path and applies the live subset
// on every valid change until ctx ends or the producer is closed.
func (l *Logger) WatchConfig(ctx context.Context, path string, current *config.Config) error {
	seed := *current
	watcher, err := config.NewWatcher(path, &seed, l.logger)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.watcher != nil {
		l.mu.Unlock()
		return errors.New("config watch already running")
	}
	l.watcher = watcher
	l.mu.Unlock()

	watcher.Start(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.closed:
				return
			case cfg := <-watcher.Updates():
				if err := l.ApplyConfig(cfg); err != nil {
					l.logger.Warn("msg", "Ignoring reloaded producer configuration",
						"component", "devlog",
						"error", err)
					continue
				}
				l.logger.Debug("msg", "Producer configuration reloaded",
					"component", "devlog",
					"enabled", cfg.Enabled,
					"fallback", cfg.Fallback)
			}
		}
	}()
	return nil
}

// Origin returns the identity stamped on every entry
func (l *Logger) Origin() string {
	return l.origin
}

// On enables logging process-wide
func (l *Logger) On() {
	l.buffer.SetEnabled(true)
}

// Off disables logging; calls become no-ops
func (l *Logger) Off() {
	l.buffer.SetEnabled(false)
}

func (l *Logger) IsEnabled() bool {
	return l.buffer.Enabled()
}

// ApplyConfig applies the live subset of a reloaded configuration
func (l *Logger) ApplyConfig(cfg *config.Config) error {
	policy, err := core.ParseFallback(cfg.Fallback)
	if err != nil {
		return err
	}
	l.buffer.SetEnabled(cfg.Enabled)
	l.buffer.SetPolicy(policy)
	return nil
}

// Connected reports whether a console is currently linked
func (l *Logger) Connected() bool {
	return l.buffer.Connected()
}

// WaitConnected blocks until a console is linked or ctx ends
func (l *Logger) WaitConnected(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for !l.buffer.Connected() {
		select {
		case <-ctx.Done():
			return ErrConsoleNotFound
		case <-ticker.C:
		}
	}
	return nil
}

// Stats returns buffer and discovery counters
func (l *Logger) Stats() map[string]any {
	return map[string]any{
		"origin":    l.origin,
		"buffer":    l.buffer.Stats(),
		"discovery": l.connector.Stats(),
	}
}

// File points the console's file handler at path and enables it; an empty path disables it
func (l *Logger) File(path string) error {
	if path == "" {
		return l.DisableFile()
	}
	_, err := l.call(wire.OpConfigureFile, path)
	return err
}

func (l *Logger) DisableFile() error {
	_, err := l.call(wire.OpDisableFile, "")
	return err
}

// FilePath returns the console's active log file, "" when file logging is off
func (l *Logger) FilePath() (string, error) {
	result, err := l.call(wire.OpFilePath, "")
	if err != nil {
		return "", err
	}
	var path string
	if len(result) > 0 {
		if err := json.Unmarshal(result, &path); err != nil {
			return "", fmt.Errorf("invalid file path reply: %w", err)
		}
	}
	return path, nil
}

// Handlers lists the console's handlers
func (l *Logger) Handlers() (map[string]HandlerInfo, error) {
	result, err := l.call(wire.OpListHandlers, "")
	if err != nil {
		return nil, err
	}
	handlers := make(map[string]HandlerInfo)
	if len(result) > 0 {
		if err := json.Unmarshal(result, &handlers); err != nil {
			return nil, fmt.Errorf("invalid handler list reply: %w", err)
		}
	}
	return handlers, nil
}

func (l *Logger) EnableHandler(name string) error {
	_, err := l.call(wire.OpEnableHandler, name)
	return err
}

func (l *Logger) DisableHandler(name string) error {
	_, err := l.call(wire.OpDisableHandler, name)
	return err
}

func (l *Logger) call(op, arg string) (json.RawMessage, error) {
	peer := l.buffer.Peer()
	if peer == nil {
		return nil, ErrConsoleNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return peer.Call(ctx, op, arg)
}
