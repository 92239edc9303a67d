// FILE: devconsole/src/internal/console/server.go
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"
	"devconsole/src/internal/discovery"
	"devconsole/src/internal/handler"
	"devconsole/src/internal/registry"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// bindRaceWait bounds how long a console that lost the port waits for the winner's claim
const bindRaceWait = time.Second

// ErrNotRunning is returned by runtime operations on a console that is not serving
var ErrNotRunning = errors.New("console is not running")

// Server is the console process: it claims the console role, accepts producer
// links and feeds every received entry into a handler registry. The registry is
// owned by a single dispatch goroutine; runtime operations are sent to it as closures.
type Server struct {
	cfg    *config.Config
	name   string
	logger *log.Logger

	claims *discovery.Registry
	claim  discovery.Record

	registry *registry.Registry // owned by dispatchLoop
	inbox    chan core.LogEntry
	ops      chan func(*registry.Registry)
	done     chan struct{}
	wg       sync.WaitGroup

	tcp     *tcpServer
	control *controlServer

	running      atomic.Bool
	shutdownOnce sync.Once

	// Statistics
	totalReceived atomic.Uint64
	totalDropped  atomic.Uint64
	startTime     time.Time
	dropWarn      rate.Sometimes
}

// New creates an idle console; nothing is claimed or opened until Start
func New(cfg *config.Config, logger *log.Logger) *Server {
	return &Server{
		cfg:    cfg,
		name:   discovery.NodeName(core.ConsoleRole),
		logger: logger,
		claims: discovery.New(cfg.Discovery.RegistryDir, cfg.Cluster,
			time.Duration(cfg.Discovery.DialTimeoutMS)*time.Millisecond, logger),
		inbox:    make(chan core.LogEntry, cfg.Console.QueueSize),
		ops:      make(chan func(*registry.Registry)),
		done:     make(chan struct{}),
		dropWarn: rate.Sometimes{Interval: time.Second},
	}
}

// Name returns the console's node name
func (s *Server) Name() string {
	return s.name
}

// Running reports whether this process won the console role and is serving
func (s *Server) Running() bool {
	return s.running.Load()
}

// awaitHolder polls the registry for a live console until wait elapses
func (s *Server) awaitHolder(ctx context.Context, wait time.Duration) (discovery.Record, bool) {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		if holder, err := s.claims.Lookup(core.ConsoleRole); err == nil && s.claims.Alive(holder) {
			return holder, true
		}
		select {
		case <-ctx.Done():
			return discovery.Record{}, false
		case <-deadline.C:
			return discovery.Record{}, false
		case <-ticker.C:
		}
	}
}

// Start runs the check-then-claim election and, when won, starts serving.
// Losing to a live console is not an error: Start returns nil and Running reports false.
func (s *Server) Start(ctx context.Context) error {
	if holder, err := s.claims.Lookup(core.ConsoleRole); err == nil && s.claims.Alive(holder) {
		s.logger.Info("msg", "Console role held by another process, staying idle",
			"component", "console",
			"holder", holder.Name,
			"holder_addr", holder.Addr,
			"holder_pid", holder.PID)
		return nil
	}

	// Listen before claiming so the claimed address is live for stale checks
	s.tcp = newTCPServer(s, s.cfg.Console.Host, s.cfg.Console.Port, s.logger)
	if err := s.tcp.start(); err != nil {
		s.tcp = nil
		// A concurrent winner binds first and claims shortly after
		if holder, ok := s.awaitHolder(ctx, bindRaceWait); ok {
			s.logger.Info("msg", "Console port taken by another console, staying idle",
				"component", "console",
				"holder", holder.Name,
				"holder_addr", holder.Addr,
				"bind_error", err)
			return nil
		}
		return fmt.Errorf("failed to start console listener: %w", err)
	}

	addr := discovery.AdvertiseAddr(s.cfg.Console.Host, int(s.cfg.Console.Port))
	claim, err := s.claims.Claim(core.ConsoleRole, addr)
	if err != nil {
		s.tcp.stop()
		s.tcp = nil
		if errors.Is(err, discovery.ErrAlreadyClaimed) {
			s.logger.Info("msg", "Another console registered first, staying idle",
				"component", "console",
				"holder", claim.Name,
				"holder_addr", claim.Addr)
			return nil
		}
		return fmt.Errorf("failed to claim console role: %w", err)
	}
	s.claim = claim

	s.registry = s.buildRegistry()
	s.startTime = time.Now()
	s.running.Store(true)

	s.wg.Add(1)
	go s.dispatchLoop()

	if s.cfg.Console.ControlPort > 0 {
		s.control = newControlServer(s, s.cfg.Console.Host, s.cfg.Console.ControlPort, s.logger)
		if err := s.control.start(ctx); err != nil {
			s.Shutdown()
			return fmt.Errorf("failed to start control API: %w", err)
		}
	}

	s.logger.Info("msg", "Console started",
		"component", "console",
		"name", s.name,
		"addr", addr,
		"cluster", s.cfg.Cluster,
		"registry", s.claims.RecordPath(core.ConsoleRole),
		"control_port", s.cfg.Console.ControlPort)

	return nil
}

// buildRegistry registers the configured handlers in order. The "file"
// handler comes from the [file] section; a terminal handler is added when no
// handlers are configured.
func (s *Server) buildRegistry() *registry.Registry {
	reg := registry.New(s.logger)

	if err := reg.Register(core.FileHandlerName, core.FileHandlerName, s.cfg.File.Options(), s.cfg.File.Enabled); err != nil {
		s.logger.Error("msg", "Failed to configure file handler",
			"component", "console",
			"error", err)
	}

	handlers := s.cfg.Handlers
	if len(handlers) == 0 {
		handlers = []config.HandlerConfig{{
			Name:    core.TerminalHandlerName,
			Type:    "terminal",
			Enabled: true,
			Options: map[string]any{"format": s.cfg.Console.Format},
		}}
	}

	for _, h := range handlers {
		if err := reg.Register(h.Name, h.Type, h.Options, h.Enabled); err != nil {
			s.logger.Error("msg", "Failed to register handler",
				"component", "console",
				"handler", h.Name,
				"type", h.Type,
				"error", err)
		}
	}

	return reg
}

// Receive queues an entry for dispatch without blocking.
// When the queue is full the entry is dropped and counted.
func (s *Server) Receive(entry core.LogEntry) {
	if !s.running.Load() {
		s.totalDropped.Add(1)
		return
	}

	s.totalReceived.Add(1)
	select {
	case s.inbox <- entry:
	default:
		dropped := s.totalDropped.Add(1)
		s.dropWarn.Do(func() {
			s.logger.Warn("msg", "Console queue full, dropping entries",
				"component", "console",
				"queue_size", cap(s.inbox),
				"total_dropped", dropped)
		})
	}
}

func (s *Server) dispatchLoop() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.inbox:
			s.registry.Dispatch(entry)

		case op := <-s.ops:
			op(s.registry)

		case <-s.done:
			s.drain()
			s.registry.Shutdown()
			return
		}
	}
}

// drain delivers what was accepted before shutdown
func (s *Server) drain() {
	for {
		select {
		case entry := <-s.inbox:
			s.registry.Dispatch(entry)
		default:
			return
		}
	}
}

// do runs fn on the dispatch goroutine and waits for it
func (s *Server) do(fn func(*registry.Registry)) error {
	if !s.running.Load() {
		return ErrNotRunning
	}

	finished := make(chan struct{})
	op := func(r *registry.Registry) {
		defer close(finished)
		fn(r)
	}

	select {
	case s.ops <- op:
	case <-s.done:
		return ErrNotRunning
	}
	<-finished
	return nil
}

// ListHandlers returns a snapshot of every registered handler
func (s *Server) ListHandlers() (map[string]registry.Info, error) {
	var list map[string]registry.Info
	err := s.do(func(r *registry.Registry) {
		list = r.List()
	})
	return list, err
}

// EnableHandler enables a registered handler by name
func (s *Server) EnableHandler(name string) error {
	var result error
	if err := s.do(func(r *registry.Registry) {
		result = r.Enable(name)
	}); err != nil {
		return err
	}
	return result
}

// DisableHandler disables a registered handler by name
func (s *Server) DisableHandler(name string) error {
	var result error
	if err := s.do(func(r *registry.Registry) {
		result = r.Disable(name)
	}); err != nil {
		return err
	}
	return result
}

// ConfigureFile points the file handler at path and enables it. The prior
// instance is disabled first; on failure the new handler stays registered but disabled.
func (s *Server) ConfigureFile(path string) error {
	if path == "" {
		return core.ErrNoPathConfigured
	}

	var result error
	if err := s.do(func(r *registry.Registry) {
		if prior, ok := r.Get(core.FileHandlerName); ok {
			prior.Disable()
		}

		opts := s.cfg.File.Options()
		opts["path"] = path
		fh, err := handler.NewFileHandler(opts, s.logger)
		if err != nil {
			result = err
			return
		}

		r.Add(core.FileHandlerName, core.FileHandlerName, fh, false)
		result = r.Enable(core.FileHandlerName)
	}); err != nil {
		return err
	}

	if result != nil {
		s.logger.Warn("msg", "File handler configuration failed",
			"component", "console",
			"path", path,
			"error", result)
		return result
	}

	s.logger.Info("msg", "File logging enabled",
		"component", "console",
		"path", path)
	return nil
}

// DisableFile disables the file handler, keeping its path
func (s *Server) DisableFile() error {
	return s.DisableHandler(core.FileHandlerName)
}

// GetFilePath returns the active log file path, or "" while file logging is disabled
func (s *Server) GetFilePath() (string, error) {
	var path string
	err := s.do(func(r *registry.Registry) {
		h, ok := r.Get(core.FileHandlerName)
		if !ok || !h.Enabled() {
			return
		}
		if fh, ok := h.(*handler.FileHandler); ok {
			path = fh.Path()
		}
	})
	return path, err
}

// ApplyFileConfig reconciles the file handler with a reloaded [file] section
func (s *Server) ApplyFileConfig(fc config.FileConfig) error {
	// The file section is read by ConfigureFile on the dispatch goroutine
	if err := s.do(func(*registry.Registry) {
		s.cfg.File = fc
	}); err != nil {
		return err
	}

	if !fc.Enabled {
		return s.DisableFile()
	}

	current, err := s.GetFilePath()
	if err != nil {
		return err
	}
	if current == fc.Path {
		return nil
	}
	return s.ConfigureFile(fc.Path)
}

// Stats returns console and registry statistics
func (s *Server) Stats() map[string]any {
	stats := map[string]any{
		"name":           s.name,
		"running":        s.running.Load(),
		"cluster":        s.cfg.Cluster,
		"total_received": s.totalReceived.Load(),
		"total_dropped":  s.totalDropped.Load(),
		"queue_length":   len(s.inbox),
		"queue_size":     cap(s.inbox),
	}
	if !s.running.Load() {
		return stats
	}

	stats["uptime_seconds"] = int(time.Since(s.startTime).Seconds())
	if s.tcp != nil {
		stats["active_connections"] = s.tcp.activeConns.Load()
		stats["invalid_frames"] = s.tcp.invalidFrames.Load()
	}
	s.do(func(r *registry.Registry) {
		stats["registry"] = r.Stats()
	})
	return stats
}

// Shutdown stops accepting links, drains the queue, terminates every handler
// and releases the console claim
func (s *Server) Shutdown() {
	if !s.running.Load() {
		return
	}

	s.shutdownOnce.Do(func() {
		s.logger.Info("msg", "Stopping console", "component", "console")

		if s.control != nil {
			s.control.stop()
		}
		if s.tcp != nil {
			s.tcp.stop()
		}

		s.running.Store(false)
		close(s.done)
		s.wg.Wait()

		if err := s.claims.Release(s.claim); err != nil {
			s.logger.Warn("msg", "Failed to release console claim",
				"component", "console",
				"error", err)
		}

		s.logger.Info("msg", "Console stopped",
			"component", "console",
			"total_received", s.totalReceived.Load(),
			"total_dropped", s.totalDropped.Load())
	})
}
