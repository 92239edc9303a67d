// FILE: devconsole/src/internal/registry/registry.go
package registry

import (
	"fmt"

	"devconsole/src/internal/core"
	"devconsole/src/internal/filter"
	"devconsole/src/internal/handler"

	"github.com/lixenwraith/log"
)

// Info is the externally visible snapshot of one registered handler
type Info struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

type slot struct {
	typ     string
	handler handler.Handler
	filter  *filter.Chain
}

// Registry owns the configured handlers by unique name and fans every entry
// out to the enabled ones. It is not safe for concurrent use: a single owner
// (the console's dispatch loop) serializes all calls.
type Registry struct {
	slots  map[string]*slot
	order  []string
	logger *log.Logger

	// Statistics
	totalDispatched uint64
	totalFailures   uint64
}

// New creates a registry holding only the implicit, disabled "file" handler
func New(logger *log.Logger) *Registry {
	r := &Registry{
		slots:  make(map[string]*slot),
		logger: logger,
	}

	// The default txt formatter cannot fail to build
	fh, _ := handler.NewFileHandler(nil, logger)
	r.put(core.FileHandlerName, "file", fh)
	return r
}

// Register initializes a handler of the given type from options and stores it
// under name, replacing (and terminating) any previous holder of the name.
// When autoEnable is set the handler is enabled immediately; an enable failure
// is logged and leaves the handler registered but disabled. The options
// "min_level" and "filters" restrict which entries reach the handler.
func (r *Registry) Register(name, typ string, options map[string]any, autoEnable bool) error {
	chain, err := filter.FromOptions(options, r.logger)
	if err != nil {
		return fmt.Errorf("handler '%s': %w", name, err)
	}
	h, err := handler.New(typ, options, r.logger)
	if err != nil {
		return fmt.Errorf("handler '%s': %w", name, err)
	}
	r.Add(name, typ, h, autoEnable)
	r.slots[name].filter = chain
	return nil
}

// Add stores an already initialized handler under name
func (r *Registry) Add(name, typ string, h handler.Handler, autoEnable bool) {
	if old, exists := r.slots[name]; exists {
		terminate(old.handler)
	}
	r.put(name, typ, h)

	r.logger.Debug("msg", "Handler registered",
		"component", "registry",
		"handler", name,
		"type", typ)

	if autoEnable {
		if err := h.Enable(); err != nil {
			r.logger.Warn("msg", "Failed to enable handler at registration",
				"component", "registry",
				"handler", name,
				"error", err)
		}
	}
}

func (r *Registry) put(name, typ string, h handler.Handler) {
	if _, exists := r.slots[name]; !exists {
		r.order = append(r.order, name)
	}
	r.slots[name] = &slot{typ: typ, handler: h}
}

// Dispatch hands the entry to every enabled handler in registration order.
// A handler that fails or panics is disabled; the others are unaffected.
func (r *Registry) Dispatch(entry core.LogEntry) {
	r.totalDispatched++
	for _, name := range r.order {
		s := r.slots[name]
		if !s.handler.Enabled() {
			continue
		}
		if s.filter != nil && !s.filter.Apply(entry) {
			continue
		}
		if err := safeHandle(s.handler, entry); err != nil {
			r.totalFailures++
			r.logger.Warn("msg", "Handler failed, disabling",
				"component", "registry",
				"handler", name,
				"type", s.typ,
				"error", err)
			s.handler.Disable()
		}
	}
}

// Enable enables the named handler
func (r *Registry) Enable(name string) error {
	s, ok := r.slots[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrHandlerNotFound, name)
	}
	if err := s.handler.Enable(); err != nil {
		return fmt.Errorf("enable handler '%s': %w", name, err)
	}
	return nil
}

// Disable disables the named handler; disabling a disabled handler is a no-op
func (r *Registry) Disable(name string) error {
	s, ok := r.slots[name]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrHandlerNotFound, name)
	}
	s.handler.Disable()
	return nil
}

// Get returns the handler registered under name
func (r *Registry) Get(name string) (handler.Handler, bool) {
	s, ok := r.slots[name]
	if !ok {
		return nil, false
	}
	return s.handler, true
}

// List returns a snapshot of name to type and enabled state
func (r *Registry) List() map[string]Info {
	out := make(map[string]Info, len(r.slots))
	for name, s := range r.slots {
		out[name] = Info{Type: s.typ, Enabled: s.handler.Enabled()}
	}
	return out
}

// Names returns the handler names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]any {
	stats := map[string]any{
		"handlers":         len(r.slots),
		"total_dispatched": r.totalDispatched,
		"total_failures":   r.totalFailures,
	}

	filters := make(map[string]any)
	for name, s := range r.slots {
		if s.filter != nil {
			filters[name] = s.filter.Stats()
		}
	}
	if len(filters) > 0 {
		stats["filters"] = filters
	}
	return stats
}

// Shutdown terminates every handler, falling back to Disable
func (r *Registry) Shutdown() {
	for _, name := range r.order {
		terminate(r.slots[name].handler)
	}
	r.logger.Debug("msg", "Registry shut down",
		"component", "registry",
		"handlers", len(r.order))
}

func terminate(h handler.Handler) {
	if t, ok := h.(handler.Terminator); ok {
		t.Terminate()
		return
	}
	h.Disable()
}

func safeHandle(h handler.Handler, entry core.LogEntry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h.Handle(entry)
}
