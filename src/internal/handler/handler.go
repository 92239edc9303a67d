// FILE: devconsole/src/internal/handler/handler.go
package handler

import (
	"fmt"
	"sort"
	"sync"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Handler is a pluggable output sink with an explicit lifecycle.
// Handle is only called while Enabled reports true. After Handle returns an
// error the owner disables the handler and never calls it again until it is
// explicitly re-enabled.
type Handler interface {
	// Enable acquires the handler's resources
	Enable() error

	// Disable releases resources; internal failures are logged, never returned
	Disable()

	// Handle writes one entry; markers are valid input and must not fail
	Handle(entry core.LogEntry) error

	// Enabled reports whether the handler currently accepts entries
	Enabled() bool
}

// Terminator is implemented by handlers that need more than Disable at shutdown
type Terminator interface {
	Terminate()
}

// Factory initializes a handler from its options; the handler starts disabled
type Factory func(options map[string]any, logger *log.Logger) (Handler, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		"file": func(options map[string]any, logger *log.Logger) (Handler, error) {
			return NewFileHandler(options, logger)
		},
		"terminal": func(options map[string]any, logger *log.Logger) (Handler, error) {
			return NewTerminalHandler(options, logger)
		},
		"logfile": func(options map[string]any, logger *log.Logger) (Handler, error) {
			return NewLogFileHandler(options, logger)
		},
	}
)

// Register adds or replaces a handler implementation under the given type name
func Register(typ string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[typ] = factory
}

// New builds a handler of the given type
func New(typ string, options map[string]any, logger *log.Logger) (Handler, error) {
	factoriesMu.RLock()
	factory, ok := factories[typ]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown handler type: %s", typ)
	}
	return factory(options, logger)
}

// Types returns the registered handler type names, sorted
func Types() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]string, 0, len(factories))
	for typ := range factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Helper functions for option type conversion
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
