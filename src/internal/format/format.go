// FILE: devconsole/src/internal/format/format.go
package format

import (
	"fmt"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a LogEntry into a byte slice.
type Formatter interface {
	// Format takes a LogEntry and returns the formatted log as a byte slice.
	Format(entry core.LogEntry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a new Formatter based on the provided name and options.
func New(name string, options map[string]any, logger *log.Logger) (Formatter, error) {
	// Default to txt, the human-readable console output
	if name == "" {
		name = "txt"
	}

	switch name {
	case "json":
		return NewJSONFormatter(options, logger)
	case "txt", "text":
		return NewTxtFormatter(options, logger)
	case "raw":
		return NewRawFormatter(options, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
