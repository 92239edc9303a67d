// FILE: devconsole/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter produces one JSON object per entry.
type JSONFormatter struct {
	pretty bool
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
func NewJSONFormatter(options map[string]any, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		logger: logger,
	}
	if pretty, ok := options["pretty"].(bool); ok {
		f.pretty = pretty
	}
	return f, nil
}

// Format transforms a single LogEntry into a JSON byte slice.
func (f *JSONFormatter) Format(entry core.LogEntry) ([]byte, error) {
	output := map[string]any{
		"time":   entry.Time.Format(time.RFC3339Nano),
		"origin": entry.Origin,
	}

	if entry.IsMarker() {
		output["marker"] = string(entry.Marker)
		if entry.GroupName != "" {
			output["group"] = entry.GroupName
		}
		if entry.Marker == core.MarkerPing {
			output["message"] = entry.Message
		}
	} else {
		output["level"] = entry.Level.String()
		output["message"] = entry.Message
	}
	if entry.GroupDepth > 0 {
		output["depth"] = entry.GroupDepth
	}

	// Ordered metadata is flattened; standard keys are never overwritten
	for _, field := range entry.Fields {
		if _, exists := output[field.Key]; !exists {
			output[field.Key] = field.Value
		}
	}

	var result []byte
	var err error
	if f.pretty {
		result, err = json.MarshalIndent(output, "", "  ")
	} else {
		result, err = json.Marshal(output)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}
