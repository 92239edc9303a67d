// FILE: devconsole/src/internal/core/entry.go
package core

import (
	"fmt"
	"time"
)

// Represents a single log record or control marker flowing through the pipeline
type LogEntry struct {
	Time       time.Time `json:"time"`
	Origin     string    `json:"origin"`
	Level      Level     `json:"level"`
	Message    string    `json:"message"`
	Fields     []Field   `json:"fields,omitempty"`
	GroupDepth int       `json:"group_depth,omitempty"`
	GroupName  string    `json:"group_name,omitempty"`
	Marker     Marker    `json:"marker,omitempty"`
}

// Field is one ordered metadata pair; values are opaque
type Field struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// NewEntry builds a displayable entry stamped with the current time at microsecond resolution.
func NewEntry(origin string, level Level, message string, fields ...Field) LogEntry {
	return LogEntry{
		Time:    Now(),
		Origin:  origin,
		Level:   level,
		Message: message,
		Fields:  fields,
	}
}

// NewMarker builds a structural entry; markers carry no level or metadata payload.
func NewMarker(origin string, marker Marker, depth int, name string) LogEntry {
	return LogEntry{
		Time:       Now(),
		Origin:     origin,
		Message:    name,
		GroupDepth: depth,
		GroupName:  name,
		Marker:     marker,
	}
}

// Now returns the wall clock truncated to microseconds, stripped of the monotonic reading
func Now() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// IsMarker reports whether the entry is a control marker rather than a payload
func (e LogEntry) IsMarker() bool {
	return e.Marker != MarkerNone
}

// KV converts alternating key/value arguments into ordered fields.
// A trailing key without value is kept with a nil value.
func KV(keyvals ...any) []Field {
	if len(keyvals) == 0 {
		return nil
	}
	fields := make([]Field, 0, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		var value any
		if i+1 < len(keyvals) {
			value = keyvals[i+1]
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields
}
