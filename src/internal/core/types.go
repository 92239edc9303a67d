// FILE: devconsole/src/internal/core/types.go
package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the severity of a displayable entry
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel accepts the lowercase names plus "warning"
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Marker distinguishes structural entries from displayable payloads
type Marker string

const (
	MarkerNone       Marker = ""
	MarkerGroupStart Marker = "group_start"
	MarkerGroupEnd   Marker = "group_end"
	MarkerPing       Marker = "ping"
	MarkerHR         Marker = "hr"
)

// FallbackPolicy selects what a client does with entries while no console is reachable
type FallbackPolicy string

const (
	FallbackBuffer   FallbackPolicy = "buffer"
	FallbackLocalLog FallbackPolicy = "local_log"
	FallbackSilent   FallbackPolicy = "silent"
)

// ParseFallback also accepts the camel-case spelling "localLog"
func ParseFallback(s string) (FallbackPolicy, error) {
	switch s {
	case "", "buffer":
		return FallbackBuffer, nil
	case "local_log", "localLog", "local":
		return FallbackLocalLog, nil
	case "silent":
		return FallbackSilent, nil
	default:
		return FallbackBuffer, fmt.Errorf("unknown fallback policy: %s", s)
	}
}
