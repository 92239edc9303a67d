// FILE: devconsole/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Type selects whether matching entries are kept or dropped
type Type string

const (
	TypeInclude Type = "include"
	TypeExclude Type = "exclude"
)

// Logic combines multiple patterns
type Logic string

const (
	LogicOr  Logic = "or"
	LogicAnd Logic = "and"
)

// Config describes one regex filter
type Config struct {
	Type     Type
	Logic    Logic
	Patterns []string
}

// Filter applies regex-based filtering to log entries
type Filter struct {
	config   Config
	patterns []*regexp.Regexp
	logger   *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalMatched   atomic.Uint64
	totalDropped   atomic.Uint64
}

// NewFilter compiles a filter; type defaults to include and logic to or
func NewFilter(cfg Config, logger *log.Logger) (*Filter, error) {
	if cfg.Type == "" {
		cfg.Type = TypeInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = LogicOr
	}

	switch cfg.Type {
	case TypeInclude, TypeExclude:
	default:
		return nil, fmt.Errorf("invalid filter type: %s", cfg.Type)
	}
	switch cfg.Logic {
	case LogicOr, LogicAnd:
	default:
		return nil, fmt.Errorf("invalid filter logic: %s", cfg.Logic)
	}

	f := &Filter{
		config:   cfg,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)),
		logger:   logger,
	}

	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		f.patterns = append(f.patterns, re)
	}

	return f, nil
}

// Apply reports whether the entry passes. Patterns are matched against
// "<origin> <level> <message>".
func (f *Filter) Apply(entry core.LogEntry) bool {
	f.totalProcessed.Add(1)

	if len(f.patterns) == 0 {
		return true
	}

	text := entry.Origin + " " + entry.Level.String() + " " + entry.Message

	matched := f.matches(text)
	if matched {
		f.totalMatched.Add(1)
	}

	pass := matched
	if f.config.Type == TypeExclude {
		pass = !matched
	}
	if !pass {
		f.totalDropped.Add(1)
	}
	return pass
}

func (f *Filter) matches(text string) bool {
	if f.config.Logic == LogicAnd {
		for _, re := range f.patterns {
			if !re.MatchString(text) {
				return false
			}
		}
		return true
	}

	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Stats returns filter statistics
func (f *Filter) Stats() map[string]any {
	return map[string]any{
		"type":            f.config.Type,
		"logic":           f.config.Logic,
		"pattern_count":   len(f.patterns),
		"total_processed": f.totalProcessed.Load(),
		"total_matched":   f.totalMatched.Load(),
		"total_dropped":   f.totalDropped.Load(),
	}
}
