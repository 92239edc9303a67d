// FILE: devconsole/src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Chain gates the entries one handler sees: a minimum level followed by
// regex filters applied in order. Markers always pass.
type Chain struct {
	minLevel core.Level
	filters  []*Filter
	logger   *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalPassed    atomic.Uint64
}

// NewChain creates a chain from filter configurations
func NewChain(minLevel core.Level, configs []Config, logger *log.Logger) (*Chain, error) {
	chain := &Chain{
		minLevel: minLevel,
		filters:  make([]*Filter, 0, len(configs)),
		logger:   logger,
	}

	for i, cfg := range configs {
		f, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		chain.filters = append(chain.filters, f)
	}

	logger.Debug("msg", "Filter chain created",
		"component", "filter_chain",
		"min_level", minLevel,
		"filter_count", len(configs))
	return chain, nil
}

// FromOptions builds a chain from handler options "min_level" and "filters".
// It returns nil when neither is set.
func FromOptions(options map[string]any, logger *log.Logger) (*Chain, error) {
	rawLevel, hasLevel := options["min_level"].(string)
	rawFilters, hasFilters := options["filters"]
	if !hasLevel && !hasFilters {
		return nil, nil
	}

	minLevel := core.LevelDebug
	if hasLevel && rawLevel != "" {
		level, err := core.ParseLevel(rawLevel)
		if err != nil {
			return nil, fmt.Errorf("min_level: %w", err)
		}
		minLevel = level
	}

	configs, err := parseConfigs(rawFilters)
	if err != nil {
		return nil, err
	}
	return NewChain(minLevel, configs, logger)
}

// Apply reports whether the entry passes every stage of the chain
func (c *Chain) Apply(entry core.LogEntry) bool {
	c.totalProcessed.Add(1)

	if entry.IsMarker() {
		c.totalPassed.Add(1)
		return true
	}
	if entry.Level < c.minLevel {
		return false
	}

	for _, f := range c.filters {
		if !f.Apply(entry) {
			return false
		}
	}

	c.totalPassed.Add(1)
	return true
}

// Stats returns aggregated statistics for the chain
func (c *Chain) Stats() map[string]any {
	filterStats := make([]map[string]any, len(c.filters))
	for i, f := range c.filters {
		filterStats[i] = f.Stats()
	}

	return map[string]any{
		"min_level":       c.minLevel.String(),
		"filter_count":    len(c.filters),
		"total_processed": c.totalProcessed.Load(),
		"total_passed":    c.totalPassed.Load(),
		"filters":         filterStats,
	}
}

// parseConfigs accepts the shapes a TOML array of tables decodes into
func parseConfigs(raw any) ([]Config, error) {
	var tables []map[string]any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		tables = v
	case []any:
		for i, item := range v {
			table, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("filter[%d]: expected table, got %T", i, item)
			}
			tables = append(tables, table)
		}
	default:
		return nil, fmt.Errorf("filters: expected array of tables, got %T", raw)
	}

	configs := make([]Config, 0, len(tables))
	for i, table := range tables {
		cfg := Config{}
		if s, ok := table["type"].(string); ok {
			cfg.Type = Type(s)
		}
		if s, ok := table["logic"].(string); ok {
			cfg.Logic = Logic(s)
		}
		patterns, err := toStrings(table["patterns"])
		if err != nil {
			return nil, fmt.Errorf("filter[%d] patterns: %w", i, err)
		}
		cfg.Patterns = patterns
		configs = append(configs, cfg)
	}
	return configs, nil
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array of strings, got %T", raw)
	}
}
