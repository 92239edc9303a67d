// FILE: devconsole/src/internal/config/saver.go
package config

import (
	"fmt"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// SaveToFile writes the configuration as TOML, replacing path atomically.
func (c *Config) SaveToFile(path string) error {
	if path == "" {
		return fmt.Errorf("save config: empty path")
	}

	// A missing target is expected here, config init creates it
	lcfg, err := lconfig.NewBuilder().
		WithTarget(c).
		WithFile(path).
		WithFileFormat("toml").
		Build()
	if err != nil && !strings.Contains(err.Error(), "not found") {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if lcfg == nil {
		return fmt.Errorf("save config %s: builder returned no config", path)
	}

	if err := lcfg.Save(path); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}
