// FILE: devconsole/src/internal/config/validation.go
package config

import (
	"fmt"
	"strings"

	"devconsole/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

// Validate checks a configuration assembled or modified outside the loader
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// validateConfig is the centralized validator for the entire configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := core.ParseFallback(cfg.Fallback); err != nil {
		return err
	}
	if cfg.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive: %d", cfg.BufferSize)
	}

	if err := lconfig.NonEmpty(cfg.Cluster); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	if strings.ContainsAny(cfg.Cluster, `/\`) || strings.Contains(cfg.Cluster, "..") {
		return fmt.Errorf("cluster name must not contain path elements: %s", cfg.Cluster)
	}

	if err := validateLogConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := validateDiscovery(&cfg.Discovery); err != nil {
		return fmt.Errorf("discovery config: %w", err)
	}
	if err := validateConsole(&cfg.Console); err != nil {
		return fmt.Errorf("console config: %w", err)
	}
	if err := validateFile(&cfg.File); err != nil {
		return fmt.Errorf("file config: %w", err)
	}

	names := make(map[string]bool)
	for i, h := range cfg.Handlers {
		if err := validateHandler(i, &h, names); err != nil {
			return err
		}
	}

	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"file": true, "stdout": true, "stderr": true,
		"both": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	validTargets := map[string]bool{
		"stdout": true, "stderr": true, "split": true, "": true,
	}
	if !validTargets[cfg.Console.Target] {
		return fmt.Errorf("invalid console target: %s", cfg.Console.Target)
	}

	validFormats := map[string]bool{
		"txt": true, "json": true, "": true,
	}
	if !validFormats[cfg.Console.Format] {
		return fmt.Errorf("invalid console format: %s", cfg.Console.Format)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := lconfig.NonEmpty(cfg.File.Directory); err != nil {
			return fmt.Errorf("file.directory: %w", err)
		}
		if err := lconfig.NonEmpty(cfg.File.Name); err != nil {
			return fmt.Errorf("file.name: %w", err)
		}
	}

	return nil
}

func validateDiscovery(cfg *DiscoveryConfig) error {
	if cfg.IntervalMS < 100 {
		return fmt.Errorf("interval_ms too small: %d ms", cfg.IntervalMS)
	}
	if err := lconfig.Port(cfg.Port); err != nil {
		return err
	}
	if cfg.DialTimeoutMS <= 0 {
		return fmt.Errorf("dial_timeout_ms must be positive: %d", cfg.DialTimeoutMS)
	}
	return nil
}

func validateConsole(cfg *ConsoleConfig) error {
	if err := lconfig.Port(cfg.Port); err != nil {
		return err
	}

	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Host != "0.0.0.0" && cfg.Host != "localhost" {
		if err := lconfig.IPAddress(cfg.Host); err != nil {
			return err
		}
	}

	if cfg.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive: %d", cfg.QueueSize)
	}

	if cfg.ControlPort != 0 {
		if err := lconfig.Port(cfg.ControlPort); err != nil {
			return fmt.Errorf("control_port: %w", err)
		}
		if cfg.ControlPort == cfg.Port {
			return fmt.Errorf("control_port %d conflicts with port", cfg.ControlPort)
		}
	}

	switch cfg.Format {
	case "", "txt", "json", "raw":
	default:
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}

	return nil
}

func validateFile(cfg *FileConfig) error {
	if cfg.MaxEntries < 1 {
		return fmt.Errorf("max_entries must be positive: %d", cfg.MaxEntries)
	}
	if cfg.MaxBytes < 1 {
		return fmt.Errorf("max_bytes must be positive: %d", cfg.MaxBytes)
	}
	if cfg.MaxBackups < 0 {
		return fmt.Errorf("max_backups must not be negative: %d", cfg.MaxBackups)
	}
	if cfg.Enabled && cfg.Path == "" {
		return fmt.Errorf("enabled without a path: %w", core.ErrNoPathConfigured)
	}
	return nil
}

func validateHandler(index int, h *HandlerConfig, names map[string]bool) error {
	if err := lconfig.NonEmpty(h.Name); err != nil {
		return fmt.Errorf("handler[%d]: missing name", index)
	}
	if err := lconfig.NonEmpty(h.Type); err != nil {
		return fmt.Errorf("handler '%s': missing type", h.Name)
	}
	if h.Name == core.FileHandlerName {
		return fmt.Errorf("handler '%s': name is reserved, configure it in the [file] section", h.Name)
	}
	if names[h.Name] {
		return fmt.Errorf("handler '%s': duplicate name", h.Name)
	}
	names[h.Name] = true
	return nil
}
