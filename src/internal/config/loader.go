// FILE: devconsole/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"devconsole/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

const envPrefix = "DEVCONSOLE_"

func defaults() *Config {
	return &Config{
		Enabled:    true,
		Fallback:   string(core.FallbackBuffer),
		BufferSize: core.DefaultBufferSize,
		Cluster:    core.DefaultCluster,
		Logging:    DefaultLogConfig(),
		Discovery: DiscoveryConfig{
			IntervalMS:    core.DefaultDiscoveryInterval.Milliseconds(),
			Port:          core.DefaultConsolePort,
			DialTimeoutMS: core.DefaultDialTimeout.Milliseconds(),
			Watch:         true,
		},
		Console: ConsoleConfig{
			Host:      "0.0.0.0",
			Port:      core.DefaultConsolePort,
			QueueSize: core.DefaultConsoleQueueSize,
			Format:    "txt",
		},
		File: FileConfig{
			MaxEntries: core.DefaultMaxEntries,
			MaxBytes:   core.DefaultMaxBytes,
			MaxBackups: core.DefaultMaxBackups,
			Format:     "txt",
		},
	}
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return defaults()
}

// Load reads the configuration from the resolved config path, environment and CLI args
func Load(cliArgs []string) (*Config, error) {
	return LoadFile(GetConfigPath(), cliArgs)
}

// LoadFile reads the configuration from an explicit path.
// A missing file is not an error; defaults, environment and args still apply.
func LoadFile(configPath string, cliArgs []string) (*Config, error) {
	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configPath).
		WithFileFormat("toml").
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan("", finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, validateConfig(finalConfig)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = envPrefix + env
	return env
}

// GetConfigPath resolves the config file from DEVCONSOLE_CONFIG_FILE, DEVCONSOLE_CONFIG_DIR
// or the user's config directory
func GetConfigPath() string {
	if configFile := os.Getenv("DEVCONSOLE_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("DEVCONSOLE_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("DEVCONSOLE_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "devconsole.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "devconsole.toml")
	}

	return "devconsole.toml"
}
