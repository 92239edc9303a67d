// FILE: devconsole/src/internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, validateConfig(cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "buffer", cfg.Fallback)
	assert.Equal(t, int64(1000), cfg.BufferSize)
	assert.Equal(t, int64(5000), cfg.Discovery.IntervalMS)
	assert.Equal(t, int64(10000), cfg.File.MaxEntries)
	assert.Equal(t, int64(10485760), cfg.File.MaxBytes)
	assert.Equal(t, int64(5), cfg.File.MaxBackups)
	assert.False(t, cfg.File.Enabled)
	assert.Empty(t, cfg.Handlers)
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), nil)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCluster, cfg.Cluster)
	assert.Equal(t, int64(core.DefaultConsolePort), cfg.Console.Port)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devconsole.toml")
	content := `
fallback = "silent"
buffer_size = 3
cluster = "team"

[file]
enabled = true
path = "/tmp/dev.log"
max_entries = 2

[[handlers]]
name = "errors"
type = "file"
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "silent", cfg.Fallback)
	assert.Equal(t, int64(3), cfg.BufferSize)
	assert.Equal(t, "team", cfg.Cluster)
	assert.True(t, cfg.File.Enabled)
	assert.Equal(t, "/tmp/dev.log", cfg.File.Path)
	assert.Equal(t, int64(2), cfg.File.MaxEntries)
	require.Len(t, cfg.Handlers, 1)
	assert.Equal(t, "errors", cfg.Handlers[0].Name)
	assert.False(t, cfg.Handlers[0].Enabled)
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "UnknownFallback", mutate: func(c *Config) { c.Fallback = "drop" }},
		{name: "ZeroBuffer", mutate: func(c *Config) { c.BufferSize = 0 }},
		{name: "ClusterTraversal", mutate: func(c *Config) { c.Cluster = "../etc" }},
		{name: "EmptyCluster", mutate: func(c *Config) { c.Cluster = "" }},
		{name: "BadLogLevel", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "ShortInterval", mutate: func(c *Config) { c.Discovery.IntervalMS = 10 }},
		{name: "BadPort", mutate: func(c *Config) { c.Console.Port = 70000 }},
		{name: "ControlPortConflict", mutate: func(c *Config) { c.Console.ControlPort = c.Console.Port }},
		{name: "BadFormat", mutate: func(c *Config) { c.Console.Format = "yaml" }},
		{name: "FileEnabledWithoutPath", mutate: func(c *Config) { c.File.Enabled = true }},
		{name: "NegativeBackups", mutate: func(c *Config) { c.File.MaxBackups = -1 }},
		{name: "ReservedHandlerName", mutate: func(c *Config) {
			c.Handlers = []HandlerConfig{{Name: "file", Type: "file"}}
		}},
		{name: "DuplicateHandler", mutate: func(c *Config) {
			c.Handlers = []HandlerConfig{{Name: "x", Type: "terminal"}, {Name: "x", Type: "terminal"}}
		}},
		{name: "HandlerWithoutType", mutate: func(c *Config) {
			c.Handlers = []HandlerConfig{{Name: "x"}}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	t.Run("FileEnabledWithoutPathIsNoPath", func(t *testing.T) {
		cfg := Defaults()
		cfg.File.Enabled = true
		assert.ErrorIs(t, validateConfig(cfg), core.ErrNoPathConfigured)
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("DEVCONSOLE_CONFIG_FILE", "")
	t.Setenv("DEVCONSOLE_CONFIG_DIR", "/etc/devconsole")
	assert.Equal(t, "/etc/devconsole/devconsole.toml", GetConfigPath())

	t.Setenv("DEVCONSOLE_CONFIG_FILE", "custom.toml")
	assert.Equal(t, "/etc/devconsole/custom.toml", GetConfigPath())

	t.Setenv("DEVCONSOLE_CONFIG_FILE", "/abs/dc.toml")
	assert.Equal(t, "/abs/dc.toml", GetConfigPath())
}

func TestFileOptions(t *testing.T) {
	opts := Defaults().File.Options()
	assert.Equal(t, "", opts["path"])
	assert.Equal(t, int64(core.DefaultMaxEntries), opts["max_entries"])
	assert.Equal(t, int64(core.DefaultMaxBackups), opts["max_backups"])
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "DEVCONSOLE_CONSOLE_CONTROL_PORT", customEnvTransform("console.control_port"))
}
