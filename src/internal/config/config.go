// FILE: devconsole/src/internal/config/config.go
package config

// Config is the full devconsole configuration shared by producers and the console
type Config struct {
	// Global kill switch, re-read live by producers
	Enabled bool `toml:"enabled"`

	// Fallback policy while no console is reachable: "buffer", "local_log", "silent"
	Fallback string `toml:"fallback"`

	// Capacity of the disconnected buffer
	BufferSize int64 `toml:"buffer_size"`

	// Registry namespace; producers only find a console of the same cluster
	Cluster string `toml:"cluster"`

	// Pre-shared secret gating which processes may link; empty disables the check
	Cookie string `toml:"cookie"`

	// Producers follow config file changes to enabled and fallback
	AutoReload bool `toml:"auto_reload"`

	Logging   LogConfig       `toml:"logging"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Console   ConsoleConfig   `toml:"console"`
	File      FileConfig      `toml:"file"`

	// Ordered handler list; the console registers them in this order
	Handlers []HandlerConfig `toml:"handlers"`
}

// DiscoveryConfig controls how producers locate the console
type DiscoveryConfig struct {
	// Shared process registry directory, default <tmp>/devconsole
	RegistryDir string `toml:"registry_dir"`

	// Retry interval between discovery attempts
	IntervalMS int64 `toml:"interval_ms"`

	// Port tried on the well-known candidate hosts
	Port int64 `toml:"port"`

	// Bound on a single link attempt
	DialTimeoutMS int64 `toml:"dial_timeout_ms"`

	// Watch the registry directory for a new console claim
	Watch bool `toml:"watch"`
}

// ConsoleConfig controls the console process
type ConsoleConfig struct {
	Host      string `toml:"host"`
	Port      int64  `toml:"port"`
	QueueSize int64  `toml:"queue_size"`

	// Control API port, 0 disables it
	ControlPort int64 `toml:"control_port"`

	// Formatter for the default terminal handler: "txt", "json", "raw"
	Format string `toml:"format"`
}

// FileConfig configures the always-present "file" handler
type FileConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int64  `toml:"max_entries"`
	MaxBytes   int64  `toml:"max_bytes"`
	MaxBackups int64  `toml:"max_backups"`
	Format     string `toml:"format"`
}

// HandlerConfig declares one named handler
type HandlerConfig struct {
	// Unique name used by runtime enable/disable
	Name string `toml:"name"`

	// Implementation: "terminal", "file", "logfile" or a registered custom type
	Type string `toml:"type"`

	// Enable at registration
	Enabled bool `toml:"enabled"`

	// Type-specific configuration options
	Options map[string]any `toml:"options"`
}

// Options returns the file section as handler options
func (f FileConfig) Options() map[string]any {
	return map[string]any{
		"path":        f.Path,
		"max_entries": f.MaxEntries,
		"max_bytes":   f.MaxBytes,
		"max_backups": f.MaxBackups,
		"format":      f.Format,
	}
}
