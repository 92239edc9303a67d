// FILE: devconsole/src/internal/config/logging.go
package config

// LogConfig is the console process's own diagnostic log, separate from the
// entries producers forward to it.
type LogConfig struct {
	Output  string           `toml:"output"` // file, stdout, stderr, both or none
	Level   string           `toml:"level"`  // debug, info, warn or error
	File    LogFileConfig    `toml:"file"`
	Console LogConsoleConfig `toml:"console"`
}

// LogFileConfig applies when Output is "file" or "both".
// Sizes are in megabytes; a zero retention keeps files indefinitely.
type LogFileConfig struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"`
}

// LogConsoleConfig selects the stream for terminal output. "split" sends
// debug and info to stdout, warn and error to stderr.
type LogConsoleConfig struct {
	Target string `toml:"target"`
	Format string `toml:"format"` // txt or json
}

func DefaultLogConfig() LogConfig {
	const week = 7 * 24

	return LogConfig{
		Output: "stderr",
		Level:  "info",
		File: LogFileConfig{
			Directory:      "./log",
			Name:           "devconsole",
			MaxSizeMB:      100,
			MaxTotalSizeMB: 1000,
			RetentionHours: week,
		},
		Console: LogConsoleConfig{Target: "stderr", Format: "txt"},
	}
}
