// FILE: devconsole/src/cmd/devconsole/flags.go
package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"devconsole/src/internal/config"

	"github.com/lixenwraith/log"
)

// runFlags holds the command-line overrides of the run command
type runFlags struct {
	ConfigFile   string
	Quiet        bool
	AutoReload   bool
	NoStatus     bool
	LogOutput    string
	LogLevel     string
	LogConsole   string
	Host         string
	Port         int64
	ControlPort  int64
	FilePath     string
	Cluster      string
	ConfigArgs   []string
	controlIsSet bool
	portIsSet    bool
}

func parseRunFlags(args []string, errOut io.Writer) (*runFlags, error) {
	f := &runFlags{}

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)

	// General flags
	fs.StringVar(&f.ConfigFile, "config", "", "Config file path")
	fs.StringVar(&f.ConfigFile, "c", "", "Config file path")
	fs.BoolVar(&f.Quiet, "quiet", false, "Suppress all output")
	fs.BoolVar(&f.Quiet, "q", false, "Suppress all output")
	fs.BoolVar(&f.AutoReload, "config-auto-reload", false, "Re-apply config file changes while running")
	fs.BoolVar(&f.NoStatus, "disable-status-reporter", false, "Disable the periodic status reporter")

	// Logging flags
	fs.StringVar(&f.LogOutput, "log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&f.LogConsole, "log-console", "", "Console target: stdout, stderr, split (overrides config)")

	// Console flags
	fs.StringVar(&f.Host, "host", "", "Listen host (overrides config)")
	fs.Int64Var(&f.Port, "port", 0, "Listen port (overrides config)")
	fs.Int64Var(&f.ControlPort, "control-port", 0, "Control API port, 0 disables (overrides config)")
	fs.StringVar(&f.FilePath, "file", "", "Enable the file handler at this path")
	fs.StringVar(&f.Cluster, "cluster", "", "Cluster name (overrides config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			f.portIsSet = true
		case "control-port":
			f.controlIsSet = true
		}
	})

	// Remaining arguments are passed to the config loader as overrides
	f.ConfigArgs = fs.Args()

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *runFlags) validate() error {
	if f.LogOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[f.LogOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", f.LogOutput)
		}
	}

	if f.LogLevel != "" {
		if _, err := parseLogLevel(f.LogLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", f.LogLevel)
		}
	}

	if f.LogConsole != "" {
		validTargets := map[string]bool{
			"stdout": true, "stderr": true, "split": true,
		}
		if !validTargets[f.LogConsole] {
			return fmt.Errorf("invalid log-console: %s (valid: stdout, stderr, split)", f.LogConsole)
		}
	}

	return nil
}

// apply writes explicit flag values over the loaded configuration
func (f *runFlags) apply(cfg *config.Config) error {
	if f.LogOutput != "" {
		cfg.Logging.Output = f.LogOutput
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.LogConsole != "" {
		cfg.Logging.Console.Target = f.LogConsole
	}
	if f.Host != "" {
		cfg.Console.Host = f.Host
	}
	if f.portIsSet {
		cfg.Console.Port = f.Port
	}
	if f.controlIsSet {
		cfg.Console.ControlPort = f.ControlPort
	}
	if f.FilePath != "" {
		cfg.File.Enabled = true
		cfg.File.Path = f.FilePath
	}
	if f.Cluster != "" {
		cfg.Cluster = f.Cluster
	}

	return config.Validate(cfg)
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
