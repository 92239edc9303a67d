// FILE: devconsole/src/cmd/devconsole/bootstrap.go
package main

import (
	"context"
	"fmt"

	"devconsole/src/internal/config"
	"devconsole/src/internal/console"
	"devconsole/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

// bootstrapConsole starts the console role. A nil server with no error means
// another process already holds the role for the cluster.
func bootstrapConsole(ctx context.Context, cfg *config.Config) (*console.Server, error) {
	server := console.New(cfg, logger)
	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start console: %w", err)
	}

	if !server.Running() {
		logger.Info("msg", "Console role already held, nothing to do",
			"cluster", cfg.Cluster)
		return nil, nil
	}

	logger.Info("msg", "devconsole started",
		"version", version.Short(),
		"name", server.Name(),
		"cluster", cfg.Cluster)

	displayEndpoints(cfg)
	return server, nil
}

func displayEndpoints(cfg *config.Config) {
	Print("devconsole listening on %s:%d (cluster %q)\n", cfg.Console.Host, cfg.Console.Port, cfg.Cluster)
	if cfg.Console.ControlPort > 0 {
		Print("  control API: http://%s:%d/status\n", cfg.Console.Host, cfg.Console.ControlPort)
	}
	if cfg.File.Enabled {
		Print("  file: %s\n", cfg.File.Path)
	}
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config, quiet bool) error {
	logger = log.NewLogger()

	var configArgs []string

	if quiet {
		// In quiet mode, disable ALL logging output
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger.InitWithDefaults(configArgs...)
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	file := cfg.Logging.File
	*configArgs = append(*configArgs,
		fmt.Sprintf("directory=%s", file.Directory),
		fmt.Sprintf("name=%s", file.Name),
		fmt.Sprintf("max_size_mb=%d", file.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", file.MaxTotalSizeMB))

	if file.RetentionHours > 0 {
		*configArgs = append(*configArgs,
			fmt.Sprintf("retention_period_hrs=%.1f", file.RetentionHours))
	}
}

func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr"
	if cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	// Split mode routes info/debug to stdout and warn/error to stderr
	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}
