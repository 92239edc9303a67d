// FILE: devconsole/src/cmd/devconsole/run.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/internal/version"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// runCommand runs the console role; it is the default when no command is given
type runCommand struct{}

func newRunCommand() *runCommand {
	return &runCommand{}
}

func (c *runCommand) Execute(args []string) error {
	flags, err := parseRunFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	setQuiet(flags.Quiet)

	if flags.ConfigFile != "" {
		os.Setenv("DEVCONSOLE_CONFIG_FILE", flags.ConfigFile)
	}
	configPath := config.GetConfigPath()

	cfg, err := config.LoadFile(configPath, flags.ConfigArgs)
	if err != nil {
		if flags.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("config file not found: %s", flags.ConfigFile)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := flags.apply(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := initializeLogger(cfg, flags.Quiet); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "devconsole starting",
		"version", version.String(),
		"config_file", configPath,
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := bootstrapConsole(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap console", "error", err)
		return err
	}
	if server == nil {
		Print("A console is already running for cluster %q\n", cfg.Cluster)
		return nil
	}

	reloads := NewReloadManager(configPath, flags, server, logger)
	signals := newSignalHandler(reloads.triggerReload, logger)
	defer signals.stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sig := signals.wait(gctx)
		if sig != nil {
			logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
				"signal", sig)
		}
		cancel()
		return nil
	})

	if !flags.NoStatus && os.Getenv("DEVCONSOLE_DISABLE_STATUS_REPORTER") != "1" {
		g.Go(func() error {
			statusReporter(gctx, server)
			return nil
		})
	}

	if flags.AutoReload {
		g.Go(func() error {
			if err := reloads.Watch(gctx, cfg); err != nil {
				logger.Warn("msg", "Configuration hot reload unavailable",
					"config_file", configPath,
					"error", err)
			}
			return nil
		})
	}

	<-gctx.Done()

	// Console shutdown drains the queue, so it gets a bound of its own
	done := make(chan struct{})
	go func() {
		server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		return fmt.Errorf("shutdown timed out after %s", shutdownTimeout)
	}

	return g.Wait()
}

func (c *runCommand) Description() string {
	return "Run the console for this cluster (default)"
}

func (c *runCommand) Help() string {
	return `Run Command - Run the devconsole console

Usage:
  devconsole [run] [options] [-- config overrides]

Options:
  -c, --config <path>        Path to configuration file
  -q, --quiet                Suppress all output
  --config-auto-reload       Re-apply file handler settings on config change
  --disable-status-reporter  Disable the periodic status reporter
  --log-output <mode>        file, stdout, stderr, both, none
  --log-level <level>        debug, info, warn, error
  --log-console <target>     stdout, stderr, split
  --host <host>              Listen host
  --port <port>              Listen port
  --control-port <port>      Control API port (0 disables)
  --file <path>              Enable the file handler at this path
  --cluster <name>           Cluster name

Only one console runs per cluster. A second 'devconsole run' finds the
running console and exits without error.

Signals:
  SIGINT, SIGTERM   Graceful shutdown
  SIGHUP            Re-read the config file
`
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
