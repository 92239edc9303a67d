// FILE: devconsole/src/cmd/devconsole/reload.go
package main

import (
	"context"
	"sync"

	"devconsole/src/internal/config"
	"devconsole/src/internal/console"

	"github.com/lixenwraith/log"
)

// ReloadManager re-applies the live part of the configuration to a running
// console, either on file change or on SIGHUP.
type ReloadManager struct {
	configPath string
	configArgs []string
	flags      *runFlags
	server     *console.Server
	watcher    *config.Watcher
	logger     *log.Logger

	mu          sync.Mutex
	isReloading bool
}

func NewReloadManager(configPath string, flags *runFlags, server *console.Server, logger *log.Logger) *ReloadManager {
	return &ReloadManager{
		configPath: configPath,
		configArgs: flags.ConfigArgs,
		flags:      flags,
		server:     server,
		logger:     logger,
	}
}

// Watch follows file changes until ctx ends
func (rm *ReloadManager) Watch(ctx context.Context, current *config.Config) error {
	watcher, err := config.NewWatcher(rm.configPath, current, rm.logger)
	if err != nil {
		return err
	}
	rm.watcher = watcher
	watcher.Start(ctx)
	defer watcher.Stop()

	rm.logger.Info("msg", "Configuration hot reload enabled",
		"config_file", rm.configPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-watcher.Updates():
			rm.apply(cfg)
		}
	}
}

// triggerReload re-reads the config file on request
func (rm *ReloadManager) triggerReload() {
	rm.mu.Lock()
	if rm.isReloading {
		rm.mu.Unlock()
		rm.logger.Debug("msg", "Reload already in progress, skipping")
		return
	}
	rm.isReloading = true
	rm.mu.Unlock()

	defer func() {
		rm.mu.Lock()
		rm.isReloading = false
		rm.mu.Unlock()
	}()

	cfg, err := config.LoadFile(rm.configPath, rm.configArgs)
	if err != nil {
		rm.logger.Error("msg", "Failed to reload configuration",
			"config_file", rm.configPath,
			"error", err)
		return
	}
	if err := rm.flags.apply(cfg); err != nil {
		rm.logger.Error("msg", "Reloaded configuration is invalid",
			"error", err)
		return
	}
	rm.apply(cfg)
}

func (rm *ReloadManager) apply(cfg *config.Config) {
	if err := rm.server.ApplyFileConfig(cfg.File); err != nil {
		rm.logger.Error("msg", "Failed to apply file configuration",
			"path", cfg.File.Path,
			"error", err)
		return
	}
	rm.logger.Info("msg", "Configuration reloaded",
		"file_enabled", cfg.File.Enabled,
		"file_path", cfg.File.Path)
}
