// FILE: devconsole/src/internal/config/watcher.go
package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lconfig "github.com/lixenwraith/config"
	"github.com/lixenwraith/log"
)

// Watcher publishes validated configurations when the config file changes
type Watcher struct {
	path    string
	lcfg    *lconfig.Config
	logger  *log.Logger
	updates chan *Config
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewWatcher prepares a watcher for path seeded with the current configuration
func NewWatcher(path string, current *Config, logger *log.Logger) (*Watcher, error) {
	lcfg, err := lconfig.NewBuilder().
		WithFile(path).
		WithTarget(current).
		WithFileFormat("toml").
		WithSecurityOptions(lconfig.SecurityOptions{
			PreventPathTraversal: true,
			MaxFileSize:          10 * 1024 * 1024,
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	return &Watcher{
		path:    path,
		lcfg:    lcfg,
		logger:  logger,
		updates: make(chan *Config, 1),
		done:    make(chan struct{}),
	}, nil
}

// Updates delivers the latest valid configuration; intermediate versions may be skipped
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start begins polling the file
func (w *Watcher) Start(ctx context.Context) {
	w.lcfg.AutoUpdateWithOptions(lconfig.WatchOptions{
		PollInterval:      time.Second,
		Debounce:          500 * time.Millisecond,
		ReloadTimeout:     10 * time.Second,
		VerifyPermissions: true,
	})

	w.wg.Add(1)
	go w.watchLoop(ctx)

	w.logger.Info("msg", "Configuration watch enabled",
		"component", "config",
		"config_file", w.path)
}

// Stop ends polling; Updates is not closed
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.lcfg.StopAutoUpdate()
	})
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	changeCh := w.lcfg.Watch()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case changedPath, ok := <-changeCh:
			if !ok {
				return
			}

			switch changedPath {
			case "file_deleted":
				w.logger.Warn("msg", "Configuration file deleted",
					"component", "config",
					"action", "keeping current configuration")
				continue
			case "permissions_changed":
				w.logger.Error("msg", "Configuration file permissions changed",
					"component", "config",
					"action", "reload blocked")
				continue
			case "reload_timeout":
				w.logger.Error("msg", "Configuration reload timed out",
					"component", "config",
					"action", "keeping current configuration")
				continue
			default:
				if strings.HasPrefix(changedPath, "reload_error:") {
					w.logger.Error("msg", "Configuration reload error",
						"component", "config",
						"error", strings.TrimPrefix(changedPath, "reload_error:"),
						"action", "keeping current configuration")
					continue
				}
			}

			w.publish(changedPath)
		}
	}
}

func (w *Watcher) publish(changedPath string) {
	updated, err := w.lcfg.AsStruct()
	if err != nil {
		w.logger.Error("msg", "Failed to read updated configuration",
			"component", "config",
			"error", err)
		return
	}

	cfg, ok := updated.(*Config)
	if !ok {
		return
	}
	snapshot := *cfg
	if err := validateConfig(&snapshot); err != nil {
		w.logger.Error("msg", "Updated configuration is invalid",
			"component", "config",
			"changed", changedPath,
			"error", err,
			"action", "keeping current configuration")
		return
	}

	// Replace an unconsumed older snapshot
	select {
	case <-w.updates:
	default:
	}
	w.updates <- &snapshot

	w.logger.Debug("msg", "Configuration changed",
		"component", "config",
		"changed", changedPath)
}
