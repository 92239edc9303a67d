// FILE: devconsole/src/pkg/devlog/default.go
package devlog

import (
	"context"
	"os"
	"sync/atomic"

	"devconsole/src/internal/config"

	"github.com/lixenwraith/log"
)

var std atomic.Pointer[Logger]

// Init loads configuration the standard way and starts the package-level producer.
// With auto_reload set and a config file present, the file is watched for live changes.
func Init(ctx context.Context, args []string, logger *log.Logger) (*Logger, error) {
	path := config.GetConfigPath()
	cfg, err := config.LoadFile(path, args)
	if err != nil {
		return nil, err
	}
	l, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	l.Start(ctx)

	if cfg.AutoReload {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := l.WatchConfig(ctx, path, cfg); err != nil {
				logger.Warn("msg", "Config auto reload unavailable",
					"component", "devlog",
					"config_file", path,
					"error", err)
			}
		}
	}
	if old := std.Swap(l); old != nil {
		old.Close()
	}
	return l, nil
}

// SetDefault replaces the package-level producer
func SetDefault(l *Logger) {
	std.Store(l)
}

// Default returns the package-level producer, nil before Init or SetDefault
func Default() *Logger {
	return std.Load()
}

func Debug(msg string, keyvals ...any) {
	if l := std.Load(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if l := std.Load(); l != nil {
		l.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if l := std.Load(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if l := std.Load(); l != nil {
		l.Error(msg, keyvals...)
	}
}

func Group(ctx context.Context, name string, fn func(ctx context.Context)) {
	if l := std.Load(); l != nil {
		l.Group(ctx, name, fn)
		return
	}
	fn(ctx)
}

func Ping() {
	if l := std.Load(); l != nil {
		l.Ping()
	}
}

func IsEnabled() bool {
	l := std.Load()
	return l != nil && l.IsEnabled()
}

// Close stops the package-level producer
func Close() {
	if l := std.Swap(nil); l != nil {
		l.Close()
	}
}
