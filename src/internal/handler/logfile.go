// FILE: devconsole/src/internal/handler/logfile.go
package handler

import (
	"bytes"
	"fmt"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/lixenwraith/log"
)

// LogFileConfig holds configuration for the size-rotated log file handler
type LogFileConfig struct {
	Directory      string
	Name           string
	MaxSizeMB      int64
	MaxTotalSizeMB int64
	RetentionHours int64
	MinDiskFreeMB  int64
	Format         string
}

// LogFileHandler writes entries through a dedicated lixenwraith/log writer,
// which owns rotation by size, retention and disk-space checks.
// Unlike FileHandler it has no numbered backup chain.
type LogFileHandler struct {
	config    LogFileConfig
	writer    *log.Logger // Internal logger instance for file writing
	formatter format.Formatter
	logger    *log.Logger // Application logger

	totalWritten uint64
}

// NewLogFileHandler creates a disabled log file handler
func NewLogFileHandler(options map[string]any, logger *log.Logger) (*LogFileHandler, error) {
	cfg := LogFileConfig{
		Directory: "./",
		Name:      "devconsole.output",
		Format:    "txt",
	}

	if dir, ok := options["directory"].(string); ok && dir != "" {
		cfg.Directory = dir
	}
	if name, ok := options["name"].(string); ok && name != "" {
		cfg.Name = name
	}
	if v, ok := toInt64(options["max_size_mb"]); ok && v > 0 {
		cfg.MaxSizeMB = v
	}
	if v, ok := toInt64(options["max_total_size_mb"]); ok && v >= 0 {
		cfg.MaxTotalSizeMB = v
	}
	if v, ok := toInt64(options["retention_hours"]); ok && v > 0 {
		cfg.RetentionHours = v
	}
	if v, ok := toInt64(options["min_disk_free_mb"]); ok && v > 0 {
		cfg.MinDiskFreeMB = v
	}
	if f, ok := options["format"].(string); ok && f != "" {
		cfg.Format = f
	}

	formatter, err := format.New(cfg.Format, options, logger)
	if err != nil {
		return nil, fmt.Errorf("logfile handler: %w", err)
	}

	return &LogFileHandler{
		config:    cfg,
		formatter: formatter,
		logger:    logger,
	}, nil
}

// Enable starts a fresh internal writer
func (h *LogFileHandler) Enable() error {
	if h.writer != nil {
		return nil
	}

	writerConfig := log.DefaultConfig()
	writerConfig.Directory = h.config.Directory
	writerConfig.Name = h.config.Name
	writerConfig.EnableConsole = false // File only
	writerConfig.ShowTimestamp = false // Entries carry their own timestamps
	writerConfig.ShowLevel = false

	if h.config.MaxSizeMB > 0 {
		writerConfig.MaxSizeKB = h.config.MaxSizeMB * 1000
	}
	if h.config.MaxTotalSizeMB > 0 {
		writerConfig.MaxTotalSizeKB = h.config.MaxTotalSizeMB * 1000
	}
	if h.config.RetentionHours > 0 {
		writerConfig.RetentionPeriodHrs = float64(h.config.RetentionHours)
	}
	if h.config.MinDiskFreeMB > 0 {
		writerConfig.MinDiskFreeKB = h.config.MinDiskFreeMB * 1000
	}

	writer := log.NewLogger()
	if err := writer.ApplyConfig(writerConfig); err != nil {
		return fmt.Errorf("failed to initialize log file writer: %w", err)
	}
	if err := writer.Start(); err != nil {
		return fmt.Errorf("failed to start log file writer: %w", err)
	}

	h.writer = writer
	h.logger.Debug("msg", "Log file handler enabled",
		"component", "logfile_handler",
		"directory", h.config.Directory,
		"name", h.config.Name)
	return nil
}

// Disable flushes and stops the internal writer
func (h *LogFileHandler) Disable() {
	if h.writer == nil {
		return
	}
	if err := h.writer.Shutdown(2 * time.Second); err != nil {
		h.logger.Error("msg", "Error shutting down log file writer",
			"component", "logfile_handler",
			"error", err)
	}
	h.writer = nil
}

func (h *LogFileHandler) Enabled() bool {
	return h.writer != nil
}

// Handle formats the entry and hands it to the writer
func (h *LogFileHandler) Handle(entry core.LogEntry) error {
	if h.writer == nil {
		return fmt.Errorf("logfile handler is disabled")
	}

	formatted, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format entry: %w", err)
	}

	// The writer appends its own newline; a string keeps it from hex-encoding bytes
	h.writer.Message(string(bytes.TrimSuffix(formatted, []byte{'\n'})))
	h.totalWritten++
	return nil
}

// Stats returns handler counters
func (h *LogFileHandler) Stats() map[string]any {
	return map[string]any{
		"directory":     h.config.Directory,
		"name":          h.config.Name,
		"total_written": h.totalWritten,
	}
}
