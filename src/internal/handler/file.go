// FILE: devconsole/src/internal/handler/file.go
package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/lixenwraith/log"
)

// FileConfig holds the file handler's path and rotation thresholds
type FileConfig struct {
	Path       string
	MaxEntries int64
	MaxBytes   int64
	MaxBackups int
	Format     string
}

// DefaultFileConfig returns the thresholds used when options omit them
func DefaultFileConfig() FileConfig {
	return FileConfig{
		MaxEntries: core.DefaultMaxEntries,
		MaxBytes:   core.DefaultMaxBytes,
		MaxBackups: core.DefaultMaxBackups,
		Format:     "txt",
	}
}

// FileHandler appends formatted entries to a file and rotates it into a
// numbered backup chain (path.1 is the newest backup) by entry count or size.
// The file is open if and only if the handler is enabled.
type FileHandler struct {
	config    FileConfig
	formatter format.Formatter
	logger    *log.Logger

	file       *os.File
	entryCount int64
	byteCount  int64

	// The entry that reaches a threshold stays in the current file; the
	// rename happens when the next entry arrives.
	rotatePending bool

	// Statistics
	totalWritten   uint64
	totalRotations uint64
	lastRotation   time.Time
}

// NewFileHandler creates a disabled file handler from configuration options
func NewFileHandler(options map[string]any, logger *log.Logger) (*FileHandler, error) {
	cfg := DefaultFileConfig()

	if path, ok := options["path"].(string); ok {
		cfg.Path = path
	}
	if maxEntries, ok := toInt64(options["max_entries"]); ok && maxEntries > 0 {
		cfg.MaxEntries = maxEntries
	}
	if maxBytes, ok := toInt64(options["max_bytes"]); ok && maxBytes > 0 {
		cfg.MaxBytes = maxBytes
	}
	if maxBackups, ok := toInt64(options["max_backups"]); ok && maxBackups >= 0 {
		cfg.MaxBackups = int(maxBackups)
	}
	if f, ok := options["format"].(string); ok && f != "" {
		cfg.Format = f
	}

	formatter, err := format.New(cfg.Format, options, logger)
	if err != nil {
		return nil, fmt.Errorf("file handler: %w", err)
	}

	return NewFileHandlerWithConfig(cfg, formatter, logger), nil
}

// NewFileHandlerWithConfig creates a disabled file handler from a typed config
func NewFileHandlerWithConfig(cfg FileConfig, formatter format.Formatter, logger *log.Logger) *FileHandler {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = core.DefaultMaxEntries
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = core.DefaultMaxBytes
	}
	if cfg.MaxBackups < 0 {
		cfg.MaxBackups = 0
	}
	return &FileHandler{
		config:    cfg,
		formatter: formatter,
		logger:    logger,
	}
}

// Enable opens the configured path in append mode and resets the counters
func (h *FileHandler) Enable() error {
	if h.config.Path == "" {
		return core.ErrNoPathConfigured
	}
	if h.file != nil {
		return nil
	}

	if err := h.open(); err != nil {
		return err
	}

	h.entryCount = 0
	h.byteCount = 0
	h.rotatePending = false

	h.logger.Info("msg", "File handler enabled",
		"component", "file_handler",
		"path", h.config.Path)
	return nil
}

// Disable closes the file; counters are left untouched
func (h *FileHandler) Disable() {
	if h.file == nil {
		return
	}
	if err := h.file.Close(); err != nil {
		h.logger.Warn("msg", "Failed to close log file",
			"component", "file_handler",
			"path", h.config.Path,
			"error", err)
	}
	h.file = nil

	h.logger.Info("msg", "File handler disabled",
		"component", "file_handler",
		"path", h.config.Path)
}

func (h *FileHandler) Enabled() bool {
	return h.file != nil
}

// Handle writes the formatted entry then evaluates the rotation thresholds.
// A rotation failure is returned after the entry has been written.
func (h *FileHandler) Handle(entry core.LogEntry) error {
	if h.file == nil {
		return fmt.Errorf("file handler not enabled")
	}

	var rotateErr error
	if h.rotatePending {
		rotateErr = h.rotate()
		if h.file == nil {
			return rotateErr
		}
	}

	data, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format entry: %w", err)
	}

	n, err := h.file.Write(data)
	h.entryCount++
	h.byteCount += int64(n)
	h.totalWritten++
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", h.config.Path, err)
	}

	if h.entryCount >= h.config.MaxEntries || h.byteCount >= h.config.MaxBytes {
		h.rotatePending = true
	}

	return rotateErr
}

// Terminate closes the file; a pending rotation is discarded
func (h *FileHandler) Terminate() {
	h.rotatePending = false
	h.Disable()
}

// Path returns the configured file path
func (h *FileHandler) Path() string {
	return h.config.Path
}

// Counts returns the entries and bytes written since the last open or rotation
func (h *FileHandler) Counts() (entries, bytes int64) {
	return h.entryCount, h.byteCount
}

// Stats returns handler statistics
func (h *FileHandler) Stats() map[string]any {
	return map[string]any{
		"path":            h.config.Path,
		"enabled":         h.file != nil,
		"entry_count":     h.entryCount,
		"byte_count":      h.byteCount,
		"total_written":   h.totalWritten,
		"total_rotations": h.totalRotations,
		"last_rotation":   h.lastRotation,
	}
}

func (h *FileHandler) open() error {
	if dir := filepath.Dir(h.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(h.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	h.file = file
	return nil
}

// rotate closes the current file, shifts the backup chain from the highest
// index down, moves the current file to path.1 and opens a fresh file.
// On failure it reopens the original path so the handler stays writable.
func (h *FileHandler) rotate() error {
	h.rotatePending = false

	if err := h.file.Close(); err != nil {
		h.logger.Warn("msg", "Failed to close log file before rotation",
			"component", "file_handler",
			"path", h.config.Path,
			"error", err)
	}
	h.file = nil

	if err := h.shiftBackups(); err != nil {
		return h.recover(err)
	}

	if err := h.open(); err != nil {
		return h.recover(err)
	}

	h.entryCount = 0
	h.byteCount = 0
	h.totalRotations++
	h.lastRotation = time.Now()

	h.logger.Debug("msg", "Log file rotated",
		"component", "file_handler",
		"path", h.config.Path,
		"backups", h.config.MaxBackups)
	return nil
}

func (h *FileHandler) shiftBackups() error {
	path := h.config.Path

	if h.config.MaxBackups == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	// Oldest backup falls off the end of the chain
	oldest := backupName(path, h.config.MaxBackups)
	if err := os.Remove(oldest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", oldest, err)
	}

	// Descending order, a not-yet-moved file is never overwritten
	for n := h.config.MaxBackups; n >= 2; n-- {
		src := backupName(path, n-1)
		if err := os.Rename(src, backupName(path, n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to shift backup %s: %w", src, err)
		}
	}

	if err := os.Rename(path, backupName(path, 1)); err != nil {
		return fmt.Errorf("failed to move %s to backup: %w", path, err)
	}
	return nil
}

func (h *FileHandler) recover(cause error) error {
	if h.file == nil {
		if err := h.open(); err != nil {
			return fmt.Errorf("rotation failed: %w, reopen failed: %v", cause, err)
		}
	}
	return fmt.Errorf("rotation failed: %w", cause)
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}
