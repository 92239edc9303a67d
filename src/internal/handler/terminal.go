// FILE: devconsole/src/internal/handler/terminal.go
package handler

import (
	"fmt"
	"io"
	"os"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGray   = "\x1b[90m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiBold   = "\x1b[1m"
)

// TerminalConfig holds configuration for the terminal handler
type TerminalConfig struct {
	Target string // "stdout", "stderr", or "split"
	Color  string // "auto", "always", "never"
	Format string
}

// TerminalHandler writes formatted entries to the console process's own terminal
type TerminalHandler struct {
	config    TerminalConfig
	stdout    io.Writer
	stderr    io.Writer
	color     bool
	enabled   bool
	formatter format.Formatter
	logger    *log.Logger

	totalWritten uint64
}

// NewTerminalHandler creates a disabled terminal handler
func NewTerminalHandler(options map[string]any, logger *log.Logger) (*TerminalHandler, error) {
	cfg := TerminalConfig{
		Target: "stdout",
		Color:  "auto",
		Format: "txt",
	}

	if target, ok := options["target"].(string); ok && target != "" {
		cfg.Target = target
	}
	switch cfg.Target {
	case "stdout", "stderr", "split":
	default:
		return nil, fmt.Errorf("invalid terminal target: %s", cfg.Target)
	}

	if color, ok := options["color"].(string); ok && color != "" {
		cfg.Color = color
	} else if color, ok := toBool(options["color"]); ok {
		cfg.Color = "never"
		if color {
			cfg.Color = "always"
		}
	}
	if f, ok := options["format"].(string); ok && f != "" {
		cfg.Format = f
	}

	formatter, err := format.New(cfg.Format, options, logger)
	if err != nil {
		return nil, fmt.Errorf("terminal handler: %w", err)
	}

	return NewTerminalHandlerWithWriters(cfg, formatter, os.Stdout, os.Stderr, logger), nil
}

// NewTerminalHandlerWithWriters creates a terminal handler on explicit writers.
// Colour in "auto" mode is enabled only when the stdout writer is a terminal.
func NewTerminalHandlerWithWriters(cfg TerminalConfig, formatter format.Formatter, stdout, stderr io.Writer, logger *log.Logger) *TerminalHandler {
	h := &TerminalHandler{
		config:    cfg,
		stdout:    stdout,
		stderr:    stderr,
		formatter: formatter,
		logger:    logger,
	}

	switch cfg.Color {
	case "always":
		h.color = true
	case "auto":
		if f, ok := stdout.(*os.File); ok {
			h.color = term.IsTerminal(int(f.Fd()))
		}
	}
	return h
}

func (h *TerminalHandler) Enable() error {
	h.enabled = true
	return nil
}

func (h *TerminalHandler) Disable() {
	h.enabled = false
}

func (h *TerminalHandler) Enabled() bool {
	return h.enabled
}

func (h *TerminalHandler) Handle(entry core.LogEntry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format entry: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if h.color {
		data = colorize(entry, data)
	}

	if _, err := h.writerFor(entry).Write(data); err != nil {
		return fmt.Errorf("terminal write failed: %w", err)
	}
	h.totalWritten++
	return nil
}

// Split mode sends warn/error payloads to stderr, everything else to stdout
func (h *TerminalHandler) writerFor(entry core.LogEntry) io.Writer {
	switch h.config.Target {
	case "stderr":
		return h.stderr
	case "split":
		if !entry.IsMarker() && entry.Level >= core.LevelWarn {
			return h.stderr
		}
	}
	return h.stdout
}

func colorize(entry core.LogEntry, data []byte) []byte {
	var code string
	if entry.IsMarker() {
		code = ansiBold
	} else {
		switch entry.Level {
		case core.LevelDebug:
			code = ansiGray
		case core.LevelInfo:
			code = ansiCyan
		case core.LevelWarn:
			code = ansiYellow
		case core.LevelError:
			code = ansiRed
		}
	}
	if code == "" {
		return data
	}

	// Keep the trailing newline outside the colour span
	body := data
	if n := len(body); n > 0 && body[n-1] == '\n' {
		body = body[:n-1]
	}
	out := make([]byte, 0, len(data)+len(code)+len(ansiReset))
	out = append(out, code...)
	out = append(out, body...)
	out = append(out, ansiReset...)
	return append(out, '\n')
}
