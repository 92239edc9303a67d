// FILE: devconsole/src/internal/format/txt.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	defaultTxtTemplate  = "[{{FmtTime .Timestamp}}] [{{ToUpper .Level}}] {{.Origin}} - {{.Indent}}{{.Message}}"
	defaultTimeFormat   = "15:04:05.000000"
	defaultIndentString = "  "
	hrWidth             = 60
)

// Produces human-readable text logs using templates
type TxtFormatter struct {
	template        *template.Template
	timestampFormat string
	indent          string
	logger          *log.Logger
}

// Creates a new text formatter
func NewTxtFormatter(options map[string]any, logger *log.Logger) (*TxtFormatter, error) {
	f := &TxtFormatter{
		timestampFormat: defaultTimeFormat,
		indent:          defaultIndentString,
		logger:          logger,
	}

	tmplText := defaultTxtTemplate
	if t, ok := options["template"].(string); ok && t != "" {
		tmplText = t
	}
	if tf, ok := options["timestamp_format"].(string); ok && tf != "" {
		f.timestampFormat = tf
	}
	if in, ok := options["indent"].(string); ok {
		f.indent = in
	}

	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.timestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("log").Funcs(funcMap).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Formats the entry using the template, followed by one indented line per metadata field
func (f *TxtFormatter) Format(entry core.LogEntry) ([]byte, error) {
	indent := strings.Repeat(f.indent, entry.GroupDepth)

	if entry.IsMarker() {
		return f.formatMarker(entry, indent), nil
	}

	data := map[string]any{
		"Timestamp": entry.Time,
		"Level":     entry.Level.String(),
		"Origin":    entry.Origin,
		"Message":   entry.Message,
		"Indent":    indent,
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "txt_formatter",
			"error", err)

		buf.Reset()
		fmt.Fprintf(&buf, "[%s] [%s] %s - %s%s",
			entry.Time.Format(f.timestampFormat),
			strings.ToUpper(entry.Level.String()),
			entry.Origin,
			indent,
			entry.Message)
	}

	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}

	for _, field := range entry.Fields {
		fmt.Fprintf(&buf, "%s%s%s: %v\n", indent, f.indent, field.Key, field.Value)
	}

	return buf.Bytes(), nil
}

func (f *TxtFormatter) formatMarker(entry core.LogEntry, indent string) []byte {
	var line string
	switch entry.Marker {
	case core.MarkerGroupStart:
		line = fmt.Sprintf("%s%s {", indent, entry.GroupName)
	case core.MarkerGroupEnd:
		line = fmt.Sprintf("%s} %s", indent, entry.GroupName)
	case core.MarkerHR:
		line = indent + strings.Repeat("-", hrWidth)
	case core.MarkerPing:
		line = fmt.Sprintf("%sping from %s: %s", indent, entry.Origin, entry.Message)
	default:
		line = fmt.Sprintf("%s[%s] %s", indent, entry.Marker, entry.Message)
	}
	return []byte(line + "\n")
}

// Returns the formatter name
func (f *TxtFormatter) Name() string {
	return "txt"
}
