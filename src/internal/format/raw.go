// FILE: devconsole/src/internal/format/raw.go
package format

import (
	"strings"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// RawFormatter writes the bare message, indented by group depth; markers get a minimal rendering
type RawFormatter struct {
	indent string
	logger *log.Logger
}

func NewRawFormatter(options map[string]any, logger *log.Logger) (*RawFormatter, error) {
	f := &RawFormatter{
		indent: defaultIndentString,
		logger: logger,
	}
	if in, ok := options["indent"].(string); ok {
		f.indent = in
	}
	return f, nil
}

func (f *RawFormatter) Format(entry core.LogEntry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(strings.Repeat(f.indent, entry.GroupDepth))

	switch entry.Marker {
	case core.MarkerNone, core.MarkerPing:
		b.WriteString(entry.Message)
	case core.MarkerGroupStart:
		b.WriteString(entry.GroupName + ":")
	case core.MarkerGroupEnd:
		// Closing a group only ends the indentation
		return nil, nil
	case core.MarkerHR:
		b.WriteString(strings.Repeat("-", hrWidth))
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *RawFormatter) Name() string {
	return "raw"
}
