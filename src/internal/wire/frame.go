// FILE: devconsole/src/internal/wire/frame.go
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"devconsole/src/internal/core"
)

// Maximum accepted length of one encoded frame
const MaxFrameSize = 1 * 1024 * 1024

// FrameType identifies the purpose of a frame on a console link
type FrameType string

const (
	FrameHello   FrameType = "hello"   // client -> console, first frame
	FrameWelcome FrameType = "welcome" // console -> client, handshake accepted
	FrameReject  FrameType = "reject"  // console -> client, handshake refused
	FrameEntry   FrameType = "entry"   // client -> console
	FrameRequest FrameType = "request" // client -> console, runtime operation
	FrameReply   FrameType = "reply"   // console -> client
	FrameBye     FrameType = "bye"     // client -> console, explicit disconnect
)

// Runtime operations carried by request frames
const (
	OpListHandlers   = "list_handlers"
	OpEnableHandler  = "enable_handler"
	OpDisableHandler = "disable_handler"
	OpConfigureFile  = "configure_file"
	OpDisableFile    = "disable_file"
	OpFilePath       = "file_path"
	OpStats          = "stats"
)

// Frame is one newline-terminated JSON message on a console link
type Frame struct {
	Type   FrameType       `json:"type"`
	Node   string          `json:"node,omitempty"`
	MAC    string          `json:"mac,omitempty"`
	Entry  *core.LogEntry  `json:"entry,omitempty"`
	ID     string          `json:"id,omitempty"`
	Op     string          `json:"op,omitempty"`
	Arg    string          `json:"arg,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Code   string          `json:"code,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Encode marshals a frame and appends the line terminator
func Encode(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", f.Type, err)
	}
	if len(data) >= MaxFrameSize {
		return nil, fmt.Errorf("%s frame too large: %d bytes", f.Type, len(data))
	}
	return append(data, '\n'), nil
}

// Decode parses one line, with or without its terminator
func Decode(line []byte) (Frame, error) {
	var f Frame
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return f, errors.New("empty frame")
	}
	if err := json.Unmarshal(line, &f); err != nil {
		return f, fmt.Errorf("invalid frame: %w", err)
	}
	if f.Type == "" {
		return f, errors.New("frame without type")
	}
	return f, nil
}

// EntryFrame wraps a log entry for transmission
func EntryFrame(entry core.LogEntry) Frame {
	return Frame{Type: FrameEntry, Entry: &entry}
}
