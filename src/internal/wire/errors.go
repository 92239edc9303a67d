// FILE: devconsole/src/internal/wire/errors.go
package wire

import (
	"errors"
	"fmt"

	"devconsole/src/internal/core"
)

// Error codes carried by reply frames
const (
	CodeNotFound        = "not_found"
	CodeNoPath          = "no_path"
	CodeBadRequest      = "bad_request"
	CodeConsoleNotFound = "console_not_found"
	CodeIO              = "io"
)

// ErrorCode classifies an error for a reply frame
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrHandlerNotFound):
		return CodeNotFound
	case errors.Is(err, core.ErrNoPathConfigured):
		return CodeNoPath
	case errors.Is(err, core.ErrConsoleNotFound):
		return CodeConsoleNotFound
	case errors.Is(err, ErrUnknownOp):
		return CodeBadRequest
	default:
		return CodeIO
	}
}

// ErrUnknownOp is returned for request frames naming an unsupported operation
var ErrUnknownOp = errors.New("unknown operation")

// ReplyError rebuilds an error from a reply frame so errors.Is works on the caller side
func ReplyError(f Frame) error {
	if f.Code == "" && f.Error == "" {
		return nil
	}
	switch f.Code {
	case CodeNotFound:
		return fmt.Errorf("%w (console: %s)", core.ErrHandlerNotFound, f.Error)
	case CodeNoPath:
		return fmt.Errorf("%w (console: %s)", core.ErrNoPathConfigured, f.Error)
	case CodeConsoleNotFound:
		return fmt.Errorf("%w (console: %s)", core.ErrConsoleNotFound, f.Error)
	case CodeBadRequest:
		return fmt.Errorf("%w (console: %s)", ErrUnknownOp, f.Error)
	default:
		return fmt.Errorf("console: %s", f.Error)
	}
}
