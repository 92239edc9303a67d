// FILE: devconsole/src/internal/console/request.go
package console

import (
	"fmt"

	"devconsole/src/internal/wire"
)

// handleRequest maps a wire operation onto the console's runtime operations
func (s *Server) handleRequest(op, arg string) (any, error) {
	switch op {
	case wire.OpListHandlers:
		return s.ListHandlers()
	case wire.OpEnableHandler:
		return nil, s.EnableHandler(arg)
	case wire.OpDisableHandler:
		return nil, s.DisableHandler(arg)
	case wire.OpConfigureFile:
		return nil, s.ConfigureFile(arg)
	case wire.OpDisableFile:
		return nil, s.DisableFile()
	case wire.OpFilePath:
		return s.GetFilePath()
	case wire.OpStats:
		return s.Stats(), nil
	default:
		return nil, fmt.Errorf("%w: %s", wire.ErrUnknownOp, op)
	}
}
