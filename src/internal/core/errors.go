// FILE: devconsole/src/internal/core/errors.go
package core

import "errors"

var (
	// ErrNoPathConfigured is returned when the file handler is enabled without a path
	ErrNoPathConfigured = errors.New("no path configured")

	// ErrConsoleNotFound is returned by console-backed producer calls while no console is reachable
	ErrConsoleNotFound = errors.New("console not found")

	// ErrHandlerNotFound is returned for runtime operations on an unregistered handler name
	ErrHandlerNotFound = errors.New("handler not found")
)
