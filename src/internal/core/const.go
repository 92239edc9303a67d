// FILE: devconsole/src/internal/core/const.go
package core

import "time"

// Well-known names under which nodes register in the shared process registry
const (
	ConsoleRole = "console"
	ClientRole  = "client"
)

// Client defaults
const (
	DefaultBufferSize        = 1000
	DefaultDiscoveryInterval = 5000 * time.Millisecond
	DefaultDialTimeout       = 2 * time.Second
	DefaultConsolePort       = 7577
	DefaultConsoleQueueSize  = 4096
	DefaultCluster           = "default"
)

// File handler defaults
const (
	DefaultMaxEntries = 10000
	DefaultMaxBytes   = 10 * 1024 * 1024
	DefaultMaxBackups = 5
)

// Handler names that are always present in a console registry
const (
	FileHandlerName     = "file"
	TerminalHandlerName = "terminal"
)

// Ping marker responses
const (
	PingConnected    = "pong"
	PingDisconnected = "pang"
)
