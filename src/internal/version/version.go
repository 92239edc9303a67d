// FILE: devconsole/src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
)

// Name is the application name shown in version output
const Name = "devconsole"

var (
	// Version is set at compile time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Returns a formatted version string
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s)", Name, Version, GitCommit, BuildTime, runtime.Version())
}

// Returns just the version tag
func Short() string {
	return Version
}
