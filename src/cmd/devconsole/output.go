// FILE: devconsole/src/cmd/devconsole/output.go
package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// operatorOutput writes operator-facing messages of the run command. Quiet mode
// silences it together with the logger.
type operatorOutput struct {
	quiet  atomic.Bool
	stdout io.Writer
	stderr io.Writer
}

var output = &operatorOutput{stdout: os.Stdout, stderr: os.Stderr}

func setQuiet(quiet bool) {
	output.quiet.Store(quiet)
}

func Print(format string, args ...any) {
	if !output.quiet.Load() {
		fmt.Fprintf(output.stdout, format, args...)
	}
}

func Error(format string, args ...any) {
	if !output.quiet.Load() {
		fmt.Fprintf(output.stderr, format, args...)
	}
}
