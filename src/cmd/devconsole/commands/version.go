// FILE: devconsole/src/cmd/devconsole/commands/version.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"devconsole/src/internal/version"
)

// VersionCommand prints build information
type VersionCommand struct {
	output io.Writer
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{output: os.Stdout}
}

func (c *VersionCommand) Execute(args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	short := fs.Bool("short", false, "Print the version tag only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *short {
		fmt.Fprintln(c.output, version.Short())
		return nil
	}
	fmt.Fprintln(c.output, version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Usage: devconsole version [-short]

Prints the version tag, commit, build time and Go toolchain.
With -short only the version tag is printed.
`
}
