// FILE: devconsole/src/cmd/devconsole/commands/file.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"devconsole/src/internal/config"
)

// FileCommand controls the console's file handler
type FileCommand struct {
	output io.Writer
	errOut io.Writer

	// load replaces configuration loading in tests
	load func() (*config.Config, error)
}

func NewFileCommand() *FileCommand {
	return &FileCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (c *FileCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("file", flag.ContinueOnError)
	cmd.SetOutput(c.errOut)
	options := newClientOptions(cmd, c.load)

	if err := cmd.Parse(args); err != nil {
		return err
	}

	target := "show"
	if cmd.NArg() > 1 {
		return fmt.Errorf("usage: devconsole file <path>|off|show")
	}
	if cmd.NArg() == 1 {
		target = cmd.Arg(0)
	}

	l, err := options.connect()
	if err != nil {
		return err
	}
	defer l.Close()

	switch target {
	case "show":
		path, err := l.FilePath()
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(c.output, "File logging is off")
			return nil
		}
		fmt.Fprintln(c.output, path)
	case "off":
		if err := l.DisableFile(); err != nil {
			return err
		}
		fmt.Fprintln(c.output, "File logging disabled")
	default:
		if err := l.File(target); err != nil {
			return err
		}
		fmt.Fprintf(c.output, "Logging to %s\n", target)
	}
	return nil
}

func (c *FileCommand) Description() string {
	return "Show, set or disable the console's log file"
}

func (c *FileCommand) Help() string {
	return `File Command - Control the console's file handler

Usage:
  devconsole file [show]     Print the active log file
  devconsole file <path>     Log to path, rotating by entry count and size
  devconsole file off        Stop logging to a file

Options:
  -c, --config <path>    Path to configuration file
  --cluster <name>       Cluster name
  --timeout <duration>   How long to look for the console (default: 3s)
`
}
