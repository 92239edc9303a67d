// FILE: devconsole/src/cmd/devconsole/commands/handlers.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"devconsole/src/internal/config"
)

// HandlersCommand lists and toggles the console's handlers
type HandlersCommand struct {
	output io.Writer
	errOut io.Writer

	// load replaces configuration loading in tests
	load func() (*config.Config, error)
}

func NewHandlersCommand() *HandlersCommand {
	return &HandlersCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (c *HandlersCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("handlers", flag.ContinueOnError)
	cmd.SetOutput(c.errOut)
	options := newClientOptions(cmd, c.load)

	if err := cmd.Parse(args); err != nil {
		return err
	}

	action := "list"
	rest := cmd.Args()
	if len(rest) > 0 {
		action, rest = rest[0], rest[1:]
	}

	switch action {
	case "list":
	case "enable", "disable":
		if len(rest) != 1 {
			return fmt.Errorf("usage: devconsole handlers %s <name>", action)
		}
	default:
		return fmt.Errorf("unknown action: %s (valid: list, enable, disable)", action)
	}

	l, err := options.connect()
	if err != nil {
		return err
	}
	defer l.Close()

	switch action {
	case "enable":
		if err := l.EnableHandler(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.output, "Handler %s enabled\n", rest[0])
		return nil
	case "disable":
		if err := l.DisableHandler(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.output, "Handler %s disabled\n", rest[0])
		return nil
	}

	handlers, err := l.Handlers()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tENABLED")
	for _, name := range names {
		info := handlers[name]
		fmt.Fprintf(tw, "%s\t%s\t%t\n", name, info.Type, info.Enabled)
	}
	return tw.Flush()
}

func (c *HandlersCommand) Description() string {
	return "List, enable or disable console handlers"
}

func (c *HandlersCommand) Help() string {
	return `Handlers Command - Manage the console's handlers

Usage:
  devconsole handlers [list]
  devconsole handlers enable <name>
  devconsole handlers disable <name>

Options:
  -c, --config <path>    Path to configuration file
  --cluster <name>       Cluster name
  --timeout <duration>   How long to look for the console (default: 3s)
`
}
