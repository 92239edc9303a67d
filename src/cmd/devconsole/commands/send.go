// FILE: devconsole/src/cmd/devconsole/commands/send.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"
)

// SendCommand sends one entry or marker to the console
type SendCommand struct {
	output io.Writer
	errOut io.Writer

	// load replaces configuration loading in tests
	load func() (*config.Config, error)
}

func NewSendCommand() *SendCommand {
	return &SendCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (c *SendCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("send", flag.ContinueOnError)
	cmd.SetOutput(c.errOut)

	var (
		level     = cmd.String("l", "info", "Level: debug, info, warn, error")
		levelLong = cmd.String("level", "", "Level: debug, info, warn, error")
		ping      = cmd.Bool("ping", false, "Send a ping marker instead of a message")
		hr        = cmd.Bool("hr", false, "Send a horizontal rule marker")
	)
	var fields kvFlag
	cmd.Var(&fields, "f", "Metadata key=value (repeatable)")
	options := newClientOptions(cmd, c.load)

	if err := cmd.Parse(args); err != nil {
		return err
	}

	message := strings.Join(cmd.Args(), " ")
	if message == "" && !*ping && !*hr {
		return fmt.Errorf("message required\n\nUsage: devconsole send [options] <message>")
	}

	lvl, err := core.ParseLevel(coalesceString(*levelLong, *level))
	if err != nil {
		return err
	}

	l, err := options.connect()
	if err != nil {
		return err
	}
	// Close flushes the link before saying goodbye
	defer l.Close()

	switch {
	case *ping:
		l.Ping()
	case *hr:
		l.HR()
	}

	if message != "" {
		switch lvl {
		case core.LevelDebug:
			l.Debug(message, fields...)
		case core.LevelWarn:
			l.Warn(message, fields...)
		case core.LevelError:
			l.Error(message, fields...)
		default:
			l.Info(message, fields...)
		}
	}

	return nil
}

func (c *SendCommand) Description() string {
	return "Send a log entry to the console"
}

func (c *SendCommand) Help() string {
	return `Send Command - Send a log entry to the running console

Usage:
  devconsole send [options] <message>

Options:
  -l, --level <level>    debug, info, warn, error (default: info)
  -f key=value           Metadata field, repeatable
  --ping                 Send a ping marker; the console shows "pong"
  --hr                   Send a horizontal rule
  -c, --config <path>    Path to configuration file
  --cluster <name>       Cluster name
  --timeout <duration>   How long to look for the console (default: 3s)

Examples:
  devconsole send "build finished"
  devconsole send -l error -f job=42 -f step=link "linker failed"
`
}

// kvFlag collects repeated key=value flags as alternating keys and values
type kvFlag []any

func (f *kvFlag) String() string {
	return fmt.Sprint([]any(*f))
}

func (f *kvFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*f = append(*f, key, val)
	return nil
}
