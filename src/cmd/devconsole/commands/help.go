// FILE: devconsole/src/cmd/devconsole/commands/help.go
package commands

import (
	"fmt"
	"sort"
	"strings"
)

const generalHelpTemplate = `devconsole: A development log console.

Applications emit log entries through the devlog package; the console shows
them in its own terminal and routes them to its handlers.

Usage:
  devconsole [command] [options]
  devconsole [options]             Same as 'devconsole run'

%s
For command-specific help:
  devconsole help <command>
  devconsole <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (DEVCONSOLE_*) override file settings
  - TOML configuration file, default ~/.config/devconsole.toml

Examples:
  # Start the console with file logging
  devconsole run --file /tmp/app.log

  # Send a test entry from another terminal
  devconsole send -l warn "disk almost full"

  # Switch the console's file handler at runtime
  devconsole file /tmp/other.log
`

// commandGroups places commands under headings in general help.
// Client commands find the running console through discovery like any producer.
var commandGroups = []struct {
	title string
	names []string
}{
	{"Console:", []string{"run", "config"}},
	{"Client (talks to the running console):", []string{"send", "handlers", "file"}},
}

// HelpCommand prints general help or one command's help
type HelpCommand struct {
	router *CommandRouter
}

func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		handler, ok := c.router.GetCommand(args[0])
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Print(handler.Help())
		return nil
	}

	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Usage: devconsole help [command]

Without a command, lists all commands. With one, prints its help.
`
}

// formatCommandList renders the grouped command listing; commands outside
// every group are listed last under "Other:"
func (c *HelpCommand) formatCommandList() string {
	commands := c.router.GetCommands()

	width := 0
	for name := range commands {
		width = max(width, len(name))
	}

	var b strings.Builder
	listed := make(map[string]bool)
	section := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		b.WriteString(title + "\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, name, commands[name].Description())
			listed[name] = true
		}
		b.WriteString("\n")
	}

	for _, group := range commandGroups {
		var present []string
		for _, name := range group.names {
			if _, ok := commands[name]; ok {
				present = append(present, name)
			}
		}
		section(group.title, present)
	}

	var rest []string
	for name := range commands {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	section("Other:", rest)

	return b.String()
}
