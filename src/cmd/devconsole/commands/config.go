// FILE: devconsole/src/cmd/devconsole/commands/config.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"devconsole/src/internal/config"
)

// ConfigCommand writes configuration files
type ConfigCommand struct {
	output io.Writer
	errOut io.Writer
}

func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (c *ConfigCommand) Execute(args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return fmt.Errorf("usage: devconsole config init [--force] <path>")
	}

	cmd := flag.NewFlagSet("config init", flag.ContinueOnError)
	cmd.SetOutput(c.errOut)
	force := cmd.Bool("force", false, "Overwrite an existing file")

	if err := cmd.Parse(args[1:]); err != nil {
		return err
	}

	path := cmd.Arg(0)
	if path == "" {
		path = config.GetConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Defaults().SaveToFile(path); err != nil {
		return err
	}

	fmt.Fprintf(c.output, "Wrote default configuration to %s\n", path)
	return nil
}

func (c *ConfigCommand) Description() string {
	return "Write a default configuration file"
}

func (c *ConfigCommand) Help() string {
	return `Config Command - Write a default configuration file

Usage:
  devconsole config init [--force] [path]

Without a path the file is written to the resolved config location
(DEVCONSOLE_CONFIG_FILE, DEVCONSOLE_CONFIG_DIR or ~/.config/devconsole.toml).
`
}
