// FILE: devconsole/src/cmd/devconsole/commands/router.go
package commands

import "fmt"

// Handler defines the interface required for all subcommands.
type Handler interface {
	Execute(args []string) error
	Description() string
	Help() string
}

// CommandRouter handles the routing of CLI arguments to the appropriate subcommand handler.
type CommandRouter struct {
	commands map[string]Handler
	fallback string
}

// NewCommandRouter creates the router. run executes the console role and is
// also used when the first argument is a flag or absent.
func NewCommandRouter(run Handler) *CommandRouter {
	router := &CommandRouter{
		commands: make(map[string]Handler),
		fallback: "run",
	}

	router.commands["run"] = run
	router.commands["send"] = NewSendCommand()
	router.commands["handlers"] = NewHandlersCommand()
	router.commands["file"] = NewFileCommand()
	router.commands["config"] = NewConfigCommand()
	router.commands["version"] = NewVersionCommand()
	router.commands["help"] = NewHelpCommand(router)

	return router
}

// Route executes the subcommand named by args[1], defaulting to run
func (r *CommandRouter) Route(args []string) error {
	if len(args) < 2 || args[1] == "" || args[1][0] == '-' {
		if hasHelpFlag(args[1:]) {
			return r.commands["help"].Execute(nil)
		}
		return r.commands[r.fallback].Execute(args[1:])
	}

	cmdName := args[1]

	handler, exists := r.commands[cmdName]
	if !exists {
		return fmt.Errorf("unknown command: %s\n\nRun 'devconsole help' for usage", cmdName)
	}

	if cmdName != "help" && hasHelpFlag(args[2:]) {
		fmt.Print(handler.Help())
		return nil
	}

	return handler.Execute(args[2:])
}

// GetCommand returns a specific command handler by its name.
func (r *CommandRouter) GetCommand(name string) (Handler, bool) {
	cmd, exists := r.commands[name]
	return cmd, exists
}

// GetCommands returns a map of all registered commands.
func (r *CommandRouter) GetCommands() map[string]Handler {
	return r.commands
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// coalesceString returns the first non-empty string from a list of arguments.
func coalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
