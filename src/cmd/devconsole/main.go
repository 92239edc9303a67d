// FILE: devconsole/src/cmd/devconsole/main.go
package main

import (
	"fmt"
	"os"

	"devconsole/src/cmd/devconsole/commands"
)

func main() {
	router := commands.NewCommandRouter(newRunCommand())

	if err := router.Route(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
