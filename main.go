package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	"github.com/kongbytes/watchdog/command"
	"github.com/kongbytes/watchdog/version"
)

func main() {
	os.Exit(Run(os.Args[1:]))
}

// Run executes the CLI and returns its exit code.
func Run(args []string) int {
	c := cli.NewCLI("watchdog", version.GetVersion())
	c.Args = args
	c.Commands = command.Commands(new(command.Meta))
	c.Autocomplete = true

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}

	return exitCode
}
