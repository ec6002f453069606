package command

import (
	"fmt"

	"github.com/kongbytes/watchdog/version"
)

type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Help() string {
	return ""
}

func (c *VersionCommand) Synopsis() string {
	return "Prints the watchdog version"
}

func (c *VersionCommand) Name() string { return "version" }

func (c *VersionCommand) Run(_ []string) int {
	c.Ui.Output(fmt.Sprintf("watchdog v%s", version.GetVersion()))
	return 0
}
