package command

import (
	"fmt"
	"strings"

	"github.com/posener/complete"

	"github.com/kongbytes/watchdog/server"
)

type StatusCommand struct {
	Meta
}

func (c *StatusCommand) Help() string {
	helpText := `
Usage: watchdog status [options]

  Display the current state of every region and group known to a
  running watchdog server.

General Options:

  -address <url>
    Base URL of the watchdog server, overriding WATCHDOG_ADDR.

  -token <token>
    Shared API token, overriding WATCHDOG_TOKEN.
`
	return strings.TrimSpace(helpText)
}

func (c *StatusCommand) Synopsis() string {
	return "Display region and group states"
}

func (c *StatusCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *StatusCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *StatusCommand) Name() string { return "status" }

func (c *StatusCommand) Run(args []string) int {
	flags := c.Meta.FlagSet(c.Name(), FlagSetClient)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	client, err := c.Meta.Client()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error initializing client: %v", err))
		return 1
	}

	status, err := client.Status()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error querying server status: %v", err))
		return 1
	}

	if len(status.Regions) == 0 {
		c.Ui.Output("No regions configured")
		return 0
	}

	regionRows := make([]string, 0, len(status.Regions)+1)
	regionRows = append(regionRows, "Region|Status|Last Update")
	for _, region := range status.Regions {
		regionRows = append(regionRows, fmt.Sprintf("%s|%s|%s",
			region.Name, c.colorStatus(region.Status), formatTime(region.LastUpdate)))
	}
	c.Ui.Output(formatList(regionRows))

	if len(status.Groups) > 0 {
		groupRows := make([]string, 0, len(status.Groups)+1)
		groupRows = append(groupRows, "Group|Region|Status|Last Update")
		for _, group := range status.Groups {
			groupRows = append(groupRows, fmt.Sprintf("%s|%s|%s|%s",
				group.Name, group.Region, c.colorStatus(group.Status), formatTime(group.LastUpdate)))
		}
		c.Ui.Output("")
		c.Ui.Output(formatList(groupRows))
	}

	return 0
}

// colorStatus renders a runtime status with the conventional color
// for its severity.
func (c *StatusCommand) colorStatus(status string) string {
	colorize := c.Colorize()
	switch status {
	case server.StatusUp:
		return colorize.Color("[green]" + status + "[reset]")
	case server.StatusWarn:
		return colorize.Color("[yellow]" + status + "[reset]")
	case server.StatusDown, server.StatusIncident:
		return colorize.Color("[red]" + status + "[reset]")
	default:
		return status
	}
}
