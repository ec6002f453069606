package command

import (
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/posener/complete"
)

type IncidentCommand struct {
	Meta
}

func (c *IncidentCommand) Help() string {
	helpText := `
Usage: watchdog incident <subcommand> [options]

  Interact with the incident ledger of a running server.

  List the recorded incidents:

      $ watchdog incident ls

  Please see the individual subcommand help for detailed usage
  information.
`
	return strings.TrimSpace(helpText)
}

func (c *IncidentCommand) Synopsis() string {
	return "Interact with the incident ledger"
}

func (c *IncidentCommand) Name() string { return "incident" }

func (c *IncidentCommand) Run(_ []string) int {
	return cli.RunResultHelp
}

type IncidentListCommand struct {
	Meta
}

func (c *IncidentListCommand) Help() string {
	helpText := `
Usage: watchdog incident ls [options]

  List every incident recorded since the server started. The ledger
  is in-memory only; restarting the server clears it.

General Options:

  -address <url>
    Base URL of the watchdog server, overriding WATCHDOG_ADDR.

  -token <token>
    Shared API token, overriding WATCHDOG_TOKEN.
`
	return strings.TrimSpace(helpText)
}

func (c *IncidentListCommand) Synopsis() string {
	return "List recorded incidents"
}

func (c *IncidentListCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *IncidentListCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *IncidentListCommand) Name() string { return "incident ls" }

func (c *IncidentListCommand) Run(args []string) int {
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

	incidents, err := client.Incidents()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error querying incidents: %v", err))
		return 1
	}

	if len(incidents) == 0 {
		c.Ui.Output("No incidents recorded")
		return 0
	}

	rows := make([]string, 0, len(incidents)+1)
	rows = append(rows, "When|Event|Subject|Message")
	for _, inc := range incidents {
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%s",
			formatTime(inc.Timestamp), inc.Kind, inc.Subject, inc.Message))
	}
	c.Ui.Output(formatList(rows))

	return 0
}
