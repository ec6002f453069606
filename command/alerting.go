package command

import (
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/posener/complete"
)

type AlertingCommand struct {
	Meta
}

func (c *AlertingCommand) Help() string {
	helpText := `
Usage: watchdog alerting <subcommand> [options]

  Interact with the alert mediums configured on a running server.

  Fire a test alert on every configured medium:

      $ watchdog alerting test
`
	return strings.TrimSpace(helpText)
}

func (c *AlertingCommand) Synopsis() string {
	return "Interact with configured alert mediums"
}

func (c *AlertingCommand) Name() string { return "alerting" }

func (c *AlertingCommand) Run(_ []string) int {
	return cli.RunResultHelp
}

type AlertingTestCommand struct {
	Meta
}

func (c *AlertingTestCommand) Help() string {
	helpText := `
Usage: watchdog alerting test [options]

  Ask the server to deliver one test message through every configured
  alert medium, to verify credentials and connectivity before relying
  on them for incidents.

General Options:

  -address <url>
    Base URL of the watchdog server, overriding WATCHDOG_ADDR.

  -token <token>
    Shared API token, overriding WATCHDOG_TOKEN.
`
	return strings.TrimSpace(helpText)
}

func (c *AlertingTestCommand) Synopsis() string {
	return "Fire a test alert on every configured medium"
}

func (c *AlertingTestCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *AlertingTestCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *AlertingTestCommand) Name() string { return "alerting test" }

func (c *AlertingTestCommand) Run(args []string) int {
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

	if err := client.AlertingTest(); err != nil {
		c.Ui.Error(fmt.Sprintf("Test alert delivery failed: %v", err))
		return 1
	}

	c.Ui.Output("Test alert fired on every configured medium")
	return 0
}
