package command

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/cli"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/posener/complete"

	"github.com/kongbytes/watchdog/relay"
)

type RelayCommand struct {
	Meta
}

func (c *RelayCommand) Help() string {
	helpText := `
Usage: watchdog relay [options]

  Run a region relay. The relay fetches its region subtree from the
  server, probes every group at the region interval and pushes
  aggregated results back. All connections are initiated by the
  relay, so it can run behind NAT.

  The server address and shared token are read from WATCHDOG_ADDR and
  WATCHDOG_TOKEN.

General Options:

  -address <url>
    Base URL of the watchdog server, overriding WATCHDOG_ADDR.

  -token <token>
    Shared API token, overriding WATCHDOG_TOKEN.

Relay Options:

  -region <name>
    Name of the network region covered by this relay. Required.
`
	return strings.TrimSpace(helpText)
}

func (c *RelayCommand) Synopsis() string {
	return "Run a region relay"
}

func (c *RelayCommand) AutocompleteFlags() complete.Flags {
	return mergeAutocompleteFlags(c.Meta.AutocompleteFlags(FlagSetClient),
		complete.Flags{
			"-region": complete.PredictAnything,
		})
}

func (c *RelayCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *RelayCommand) Name() string { return "relay" }

func (c *RelayCommand) Run(args []string) int {
	var region string

	flags := c.Meta.FlagSet(c.Name(), FlagSetClient)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.StringVar(&region, "region", "", "")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if region == "" {
		c.Ui.Error("Expecting a relay region, provide one with the -region option")
		return 1
	}

	client, err := c.Meta.Client()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error initializing client: %v", err))
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "watchdog",
		Level:  hclog.Info,
		Output: &cli.UiWriter{Ui: c.Ui},
	})

	r, err := relay.NewRelay(&relay.Conf{
		Client: client,
		Region: region,
		Logger: logger,
	})
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to start relay: %v", err))
		c.Ui.Error("Check the WATCHDOG_ADDR and WATCHDOG_TOKEN variables and the region name")
		return 1
	}
	defer r.Shutdown()

	c.Ui.Output("")
	c.Ui.Output(fmt.Sprintf("Watchdog relay is up for region %q", region))
	c.Ui.Output("")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	<-signalCh

	c.Ui.Output("Received shutdown signal")
	return 0
}

// mergeAutocompleteFlags merges the given flag sets into one set.
func mergeAutocompleteFlags(flags ...complete.Flags) complete.Flags {
	merged := make(complete.Flags, len(flags))
	for _, f := range flags {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
