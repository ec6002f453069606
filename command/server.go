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

	"github.com/kongbytes/watchdog/api"
	"github.com/kongbytes/watchdog/config"
	"github.com/kongbytes/watchdog/server"
)

type ServerCommand struct {
	Meta
}

func (c *ServerCommand) Help() string {
	helpText := `
Usage: watchdog server [options]

  Run the watchdog monitoring server. The server loads the YAML
  configuration, serves it to region relays, aggregates their pushed
  results and raises incidents on configured alert mediums.

  The shared API token is read from ` + api.EnvWatchdogToken + `.

Server Options:

  -config <path>
    Path of the YAML monitoring configuration. Required.

  -port <port>
    Port the HTTP API listens on. Defaults to 3030.
`
	return strings.TrimSpace(helpText)
}

func (c *ServerCommand) Synopsis() string {
	return "Run the watchdog monitoring server"
}

func (c *ServerCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-config": complete.PredictFiles("*.yml"),
		"-port":   complete.PredictAnything,
	}
}

func (c *ServerCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *ServerCommand) Name() string { return "server" }

func (c *ServerCommand) Run(args []string) int {
	var configPath string
	var port int

	flags := c.Meta.FlagSet(c.Name(), FlagSetNone)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.StringVar(&configPath, "config", "", "")
	flags.IntVar(&port, "port", server.DefaultPort, "")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if configPath == "" {
		c.Ui.Error("The watchdog server needs a YAML configuration file to run")
		c.Ui.Error("Provide a file path with the -config option")
		return 1
	}

	token := os.Getenv(api.EnvWatchdogToken)
	if token == "" {
		c.Ui.Error(fmt.Sprintf("Expecting the shared API token in the %s variable", api.EnvWatchdogToken))
		return 1
	}

	conf, err := config.Load(configPath)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Invalid configuration: %v", err))
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "watchdog",
		Level:  hclog.Info,
		Output: &cli.UiWriter{Ui: c.Ui},
	})

	srv, err := server.NewServer(&server.Conf{
		Config: conf,
		Addr:   fmt.Sprintf(":%d", port),
		Token:  token,
		Logger: logger,
	})
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to start server: %v", err))
		return 1
	}
	defer srv.Shutdown()

	c.Ui.Output("")
	c.Ui.Output(fmt.Sprintf("Watchdog monitoring API is up on %s", srv.Addr()))
	c.Ui.Output("You can now start region relays with 'watchdog relay -region <name>'")
	c.Ui.Output("")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-signalCh:
		c.Ui.Output("Received shutdown signal")
		return 0
	case <-srv.Failed():
		c.Ui.Error("Monitoring API stopped unexpectedly")
		return 2
	}
}
