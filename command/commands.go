package command

import (
	"os"

	"github.com/hashicorp/cli"
	colorable "github.com/mattn/go-colorable"
)

// Commands returns the mapping of CLI commands for watchdog. The meta
// parameter lets you set meta options for all commands.
func Commands(metaPtr *Meta) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(Meta)
	}

	meta := *metaPtr
	if meta.Ui == nil {
		meta.Ui = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      colorable.NewColorableStdout(),
			ErrorWriter: colorable.NewColorableStderr(),
		}
	}

	all := map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) {
			return &ServerCommand{
				Meta: meta,
			}, nil
		},
		"relay": func() (cli.Command, error) {
			return &RelayCommand{
				Meta: meta,
			}, nil
		},
		"status": func() (cli.Command, error) {
			return &StatusCommand{
				Meta: meta,
			}, nil
		},
		"incident": func() (cli.Command, error) {
			return &IncidentCommand{
				Meta: meta,
			}, nil
		},
		"incident ls": func() (cli.Command, error) {
			return &IncidentListCommand{
				Meta: meta,
			}, nil
		},
		"alerting": func() (cli.Command, error) {
			return &AlertingCommand{
				Meta: meta,
			}, nil
		},
		"alerting test": func() (cli.Command, error) {
			return &AlertingTestCommand{
				Meta: meta,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{
				Meta: meta,
			}, nil
		},
	}

	return all
}
