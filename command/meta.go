package command

import (
	"bytes"
	"flag"

	"github.com/hashicorp/cli"
	"github.com/mitchellh/colorstring"
	"github.com/posener/complete"

	"github.com/kongbytes/watchdog/api"
)

// FlagSetFlags is an enum to define what flags are present in the
// default FlagSet returned by Meta.FlagSet.
type FlagSetFlags uint

const (
	FlagSetNone    FlagSetFlags = 0
	FlagSetClient  FlagSetFlags = 1 << iota
	FlagSetDefault              = FlagSetClient
)

// Meta contains the meta-options and functionality that nearly every
// watchdog command inherits.
type Meta struct {
	Ui cli.Ui

	// These are set by the command line flags.
	flagAddress string
	token       string
}

// FlagSet returns a FlagSet with the common flags that every command
// implements.
func (m *Meta) FlagSet(n string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	// FlagSetClient is used to enable the settings for specifying
	// server connectivity options.
	if fs&FlagSetClient != 0 {
		f.StringVar(&m.flagAddress, "address", "", "")
		f.StringVar(&m.token, "token", "", "")
	}

	f.SetOutput(&uiErrorWriter{ui: m.Ui})

	return f
}

// AutocompleteFlags returns a set of flag completions for the given
// flag set.
func (m *Meta) AutocompleteFlags(fs FlagSetFlags) complete.Flags {
	if fs&FlagSetClient == 0 {
		return nil
	}
	return complete.Flags{
		"-address": complete.PredictAnything,
		"-token":   complete.PredictAnything,
	}
}

// clientConfig builds the API client configuration from env vars,
// overridden by command line flags.
func (m *Meta) clientConfig() *api.Config {
	conf := api.DefaultConfig()
	if m.flagAddress != "" {
		conf.Address = m.flagAddress
	}
	if m.token != "" {
		conf.Token = m.token
	}
	return conf
}

// Client is used to initialize and return a new API client using the
// default command line arguments and env vars.
func (m *Meta) Client() (*api.Client, error) {
	return api.NewClient(m.clientConfig())
}

// Colorize returns a colorizer matching the Ui in use.
func (m *Meta) Colorize() *colorstring.Colorize {
	_, coloredUi := m.Ui.(*cli.ColoredUi)

	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !coloredUi,
		Reset:   true,
	}
}

// uiErrorWriter lets a flag.FlagSet report parse errors through the
// Ui instead of stderr directly.
type uiErrorWriter struct {
	ui  cli.Ui
	buf bytes.Buffer
}

func (w *uiErrorWriter) Write(data []byte) (int, error) {
	read := 0
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			return read + len(data), writeBuf(&w.buf, data)
		}

		w.buf.Write(data[:idx])
		w.ui.Error(w.buf.String())
		w.buf.Reset()
		data = data[idx+1:]
		read += idx + 1
	}
	return read, nil
}

func writeBuf(buf *bytes.Buffer, data []byte) error {
	_, err := buf.Write(data)
	return err
}
