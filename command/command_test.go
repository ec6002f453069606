package command

import (
	"strings"
	"testing"

	"github.com/hashicorp/cli"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/shoenig/test/must"

	"github.com/kongbytes/watchdog/api"
	"github.com/kongbytes/watchdog/config"
	"github.com/kongbytes/watchdog/server"
)

const testConfig = `
regions:
  - name: eu-west
    interval: 5s
    threshold: 3
    groups:
      - name: core
        threshold: 2
        tests: ["http example.org"]
`

func testServer(t *testing.T) (*server.Server, []string) {
	t.Helper()

	conf, err := config.Parse([]byte(testConfig))
	must.NoError(t, err)

	srv, err := server.NewServer(&server.Conf{
		Config: conf,
		Addr:   "127.0.0.1:0",
		Token:  "cli-test-token",
		Logger: hclog.NewNullLogger(),
	})
	must.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	args := []string{"-address", "http://" + srv.Addr(), "-token", "cli-test-token"}
	return srv, args
}

func TestCommands_ImplementInterface(t *testing.T) {
	for name, factory := range Commands(new(Meta)) {
		cmd, err := factory()
		must.NoError(t, err, must.Sprintf("command %s", name))
		must.NotEq(t, "", cmd.Synopsis(), must.Sprintf("command %s", name))
	}
}

func TestStatusCommand_NoPushesYet(t *testing.T) {
	_, args := testServer(t)

	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	must.Zero(t, cmd.Run(args))

	out := ui.OutputWriter.String()
	must.StrContains(t, out, "eu-west")
	must.StrContains(t, out, server.StatusInitial)
	must.StrContains(t, out, "<never>")
	must.StrContains(t, out, "core")
}

func TestStatusCommand_AfterPush(t *testing.T) {
	srv, args := testServer(t)

	client, err := api.NewClient(&api.Config{
		Address: "http://" + srv.Addr(), Token: "cli-test-token",
	})
	must.NoError(t, err)
	must.NoError(t, client.PushResults("eu-west", []*api.GroupResult{
		{Group: "core", Status: api.StatusOK},
	}))

	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}
	must.Zero(t, cmd.Run(args))

	out := ui.OutputWriter.String()
	must.StrContains(t, out, server.StatusUp)
	must.StrNotContains(t, out, "<never>")
}

func TestStatusCommand_BadToken(t *testing.T) {
	srv, _ := testServer(t)

	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-address", "http://" + srv.Addr(), "-token", "wrong"})
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "Error querying server status")
}

func TestStatusCommand_ServerUnreachable(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-address", "http://127.0.0.1:1", "-token", "t"})
	must.One(t, code)
}

func TestIncidentListCommand_Empty(t *testing.T) {
	_, args := testServer(t)

	ui := cli.NewMockUi()
	cmd := &IncidentListCommand{Meta: Meta{Ui: ui}}

	must.Zero(t, cmd.Run(args))
	must.StrContains(t, ui.OutputWriter.String(), "No incidents recorded")
}

func TestIncidentListCommand_WithLedger(t *testing.T) {
	srv, args := testServer(t)

	client, err := api.NewClient(&api.Config{
		Address: "http://" + srv.Addr(), Token: "cli-test-token",
	})
	must.NoError(t, err)

	// Two failing cycles cross the group threshold.
	for i := 0; i < 2; i++ {
		must.NoError(t, client.PushResults("eu-west", []*api.GroupResult{
			{Group: "core", Status: api.StatusFail},
		}))
	}

	ui := cli.NewMockUi()
	cmd := &IncidentListCommand{Meta: Meta{Ui: ui}}
	must.Zero(t, cmd.Run(args))

	out := ui.OutputWriter.String()
	must.StrContains(t, out, "When")
	must.StrContains(t, out, "opened")
	must.StrContains(t, out, "core")
}

func TestAlertingTestCommand(t *testing.T) {
	_, args := testServer(t)

	ui := cli.NewMockUi()
	cmd := &AlertingTestCommand{Meta: Meta{Ui: ui}}

	// No mediums configured: the test run succeeds vacuously.
	must.Zero(t, cmd.Run(args))
}

func TestVersionCommand(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &VersionCommand{Meta: Meta{Ui: ui}}

	must.Zero(t, cmd.Run(nil))
	must.StrContains(t, ui.OutputWriter.String(), "watchdog v")
}

func TestIncidentCommand_ShowsHelp(t *testing.T) {
	cmd := &IncidentCommand{Meta: Meta{Ui: cli.NewMockUi()}}
	must.Eq(t, cli.RunResultHelp, cmd.Run(nil))
}

func TestMeta_FlagSet(t *testing.T) {
	m := &Meta{Ui: cli.NewMockUi()}

	fs := m.FlagSet("test", FlagSetClient)
	must.NoError(t, fs.Parse([]string{"-address", "http://example.org:3030", "-token", "abc"}))

	conf := m.clientConfig()
	must.Eq(t, "http://example.org:3030", conf.Address)
	must.Eq(t, "abc", conf.Token)
}

func TestMeta_FlagSet_ErrorsThroughUi(t *testing.T) {
	ui := cli.NewMockUi()
	m := &Meta{Ui: ui}

	fs := m.FlagSet("test", FlagSetClient)
	must.Error(t, fs.Parse([]string{"-bogus"}))
	must.StrContains(t, ui.ErrorWriter.String(), "flag provided but not defined")
}

func TestHelpers_FormatTime(t *testing.T) {
	must.Eq(t, "<never>", formatTime(""))

	formatted := formatTime("2026-08-25T12:30:00Z")
	must.StrContains(t, formatted, "2026-08-2")
	must.StrContains(t, formatted, ":")

	// Garbage is passed through instead of hidden.
	must.Eq(t, "garbage", formatTime("garbage"))
}

func TestHelpers_FormatList(t *testing.T) {
	out := formatList([]string{"A|B", "1|2"})
	lines := strings.Split(out, "\n")
	must.Len(t, 2, lines)
	must.StrContains(t, lines[0], "A")
	must.StrContains(t, lines[1], "1")
}
