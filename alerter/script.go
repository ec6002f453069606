package alerter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// EnvAlertScript holds the path of the executable the script medium
// invokes.
const EnvAlertScript = "ALERT_SCRIPT"

// ScriptAlerter executes a local program with the incident kind,
// subject and message as arguments. The subprocess gets a bounded
// execution window.
type ScriptAlerter struct {
	name    string
	path    string
	timeout time.Duration
}

func NewScriptAlerter(name string) (*ScriptAlerter, error) {
	path := os.Getenv(EnvAlertScript)
	if path == "" {
		return nil, fmt.Errorf("alerting[%s]: script medium requires %s", name, EnvAlertScript)
	}
	return &ScriptAlerter{
		name:    name,
		path:    path,
		timeout: 5 * time.Second,
	}, nil
}

func (s *ScriptAlerter) Name() string { return s.name }

func (s *ScriptAlerter) Dispatch(inc *Incident) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path, inc.Kind, inc.Subject, inc.Message)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("alert script %q failed: %w", s.path, err)
	}
	return nil
}
