package probe

import (
	"context"
	"fmt"
	"os/exec"
)

// PingProbe checks ICMP reachability by running the system ping
// binary with a single echo request. Raw ICMP sockets need elevated
// privileges, so the setuid ping binary does the work instead; the
// probe context bounds the subprocess.
type PingProbe struct {
	target string
}

func NewPingProbe(target string) *PingProbe {
	return &PingProbe{target: target}
}

func (p *PingProbe) Kind() string   { return "ping" }
func (p *PingProbe) Target() string { return p.target }

func (p *PingProbe) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "ping", "-c", "1", p.target)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ping probe %q: %w", p.target, ctx.Err())
		}
		return fmt.Errorf("ping probe %q: %w", p.target, err)
	}
	return nil
}
