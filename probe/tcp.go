package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// TCPProbe succeeds if a TCP connection to host:port can be
// established. The connection is closed immediately.
type TCPProbe struct {
	target string
	dialer net.Dialer
}

func NewTCPProbe(target string) *TCPProbe {
	return &TCPProbe{target: target}
}

func (p *TCPProbe) Kind() string   { return "tcp" }
func (p *TCPProbe) Target() string { return p.target }

func (p *TCPProbe) Run(ctx context.Context) error {
	if !strings.Contains(p.target, ":") {
		return fmt.Errorf("tcp probe %q: target must be host:port", p.target)
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", p.target)
	if err != nil {
		return fmt.Errorf("tcp probe %q: %w", p.target, err)
	}
	conn.Close()
	return nil
}
