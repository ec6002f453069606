package probe

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

const defaultResolvConf = "/etc/resolv.conf"

// DNSProbe resolves the target hostname and succeeds if at least one
// A or AAAA record is returned.
type DNSProbe struct {
	target     string
	resolvConf string
}

func NewDNSProbe(target string) *DNSProbe {
	return &DNSProbe{
		target:     target,
		resolvConf: defaultResolvConf,
	}
}

func (p *DNSProbe) Kind() string   { return "dns" }
func (p *DNSProbe) Target() string { return p.target }

func (p *DNSProbe) Run(ctx context.Context) error {
	conf, err := dns.ClientConfigFromFile(p.resolvConf)
	if err != nil {
		return fmt.Errorf("dns probe %q: reading %s: %w", p.target, p.resolvConf, err)
	}
	if len(conf.Servers) == 0 {
		return fmt.Errorf("dns probe %q: no nameservers configured", p.target)
	}
	server := net.JoinHostPort(conf.Servers[0], conf.Port)

	client := new(dns.Client)
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(p.target), qtype)
		msg.RecursionDesired = true

		in, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil {
			return fmt.Errorf("dns probe %q: %w", p.target, err)
		}
		for _, answer := range in.Answer {
			switch answer.(type) {
			case *dns.A, *dns.AAAA:
				return nil
			}
		}
	}

	return fmt.Errorf("dns probe %q: no A or AAAA records", p.target)
}
