// Package probe implements the reachability checks a relay runs
// against its region targets. Every probe kind exposes the same
// contract: Run returns nil when the target is reachable and an error
// describing the failure otherwise. Probes hold no monitor state and
// must not leak sockets on failure.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a single probe execution unless the caller
// provides a tighter context.
const DefaultTimeout = 2 * time.Second

// Probe is a single reachability check of a defined kind.
type Probe interface {
	// Kind returns the probe kind (http, dns, tcp, ping).
	Kind() string

	// Target returns the kind-specific target string.
	Target() string

	// Run executes the check. A nil error means the target is
	// reachable; cancellation or timeout of the context counts as
	// failure.
	Run(ctx context.Context) error
}

// Kinds lists the supported probe kinds.
func Kinds() []string {
	return []string{"http", "dns", "tcp", "ping"}
}

// Parse builds a probe from a "<kind> <target>" test definition.
func Parse(test string) (Probe, error) {
	fields := strings.Fields(test)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty test definition")
	}

	kind := fields[0]
	if len(fields) < 2 {
		return nil, fmt.Errorf("test %q: the %s probe expects a target", test, kind)
	}
	target := fields[1]

	switch kind {
	case "http":
		return NewHTTPProbe(target), nil
	case "dns":
		return NewDNSProbe(target), nil
	case "tcp":
		return NewTCPProbe(target), nil
	case "ping":
		return NewPingProbe(target), nil
	default:
		return nil, fmt.Errorf("test %q: unknown probe kind %q", test, kind)
	}
}
