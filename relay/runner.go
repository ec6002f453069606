package relay

import (
	"context"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/kongbytes/watchdog/api"
	"github.com/kongbytes/watchdog/config"
	"github.com/kongbytes/watchdog/probe"
)

// groupRunner ticks one group at the region interval, runs its tests
// concurrently and pushes the aggregated outcome. Runners are
// independent: a slow or failing group never delays its siblings.
type groupRunner struct {
	relay    *Relay
	group    *config.Group
	interval time.Duration
	probes   []probe.Probe
	logger   hclog.Logger

	// batch retains outcomes the server has not acknowledged yet,
	// most recent last, bounded by maxBatch.
	batch []*api.GroupResult

	stopCh chan struct{}
	doneCh chan struct{}
}

func newGroupRunner(r *Relay, group *config.Group, interval time.Duration) (*groupRunner, error) {
	probes := make([]probe.Probe, 0, len(group.Tests))
	for _, test := range group.Tests {
		p, err := probe.Parse(test)
		if err != nil {
			// The server validated the config; a parse failure here
			// means the two sides disagree on probe kinds.
			return nil, err
		}
		probes = append(probes, p)
	}

	return &groupRunner{
		relay:    r,
		group:    group,
		interval: interval,
		probes:   probes,
		logger:   r.logger.Named("group").With("group", group.Name),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

func (g *groupRunner) run() {
	defer close(g.doneCh)

	// First cycle fires immediately so a fresh relay reports within
	// one interval.
	g.tick()

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopCh:
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// tick runs one cycle: probe everything, aggregate, batch, push.
func (g *groupRunner) tick() {
	ok := g.runProbes()

	// A cycle finishing during a reconfigure is discarded; the new
	// runner generation owns the group from here on.
	select {
	case <-g.stopCh:
		return
	default:
	}

	status := api.StatusOK
	if !ok {
		status = api.StatusFail
	}
	g.batch = append(g.batch, &api.GroupResult{Group: g.group.Name, Status: status})
	if len(g.batch) > maxBatch {
		g.batch = g.batch[len(g.batch)-maxBatch:]
	}

	if err := g.relay.client.PushResults(g.relay.region, g.batch); err != nil {
		// Keep the batch; the server gets the backlog on the next
		// successful push. Local probing never stops.
		g.logger.Warn("failed to push results, retaining batch",
			"pending", len(g.batch), "error", err)
		return
	}
	g.batch = g.batch[:0]
}

// runProbes executes every test of the group concurrently. The cycle
// outcome is ok only if all tests succeeded.
func (g *groupRunner) runProbes() bool {
	results := make([]error, len(g.probes))

	var wg sync.WaitGroup
	for i, p := range g.probes {
		wg.Add(1)
		go func(i int, p probe.Probe) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), probe.DefaultTimeout)
			defer cancel()
			results[i] = p.Run(ctx)
		}(i, p)
	}
	wg.Wait()

	ok := true
	for i, err := range results {
		if err != nil {
			ok = false
			g.logger.Debug("test failed", "kind", g.probes[i].Kind(),
				"target", g.probes[i].Target(), "error", err)
		}
	}
	return ok
}
