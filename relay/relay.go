// Package relay implements the region relay: it pulls its region
// subtree from the server, schedules the probes of every group on the
// region interval, aggregates per-group outcomes, and pushes batched
// results back. The relay initiates every connection, so it runs
// happily behind NAT.
package relay

import (
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/kongbytes/watchdog/api"
	"github.com/kongbytes/watchdog/config"
)

const (
	// DefaultPollInterval is the cadence of the config poller.
	DefaultPollInterval = 30 * time.Second

	// maxBatch bounds the per-group batch of retained outcomes when
	// the server is unreachable; older outcomes are dropped first.
	maxBatch = 16
)

// Conf configures a relay.
type Conf struct {
	// Client talks to the watchdog server.
	Client *api.Client

	// Region names the subtree this relay executes.
	Region string

	// Logger is the parent logger; a null logger is used when nil.
	Logger hclog.Logger

	// PollInterval overrides the config poll cadence, for tests.
	PollInterval time.Duration
}

// Relay runs the probes of one region and reports to the server.
type Relay struct {
	client       *api.Client
	region       string
	logger       hclog.Logger
	pollInterval time.Duration

	mu      sync.Mutex
	conf    *config.Region
	hash    string
	runners []*groupRunner

	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
	shutdown     bool
	doneCh       chan struct{}
}

// NewRelay fetches the configuration from the server and starts one
// runner per group plus the config poller. Auth failure or an unknown
// region is fatal.
func NewRelay(conf *Conf) (*Relay, error) {
	if conf.Client == nil {
		return nil, fmt.Errorf("missing API client")
	}
	if conf.Region == "" {
		return nil, fmt.Errorf("missing region name")
	}

	logger := conf.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	pollInterval := conf.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	r := &Relay{
		client:       conf.Client,
		region:       conf.Region,
		logger:       logger.Named("relay").With("region", conf.Region),
		pollInterval: pollInterval,
		shutdownCh:   make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	resp, err := r.client.FetchConfig()
	if err != nil {
		if api.IsAuthError(err) {
			return nil, fmt.Errorf("server rejected the API token: %w", err)
		}
		return nil, fmt.Errorf("failed to fetch configuration: %w", err)
	}

	region := findRegion(resp.Regions, r.region)
	if region == nil {
		return nil, fmt.Errorf("region %q is not part of the server configuration", r.region)
	}

	if err := r.install(region, resp.Hash); err != nil {
		return nil, err
	}

	go r.pollConfig()

	r.logger.Info("relay started", "groups", len(region.Groups),
		"interval", region.Interval, "config_hash", resp.Hash)
	return r, nil
}

func findRegion(regions []*config.Region, name string) *config.Region {
	for _, region := range regions {
		if region != nil && region.Name == name {
			return region
		}
	}
	return nil
}

// install replaces the active region subtree and starts fresh group
// runners. Callers must have stopped the previous runners.
func (r *Relay) install(region *config.Region, hash string) error {
	runners := make([]*groupRunner, 0, len(region.Groups))
	for _, group := range region.Groups {
		runner, err := newGroupRunner(r, group, region.Interval)
		if err != nil {
			return err
		}
		runners = append(runners, runner)
	}

	r.mu.Lock()
	r.conf = region
	r.hash = hash
	r.runners = runners
	r.mu.Unlock()

	for _, runner := range runners {
		go runner.run()
	}
	return nil
}

// stopRunners stops every group runner and waits for in-flight cycles
// to finish. Pending batches die with their runner; groups that
// survive a reconfigure start over with an empty batch.
func (r *Relay) stopRunners() {
	r.mu.Lock()
	runners := r.runners
	r.runners = nil
	r.mu.Unlock()

	for _, runner := range runners {
		close(runner.stopCh)
	}
	for _, runner := range runners {
		<-runner.doneCh
	}
}

// pollConfig watches the server for configuration changes and swaps
// the scheduler on a hash change, without restarting the process.
func (r *Relay) pollConfig() {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.shutdownCh:
			close(r.doneCh)
			return
		case <-ticker.C:
			r.checkConfig()
		}
	}
}

func (r *Relay) checkConfig() {
	r.mu.Lock()
	current := r.hash
	r.mu.Unlock()

	resp, err := r.client.FetchConfigIfChanged(current)
	if err != nil {
		r.logger.Warn("config poll failed", "error", err)
		return
	}
	if resp == nil || resp.Hash == current {
		return
	}

	region := findRegion(resp.Regions, r.region)
	if region == nil {
		// The region vanished from the server config. Keep probing
		// with the last known subtree; a fresh relay start would
		// refuse this region.
		r.logger.Error("region removed from server configuration, keeping previous config")
		return
	}

	r.logger.Info("configuration changed, reloading",
		"old_hash", current, "new_hash", resp.Hash)

	r.stopRunners()
	if err := r.install(region, resp.Hash); err != nil {
		r.logger.Error("failed to install new configuration", "error", err)
	}
}

// Region returns the name of the region this relay covers.
func (r *Relay) Region() string {
	return r.region
}

// ConfigHash returns the hash of the currently applied configuration.
func (r *Relay) ConfigHash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hash
}

// Shutdown stops the poller and every group runner, waiting for
// in-flight probes to finish.
func (r *Relay) Shutdown() {
	r.shutdownLock.Lock()
	defer r.shutdownLock.Unlock()

	if r.shutdown {
		return
	}
	r.shutdown = true

	close(r.shutdownCh)
	<-r.doneCh
	r.stopRunners()
	r.logger.Info("relay stopped")
}
