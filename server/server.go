package server

import (
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"

	"github.com/kongbytes/watchdog/alerter"
	"github.com/kongbytes/watchdog/config"
)

// DefaultPort is the HTTP API port when none is configured.
const DefaultPort = 3030

// Conf holds everything needed to run a monitoring server.
type Conf struct {
	// Config is the validated monitoring configuration.
	Config *config.Config

	// Addr is the listen address, defaulting to ":3030".
	Addr string

	// Token is the shared bearer token required on every API route.
	Token string

	// Logger is the parent logger; a null logger is used when nil.
	Logger hclog.Logger

	// LivenessInterval overrides the watchdog cadence, for tests.
	LivenessInterval time.Duration
}

// Server ties together the runtime state, the liveness watchdog, the
// alert registry and the HTTP API. State is process-local and
// ephemeral; restarting the server starts from a clean slate.
type Server struct {
	config     *config.Config
	configHash string
	token      string
	logger     hclog.Logger

	state    *State
	alerters *alerter.Registry
	http     *HTTPServer

	inmemSink        *metrics.InmemSink
	livenessInterval time.Duration

	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
	shutdown     bool
}

// NewServer validates the alerting setup, initializes runtime state
// for every configured region and group, binds the HTTP API and
// starts the liveness watchdog.
func NewServer(conf *Conf) (*Server, error) {
	if conf.Config == nil {
		return nil, fmt.Errorf("missing monitoring configuration")
	}
	if conf.Token == "" {
		return nil, fmt.Errorf("missing API token")
	}

	logger := conf.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("server")

	addr := conf.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", DefaultPort)
	}
	livenessInterval := conf.LivenessInterval
	if livenessInterval == 0 {
		livenessInterval = DefaultLivenessInterval
	}

	hash, err := conf.Config.Hash()
	if err != nil {
		return nil, err
	}

	registry, err := alerter.FromConfig(logger, conf.Config)
	if err != nil {
		return nil, err
	}

	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metricsConf := metrics.DefaultConfig("watchdog")
	metricsConf.EnableHostname = false
	if _, err := metrics.NewGlobal(metricsConf, inm); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	s := &Server{
		config:           conf.Config,
		configHash:       hash,
		token:            conf.Token,
		logger:           logger,
		alerters:         registry,
		inmemSink:        inm,
		livenessInterval: livenessInterval,
		shutdownCh:       make(chan struct{}),
	}
	s.state = NewState(conf.Config, registry, logger)

	httpServer, err := NewHTTPServer(s, addr)
	if err != nil {
		return nil, err
	}
	s.http = httpServer

	go s.runLiveness()

	s.logger.Info("watchdog server started", "addr", s.http.Addr,
		"regions", len(conf.Config.Regions), "config_hash", hash)
	return s, nil
}

// State exposes the runtime aggregate, mainly for tests that drive
// transitions directly.
func (s *Server) State() *State {
	return s.state
}

// Addr returns the bound HTTP listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Failed returns a channel that is closed when the HTTP serve loop
// stops. Before Shutdown is called, that means the API died out from
// under the server.
func (s *Server) Failed() <-chan struct{} {
	return s.http.listenerCh
}

// now stamps ingest events with the server clock.
func (s *Server) now() time.Time {
	return time.Now().UTC()
}

// Shutdown stops the liveness watchdog and the HTTP API. It is safe
// to call more than once.
func (s *Server) Shutdown() {
	s.shutdownLock.Lock()
	defer s.shutdownLock.Unlock()

	if s.shutdown {
		return
	}
	s.shutdown = true

	s.logger.Info("shutting down")
	close(s.shutdownCh)
	s.http.Shutdown()
}
