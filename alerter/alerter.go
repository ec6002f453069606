// Package alerter fans incident events out to configured alert
// mediums. The server core only ever sees the narrow Alerter sink;
// concrete adapters (telegram, spryng, webhook, script) are selected
// by the alerting section of the config and built from environment
// variables at startup.
package alerter

import (
	"fmt"
	"sort"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/kongbytes/watchdog/config"
)

// Incident is the event handed to alert sinks when the server opens
// or closes an incident.
type Incident struct {
	Kind    string    // "opened" or "closed"
	Subject string    // region or group name
	Message string
	Time    time.Time
}

// Alerter is a single alert delivery sink.
type Alerter interface {
	// Name returns the configured medium name.
	Name() string

	// Dispatch delivers one incident event. Failures are reported
	// to the caller but must never affect monitor state.
	Dispatch(inc *Incident) error
}

// Registry holds the configured sinks and routes incidents to the
// mediums a group selected.
type Registry struct {
	logger hclog.Logger
	sinks  map[string]Alerter
}

// NewRegistry builds a registry over the given sinks.
func NewRegistry(logger hclog.Logger, alerters ...Alerter) *Registry {
	sinks := make(map[string]Alerter, len(alerters))
	for _, a := range alerters {
		sinks[a.Name()] = a
	}
	return &Registry{
		logger: logger.Named("alerter"),
		sinks:  sinks,
	}
}

// FromConfig constructs every declared alert medium. Missing
// credentials surface as a startup error.
func FromConfig(logger hclog.Logger, conf *config.Config) (*Registry, error) {
	var sinks []Alerter
	for _, declared := range conf.Alerting {
		sink, err := NewMedium(declared)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return NewRegistry(logger, sinks...), nil
}

// NewMedium builds a single alert sink from its declaration.
func NewMedium(conf *config.AlertMedium) (Alerter, error) {
	switch conf.Medium {
	case "telegram":
		return NewTelegramAlerter(conf.Name)
	case "spryng":
		return NewSpryngAlerter(conf.Name)
	case "webhook":
		return NewWebhookAlerter(conf.Name)
	case "script":
		return NewScriptAlerter(conf.Name)
	default:
		return nil, fmt.Errorf("alerting[%s]: unknown medium %q", conf.Name, conf.Medium)
	}
}

// Names returns the configured medium names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch delivers the incident to the requested mediums. An empty
// selection falls back to every configured sink. Delivery failures
// are logged and swallowed; they never block state transitions.
func (r *Registry) Dispatch(mediums []string, inc *Incident) {
	targets := mediums
	if len(targets) == 0 {
		targets = r.Names()
	}

	for _, name := range targets {
		sink, ok := r.sinks[name]
		if !ok {
			r.logger.Warn("skipping unknown alert medium", "medium", name)
			continue
		}
		if err := sink.Dispatch(inc); err != nil {
			r.logger.Error("alert delivery failed", "medium", name, "subject", inc.Subject, "error", err)
		}
	}
}

// TestAll fires one test alert per configured medium and reports the
// deliveries that failed.
func (r *Registry) TestAll() error {
	var mErr *multierror.Error
	for _, name := range r.Names() {
		r.logger.Info("firing test alert", "medium", name)
		err := r.sinks[name].Dispatch(&Incident{
			Kind:    "test",
			Subject: "watchdog",
			Message: "This is a watchdog monitoring test message",
			Time:    time.Now().UTC(),
		})
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("medium %s: %w", name, err))
		}
	}
	return mErr.ErrorOrNil()
}
