// Package server implements the watchdog server core: the
// authoritative region and group state machines, the liveness
// watchdog that detects silent relays, the incident ledger and the
// HTTP API exposing all of it.
package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"

	"github.com/kongbytes/watchdog/alerter"
	"github.com/kongbytes/watchdog/api"
	"github.com/kongbytes/watchdog/config"
)

// Runtime status values. Regions use initial/up/warn/down; groups use
// initial/up/down/incident.
const (
	StatusInitial  = "initial"
	StatusUp       = "up"
	StatusWarn     = "warn"
	StatusDown     = "down"
	StatusIncident = "incident"
)

// ErrUnknownRegion is returned by Ingest for a region that is not
// part of the configuration. The HTTP layer maps it to a 404.
var ErrUnknownRegion = fmt.Errorf("unknown region")

// RegionState is the server-side runtime state of one region.
type RegionState struct {
	Config *config.Region

	Status         string
	LastUpdate     time.Time // zero when never observed
	SilenceCounter int

	// incidentOpen tracks whether a region-down incident is
	// currently open, so silence past the threshold raises exactly
	// one incident until the region is next seen.
	incidentOpen bool
}

// GroupState is the server-side runtime state of one group.
type GroupState struct {
	Region string
	Config *config.Group

	Status     string
	FailStreak int
	LastUpdate time.Time
}

// State is the single owned aggregate holding every region and group
// state machine plus the incident ledger, behind one lock. All
// transitions go through its methods, so tests drive it without a
// live server.
type State struct {
	logger   hclog.Logger
	alerters *alerter.Registry

	mu        sync.Mutex
	regions   map[string]*RegionState
	groups    map[string]*GroupState // keyed region + "/" + group
	incidents []*Incident
}

// NewState initializes runtime state for every configured region and
// group with status initial and no last update.
func NewState(conf *config.Config, registry *alerter.Registry, logger hclog.Logger) *State {
	s := &State{
		logger:   logger.Named("state"),
		alerters: registry,
		regions:  make(map[string]*RegionState),
		groups:   make(map[string]*GroupState),
	}

	for _, region := range conf.Regions {
		s.regions[region.Name] = &RegionState{
			Config: region,
			Status: StatusInitial,
		}
		for _, group := range region.Groups {
			s.groups[groupKey(region.Name, group.Name)] = &GroupState{
				Region: region.Name,
				Config: group,
				Status: StatusInitial,
			}
		}
	}
	return s
}

func groupKey(region, group string) string {
	return region + "/" + group
}

// Ingest applies one relay push to the region and its groups. Unknown
// groups are skipped with a warning; an unknown region is rejected.
// Transitions for a single subject are serialized by the state lock;
// incident dispatch happens after it is released.
func (s *State) Ingest(region string, results []*api.GroupResult, now time.Time) error {
	s.mu.Lock()

	rs, ok := s.regions[region]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownRegion
	}

	metrics.IncrCounter([]string{"ingest", "batches"}, 1)
	metrics.IncrCounter([]string{"ingest", "results"}, float32(len(results)))

	var fired []*Incident
	for _, result := range results {
		gs, ok := s.groups[groupKey(region, result.Group)]
		if !ok {
			s.logger.Warn("ignoring result for unknown group",
				"region", region, "group", result.Group)
			metrics.IncrCounter([]string{"ingest", "unknown_group"}, 1)
			continue
		}
		fired = append(fired, s.applyGroupResult(gs, result.Status, now)...)
	}

	// A push from the region proves the relay is alive regardless of
	// group outcomes.
	rs.LastUpdate = now
	rs.SilenceCounter = 0
	rs.Status = StatusUp
	if rs.incidentOpen {
		rs.incidentOpen = false
		message := fmt.Sprintf("Region %s is UP again", region)
		fired = append(fired, s.appendIncident(IncidentClosed, region, message, nil, now))
	}

	s.mu.Unlock()
	s.dispatch(fired)
	return nil
}

// applyGroupResult runs one cycle outcome through the group state
// machine and returns any ledger entries it produced. Caller holds
// the lock.
func (s *State) applyGroupResult(gs *GroupState, status string, now time.Time) []*Incident {
	var fired []*Incident

	gs.LastUpdate = now

	switch status {
	case api.StatusOK:
		wasIncident := gs.Status == StatusIncident
		gs.FailStreak = 0
		gs.Status = StatusUp
		if wasIncident {
			message := fmt.Sprintf("Group %s in region %s is UP again", gs.Config.Name, gs.Region)
			fired = append(fired, s.appendIncident(IncidentClosed, gs.Config.Name, message, gs.Config.Mediums, now))
			metrics.IncrCounter([]string{"incident", "closed"}, 1)
		}

	case api.StatusFail:
		gs.FailStreak++
		if gs.FailStreak >= gs.Config.Threshold {
			if gs.Status != StatusIncident {
				gs.Status = StatusIncident
				message := fmt.Sprintf("Group %s in region %s is in incident", gs.Config.Name, gs.Region)
				fired = append(fired, s.appendIncident(IncidentOpened, gs.Config.Name, message, gs.Config.Mediums, now))
				metrics.IncrCounter([]string{"incident", "opened"}, 1)
			}
		} else {
			gs.Status = StatusDown
		}

	default:
		s.logger.Warn("ignoring result with unknown status",
			"region", gs.Region, "group", gs.Config.Name, "status", status)
	}

	return fired
}

// LivenessTick advances the silence accounting of every region. It is
// driven by the watchdog ticker; now is injected so tests control the
// clock.
func (s *State) LivenessTick(now time.Time) {
	s.mu.Lock()

	var fired []*Incident
	for name, rs := range s.regions {
		// Never-seen regions stay initial until their first push.
		if rs.LastUpdate.IsZero() {
			continue
		}

		elapsed := now.Sub(rs.LastUpdate)
		if elapsed <= rs.Config.Interval {
			continue
		}

		// One silence cycle per missed interval, so the counter hits
		// the threshold only once the region has been quiet for
		// threshold * interval.
		if rs.SilenceCounter < rs.Config.Threshold &&
			elapsed > time.Duration(rs.SilenceCounter+1)*rs.Config.Interval {
			rs.SilenceCounter++
		}
		if rs.SilenceCounter >= rs.Config.Threshold {
			if rs.Status != StatusDown {
				rs.Status = StatusDown
				rs.incidentOpen = true
				message := fmt.Sprintf("Region %s is DOWN", name)
				fired = append(fired, s.appendIncident(IncidentOpened, name, message, nil, now))
				metrics.IncrCounter([]string{"incident", "opened"}, 1)
				s.logger.Error("region is down", "region", name,
					"silent_for", elapsed.Round(time.Millisecond))
			}
		} else {
			rs.Status = StatusWarn
		}
	}

	s.mu.Unlock()
	s.dispatch(fired)
}

// dispatch fans ledger entries out to the alert sinks, outside the
// state lock.
func (s *State) dispatch(fired []*Incident) {
	for _, inc := range fired {
		s.alerters.Dispatch(inc.mediums, &alerter.Incident{
			Kind:    inc.Kind,
			Subject: inc.Subject,
			Message: inc.Message,
			Time:    inc.Time,
		})
	}
}

// Analytics returns a consistent snapshot of every region, group and
// ledger entry, sorted by name for stable output.
func (s *State) Analytics() *api.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &api.Analytics{
		Regions:   make([]*api.RegionSummary, 0, len(s.regions)),
		Groups:    make([]*api.GroupSummary, 0, len(s.groups)),
		Incidents: make([]*api.IncidentSummary, 0, len(s.incidents)),
	}

	for name, rs := range s.regions {
		out.Regions = append(out.Regions, &api.RegionSummary{
			Name:       name,
			Status:     rs.Status,
			LastUpdate: formatTime(rs.LastUpdate),
		})
	}
	sort.Slice(out.Regions, func(i, j int) bool {
		return out.Regions[i].Name < out.Regions[j].Name
	})

	for _, gs := range s.groups {
		out.Groups = append(out.Groups, &api.GroupSummary{
			Name:       gs.Config.Name,
			Region:     gs.Region,
			Status:     gs.Status,
			LastUpdate: formatTime(gs.LastUpdate),
		})
	}
	sort.Slice(out.Groups, func(i, j int) bool {
		if out.Groups[i].Region != out.Groups[j].Region {
			return out.Groups[i].Region < out.Groups[j].Region
		}
		return out.Groups[i].Name < out.Groups[j].Name
	})

	for _, inc := range s.incidents {
		out.Incidents = append(out.Incidents, incidentSummary(inc))
	}

	return out
}

// Incidents returns the ledger in append order.
func (s *State) Incidents() []*api.IncidentSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*api.IncidentSummary, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, incidentSummary(inc))
	}
	return out
}

// Incident looks up a single ledger entry by ID.
func (s *State) Incident(id string) (*api.IncidentSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inc := range s.incidents {
		if inc.ID == id {
			return incidentSummary(inc), true
		}
	}
	return nil, false
}

func incidentSummary(inc *Incident) *api.IncidentSummary {
	return &api.IncidentSummary{
		ID:        inc.ID,
		Kind:      inc.Kind,
		Subject:   inc.Subject,
		Message:   inc.Message,
		Timestamp: inc.Time.Format(time.RFC3339),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
