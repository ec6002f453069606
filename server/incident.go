package server

import (
	"time"

	uuid "github.com/hashicorp/go-uuid"
)

const (
	// IncidentOpened marks the start of an incident on a subject.
	IncidentOpened = "opened"

	// IncidentClosed marks its resolution.
	IncidentClosed = "closed"
)

// Incident is one append-only ledger entry. The ledger lives for the
// server process; persistence is out of scope.
type Incident struct {
	ID      string
	Kind    string
	Subject string
	Message string
	Time    time.Time

	// mediums the event fans out to; empty means every configured
	// alert sink.
	mediums []string
}

// appendIncident records a ledger entry. Callers must hold the state
// lock; dispatch to alert sinks happens after the lock is released.
func (s *State) appendIncident(kind, subject, message string, mediums []string, now time.Time) *Incident {
	id, err := uuid.GenerateUUID()
	if err != nil {
		// ID generation only fails when the entropy source is
		// broken; the ledger entry is still worth keeping.
		s.logger.Error("failed to generate incident id", "error", err)
		id = "unknown"
	}

	inc := &Incident{
		ID:      id,
		Kind:    kind,
		Subject: subject,
		Message: message,
		Time:    now,
		mediums: mediums,
	}
	s.incidents = append(s.incidents, inc)
	return inc
}
