package server

import (
	"time"
)

// DefaultLivenessInterval is the base cadence of the liveness
// watchdog ticker.
const DefaultLivenessInterval = 1 * time.Second

// runLiveness drives the silence accounting until shutdown. Silent
// regions accumulate silence cycles and are eventually marked down by
// State.LivenessTick.
func (s *Server) runLiveness() {
	ticker := time.NewTicker(s.livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownCh:
			return
		case <-ticker.C:
			s.state.LivenessTick(time.Now().UTC())
		}
	}
}
