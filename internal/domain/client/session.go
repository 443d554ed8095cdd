// Package client provides the connected-client session entity.
package client

import "time"

// Session represents one live WebSocket client connection.
// Created on accept, destroyed on close; never persisted.
type Session struct {
	ID              string    // UUID, unique for the process lifetime
	Alive           bool      // Cleared when a probe is sent, set again on pong
	ConnectedAt     time.Time // Accept time
	LastHeartbeat   time.Time // Time of the last received pong
	MissedProbes    int       // Consecutive probe intervals without a pong
	MessagesHandled int       // Inbound messages processed for this client
}

// NewSession creates a session for a freshly accepted connection.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		Alive:         true,
		ConnectedAt:   now,
		LastHeartbeat: now,
	}
}

// MarkProbed clears the liveness flag ahead of a probe. Returns the
// number of consecutive probes the client has failed to answer so far.
func (s *Session) MarkProbed() int {
	if !s.Alive {
		s.MissedProbes++
	} else {
		s.MissedProbes = 0
	}
	s.Alive = false
	return s.MissedProbes
}

// MarkAlive records a liveness response.
func (s *Session) MarkAlive() {
	s.Alive = true
	s.MissedProbes = 0
	s.LastHeartbeat = time.Now()
}
