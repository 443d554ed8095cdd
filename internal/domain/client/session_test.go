package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_ProbeCycle(t *testing.T) {
	s := NewSession("client-1")
	assert.True(t, s.Alive)
	assert.Equal(t, 0, s.MissedProbes)

	// First probe: client was alive, so no miss yet.
	missed := s.MarkProbed()
	assert.Equal(t, 0, missed)
	assert.False(t, s.Alive)

	// Client never answered, second probe counts a miss.
	missed = s.MarkProbed()
	assert.Equal(t, 1, missed)

	missed = s.MarkProbed()
	assert.Equal(t, 2, missed)

	// A pong resets the counter.
	s.MarkAlive()
	assert.True(t, s.Alive)
	assert.Equal(t, 0, s.MissedProbes)

	missed = s.MarkProbed()
	assert.Equal(t, 0, missed)
}

func TestSession_MarkAliveRefreshesHeartbeat(t *testing.T) {
	s := NewSession("client-1")
	s.LastHeartbeat = time.Now().Add(-time.Minute)

	s.MarkAlive()
	assert.WithinDuration(t, time.Now(), s.LastHeartbeat, time.Second)
}
