// Package playback provides the shared playback state store with
// integrated queue management.
package playback

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No current track
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode controls how playback advances past the current track.
type RepeatMode int

const (
	RepeatNone  RepeatMode = iota // Stop when the queue runs out
	RepeatTrack                   // Replay the current track
	RepeatQueue                   // Cycle finished tracks back into the queue
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatTrack:
		return "track"
	case RepeatQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the mode as its string form.
func (m RepeatMode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes the string form.
func (m *RepeatMode) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(ErrInvalidArgument, "repeat mode must be a string")
	}
	mode, err := ParseRepeatMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseRepeatMode parses a wire repeat mode string.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "none":
		return RepeatNone, nil
	case "track":
		return RepeatTrack, nil
	case "queue":
		return RepeatQueue, nil
	default:
		return RepeatNone, errors.Wrapf(ErrInvalidArgument, "unknown repeat mode %q", s)
	}
}
