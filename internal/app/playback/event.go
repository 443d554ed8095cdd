package playback

// EventType represents a playback event type.
type EventType int

const (
	EventStarted        EventType = iota // Playback started for a track
	EventPaused                          // Playback paused
	EventResumed                         // Playback resumed
	EventStopped                         // Playback stopped, state cleared
	EventNext                            // Advanced to the next track
	EventPrevious                        // Moved back to a prior track
	EventSeeked                          // Position changed
	EventVolumeChanged                   // Volume changed
	EventQueueChanged                    // Queue contents changed
	EventRepeatChanged                   // Repeat mode changed
	EventShuffleChanged                  // Shuffle flag flipped
	EventQueueEmpty                      // Auto-advance found nothing to play
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventStopped:
		return "stopped"
	case EventNext:
		return "next"
	case EventPrevious:
		return "previous"
	case EventSeeked:
		return "seeked"
	case EventVolumeChanged:
		return "volume"
	case EventQueueChanged:
		return "queue"
	case EventRepeatChanged:
		return "repeat"
	case EventShuffleChanged:
		return "shuffle"
	case EventQueueEmpty:
		return "queue_empty"
	default:
		return "unknown"
	}
}

// Event represents a playback event. Every mutation produces one event
// carrying the event subject (Track, nil for some events) and the full
// state snapshot after the mutation.
type Event struct {
	Type  EventType
	Track *TrackInfo
	State Snapshot
}
