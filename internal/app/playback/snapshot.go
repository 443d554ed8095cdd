package playback

import "github.com/skerrve/jukehub/internal/domain/track"

// TrackInfo is the denormalized track snapshot reported in playback
// state. The catalog owns the track itself; this is a copy for wire use.
type TrackInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	Duration float64 `json:"duration"` // seconds
	FilePath string  `json:"filePath,omitempty"`
	URL      string  `json:"url,omitempty"`
}

// NewTrackInfo builds a wire snapshot from a catalog track.
func NewTrackInfo(t *track.Track) TrackInfo {
	return TrackInfo{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: t.DurationSeconds(),
		FilePath: t.FilePath,
		URL:      t.URL,
	}
}

// Snapshot is an immutable copy of the full playback state.
type Snapshot struct {
	CurrentTrack *TrackInfo  `json:"currentTrack"`
	IsPlaying    bool        `json:"isPlaying"`
	Position     float64     `json:"position"` // seconds into the current track
	Volume       int         `json:"volume"`
	Queue        []TrackInfo `json:"queue"`
	RepeatMode   RepeatMode  `json:"repeatMode"`
	Shuffle      bool        `json:"shuffle"`
}

// QueueLength returns the number of queued tracks.
func (s Snapshot) QueueLength() int {
	return len(s.Queue)
}
