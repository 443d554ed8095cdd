// Package track provides the Track domain entity.
package track

import "time"

// Track represents a playable item in the local catalog.
// Identity (ID) never changes after creation; mutable fields such as
// FilePath and Rating are updated only through the catalog store.
type Track struct {
	ID       string        // Catalog track ID (source video ID for downloaded tracks)
	Title    string        // Track title
	Artist   string        // Artist name
	Album    string        // Album title (denormalized for display)
	AlbumID  string        // Owning album ID, empty for loose tracks
	Position int           // Track number within the album, 0 if unknown
	Duration time.Duration // Track length
	FilePath string        // Audio file location on disk
	URL      string        // Source URL, empty for manually imported files
	Rating   int           // User preference, 0 is neutral
	AddedAt  time.Time     // Time the track entered the catalog
}

// DurationSeconds returns the track length in seconds as used on the
// wire and in seek bounds checks.
func (t *Track) DurationSeconds() float64 {
	return t.Duration.Seconds()
}

// HasFile reports whether the track has a file location recorded.
func (t *Track) HasFile() bool {
	return t.FilePath != ""
}
