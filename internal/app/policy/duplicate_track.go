package policy

import (
	"regexp"
	"strings"
)

// DuplicateTrack rejects tracks already waiting in the queue.
// Detects:
// - Exact track ID matches
// - Remasters (normalized title + same artist)
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateTrack struct{}

// NewDuplicateTrack creates the duplicate-track policy.
func NewDuplicateTrack() *DuplicateTrack {
	return &DuplicateTrack{}
}

// Name returns the policy name.
func (p *DuplicateTrack) Name() string {
	return "duplicate_track"
}

// Check rejects the candidate when the queue already holds the same
// song in any version.
func (p *DuplicateTrack) Check(candidate Entry, queue []Entry) Result {
	for _, queued := range queue {
		if queued.ID == candidate.ID {
			return Reject("duplicate_track")
		}
		if isSameSong(queued, candidate) {
			return Reject("duplicate_track")
		}
	}
	return Accept()
}

// isSameSong reports whether two entries are the same song in different
// versions: normalized titles match and the artist is the same. A
// matching title with a different artist is a cover and passes.
func isSameSong(a, b Entry) bool {
	if normalizeTitle(a.Title) != normalizeTitle(b.Title) {
		return false
	}
	if a.Artist == "" || b.Artist == "" {
		return false
	}
	return strings.EqualFold(a.Artist, b.Artist)
}

var remasterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
	regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
	regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
	regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
	regexp.MustCompile(`\s*\(.*?remaster.*?\)`),
	regexp.MustCompile(`\s*\[.*?remaster.*?\]`),
}

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
	regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
	regexp.MustCompile(`\s*-?\s*live$`),            // "- Live"
	regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
	regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
	regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeTitle strips remaster and version decorations from a title.
func normalizeTitle(title string) string {
	normalized := strings.ToLower(title)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = whitespaceRun.ReplaceAllString(strings.TrimSpace(normalized), " ")
	return strings.TrimRight(normalized, " -")
}
