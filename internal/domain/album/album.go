// Package album provides the Album domain entity.
package album

// Type distinguishes proper albums from downloaded playlists.
type Type string

const (
	TypeAlbum    Type = "album"
	TypePlaylist Type = "playlist"
)

// Album represents a collection of tracks in the local catalog.
// For downloaded content the ID is the source playlist/album ID.
type Album struct {
	ID         string // Catalog album ID
	Title      string // Album title
	ArtistName string // Artist name from metadata, may be empty
	Type       Type   // Album or playlist
	URL        string // Source URL, empty for manually imported albums
}

// Artist represents a catalog artist.
type Artist struct {
	Name        string // Primary key in the catalog
	Description string
}

// ParseType parses a stored type string, defaulting to TypeAlbum.
func ParseType(s string) Type {
	if s == string(TypePlaylist) {
		return TypePlaylist
	}
	return TypeAlbum
}
