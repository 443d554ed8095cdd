package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/skerrve/jukehub/internal/domain/track"
)

const trackColumns = `id, title, artist, album_id, position, duration_ms, url, file_path, rating, added_at`

func scanTrack(row interface{ Scan(...any) error }) (*track.Track, error) {
	var t track.Track
	var artist, albumID, url sql.NullString
	var position, durationMs sql.NullInt64
	var addedAt time.Time

	if err := row.Scan(&t.ID, &t.Title, &artist, &albumID, &position,
		&durationMs, &url, &t.FilePath, &t.Rating, &addedAt); err != nil {
		return nil, err
	}
	t.Artist = artist.String
	t.AlbumID = albumID.String
	t.Position = int(position.Int64)
	t.Duration = time.Duration(durationMs.Int64) * time.Millisecond
	t.URL = url.String
	t.AddedAt = addedAt
	return &t, nil
}

// FindTrackByID returns the track with the given ID, or (nil, nil) when
// no such track exists. Implements playback.TrackFinder.
func (s *Store) FindTrackByID(ctx context.Context, id string) (*track.Track, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.artist, t.album_id, t.position, t.duration_ms,
		       t.url, t.file_path, t.rating, t.added_at
		FROM tracks t WHERE t.id = ?
	`, id)

	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load track")
	}
	s.fillAlbumTitle(ctx, t)
	return t, nil
}

func (s *Store) fillAlbumTitle(ctx context.Context, t *track.Track) {
	if t.AlbumID == "" {
		return
	}
	var title sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT title FROM albums WHERE id = ?`, t.AlbumID).Scan(&title); err == nil {
		t.Album = title.String
	}
}

// UpsertTrack inserts or updates a track row.
func (s *Store) UpsertTrack(ctx context.Context, t *track.Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (id, title, artist, album_id, position, duration_ms, url, file_path, rating)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album_id = excluded.album_id,
			position = excluded.position,
			duration_ms = excluded.duration_ms,
			url = excluded.url,
			file_path = excluded.file_path
	`, t.ID, t.Title, t.Artist, t.AlbumID, t.Position,
		t.Duration.Milliseconds(), t.URL, t.FilePath, t.Rating)
	return errors.Wrap(err, "failed to upsert track")
}

// ListTracks returns tracks ordered by artist and title.
func (s *Store) ListTracks(ctx context.Context, limit, offset int) ([]track.Track, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		ORDER BY artist COLLATE NOCASE, title COLLATE NOCASE
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tracks")
	}
	return collectTracks(rows)
}

// SearchTracks returns tracks whose title, artist or album title contains
// the query, case-insensitively. Plain substring matching, no ranking.
func (s *Store) SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.artist, t.album_id, t.position, t.duration_ms,
		       t.url, t.file_path, t.rating, t.added_at
		FROM tracks t
		LEFT JOIN albums a ON a.id = t.album_id
		WHERE t.title LIKE ? OR t.artist LIKE ? OR a.title LIKE ?
		ORDER BY t.artist COLLATE NOCASE, t.title COLLATE NOCASE
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search tracks")
	}
	return collectTracks(rows)
}

// AlbumTracks returns the tracks of an album in position order.
func (s *Store) AlbumTracks(ctx context.Context, albumID string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE album_id = ?
		ORDER BY position, title COLLATE NOCASE
	`, albumID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list album tracks")
	}
	return collectTracks(rows)
}

// NextTrackAfter returns the track following id in catalog order,
// wrapping to the first track. Returns (nil, nil) on an empty catalog.
func (s *Store) NextTrackAfter(ctx context.Context, id string) (*track.Track, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks WHERE id > ?
		ORDER BY id LIMIT 1
	`, id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Wrap around
		row = s.db.QueryRowContext(ctx, `
			SELECT `+trackColumns+`
			FROM tracks ORDER BY id LIMIT 1
		`)
		t, err = scanTrack(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to pick next track")
	}
	return t, nil
}

// RandomTrack returns a random track, avoiding excludeID when possible.
// Returns (nil, nil) on an empty catalog.
func (s *Store) RandomTrack(ctx context.Context, excludeID string) (*track.Track, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks WHERE id != ?
		ORDER BY RANDOM() LIMIT 1
	`, excludeID)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		row = s.db.QueryRowContext(ctx, `
			SELECT `+trackColumns+`
			FROM tracks ORDER BY RANDOM() LIMIT 1
		`)
		t, err = scanTrack(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to pick random track")
	}
	return t, nil
}

// SetRating updates a track's rating.
func (s *Store) SetRating(ctx context.Context, id string, rating int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return errors.Wrap(err, "failed to set rating")
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.Newf("track not found: %s", id)
	}
	return nil
}

// UpdateFilePath changes a track's file location.
func (s *Store) UpdateFilePath(ctx context.Context, id, path string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET file_path = ? WHERE id = ?`, path, id)
	return errors.Wrap(err, "failed to update file path")
}

// AllFilePaths returns every track's id and file path, for reconciliation.
func (s *Store) AllFilePaths(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file_path FROM tracks`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list file paths")
	}
	defer rows.Close()

	paths := make(map[string]string)
	for rows.Next() {
		var id, path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		paths[id] = path
	}
	return paths, rows.Err()
}

func collectTracks(rows *sql.Rows) ([]track.Track, error) {
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}
