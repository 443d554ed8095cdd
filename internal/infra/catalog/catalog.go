// Package catalog provides the track/album/artist store backed by SQLite.
package catalog

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// Store provides access to the music catalog database.
type Store struct {
	db *sql.DB
}

// New wraps an already-open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the catalog database at path and applies the
// schema. The caller owns the returned store and must Close it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog database")
	}
	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for maintenance tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS artists (
		name        TEXT PRIMARY KEY,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		artist_name TEXT,
		type        TEXT NOT NULL DEFAULT 'album',
		url         TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		artist      TEXT,
		album_id    TEXT REFERENCES albums(id),
		position    INTEGER,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		url         TEXT,
		file_path   TEXT NOT NULL UNIQUE,
		rating      INTEGER NOT NULL DEFAULT 0,
		added_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listens (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		track_id  TEXT NOT NULL REFERENCES tracks(id),
		played_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist)`,
	`CREATE INDEX IF NOT EXISTS idx_listens_track ON listens(track_id)`,
}

// Migrate applies the catalog schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply catalog schema")
		}
	}
	return nil
}

// Stats holds catalog-wide counters.
type Stats struct {
	Tracks  int `json:"tracks"`
	Albums  int `json:"albums"`
	Artists int `json:"artists"`
	Listens int `json:"listens"`
}

// Stats returns row counts for the main catalog tables.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tracks),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM listens)
	`)
	if err := row.Scan(&st.Tracks, &st.Albums, &st.Artists, &st.Listens); err != nil {
		return Stats{}, errors.Wrap(err, "failed to read catalog stats")
	}
	return st, nil
}
