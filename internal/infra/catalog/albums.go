package catalog

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/skerrve/jukehub/internal/domain/album"
)

// UpsertAlbum inserts or updates an album row.
func (s *Store) UpsertAlbum(ctx context.Context, a *album.Album) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO albums (id, title, artist_name, type, url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist_name = excluded.artist_name,
			type = excluded.type,
			url = excluded.url
	`, a.ID, a.Title, a.ArtistName, string(a.Type), a.URL)
	return errors.Wrap(err, "failed to upsert album")
}

// UpsertArtist inserts or updates an artist row.
func (s *Store) UpsertArtist(ctx context.Context, a *album.Artist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artists (name, description)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
	`, a.Name, a.Description)
	return errors.Wrap(err, "failed to upsert artist")
}

// ListAlbums returns all albums ordered by artist and title.
func (s *Store) ListAlbums(ctx context.Context) ([]album.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, artist_name, type, url
		FROM albums
		ORDER BY artist_name COLLATE NOCASE, title COLLATE NOCASE
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list albums")
	}
	defer rows.Close()

	var albums []album.Album
	for rows.Next() {
		var a album.Album
		var artist, url sql.NullString
		var typ string
		if err := rows.Scan(&a.ID, &a.Title, &artist, &typ, &url); err != nil {
			return nil, err
		}
		a.ArtistName = artist.String
		a.Type = album.ParseType(typ)
		a.URL = url.String
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// ListArtists returns all artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]album.Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description FROM artists ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artists")
	}
	defer rows.Close()

	var artists []album.Artist
	for rows.Next() {
		var a album.Artist
		var desc sql.NullString
		if err := rows.Scan(&a.Name, &desc); err != nil {
			return nil, err
		}
		a.Description = desc.String
		artists = append(artists, a)
	}
	return artists, rows.Err()
}
