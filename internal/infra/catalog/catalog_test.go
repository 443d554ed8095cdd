package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/skerrve/jukehub/internal/domain/album"
	"github.com/skerrve/jukehub/internal/domain/track"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedTrack(t *testing.T, s *Store, id, title, artist string) {
	t.Helper()
	require.NoError(t, s.UpsertTrack(context.Background(), &track.Track{
		ID:       id,
		Title:    title,
		Artist:   artist,
		Duration: 3 * time.Minute,
		FilePath: "/music/" + artist + "/" + title + ".mp3",
	}))
}

func TestStore_FindTrackByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "trk-1", "First Song", "Some Artist")

	got, err := s.FindTrackByID(ctx, "trk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "First Song", got.Title)
	assert.Equal(t, "Some Artist", got.Artist)
	assert.Equal(t, 3*time.Minute, got.Duration)

	// Unknown ID resolves to nil, not an error.
	got, err = s.FindTrackByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_FindTrackByID_AlbumTitle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAlbum(ctx, &album.Album{
		ID:    "alb-1",
		Title: "Great Album",
		Type:  album.TypeAlbum,
	}))
	require.NoError(t, s.UpsertTrack(ctx, &track.Track{
		ID:       "trk-1",
		Title:    "Opener",
		AlbumID:  "alb-1",
		Position: 1,
		FilePath: "/music/a/opener.mp3",
	}))

	got, err := s.FindTrackByID(ctx, "trk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Great Album", got.Album)
}

func TestStore_SearchTracks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "trk-1", "Blue Monday", "New Order")
	seedTrack(t, s, "trk-2", "Bizarre Love Triangle", "New Order")
	seedTrack(t, s, "trk-3", "Blue in Green", "Miles Davis")

	results, err := s.SearchTracks(ctx, "blue", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = s.SearchTracks(ctx, "new order", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.SearchTracks(ctx, "nothing matches", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_AlbumTracksOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAlbum(ctx, &album.Album{ID: "alb-1", Title: "LP", Type: album.TypeAlbum}))
	for i, title := range []string{"Third", "First", "Second"} {
		pos := []int{3, 1, 2}[i]
		require.NoError(t, s.UpsertTrack(ctx, &track.Track{
			ID: "trk-" + title, Title: title, AlbumID: "alb-1",
			Position: pos, FilePath: "/m/" + title + ".mp3",
		}))
	}

	tracks, err := s.AlbumTracks(ctx, "alb-1")
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "First", tracks[0].Title)
	assert.Equal(t, "Second", tracks[1].Title)
	assert.Equal(t, "Third", tracks[2].Title)
}

func TestStore_NextTrackAfter_Wraps(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "a", "A", "X")
	seedTrack(t, s, "b", "B", "X")

	next, err := s.NextTrackAfter(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.ID)

	// Past the last track wraps to the first.
	next, err = s.NextTrackAfter(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "a", next.ID)
}

func TestStore_NextTrackAfter_EmptyCatalog(t *testing.T) {
	s := testStore(t)

	next, err := s.NextTrackAfter(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestStore_RandomTrack_ExcludesCurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "a", "A", "X")
	seedTrack(t, s, "b", "B", "X")

	for i := 0; i < 10; i++ {
		got, err := s.RandomTrack(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "b", got.ID)
	}

	// With a single remaining track the exclusion is dropped.
	got, err := s.RandomTrack(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
}

func TestStore_RatingAndListens(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "trk-1", "Song", "Artist")

	require.NoError(t, s.SetRating(ctx, "trk-1", 2))
	got, err := s.FindTrackByID(ctx, "trk-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)

	assert.Error(t, s.SetRating(ctx, "missing", 1))

	require.NoError(t, s.RecordListen(ctx, "trk-1"))
	require.NoError(t, s.RecordListen(ctx, "trk-1"))
	n, err := s.ListenCount(ctx, "trk-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_FilePaths(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "trk-1", "Song", "Artist")

	require.NoError(t, s.UpdateFilePath(ctx, "trk-1", "/new/location.mp3"))
	paths, err := s.AllFilePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"trk-1": "/new/location.mp3"}, paths)
}

func TestStore_Stats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedTrack(t, s, "trk-1", "Song", "Artist")
	require.NoError(t, s.UpsertAlbum(ctx, &album.Album{ID: "alb-1", Title: "LP", Type: album.TypeAlbum}))
	require.NoError(t, s.UpsertArtist(ctx, &album.Artist{Name: "Artist"}))
	require.NoError(t, s.RecordListen(ctx, "trk-1"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Tracks: 1, Albums: 1, Artists: 1, Listens: 1}, st)
}
