package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/skerrve/jukehub/internal/app/download"
	"github.com/skerrve/jukehub/internal/app/playback"
	"github.com/skerrve/jukehub/internal/domain/track"
	"github.com/skerrve/jukehub/internal/infra/catalog"
)

func testAPI(t *testing.T) (*httptest.Server, *catalog.Store, *playback.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cat := catalog.New(db)
	require.NoError(t, cat.Migrate(context.Background()))

	store := playback.NewStore(cat, playback.Config{DefaultVolume: 70})
	t.Cleanup(store.Close)

	srv := httptest.NewServer(NewServer(store, cat, nil, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, cat, store
}

func seedTrack(t *testing.T, cat *catalog.Store, id, title string) {
	t.Helper()
	require.NoError(t, cat.UpsertTrack(context.Background(), &track.Track{
		ID:       id,
		Title:    title,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
		FilePath: "/music/" + id + ".mp3",
	}))
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestPlaybackEndpoints(t *testing.T) {
	srv, cat, _ := testAPI(t)
	seedTrack(t, cat, "t1", "One")
	seedTrack(t, cat, "t2", "Two")

	t.Run("initial state", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/playback", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		snap := decode[playback.Snapshot](t, resp)
		assert.Nil(t, snap.CurrentTrack)
		assert.Equal(t, 70, snap.Volume)
	})

	t.Run("play", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/play", map[string]string{"trackId": "t1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		snap := decode[playback.Snapshot](t, resp)
		require.NotNil(t, snap.CurrentTrack)
		assert.Equal(t, "t1", snap.CurrentTrack.ID)
		assert.True(t, snap.IsPlaying)
	})

	t.Run("play unknown track", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/play", map[string]string{"trackId": "nope"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("play empty id", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/play", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("pause and resume", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/pause", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[playback.Snapshot](t, resp).IsPlaying)

		resp = doJSON(t, http.MethodPost, srv.URL+"/api/playback/resume", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decode[playback.Snapshot](t, resp).IsPlaying)
	})

	t.Run("seek", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/seek", map[string]float64{"position": 42})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.InDelta(t, 42, decode[playback.Snapshot](t, resp).Position, 1)
	})

	t.Run("seek out of bounds", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/seek", map[string]float64{"position": 9999})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("volume clamps", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/volume", map[string]int{"volume": 150})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 100, decode[playback.Snapshot](t, resp).Volume)
	})

	t.Run("queue add and remove", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/queue", map[string]any{"trackId": "t2"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, decode[playback.Snapshot](t, resp).QueueLength())

		resp = doJSON(t, http.MethodDelete, srv.URL+"/api/playback/queue/5", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doJSON(t, http.MethodDelete, srv.URL+"/api/playback/queue/0", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 0, decode[playback.Snapshot](t, resp).QueueLength())
	})

	t.Run("next with empty queue conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/next", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("repeat mode", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/repeat", map[string]string{"mode": "track"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, playback.RepeatTrack, decode[playback.Snapshot](t, resp).RepeatMode)

		resp = doJSON(t, http.MethodPost, srv.URL+"/api/playback/repeat", map[string]string{"mode": "bogus"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("shuffle toggles", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/playback/shuffle", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decode[playback.Snapshot](t, resp).Shuffle)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	srv, cat, _ := testAPI(t)
	seedTrack(t, cat, "t1", "Alpha Song")
	seedTrack(t, cat, "t2", "Beta Song")

	t.Run("list tracks", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/tracks", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		tracks := decode[[]playback.TrackInfo](t, resp)
		assert.Len(t, tracks, 2)
	})

	t.Run("get track", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/tracks/t1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Alpha Song", decode[playback.TrackInfo](t, resp).Title)
	})

	t.Run("get missing track", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/tracks/zzz", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("search", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/search?q=alpha", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		tracks := decode[[]playback.TrackInfo](t, resp)
		require.Len(t, tracks, 1)
		assert.Equal(t, "t1", tracks[0].ID)
	})

	t.Run("search requires query", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/search", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("set rating", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/api/tracks/t1/rating", map[string]int{"rating": 4})
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, http.MethodPut, srv.URL+"/api/tracks/t1/rating", map[string]int{"rating": 9})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doJSON(t, http.MethodPut, srv.URL+"/api/tracks/zzz/rating", map[string]int{"rating": 1})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("albums empty", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/albums", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stats", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stats := decode[statsResponse](t, resp)
		assert.Equal(t, 2, stats.Catalog.Tracks)
		assert.Nil(t, stats.Connections)
	})
}

func TestDownloadEndpoints(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		srv, _, _ := testAPI(t)
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/downloads", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("enqueue and fetch", func(t *testing.T) {
		db, err := sql.Open("sqlite", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		cat := catalog.New(db)
		require.NoError(t, cat.Migrate(context.Background()))

		store := playback.NewStore(cat, playback.Config{})
		t.Cleanup(store.Close)
		mgr := download.NewManager(download.Config{}, cat, nil)

		srv := httptest.NewServer(NewServer(store, cat, mgr, nil).Routes())
		t.Cleanup(srv.Close)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/downloads", map[string]string{"url": "https://example.org/v1"})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
		job := decode[download.Job](t, resp)
		assert.NotEmpty(t, job.ID)

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/downloads/"+job.ID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/downloads", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		jobs := decode[[]download.Job](t, resp)
		assert.Len(t, jobs, 1)

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/downloads/missing", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, srv.URL+"/api/downloads", map[string]string{"url": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
