package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/skerrve/jukehub/internal/app/download"
	"github.com/skerrve/jukehub/internal/app/playback"
	"github.com/skerrve/jukehub/internal/app/ws"
	"github.com/skerrve/jukehub/internal/domain/album"
	"github.com/skerrve/jukehub/internal/domain/track"
	"github.com/skerrve/jukehub/internal/infra/catalog"
)

// Catalog is the library surface the API serves.
type Catalog interface {
	FindTrackByID(ctx context.Context, id string) (*track.Track, error)
	ListTracks(ctx context.Context, limit, offset int) ([]track.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error)
	ListAlbums(ctx context.Context) ([]album.Album, error)
	AlbumTracks(ctx context.Context, albumID string) ([]track.Track, error)
	SetRating(ctx context.Context, id string, rating int) error
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Downloads is the download manager surface the API serves.
type Downloads interface {
	Enqueue(url string) (download.Job, error)
	Job(id string) (download.Job, bool)
	Jobs() []download.Job
}

// ConnStats reports WebSocket registry counters for /api/stats.
type ConnStats interface {
	Stats() ws.Stats
}

// Server holds the REST handler dependencies. Downloads and conns may
// be nil, in which case the corresponding endpoints report conflicts or
// omit their sections.
type Server struct {
	store     *playback.Store
	catalog   Catalog
	downloads Downloads
	conns     ConnStats
}

// NewServer creates the REST server.
func NewServer(store *playback.Store, cat Catalog, downloads Downloads, conns ConnStats) *Server {
	return &Server{store: store, catalog: cat, downloads: downloads, conns: conns}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/playback", s.handleGetPlayback)
	mux.HandleFunc("POST /api/playback/play", s.handlePlay)
	mux.HandleFunc("POST /api/playback/pause", s.handlePause)
	mux.HandleFunc("POST /api/playback/resume", s.handleResume)
	mux.HandleFunc("POST /api/playback/stop", s.handleStop)
	mux.HandleFunc("POST /api/playback/next", s.handleNext)
	mux.HandleFunc("POST /api/playback/previous", s.handlePrevious)
	mux.HandleFunc("POST /api/playback/seek", s.handleSeek)
	mux.HandleFunc("POST /api/playback/volume", s.handleVolume)
	mux.HandleFunc("POST /api/playback/repeat", s.handleRepeat)
	mux.HandleFunc("POST /api/playback/shuffle", s.handleShuffle)
	mux.HandleFunc("POST /api/playback/queue", s.handleQueueAdd)
	mux.HandleFunc("DELETE /api/playback/queue", s.handleQueueClear)
	mux.HandleFunc("DELETE /api/playback/queue/{index}", s.handleQueueRemove)

	mux.HandleFunc("GET /api/tracks", s.handleListTracks)
	mux.HandleFunc("GET /api/tracks/{id}", s.handleGetTrack)
	mux.HandleFunc("PUT /api/tracks/{id}/rating", s.handleSetRating)
	mux.HandleFunc("GET /api/albums", s.handleListAlbums)
	mux.HandleFunc("GET /api/albums/{id}/tracks", s.handleAlbumTracks)
	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("GET /api/downloads", s.handleListDownloads)
	mux.HandleFunc("POST /api/downloads", s.handleEnqueueDownload)
	mux.HandleFunc("GET /api/downloads/{id}", s.handleGetDownload)

	mux.HandleFunc("GET /api/stats", s.handleStats)

	return mux
}

func (s *Server) handleGetPlayback(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackID string `json:"trackId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.store.Start(r.Context(), body.TrackID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Pause()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Resume()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Stop()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.PlayNext()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePrevious(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.PlayPrevious()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position float64 `json:"position"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.store.SeekTo(body.Position)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume int `json:"volume"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.SetVolume(body.Volume))
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := playback.ParseRepeatMode(body.Mode)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	snap, err := s.store.SetRepeat(mode)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleShuffle(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ToggleShuffle())
}

func (s *Server) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackID string `json:"trackId"`
		Index   *int   `json:"index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.store.AddToQueue(r.Context(), body.TrackID, body.Index)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleQueueClear(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ClearQueue())
}

func (s *Server) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "queue index must be an integer")
		return
	}
	snap, err := s.store.RemoveFromQueue(index)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	tracks, err := s.catalog.ListTracks(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse(tracks))
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	t, err := s.catalog.FindTrackByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, playback.NewTrackInfo(t))
}

func (s *Server) handleSetRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating int `json:"rating"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Rating < 0 || body.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 0 and 5")
		return
	}
	if err := s.catalog.SetRating(r.Context(), r.PathValue("id"), body.Rating); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.catalog.ListAlbums(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if albums == nil {
		albums = []album.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (s *Server) handleAlbumTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.catalog.AlbumTracks(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse(tracks))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	tracks, err := s.catalog.SearchTracks(r.Context(), query, queryInt(r, "limit", 50))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse(tracks))
}

func (s *Server) handleListDownloads(w http.ResponseWriter, _ *http.Request) {
	if s.downloads == nil {
		writeError(w, http.StatusConflict, "downloads are disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.downloads.Jobs())
}

func (s *Server) handleEnqueueDownload(w http.ResponseWriter, r *http.Request) {
	if s.downloads == nil {
		writeError(w, http.StatusConflict, "downloads are disabled")
		return
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := s.downloads.Enqueue(body.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	if s.downloads == nil {
		writeError(w, http.StatusConflict, "downloads are disabled")
		return
	}
	job, ok := s.downloads.Job(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "download job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// statsResponse aggregates catalog and connection counters.
type statsResponse struct {
	Catalog     catalog.Stats `json:"catalog"`
	Connections *ws.Stats     `json:"connections,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	catStats, err := s.catalog.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := statsResponse{Catalog: catStats}
	if s.conns != nil {
		connStats := s.conns.Stats()
		resp.Connections = &connStats
	}
	writeJSON(w, http.StatusOK, resp)
}

// tracksResponse converts catalog rows to the wire form, never nil.
func tracksResponse(tracks []track.Track) []playback.TrackInfo {
	out := make([]playback.TrackInfo, len(tracks))
	for i := range tracks {
		out[i] = playback.NewTrackInfo(&tracks[i])
	}
	return out
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
