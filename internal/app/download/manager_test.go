package download

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skerrve/jukehub/internal/domain/track"
)

type stubLibrary struct {
	mu     sync.Mutex
	tracks []*track.Track
	err    error
}

func (s *stubLibrary) UpsertTrack(_ context.Context, t *track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tracks = append(s.tracks, t)
	return nil
}

type recorder struct {
	mu   sync.Mutex
	jobs []Job
}

func (r *recorder) notify(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j.Status
	}
	return out
}

func waitStatus(t *testing.T, m *Manager, id string, want Status) Job {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		job, ok := m.Job(id)
		require.True(t, ok)
		if job.Status == want {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never reached %s (stuck at %s: %s)", id, want, job.Status, job.Error)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManagerCompletesJob(t *testing.T) {
	lib := &stubLibrary{}
	rec := &recorder{}
	m := NewManager(Config{Concurrency: 1}, lib, rec.notify)
	m.fetch = func(_ context.Context, url string) (*track.Track, error) {
		return &track.Track{ID: "v1", Title: "Fetched", Artist: "Uploader", URL: url}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	job, err := m.Enqueue("https://example.org/watch?v=v1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)

	done := waitStatus(t, m, job.ID, StatusCompleted)
	require.NotNil(t, done.Track)
	assert.Equal(t, "Fetched", done.Track.Title)
	assert.NotNil(t, done.CompletedAt)

	lib.mu.Lock()
	require.Len(t, lib.tracks, 1)
	assert.Equal(t, "v1", lib.tracks[0].ID)
	lib.mu.Unlock()

	assert.Equal(t, []Status{StatusPending, StatusRunning, StatusCompleted}, rec.statuses())
}

func TestManagerFetchFailure(t *testing.T) {
	m := NewManager(Config{Concurrency: 1}, &stubLibrary{}, nil)
	m.fetch = func(context.Context, string) (*track.Track, error) {
		return nil, errors.New("video unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	job, err := m.Enqueue("https://example.org/gone")
	require.NoError(t, err)

	failed := waitStatus(t, m, job.ID, StatusFailed)
	assert.Contains(t, failed.Error, "video unavailable")
	assert.Nil(t, failed.Track)
}

func TestManagerCatalogFailure(t *testing.T) {
	lib := &stubLibrary{err: errors.New("disk full")}
	m := NewManager(Config{Concurrency: 1}, lib, nil)
	m.fetch = func(_ context.Context, url string) (*track.Track, error) {
		return &track.Track{ID: "v1", URL: url}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	job, err := m.Enqueue("https://example.org/ok")
	require.NoError(t, err)

	failed := waitStatus(t, m, job.ID, StatusFailed)
	assert.Contains(t, failed.Error, "disk full")
}

func TestManagerEnqueueValidation(t *testing.T) {
	m := NewManager(Config{}, &stubLibrary{}, nil)
	_, err := m.Enqueue("")
	assert.Error(t, err)
}

func TestManagerJobsOrdered(t *testing.T) {
	m := NewManager(Config{}, &stubLibrary{}, nil)

	first, err := m.Enqueue("https://example.org/1")
	require.NoError(t, err)
	second, err := m.Enqueue("https://example.org/2")
	require.NoError(t, err)

	jobs := m.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, first.ID, jobs[0].ID)
	assert.Equal(t, second.ID, jobs[1].ID)

	_, ok := m.Job("missing")
	assert.False(t, ok)
}

func TestParseYtdlpOutput(t *testing.T) {
	t.Run("full metadata", func(t *testing.T) {
		out := "v1\tSong Title\tThe Artist\tThe Album\t215.3\t/music/The Artist - Song Title.mp3\n"
		tr, err := parseYtdlpOutput(out, "https://example.org/v1")
		require.NoError(t, err)
		assert.Equal(t, "v1", tr.ID)
		assert.Equal(t, "Song Title", tr.Title)
		assert.Equal(t, "The Artist", tr.Artist)
		assert.Equal(t, "The Album", tr.Album)
		assert.InDelta(t, 215.3, tr.Duration.Seconds(), 0.001)
		assert.Equal(t, "/music/The Artist - Song Title.mp3", tr.FilePath)
		assert.Equal(t, "https://example.org/v1", tr.URL)
	})

	t.Run("missing album", func(t *testing.T) {
		out := "v1\tSong\tArtist\tNA\t10\t/music/x.mp3"
		tr, err := parseYtdlpOutput(out, "u")
		require.NoError(t, err)
		assert.Empty(t, tr.Album)
	})

	t.Run("garbage output", func(t *testing.T) {
		_, err := parseYtdlpOutput("WARNING: something", "u")
		assert.Error(t, err)
	})
}
