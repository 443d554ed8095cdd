// Package download manages fetching tracks from external URLs into the
// local library via yt-dlp.
package download

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one download request and its progress.
type Job struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Status      Status       `json:"status"`
	Error       string       `json:"error,omitempty"`
	Track       *track.Track `json:"track,omitempty"`
	RequestedAt time.Time    `json:"requestedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Library is the catalog surface the manager writes into.
type Library interface {
	UpsertTrack(ctx context.Context, t *track.Track) error
}

// Notifier receives job state transitions, e.g. to fan them out over
// WebSocket.
type Notifier func(job Job)

// Config holds download manager configuration.
type Config struct {
	Dir         string // Destination directory for audio files
	Concurrency int    // Parallel downloads, default 2
	YtdlpPath   string // yt-dlp binary, default "yt-dlp"
}

// fetchFunc downloads one URL and returns the resulting track metadata.
// Swappable in tests.
type fetchFunc func(ctx context.Context, url string) (*track.Track, error)

// Manager runs download jobs on a bounded worker pool.
type Manager struct {
	cfg     Config
	library Library
	notify  Notifier
	fetch   fetchFunc

	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string

	queue chan string
}

// NewManager creates a download manager. notify may be nil.
func NewManager(cfg Config, library Library, notify Notifier) *Manager {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.YtdlpPath == "" {
		cfg.YtdlpPath = "yt-dlp"
	}
	m := &Manager{
		cfg:     cfg,
		library: library,
		notify:  notify,
		jobs:    make(map[string]*Job),
		queue:   make(chan string, 64),
	}
	m.fetch = m.runYtdlp
	return m
}

// Run starts the worker pool and blocks until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < m.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.worker(ctx)
		}()
	}
	wg.Wait()
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-m.queue:
			m.process(ctx, jobID)
		}
	}
}

// Enqueue registers a download job for the given URL.
func (m *Manager) Enqueue(url string) (Job, error) {
	if url == "" {
		return Job{}, errors.New("download URL must not be empty")
	}

	job := &Job{
		ID:          uuid.New().String(),
		URL:         url,
		Status:      StatusPending,
		RequestedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	m.mu.Unlock()

	m.emit(job.ID)
	queued := m.snapshot(job.ID)

	select {
	case m.queue <- job.ID:
	default:
		m.fail(job.ID, errors.New("download queue is full"))
		return m.snapshot(job.ID), errors.New("download queue is full")
	}

	zlog.Info().Msgf("download: queued job %s for %s", job.ID, url)
	return queued, nil
}

// Job returns one job by ID.
func (m *Manager) Job(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns all jobs, oldest first.
func (m *Manager) Jobs() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.jobs[id])
	}
	return out
}

func (m *Manager) process(ctx context.Context, jobID string) {
	m.setStatus(jobID, StatusRunning)
	m.emit(jobID)

	m.mu.RLock()
	url := m.jobs[jobID].URL
	m.mu.RUnlock()

	t, err := m.fetch(ctx, url)
	if err != nil {
		zlog.Warn().Msgf("download: job %s failed: %v", jobID, err)
		m.fail(jobID, err)
		m.emit(jobID)
		return
	}

	if err := m.library.UpsertTrack(ctx, t); err != nil {
		zlog.Error().Msgf("download: job %s fetched but catalog insert failed: %v", jobID, err)
		m.fail(jobID, err)
		m.emit(jobID)
		return
	}

	now := time.Now()
	m.mu.Lock()
	job := m.jobs[jobID]
	job.Status = StatusCompleted
	job.Track = t
	job.CompletedAt = &now
	m.mu.Unlock()

	zlog.Info().Msgf("download: job %s completed: %s - %s", jobID, t.Artist, t.Title)
	m.emit(jobID)
}

func (m *Manager) setStatus(jobID string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
	}
}

func (m *Manager) fail(jobID string, err error) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.CompletedAt = &now
	}
}

func (m *Manager) snapshot(jobID string) Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.jobs[jobID]
}

func (m *Manager) emit(jobID string) {
	if m.notify == nil {
		return
	}
	m.notify(m.snapshot(jobID))
}
