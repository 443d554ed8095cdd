package playback

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// Errors
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrTrackNotFound       = errors.New("track not found")
	ErrNoTrack             = errors.New("no track playing")
	ErrNoNextTrack         = errors.New("no next track")
	ErrNoPreviousTrack     = errors.New("no previous track")
	ErrInvalidSeekPosition = errors.New("invalid seek position")
	ErrIndexOutOfRange     = errors.New("queue index out of range")
)

// TrackFinder resolves track IDs against the catalog. Implementations
// return (nil, nil) when the ID does not resolve.
type TrackFinder interface {
	FindTrackByID(ctx context.Context, id string) (*track.Track, error)
}

// Config holds store configuration.
type Config struct {
	HistoryLimit    int  // Max play-history entries kept for playPrevious
	DefaultVolume   int  // Initial volume, clamped to [0,100]
	RequeueFinished bool // repeat=queue: always re-add the finished track to the tail
	AutoAdvance     bool // Advance to the next track when the current one ends
}

// Store is the single source of truth for the shared playback session:
// current track, position, volume, queue, repeat and shuffle. One
// instance per server process; all clients observe the same state.
type Store struct {
	mu sync.Mutex

	finder TrackFinder
	cfg    Config

	current *track.Track
	state   State

	// Position bookkeeping: elapsed accumulates play time up to the
	// last pause/seek, playingSince is the wall-clock start of the
	// current playing stretch.
	elapsed      time.Duration
	playingSince time.Time

	volume  int
	queue   []track.Track
	history []track.Track
	repeat  RepeatMode
	shuffle bool

	timerCancel func()

	eventCh chan Event
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewStore creates a playback store backed by the given catalog.
func NewStore(finder TrackFinder, cfg Config) *Store {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		finder:  finder,
		cfg:     cfg,
		state:   StateIdle,
		volume:  clampVolume(cfg.DefaultVolume),
		queue:   make([]track.Track, 0),
		history: make([]track.Track, 0),
		eventCh: make(chan Event, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel. One consumer is expected.
func (s *Store) Events() <-chan Event {
	return s.eventCh
}

// Close releases resources and closes the event channel. The closed
// flag is flipped under the mutex before the channel closes, so an
// end timer already waiting on the lock cannot emit afterwards.
func (s *Store) Close() {
	s.cancel()
	s.mu.Lock()
	s.stopTimerLocked()
	s.closed = true
	s.mu.Unlock()
	close(s.eventCh)
}

// Start begins playback of the given track from position zero.
func (s *Store) Start(ctx context.Context, trackID string) (Snapshot, error) {
	if trackID == "" {
		return Snapshot{}, errors.Wrap(ErrInvalidArgument, "empty track id")
	}

	t, err := s.finder.FindTrackByID(ctx, trackID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to resolve track")
	}
	if t == nil {
		return Snapshot{}, errors.Wrapf(ErrTrackNotFound, "id %s", trackID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.pushHistoryLocked(*s.current)
	}
	s.setCurrentLocked(t)
	return s.emitLocked(EventStarted, infoOf(s.current)), nil
}

// Pause pauses the current playback. No-op when already paused.
func (s *Store) Pause() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Snapshot{}, ErrNoTrack
	}
	if s.state == StatePaused {
		return s.snapshotLocked(), nil
	}

	s.elapsed = s.positionLocked()
	s.state = StatePaused
	s.stopTimerLocked()
	return s.emitLocked(EventPaused, infoOf(s.current)), nil
}

// Resume resumes paused playback. No-op when nothing is current or
// already playing.
func (s *Store) Resume() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.state == StatePlaying {
		return s.snapshotLocked(), nil
	}

	s.state = StatePlaying
	s.playingSince = time.Now()
	s.startEndTimerLocked()
	return s.emitLocked(EventResumed, infoOf(s.current)), nil
}

// Stop clears the current track and resets position.
func (s *Store) Stop() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.current = nil
	s.state = StateIdle
	s.elapsed = 0
	return s.emitLocked(EventStopped, nil), nil
}

// PlayNext advances to the next track. With repeat=track the current
// track replays; with repeat=queue and an empty queue the finished
// track is cycled back in.
func (s *Store) PlayNext() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(true)
}

// PlayPrevious moves back to the most recently played track. The
// replaced current track is put back at the queue head so forward
// order is preserved.
func (s *Store) PlayPrevious() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return Snapshot{}, ErrNoPreviousTrack
	}

	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	if s.current != nil {
		s.queue = append([]track.Track{*s.current}, s.queue...)
	}
	s.setCurrentLocked(&prev)
	return s.emitLocked(EventPrevious, infoOf(s.current)), nil
}

// SeekTo sets the position within the current track, in seconds.
func (s *Store) SeekTo(pos float64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Snapshot{}, errors.Wrap(ErrInvalidSeekPosition, "no current track")
	}
	if pos < 0 || pos > s.current.DurationSeconds() {
		return Snapshot{}, errors.Wrapf(ErrInvalidSeekPosition,
			"position %.1f outside [0, %.1f]", pos, s.current.DurationSeconds())
	}

	s.elapsed = time.Duration(pos * float64(time.Second))
	if s.state == StatePlaying {
		s.playingSince = time.Now()
		s.startEndTimerLocked()
	}
	return s.emitLocked(EventSeeked, infoOf(s.current)), nil
}

// SetVolume sets the volume, silently clamping to [0,100]. Never fails.
func (s *Store) SetVolume(v int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = clampVolume(v)
	snap := s.emitLocked(EventVolumeChanged, infoOf(s.current))
	return snap
}

// AddToQueue resolves a track and inserts it at index, or appends when
// index is nil. Out-of-range indexes are clamped to the queue bounds.
func (s *Store) AddToQueue(ctx context.Context, trackID string, index *int) (Snapshot, error) {
	if trackID == "" {
		return Snapshot{}, errors.Wrap(ErrInvalidArgument, "empty track id")
	}

	t, err := s.finder.FindTrackByID(ctx, trackID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to resolve track")
	}
	if t == nil {
		return Snapshot{}, errors.Wrapf(ErrTrackNotFound, "id %s", trackID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index == nil {
		s.queue = append(s.queue, *t)
	} else {
		i := *index
		if i < 0 {
			i = 0
		}
		if i > len(s.queue) {
			i = len(s.queue)
		}
		s.queue = append(s.queue[:i], append([]track.Track{*t}, s.queue[i:]...)...)
	}
	return s.emitLocked(EventQueueChanged, infoOf(t)), nil
}

// RemoveFromQueue removes the queue entry at index.
func (s *Store) RemoveFromQueue(index int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.queue) {
		return Snapshot{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, queue length %d", index, len(s.queue))
	}

	removed := s.queue[index]
	s.queue = append(s.queue[:index], s.queue[index+1:]...)
	return s.emitLocked(EventQueueChanged, infoOf(&removed)), nil
}

// ClearQueue removes all queued tracks.
func (s *Store) ClearQueue() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = make([]track.Track, 0)
	return s.emitLocked(EventQueueChanged, nil)
}

// SetRepeat sets the repeat mode.
func (s *Store) SetRepeat(mode RepeatMode) (Snapshot, error) {
	if mode != RepeatNone && mode != RepeatTrack && mode != RepeatQueue {
		return Snapshot{}, errors.Wrapf(ErrInvalidArgument, "repeat mode %d", mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.repeat = mode
	return s.emitLocked(EventRepeatChanged, infoOf(s.current)), nil
}

// ToggleShuffle flips the shuffle flag.
func (s *Store) ToggleShuffle() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuffle = !s.shuffle
	return s.emitLocked(EventShuffleChanged, infoOf(s.current))
}

// State returns an immutable snapshot of the current playback state.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// advanceLocked implements the next-track ordering rule. manual
// distinguishes an explicit playNext (errors on exhaustion) from a
// natural track end (goes idle and reports queue_empty).
func (s *Store) advanceLocked(manual bool) (Snapshot, error) {
	// repeat=track replays the current track.
	if s.repeat == RepeatTrack && s.current != nil {
		s.setCurrentLocked(s.current)
		return s.emitLocked(EventNext, infoOf(s.current)), nil
	}

	finished := s.current

	if len(s.queue) == 0 {
		// repeat=queue cycles the finished track back in.
		if s.repeat == RepeatQueue && finished != nil {
			s.queue = append(s.queue, *finished)
		} else {
			if manual {
				return Snapshot{}, ErrNoNextTrack
			}
			s.stopTimerLocked()
			s.current = nil
			s.state = StateIdle
			s.elapsed = 0
			return s.emitLocked(EventQueueEmpty, infoOf(finished)), nil
		}
	}

	// Shuffle picks a random queue entry, otherwise FIFO head.
	i := 0
	if s.shuffle && len(s.queue) > 1 {
		i = rand.IntN(len(s.queue))
	}
	next := s.queue[i]
	s.queue = append(s.queue[:i], s.queue[i+1:]...)

	if finished != nil {
		s.pushHistoryLocked(*finished)
		if s.repeat == RepeatQueue && s.cfg.RequeueFinished {
			s.queue = append(s.queue, *finished)
		}
	}

	s.setCurrentLocked(&next)
	return s.emitLocked(EventNext, infoOf(s.current)), nil
}

// setCurrentLocked makes t the current track, playing from zero.
func (s *Store) setCurrentLocked(t *track.Track) {
	cp := *t
	s.current = &cp
	s.state = StatePlaying
	s.elapsed = 0
	s.playingSince = time.Now()
	s.startEndTimerLocked()
}

func (s *Store) pushHistoryLocked(t track.Track) {
	s.history = append(s.history, t)
	if len(s.history) > s.cfg.HistoryLimit {
		s.history = s.history[len(s.history)-s.cfg.HistoryLimit:]
	}
}

// positionLocked returns the position within the current track,
// clamped to its duration.
func (s *Store) positionLocked() time.Duration {
	if s.current == nil {
		return 0
	}
	pos := s.elapsed
	if s.state == StatePlaying {
		pos += time.Since(s.playingSince)
	}
	if pos > s.current.Duration {
		pos = s.current.Duration
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (s *Store) snapshotLocked() Snapshot {
	queue := make([]TrackInfo, len(s.queue))
	for i := range s.queue {
		queue[i] = NewTrackInfo(&s.queue[i])
	}
	return Snapshot{
		CurrentTrack: infoOf(s.current),
		IsPlaying:    s.state == StatePlaying,
		Position:     s.positionLocked().Seconds(),
		Volume:       s.volume,
		Queue:        queue,
		RepeatMode:   s.repeat,
		Shuffle:      s.shuffle,
	}
}

// emitLocked sends an event without blocking and returns the snapshot
// it carried.
func (s *Store) emitLocked(typ EventType, subject *TrackInfo) Snapshot {
	snap := s.snapshotLocked()
	if s.closed {
		return snap
	}
	e := Event{Type: typ, Track: subject, State: snap}

	select {
	case s.eventCh <- e:
	case <-s.ctx.Done():
	default:
		zlog.Warn().Msgf("playback: event channel full, dropping %s", typ)
	}
	return snap
}

// startEndTimerLocked schedules the track-end advance.
func (s *Store) startEndTimerLocked() {
	s.stopTimerLocked()
	if !s.cfg.AutoAdvance || s.current == nil || s.state != StatePlaying {
		return
	}

	remaining := s.current.Duration - s.positionLocked()
	if remaining < 0 {
		remaining = 0
	}
	trackID := s.current.ID
	t := time.AfterFunc(remaining, func() {
		s.onTrackEnd(trackID)
	})
	s.timerCancel = func() { t.Stop() }
}

func (s *Store) stopTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
}

// onTrackEnd fires when the end timer elapses. The track may have been
// replaced or paused since scheduling, so preconditions are rechecked.
func (s *Store) onTrackEnd(trackID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != trackID || s.state != StatePlaying {
		return
	}
	s.timerCancel = nil

	zlog.Debug().Msgf("playback: track ended: id=%s title=%s", s.current.ID, s.current.Title)
	if _, err := s.advanceLocked(false); err != nil {
		zlog.Warn().Msgf("playback: auto-advance failed: %v", err)
	}
}

func infoOf(t *track.Track) *TrackInfo {
	if t == nil {
		return nil
	}
	info := NewTrackInfo(t)
	return &info
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
