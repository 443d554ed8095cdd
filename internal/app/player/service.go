// Package player wires the playback store to the WebSocket hub: it
// binds command handlers, fans playback events out to clients, records
// listens and keeps music going via autoplay.
package player

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/app/autoplay"
	"github.com/skerrve/jukehub/internal/app/playback"
	"github.com/skerrve/jukehub/internal/app/policy"
	"github.com/skerrve/jukehub/internal/app/ws"
	"github.com/skerrve/jukehub/internal/domain/track"
)

// Library is the catalog surface the service needs.
type Library interface {
	FindTrackByID(ctx context.Context, id string) (*track.Track, error)
	RecordListen(ctx context.Context, trackID string) error
}

// Broadcaster is the hub surface the service needs.
type Broadcaster interface {
	RegisterHandler(action ws.Action, h ws.HandlerFunc)
	SendTo(clientID string, msg ws.Message) bool
	Broadcast(msg ws.Message, opts ws.BroadcastOptions) int
}

// Service coordinates playback for all connected clients.
type Service struct {
	store    *playback.Store
	hub      Broadcaster
	library  Library
	policies *policy.Chain
	autoplay *autoplay.Chain // nil when autoplay is disabled
}

// NewService creates the player service and registers its command
// handlers on the hub.
func NewService(store *playback.Store, hub Broadcaster, library Library, policies *policy.Chain, auto *autoplay.Chain) *Service {
	s := &Service{
		store:    store,
		hub:      hub,
		library:  library,
		policies: policies,
		autoplay: auto,
	}
	s.registerCommands()
	return s
}

// Run consumes playback events until the context is cancelled or the
// store closes.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-s.store.Events():
			if !ok {
				return
			}
			s.handleEvent(ctx, e)
		}
	}
}

// eventPayload is the broadcast form of a playback event.
type eventPayload struct {
	Event string              `json:"event"`
	Track *playback.TrackInfo `json:"track,omitempty"`
}

func (s *Service) handleEvent(ctx context.Context, e playback.Event) {
	s.hub.Broadcast(ws.NewMessage(ws.TypePlayback, eventPayload{
		Event: e.Type.String(),
		Track: e.Track,
	}), ws.BroadcastOptions{})
	s.hub.Broadcast(ws.NewMessage(ws.TypeState, e.State), ws.BroadcastOptions{})

	switch e.Type {
	case playback.EventStarted, playback.EventNext, playback.EventPrevious:
		if e.Track != nil {
			if err := s.library.RecordListen(ctx, e.Track.ID); err != nil {
				zlog.Warn().Msgf("player: failed to record listen for %s: %v", e.Track.ID, err)
			}
		}
	case playback.EventQueueEmpty:
		s.keepPlaying(ctx, e.Track)
	}
}

// keepPlaying asks the autoplay chain for a follow-up track once the
// queue has run dry.
func (s *Service) keepPlaying(ctx context.Context, finished *playback.TrackInfo) {
	if s.autoplay == nil {
		return
	}

	var last *track.Track
	if finished != nil {
		last = &track.Track{ID: finished.ID, Title: finished.Title, Artist: finished.Artist}
	}

	next, err := s.autoplay.Pick(ctx, last)
	if err != nil {
		zlog.Warn().Msgf("player: autoplay pick failed: %v", err)
		return
	}
	if next == nil {
		zlog.Debug().Msg("player: autoplay found nothing to play")
		return
	}

	zlog.Info().Msgf("player: autoplay starting %s - %s", next.Artist, next.Title)
	if _, err := s.store.Start(ctx, next.ID); err != nil {
		zlog.Warn().Msgf("player: autoplay start failed: %v", err)
	}
}

// admitToQueue runs the policy chain against the current queue before a
// track is added.
func (s *Service) admitToQueue(ctx context.Context, trackID string) error {
	if s.policies == nil {
		return nil
	}

	t, err := s.library.FindTrackByID(ctx, trackID)
	if err != nil || t == nil {
		// The store surfaces resolution problems with a proper error.
		return nil
	}

	snap := s.store.State()
	queue := make([]policy.Entry, len(snap.Queue))
	for i, q := range snap.Queue {
		queue[i] = policy.Entry{ID: q.ID, Title: q.Title, Artist: q.Artist}
	}

	result := s.policies.Execute(policy.Entry{ID: t.ID, Title: t.Title, Artist: t.Artist}, queue)
	if !result.Accepted {
		return rejectionError(result.Code)
	}
	return nil
}
