package player

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/skerrve/jukehub/internal/app/playback"
	"github.com/skerrve/jukehub/internal/app/ws"
)

type playPayload struct {
	TrackID string `mapstructure:"trackId"`
}

type seekPayload struct {
	Position float64 `mapstructure:"position"`
}

type volumePayload struct {
	Volume int `mapstructure:"volume"`
}

type addToQueuePayload struct {
	TrackID string `mapstructure:"trackId"`
	Index   *int   `mapstructure:"index"`
}

type removeFromQueuePayload struct {
	Index int `mapstructure:"index"`
}

type repeatPayload struct {
	Mode string `mapstructure:"mode"`
}

// registerCommands binds every playback action to the hub. Handlers
// only return errors; state fan-out happens in the event loop.
func (s *Service) registerCommands() {
	s.hub.RegisterHandler(ws.ActionPlay, func(ctx context.Context, _ string, cmd ws.Command) error {
		var p playPayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		_, err := s.store.Start(ctx, p.TrackID)
		return err
	})

	s.hub.RegisterHandler(ws.ActionPause, func(context.Context, string, ws.Command) error {
		_, err := s.store.Pause()
		return err
	})

	s.hub.RegisterHandler(ws.ActionResume, func(context.Context, string, ws.Command) error {
		_, err := s.store.Resume()
		return err
	})

	s.hub.RegisterHandler(ws.ActionStop, func(context.Context, string, ws.Command) error {
		_, err := s.store.Stop()
		return err
	})

	s.hub.RegisterHandler(ws.ActionNext, func(context.Context, string, ws.Command) error {
		_, err := s.store.PlayNext()
		return err
	})

	s.hub.RegisterHandler(ws.ActionPrevious, func(context.Context, string, ws.Command) error {
		_, err := s.store.PlayPrevious()
		return err
	})

	s.hub.RegisterHandler(ws.ActionSeek, func(_ context.Context, _ string, cmd ws.Command) error {
		var p seekPayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		_, err := s.store.SeekTo(p.Position)
		return err
	})

	s.hub.RegisterHandler(ws.ActionSetVolume, func(_ context.Context, _ string, cmd ws.Command) error {
		var p volumePayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		s.store.SetVolume(p.Volume)
		return nil
	})

	s.hub.RegisterHandler(ws.ActionAddToQueue, func(ctx context.Context, _ string, cmd ws.Command) error {
		var p addToQueuePayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		if err := s.admitToQueue(ctx, p.TrackID); err != nil {
			return err
		}
		_, err := s.store.AddToQueue(ctx, p.TrackID, p.Index)
		return err
	})

	s.hub.RegisterHandler(ws.ActionRemoveFromQueue, func(_ context.Context, _ string, cmd ws.Command) error {
		var p removeFromQueuePayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		_, err := s.store.RemoveFromQueue(p.Index)
		return err
	})

	s.hub.RegisterHandler(ws.ActionClearQueue, func(context.Context, string, ws.Command) error {
		s.store.ClearQueue()
		return nil
	})

	s.hub.RegisterHandler(ws.ActionGetState, func(_ context.Context, clientID string, _ ws.Command) error {
		s.hub.SendTo(clientID, ws.NewMessage(ws.TypeState, s.store.State()))
		return nil
	})

	s.hub.RegisterHandler(ws.ActionToggleShuffle, func(context.Context, string, ws.Command) error {
		s.store.ToggleShuffle()
		return nil
	})

	s.hub.RegisterHandler(ws.ActionSetRepeat, func(_ context.Context, _ string, cmd ws.Command) error {
		var p repeatPayload
		if err := cmd.Decode(&p); err != nil {
			return err
		}
		mode, err := playback.ParseRepeatMode(p.Mode)
		if err != nil {
			return err
		}
		_, err = s.store.SetRepeat(mode)
		return err
	})
}

// rejectionError converts a policy code into a client-facing error.
func rejectionError(code string) error {
	switch code {
	case "duplicate_track":
		return errors.New("track is already in the queue")
	case "queue_full":
		return errors.New("queue is full")
	default:
		return errors.Newf("request rejected: %s", code)
	}
}
