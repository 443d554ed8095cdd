// Package autoplay provides track selection strategies for keeping
// playback going after the queue runs dry.
package autoplay

import (
	"context"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// Provider is the interface for autoplay track providers. Different
// implementations pick the follow-up track through various strategies.
type Provider interface {
	// Pick selects the next track to play. last is the track that just
	// finished (nil when playback was never started). Returning
	// (nil, nil) means the provider has nothing to offer.
	Pick(ctx context.Context, last *track.Track) (*track.Track, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Library defines the catalog operations providers need.
type Library interface {
	NextTrackAfter(ctx context.Context, id string) (*track.Track, error)
	RandomTrack(ctx context.Context, excludeID string) (*track.Track, error)
}
