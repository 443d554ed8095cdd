package autoplay

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// RandomProvider picks an arbitrary library track, avoiding an
// immediate repeat of the one that just finished.
type RandomProvider struct {
	library Library
}

// NewRandomProvider creates a random provider.
func NewRandomProvider(library Library) *RandomProvider {
	return &RandomProvider{library: library}
}

// Pick returns a random library track.
func (p *RandomProvider) Pick(ctx context.Context, last *track.Track) (*track.Track, error) {
	excludeID := ""
	if last != nil {
		excludeID = last.ID
	}

	next, err := p.library.RandomTrack(ctx, excludeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pick random library track")
	}
	return next, nil
}

// Name returns the provider name.
func (p *RandomProvider) Name() string {
	return "random"
}
