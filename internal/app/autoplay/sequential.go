package autoplay

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// SequentialProvider walks the library in album order, wrapping around
// at the end.
type SequentialProvider struct {
	library Library
}

// NewSequentialProvider creates a sequential provider.
func NewSequentialProvider(library Library) *SequentialProvider {
	return &SequentialProvider{library: library}
}

// Pick returns the library track following the last played one. With no
// history it starts from the top.
func (p *SequentialProvider) Pick(ctx context.Context, last *track.Track) (*track.Track, error) {
	lastID := ""
	if last != nil {
		lastID = last.ID
	}

	next, err := p.library.NextTrackAfter(ctx, lastID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find next library track")
	}
	return next, nil
}

// Name returns the provider name.
func (p *SequentialProvider) Name() string {
	return "sequential"
}
