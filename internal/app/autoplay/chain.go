package autoplay

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// Chain tries providers in order until one produces a track.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider chain.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Pick asks each provider in turn. A provider error is logged and the
// next one is tried; (nil, nil) means every provider came up empty.
func (c *Chain) Pick(ctx context.Context, last *track.Track) (*track.Track, error) {
	for _, p := range c.providers {
		next, err := p.Pick(ctx, last)
		if err != nil {
			zlog.Warn().Msgf("autoplay: provider %s failed, trying next: %v", p.Name(), err)
			continue
		}
		if next == nil {
			zlog.Debug().Msgf("autoplay: provider %s returned no track", p.Name())
			continue
		}
		return next, nil
	}
	return nil, nil
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return "provider_chain"
}

// ForMode builds the chain for a configured mode. Random mode falls
// back to sequential order when the library is too small to avoid a
// repeat.
func ForMode(mode string, library Library) (*Chain, error) {
	switch mode {
	case "sequential":
		return NewChain(NewSequentialProvider(library)), nil
	case "random":
		return NewChain(NewRandomProvider(library), NewSequentialProvider(library)), nil
	default:
		return nil, errors.Newf("unknown autoplay mode: %s", mode)
	}
}
