package projections

import (
	"context"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/motivation"
)

// GetMotivationResult carries the read-only reel listing.
type GetMotivationResult struct {
	Reels   []motivation.Reel `json:"reels"`
	Active  int               `json:"active"`
	Authors int               `json:"authors"`
}

// GetMotivationDeps holds dependencies for the motivation lounge projection.
type GetMotivationDeps struct {
	Reels records.MotivationReader
}

// QueryGetMotivation lists motivation reels, newest first.
func QueryGetMotivation(ctx context.Context, deps GetMotivationDeps) (GetMotivationResult, error) {
	reels, err := deps.Reels.ListMotivationReels(ctx)
	if err != nil {
		return GetMotivationResult{}, err
	}
	if reels == nil {
		reels = []motivation.Reel{}
	}
	return GetMotivationResult{
		Reels:   reels,
		Active:  motivation.CountActive(reels),
		Authors: motivation.CountAuthors(reels),
	}, nil
}
