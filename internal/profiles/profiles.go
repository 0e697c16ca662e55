// Package profiles aggregates the distinct feed-profile labels used by
// stored articles and briefs, for use in feed-profile selectors.
package profiles

import (
	"context"

	"curator/internal/core"
	"curator/internal/store"
)

// Service lists feed profiles over the repository's distinct-profile scan.
type Service struct {
	store *store.Store
}

// NewService creates a profile aggregation service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns the distinct feed profiles present in the selected table.
// The "default" sentinel is always present and always first, so selectors
// have a usable option even before any row exists; the remaining profiles
// follow in ascending order.
func (s *Service) List(ctx context.Context, source store.ProfileSource) ([]string, error) {
	distinct, err := s.store.GetDistinctFeedProfiles(ctx, source)
	if err != nil {
		return nil, err
	}

	profiles := []string{core.DefaultFeedProfile}
	for _, profile := range distinct {
		if profile != core.DefaultFeedProfile {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}
