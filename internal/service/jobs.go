package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/ziptalk-calculator/internal/metrics"
)

// ErrFeedDisabled is returned by SyncApartments when no feed is configured
var ErrFeedDisabled = errors.New("public data feed is not configured")

// SyncApartments pulls the public-data feed and upserts its apartments.
// It returns the number of apartments stored.
func (s *Service) SyncApartments(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, ErrFeedDisabled
	}

	apartments, err := s.feed.FetchCompetitionRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch competition rates: %w", err)
	}

	stored := 0
	for i := range apartments {
		if err := s.repo.UpsertApartment(ctx, &apartments[i]); err != nil {
			s.log.WithError(err).Errorf("Failed to store apartment %s", apartments[i].Name)
			continue
		}
		stored++
	}

	if stored > 0 {
		s.invalidateApartments(ctx)
		metrics.ApartmentsImported.WithLabelValues("feed").Add(float64(stored))
	}
	s.log.Infof("Synced %d of %d apartments from feed", stored, len(apartments))

	if stored == 0 && len(apartments) > 0 {
		return 0, fmt.Errorf("failed to store any of %d apartments", len(apartments))
	}
	return stored, nil
}

// PurgeScores removes recorded score calculations older than olderThan
func (s *Service) PurgeScores(ctx context.Context, olderThan time.Duration) (int64, error) {
	before := s.now().Add(-olderThan)
	n, err := s.repo.DeleteScoresBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	s.log.Infof("Purged %d score records created before %s", n, before.Format(time.RFC3339))
	return n, nil
}
