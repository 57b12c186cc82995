package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

const apartmentsCacheKey = "apartments"

func toView(apt *models.Apartment) models.ApartmentView {
	return models.ApartmentView{
		ID:              apt.ID,
		Name:            apt.Name,
		Location:        apt.Location,
		CompetitionRate: apt.CompetitionRate,
		Level:           calculator.CompetitionLevel(apt.CompetitionRate),
		RequiredScore:   apt.AvgScore,
		Coordinates:     apt.Coordinates,
	}
}

func toViews(apartments []*models.Apartment) []models.ApartmentView {
	views := make([]models.ApartmentView, 0, len(apartments))
	for _, apt := range apartments {
		views = append(views, toView(apt))
	}
	return views
}

// ListApartments returns all apartments for the map, from cache when possible
func (s *Service) ListApartments(ctx context.Context) ([]models.ApartmentView, error) {
	if cached, ok := s.cache.Get(ctx, apartmentsCacheKey); ok {
		var views []models.ApartmentView
		if err := json.Unmarshal([]byte(cached), &views); err == nil {
			return views, nil
		}
		s.log.Warn("Discarding unreadable apartments cache entry")
	}

	apartments, err := s.repo.ListApartments(ctx)
	if err != nil {
		return nil, err
	}
	views := toViews(apartments)

	if b, err := json.Marshal(views); err == nil {
		if err := s.cache.Set(ctx, apartmentsCacheKey, string(b)); err != nil {
			s.log.WithError(err).Warn("Failed to cache apartments")
		}
	}
	return views, nil
}

// GetApartment returns one apartment
func (s *Service) GetApartment(ctx context.Context, id int64) (*models.ApartmentView, error) {
	apt, err := s.repo.GetApartment(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toView(apt)
	return &view, nil
}

// scoreBounds returns the winning score range used for chance estimates. The
// range always spans MinScoreMargin below the required (average) score; the
// stored minimum is shown in listings but does not move the estimate.
func scoreBounds(apt *models.Apartment) (minScore, maxScore int) {
	maxScore = apt.AvgScore
	minScore = max(maxScore-calculator.MinScoreMargin, 0)
	return minScore, maxScore
}

// AnalyzeApartment compares userScore with the winning scores of an apartment.
// The chance is estimated against scoreBounds, so two apartments with the same
// required score give the same chance whatever their stored minimum.
func (s *Service) AnalyzeApartment(ctx context.Context, id int64, userScore int) (*models.CompetitionAnalysis, error) {
	if userScore < 0 || userScore > calculator.MaxTotalScore {
		return nil, invalid("score must be between 0 and %d", calculator.MaxTotalScore)
	}

	apt, err := s.repo.GetApartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.AvgScore <= 0 {
		return nil, invalid("apartment %d has no winning scores", id)
	}

	minScore, maxScore := scoreBounds(apt)
	chance, err := calculator.WinningChance(float64(userScore), float64(minScore), float64(maxScore))
	if err != nil {
		return nil, fmt.Errorf("%w: apartment %d: %v", ErrInvalidInput, id, err)
	}

	return &models.CompetitionAnalysis{
		ApartmentID:     apt.ID,
		CompetitionRate: apt.CompetitionRate,
		Level:           calculator.CompetitionLevel(apt.CompetitionRate),
		RequiredScore:   apt.AvgScore,
		UserScore:       userScore,
		ScoreDifference: apt.AvgScore - userScore,
		WinningChance:   chance,
	}, nil
}

// DeleteApartment removes an apartment
func (s *Service) DeleteApartment(ctx context.Context, id int64) error {
	if err := s.repo.DeleteApartment(ctx, id); err != nil {
		return err
	}
	s.invalidateApartments(ctx)
	s.log.Infof("Apartment deleted: %d", id)
	return nil
}

func (s *Service) invalidateApartments(ctx context.Context) {
	if err := s.cache.Delete(ctx, apartmentsCacheKey); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate apartments cache")
	}
}
