package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
	"github.com/Dan9191/ziptalk-calculator/internal/metrics"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalid("%s must be a positive number", name)
	}
	return nil
}

func reject(name string, err error) error {
	metrics.CalculationErrors.WithLabelValues(name).Inc()
	return err
}

// CalculateScore computes a subscription score and records it. A failed save
// does not fail the calculation; the response then carries no id.
func (s *Service) CalculateScore(ctx context.Context, input calculator.ScoreInput) (*models.ScoreResponse, error) {
	fields := []struct {
		name  string
		value int
	}{
		{"age", input.Age},
		{"noHomePeriod", input.NoHomePeriod},
		{"dependents", input.Dependents},
		{"subscriptionPeriod", input.SubscriptionPeriod},
		{"income", input.Income},
	}
	for _, f := range fields {
		if f.value < 0 {
			return nil, reject(metrics.CalculatorScore, invalid("%s must not be negative", f.name))
		}
	}

	result := calculator.CalculateScore(input)
	resp := &models.ScoreResponse{ScoreResult: result}

	record := &models.SubscriptionScore{
		Age:                input.Age,
		NoHomePeriod:       input.NoHomePeriod,
		Dependents:         input.Dependents,
		SubscriptionPeriod: input.SubscriptionPeriod,
		Income:             input.Income,
		TotalScore:         result.TotalScore,
	}
	if err := s.repo.CreateScore(ctx, record); err != nil {
		s.log.WithError(err).Warn("Failed to save score calculation")
	} else {
		resp.ID = record.ID
	}

	metrics.CalculationsTotal.WithLabelValues(metrics.CalculatorScore).Inc()
	s.log.WithFields(logrus.Fields{
		"total_score": result.TotalScore,
		"probability": result.Probability,
	}).Debug("Score calculated")
	return resp, nil
}

// CalculateAcquisitionTax computes the one-time costs of buying a home
func (s *Service) CalculateAcquisitionTax(_ context.Context, input calculator.TaxInput) (*calculator.TaxResult, error) {
	if err := positive("price", input.Price); err != nil {
		return nil, reject(metrics.CalculatorAcquisitionTax, err)
	}
	if input.HouseCount < 1 {
		return nil, reject(metrics.CalculatorAcquisitionTax, invalid("houseCount must be at least 1"))
	}

	result := calculator.CalculateAcquisitionTax(input)
	metrics.CalculationsTotal.WithLabelValues(metrics.CalculatorAcquisitionTax).Inc()
	return &result, nil
}

// CalculateHoldingTax computes the annual holding taxes
func (s *Service) CalculateHoldingTax(_ context.Context, input calculator.HoldingTaxInput) (*calculator.HoldingTaxResult, error) {
	if err := positive("publicPrice", input.PublicPrice); err != nil {
		return nil, reject(metrics.CalculatorHoldingTax, err)
	}
	if input.HouseCount < 1 {
		return nil, reject(metrics.CalculatorHoldingTax, invalid("houseCount must be at least 1"))
	}

	result := calculator.CalculateHoldingTax(input)
	metrics.CalculationsTotal.WithLabelValues(metrics.CalculatorHoldingTax).Inc()
	return &result, nil
}

// ConvertArea converts between pyeong and square meters. Exactly one of the
// input fields must be set.
func (s *Service) ConvertArea(_ context.Context, input calculator.AreaConversionInput) (*calculator.AreaConversionResult, error) {
	switch {
	case input.Pyeong != nil && input.SquareMeters != nil:
		return nil, reject(metrics.CalculatorArea, invalid("only one of pyeong and squareMeters may be set"))
	case input.Pyeong != nil:
		if err := positive("pyeong", *input.Pyeong); err != nil {
			return nil, reject(metrics.CalculatorArea, err)
		}
	case input.SquareMeters != nil:
		if err := positive("squareMeters", *input.SquareMeters); err != nil {
			return nil, reject(metrics.CalculatorArea, err)
		}
	default:
		return nil, reject(metrics.CalculatorArea, invalid("one of pyeong and squareMeters is required"))
	}

	result := calculator.ConvertArea(input)
	metrics.CalculationsTotal.WithLabelValues(metrics.CalculatorArea).Inc()
	return &result, nil
}
