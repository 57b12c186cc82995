package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
)

func ptr(v float64) *float64 { return &v }

func TestCalculateScore_RecordsCalculation(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.CalculateScore(context.Background(), calculator.ScoreInput{
		Age: 35, NoHomePeriod: 10, Dependents: 2, SubscriptionPeriod: 8, Income: 3500,
	})
	require.NoError(t, err)

	assert.Equal(t, 58, resp.TotalScore)
	assert.Equal(t, 52, resp.Probability)
	require.Len(t, env.store.scores, 1)
	assert.Equal(t, env.store.scores[0].ID, resp.ID)
	assert.Equal(t, 58, env.store.scores[0].TotalScore)
}

func TestCalculateScore_SaveFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.store.scoreErr = errors.New("db down")

	resp, err := env.svc.CalculateScore(context.Background(), calculator.ScoreInput{Age: 40, Dependents: 3})
	require.NoError(t, err)

	assert.Zero(t, resp.ID)
	assert.Equal(t, 60, resp.TotalScore)
	assert.Equal(t, logrus.WarnLevel, env.hook.LastEntry().Level)
}

func TestCalculateScore_RejectsNegative(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CalculateScore(context.Background(), calculator.ScoreInput{Age: 30, Income: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "income")
	assert.Empty(t, env.store.scores)
}

func TestCalculateAcquisitionTax_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CalculateAcquisitionTax(ctx, calculator.TaxInput{Price: 50000, HouseCount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5000000), res.AcquisitionTax)

	tests := []struct {
		name  string
		input calculator.TaxInput
	}{
		{"zero price", calculator.TaxInput{Price: 0, HouseCount: 1}},
		{"negative price", calculator.TaxInput{Price: -1, HouseCount: 1}},
		{"nan price", calculator.TaxInput{Price: math.NaN(), HouseCount: 1}},
		{"infinite price", calculator.TaxInput{Price: math.Inf(1), HouseCount: 1}},
		{"no houses", calculator.TaxInput{Price: 50000, HouseCount: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CalculateAcquisitionTax(ctx, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCalculateHoldingTax_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CalculateHoldingTax(ctx, calculator.HoldingTaxInput{PublicPrice: 130000, HouseCount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4500000), res.TotalTax)

	_, err = env.svc.CalculateHoldingTax(ctx, calculator.HoldingTaxInput{PublicPrice: -5, HouseCount: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.CalculateHoldingTax(ctx, calculator.HoldingTaxInput{PublicPrice: 5, HouseCount: -2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvertArea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.ConvertArea(ctx, calculator.AreaConversionInput{Pyeong: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, calculator.AreaConversionResult{Value: 33.06, Unit: calculator.UnitSquareMeters}, *res)

	res, err = env.svc.ConvertArea(ctx, calculator.AreaConversionInput{SquareMeters: ptr(84)})
	require.NoError(t, err)
	assert.Equal(t, calculator.AreaConversionResult{Value: 25.41, Unit: calculator.UnitPyeong}, *res)

	tests := []struct {
		name  string
		input calculator.AreaConversionInput
	}{
		{"empty", calculator.AreaConversionInput{}},
		{"both", calculator.AreaConversionInput{Pyeong: ptr(1), SquareMeters: ptr(1)}},
		{"zero pyeong", calculator.AreaConversionInput{Pyeong: ptr(0)}},
		{"negative square meters", calculator.AreaConversionInput{SquareMeters: ptr(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.ConvertArea(ctx, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
