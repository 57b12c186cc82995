package calculator

import "math"

// Area units returned by ConvertArea.
const (
	UnitSquareMeters = "m²"
	UnitPyeong       = "평"
)

// The two factors are industry-rounded and are not exact reciprocals.
const (
	squareMetersPerPyeong = 3.305785
	pyeongPerSquareMeter  = 0.3025
)

// AreaConversionInput carries exactly one of Pyeong or SquareMeters
type AreaConversionInput struct {
	Pyeong       *float64 `json:"pyeong,omitempty"`
	SquareMeters *float64 `json:"squareMeters,omitempty"`
}

// AreaConversionResult is a converted area rounded to two decimals
type AreaConversionResult struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PyeongToSquareMeters converts pyeong to square meters, rounded to 2 decimals
func PyeongToSquareMeters(pyeong float64) float64 {
	return roundTo2Decimals(pyeong * squareMetersPerPyeong)
}

// SquareMetersToPyeong converts square meters to pyeong, rounded to 2 decimals
func SquareMetersToPyeong(sqm float64) float64 {
	return roundTo2Decimals(sqm * pyeongPerSquareMeter)
}

// ConvertArea converts whichever unit is set. Pyeong wins when both are set;
// callers are expected to have rejected that case.
func ConvertArea(input AreaConversionInput) AreaConversionResult {
	if input.Pyeong != nil {
		return AreaConversionResult{Value: PyeongToSquareMeters(*input.Pyeong), Unit: UnitSquareMeters}
	}
	if input.SquareMeters != nil {
		return AreaConversionResult{Value: SquareMetersToPyeong(*input.SquareMeters), Unit: UnitPyeong}
	}
	return AreaConversionResult{}
}

func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
