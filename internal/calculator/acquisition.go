package calculator

import "math"

// TaxInput holds purchase details for the acquisition tax calculation
type TaxInput struct {
	Price            float64 `json:"price"` // 10k won
	HouseCount       int     `json:"houseCount"`
	IsFirstTimeBuyer bool    `json:"isFirstTimeBuyer"`
	// IsRestrictedArea is accepted for parity with the holding tax form but
	// does not affect the acquisition tax rate.
	IsRestrictedArea bool `json:"isRestrictedArea"`
}

// TaxResult holds the one-off costs of a purchase in won
type TaxResult struct {
	AcquisitionTax  int64 `json:"acquisitionTax"`
	EducationTax    int64 `json:"educationTax"`
	StampDuty       int64 `json:"stampDuty"`
	BrokerageFee    int64 `json:"brokerageFee"`
	RegistrationFee int64 `json:"registrationFee"`
	TotalCost       int64 `json:"totalCost"`
}

const (
	// WonPerUnit converts the 10k-won input unit to won.
	WonPerUnit = 10000

	firstHomeLimit = 600_000_000
	midPriceLimit  = 600_000_000
	highPriceLimit = 900_000_000

	firstHomeRate = 0.005
	baseRate      = 0.01
	midRate       = 0.02
	highRate      = 0.03

	educationTaxRate = 0.1

	stampDutyLimit = 1_000_000_000
	stampDutyHigh  = 350_000
	stampDutyBase  = 150_000

	registrationFee = 300_000
)

// CalculateAcquisitionTax computes taxes and fees due when buying a home
func CalculateAcquisitionTax(input TaxInput) TaxResult {
	price := input.Price * WonPerUnit

	acquisitionTax := floorWon(price * acquisitionRate(price, input.HouseCount, input.IsFirstTimeBuyer))
	educationTax := floorWon(float64(acquisitionTax) * educationTaxRate)

	stampDuty := int64(stampDutyBase)
	if price > stampDutyLimit {
		stampDuty = stampDutyHigh
	}

	brokerageFee := BrokerageFee(price)

	return TaxResult{
		AcquisitionTax:  acquisitionTax,
		EducationTax:    educationTax,
		StampDuty:       stampDuty,
		BrokerageFee:    brokerageFee,
		RegistrationFee: registrationFee,
		TotalCost:       acquisitionTax + educationTax + stampDuty + brokerageFee + registrationFee,
	}
}

func acquisitionRate(price float64, houseCount int, firstTime bool) float64 {
	switch {
	case firstTime && houseCount == 1 && price <= firstHomeLimit:
		return firstHomeRate
	case price > highPriceLimit:
		return highRate
	case price > midPriceLimit:
		return midRate
	default:
		return baseRate
	}
}

// BrokerageRate returns the agent commission rate for a price in won.
// Above 900M won the negotiable upper bound is used.
func BrokerageRate(price float64) float64 {
	switch {
	case price < 50_000_000:
		return 0.006
	case price < 200_000_000:
		return 0.005
	case price < 600_000_000:
		return 0.004
	case price < 900_000_000:
		return 0.005
	default:
		return 0.009
	}
}

// BrokerageFee returns the agent commission in won for a price in won
func BrokerageFee(price float64) int64 {
	return floorWon(price * BrokerageRate(price))
}

func floorWon(v float64) int64 {
	return int64(math.Floor(v))
}
