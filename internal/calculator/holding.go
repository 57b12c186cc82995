package calculator

// HoldingTaxInput holds the data for the yearly holding tax calculation
type HoldingTaxInput struct {
	PublicPrice      float64 `json:"publicPrice"` // 10k won
	HouseCount       int     `json:"houseCount"`
	IsRestrictedArea bool    `json:"isRestrictedArea"`
	IsDiscounted     bool    `json:"isDiscounted"`
}

// HoldingTaxResult holds the yearly holding taxes in won
type HoldingTaxResult struct {
	PropertyTax                int64 `json:"propertyTax"`
	ComprehensiveRealEstateTax int64 `json:"comprehensiveRealEstateTax"`
	TotalTax                   int64 `json:"totalTax"`
}

const (
	singleHomeThreshold = 1_200_000_000
	multiHomeThreshold  = 600_000_000

	comprehensiveBaseRate       = 0.006
	comprehensiveRestrictedRate = 0.012
	comprehensiveDiscountFactor = 0.7
)

// CalculateHoldingTax computes property tax and comprehensive real estate tax
func CalculateHoldingTax(input HoldingTaxInput) HoldingTaxResult {
	price := input.PublicPrice * WonPerUnit

	propertyTax := floorWon(price * propertyTaxRate(price))
	comprehensive := comprehensiveTax(price, input.HouseCount, input.IsRestrictedArea, input.IsDiscounted)

	return HoldingTaxResult{
		PropertyTax:                propertyTax,
		ComprehensiveRealEstateTax: comprehensive,
		TotalTax:                   propertyTax + comprehensive,
	}
}

func propertyTaxRate(price float64) float64 {
	switch {
	case price > 900_000_000:
		return 0.003
	case price > 600_000_000:
		return 0.002
	default:
		return 0.001
	}
}

func comprehensiveTax(price float64, houseCount int, restricted, discounted bool) int64 {
	threshold := float64(multiHomeThreshold)
	if houseCount == 1 {
		threshold = singleHomeThreshold
	}

	base := max(price-threshold, 0)
	if base <= 0 {
		return 0
	}

	rate := comprehensiveBaseRate
	if houseCount > 1 && restricted {
		rate = comprehensiveRestrictedRate
	}

	tax := floorWon(base * rate)
	if discounted {
		tax = floorWon(float64(tax) * comprehensiveDiscountFactor)
	}
	return tax
}
