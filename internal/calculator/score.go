package calculator

import "math"

// ScoreInput holds the applicant data used for the subscription score
type ScoreInput struct {
	Age                int `json:"age"`
	NoHomePeriod       int `json:"noHomePeriod"`
	Dependents         int `json:"dependents"`
	SubscriptionPeriod int `json:"subscriptionPeriod"`
	Income             int `json:"income"` // 10k won
}

// ScoreResult holds the sub-scores and total subscription score
type ScoreResult struct {
	AgeScore                int `json:"ageScore"`
	NoHomePeriodScore       int `json:"noHomePeriodScore"`
	DependentsScore         int `json:"dependentsScore"`
	SubscriptionPeriodScore int `json:"subscriptionPeriodScore"`
	IncomeScore             int `json:"incomeScore"`
	TotalScore              int `json:"totalScore"`
	Probability             int `json:"probability"`
}

// MaxTotalScore is the highest possible subscription score
const MaxTotalScore = 100

const (
	maxPeriodScore     = 20
	probabilityFactor  = 0.9
	maxProbabilityRate = 100
)

// CalculateScore computes the subscription score for the given input
func CalculateScore(input ScoreInput) ScoreResult {
	res := ScoreResult{
		AgeScore:                ageScore(input.Age),
		NoHomePeriodScore:       min(maxPeriodScore, input.NoHomePeriod),
		DependentsScore:         dependentsScore(input.Dependents),
		SubscriptionPeriodScore: min(maxPeriodScore, input.SubscriptionPeriod),
		IncomeScore:             incomeScore(input.Income),
	}

	sum := res.AgeScore + res.NoHomePeriodScore + res.DependentsScore + res.SubscriptionPeriodScore + res.IncomeScore
	res.TotalScore = min(MaxTotalScore, sum)
	res.Probability = Probability(res.TotalScore)
	return res
}

// Probability maps a total score to the fixed linear winning estimate
func Probability(totalScore int) int {
	return min(maxProbabilityRate, int(math.Round(float64(totalScore)*probabilityFactor)))
}

func ageScore(age int) int {
	switch {
	case age >= 40:
		return 20
	case age >= 35:
		return 15
	case age >= 30:
		return 10
	case age >= 25:
		return 5
	default:
		return 2
	}
}

func dependentsScore(dependents int) int {
	switch {
	case dependents >= 3:
		return 30
	case dependents == 2:
		return 20
	case dependents == 1:
		return 10
	default:
		return 0
	}
}

func incomeScore(income int) int {
	switch {
	case income <= 2000:
		return 10
	case income <= 4000:
		return 5
	case income <= 6000:
		return 2
	default:
		return 0
	}
}
