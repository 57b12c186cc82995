package calculator

import "errors"

// ErrInvalidScoreRange is returned when the minimum winning score cannot be
// used as a divisor.
var ErrInvalidScoreRange = errors.New("minimum score must be positive")

// Competition levels used for map markers.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// Fixed business constants of the competition summary.
const (
	NationalAverageCompetitionRate = 12.9
	DefaultWinningChance           = 3.9
	DefaultRequiredScore           = 72
	// MinScoreMargin is subtracted from the required score when an apartment
	// carries no explicit minimum winning score.
	MinScoreMargin = 5
)

const (
	maxWinningChance  = 85.0
	baseWinningChance = 30.0
	minWinningChance  = 1.0
)

// WinningChance estimates the chance in percent of winning with userScore for
// an apartment whose winners scored between minScore and maxScore.
// The result lies in [1, 85].
func WinningChance(userScore, minScore, maxScore float64) (float64, error) {
	if userScore >= maxScore {
		return maxWinningChance, nil
	}
	if userScore >= minScore {
		// userScore < maxScore here, so maxScore > minScore.
		return baseWinningChance + (userScore-minScore)*((maxWinningChance-baseWinningChance)/(maxScore-minScore)), nil
	}
	if minScore <= 0 {
		return 0, ErrInvalidScoreRange
	}
	return max(minWinningChance, baseWinningChance*(userScore/minScore)), nil
}

// CompetitionLevel classifies a competition rate
func CompetitionLevel(rate float64) string {
	switch {
	case rate >= 30:
		return LevelHigh
	case rate >= 15:
		return LevelMedium
	default:
		return LevelLow
	}
}
