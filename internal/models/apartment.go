package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Coordinates is a map position stored as jsonb
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Value implements driver.Valuer
func (c Coordinates) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (c *Coordinates) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Coordinates{}
		return nil
	default:
		return fmt.Errorf("unsupported coordinates type %T", src)
	}
}

// Apartment is a stored apartment complex with its competition results
type Apartment struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	CompetitionRate float64     `json:"competitionRate"`
	MinScore        int         `json:"minScore"`
	AvgScore        int         `json:"avgScore"`
	Coordinates     Coordinates `json:"coordinates"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// ApartmentView is the public representation used by the map and lists
type ApartmentView struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	CompetitionRate float64     `json:"competitionRate"`
	Level           string      `json:"level"`
	RequiredScore   int         `json:"requiredScore"`
	Coordinates     Coordinates `json:"coordinates"`
}

// RecentApartment is the short form listed in an upload summary
type RecentApartment struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	CompetitionRate float64 `json:"competitionRate"`
	MinScore        int     `json:"minScore"`
	AvgScore        int     `json:"avgScore"`
}

// CompetitionSummary is returned after competition data is uploaded
type CompetitionSummary struct {
	Apartments             []ApartmentView   `json:"apartments"`
	AverageCompetitionRate float64           `json:"averageCompetitionRate"`
	NationalAvgDiff        float64           `json:"nationalAvgDiff"`
	WinningChance          float64           `json:"winningChance"`
	RequiredScore          int               `json:"requiredScore"`
	RecentApartments       []RecentApartment `json:"recentApartments"`
}

// CompetitionAnalysis compares a user score against one apartment
type CompetitionAnalysis struct {
	ApartmentID     int64   `json:"apartmentId"`
	CompetitionRate float64 `json:"competitionRate"`
	Level           string  `json:"level"`
	RequiredScore   int     `json:"requiredScore"`
	UserScore       int     `json:"userScore"`
	ScoreDifference int     `json:"scoreDifference"`
	WinningChance   float64 `json:"winningChance"`
}
