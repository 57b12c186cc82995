package models

import (
	"time"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
)

// SubscriptionScore is a recorded score calculation
type SubscriptionScore struct {
	ID                 int64     `json:"id"`
	UserID             *int64    `json:"userId,omitempty"`
	Age                int       `json:"age"`
	NoHomePeriod       int       `json:"noHomePeriod"`
	Dependents         int       `json:"dependents"`
	SubscriptionPeriod int       `json:"subscriptionPeriod"`
	Income             int       `json:"income"`
	TotalScore         int       `json:"totalScore"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ScoreRequest is the score calculator payload. Pointers let validation tell
// a missing field from a zero.
type ScoreRequest struct {
	Age                *int `json:"age" validate:"required,min=0,max=150"`
	NoHomePeriod       *int `json:"noHomePeriod" validate:"required,min=0"`
	Dependents         *int `json:"dependents" validate:"required,min=0"`
	SubscriptionPeriod *int `json:"subscriptionPeriod" validate:"required,min=0"`
	Income             *int `json:"income" validate:"required,min=0"`
}

// Input converts a validated request to the calculator input
func (r ScoreRequest) Input() calculator.ScoreInput {
	return calculator.ScoreInput{
		Age:                *r.Age,
		NoHomePeriod:       *r.NoHomePeriod,
		Dependents:         *r.Dependents,
		SubscriptionPeriod: *r.SubscriptionPeriod,
		Income:             *r.Income,
	}
}

// ScoreResponse is a score result with the id of the recorded row
type ScoreResponse struct {
	calculator.ScoreResult
	ID int64 `json:"id,omitempty"`
}

// AcquisitionTaxRequest is the acquisition tax calculator payload
type AcquisitionTaxRequest struct {
	Price            *float64 `json:"price" validate:"required,gt=0"`
	HouseCount       *int     `json:"houseCount" validate:"required,min=1"`
	IsFirstTimeBuyer bool     `json:"isFirstTimeBuyer"`
	IsRestrictedArea bool     `json:"isRestrictedArea"`
}

// Input converts a validated request to the calculator input
func (r AcquisitionTaxRequest) Input() calculator.TaxInput {
	return calculator.TaxInput{
		Price:            *r.Price,
		HouseCount:       *r.HouseCount,
		IsFirstTimeBuyer: r.IsFirstTimeBuyer,
		IsRestrictedArea: r.IsRestrictedArea,
	}
}

// HoldingTaxRequest is the holding tax calculator payload
type HoldingTaxRequest struct {
	PublicPrice      *float64 `json:"publicPrice" validate:"required,gt=0"`
	HouseCount       *int     `json:"houseCount" validate:"required,min=1"`
	IsRestrictedArea bool     `json:"isRestrictedArea"`
	IsDiscounted     bool     `json:"isDiscounted"`
}

// Input converts a validated request to the calculator input
func (r HoldingTaxRequest) Input() calculator.HoldingTaxInput {
	return calculator.HoldingTaxInput{
		PublicPrice:      *r.PublicPrice,
		HouseCount:       *r.HouseCount,
		IsRestrictedArea: r.IsRestrictedArea,
		IsDiscounted:     r.IsDiscounted,
	}
}

// AreaRequest is the unit converter payload; exactly one field must be set
type AreaRequest struct {
	Pyeong       *float64 `json:"pyeong" validate:"omitempty,gt=0"`
	SquareMeters *float64 `json:"squareMeters" validate:"omitempty,gt=0"`
}

// Input converts a validated request to the calculator input
func (r AreaRequest) Input() calculator.AreaConversionInput {
	return calculator.AreaConversionInput{Pyeong: r.Pyeong, SquareMeters: r.SquareMeters}
}
