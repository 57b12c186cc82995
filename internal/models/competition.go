package models

import (
	"encoding/json"
	"time"
)

// CompetitionData is one uploaded batch of competition results
type CompetitionData struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"userId,omitempty"`
	FileName  string          `json:"fileName"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CompetitionUploadRequest carries spreadsheet rows already decoded by the client
type CompetitionUploadRequest struct {
	Data     []json.RawMessage `json:"data" validate:"required,min=1"`
	FileName string            `json:"fileName"`
}

// CompetitionColumns are the headers of the competition data sheet in
// positional order.
var CompetitionColumns = []string{"아파트명", "지역", "경쟁률", "최저 당첨 점수", "평균 당첨 점수", "위도", "경도"}

// SampleApartments is inserted into an empty apartments table so the map has
// something to show on a fresh install.
var SampleApartments = []Apartment{
	{Name: "래미안 아파트", Location: "서울시 강남구", CompetitionRate: 45, MinScore: 75, AvgScore: 82, Coordinates: Coordinates{Lat: 37.5066, Lng: 127.0562}},
	{Name: "푸르지오 아파트", Location: "서울시 송파구", CompetitionRate: 32, MinScore: 70, AvgScore: 78, Coordinates: Coordinates{Lat: 37.5145, Lng: 127.1059}},
	{Name: "e-편한세상", Location: "인천시 연수구", CompetitionRate: 18, MinScore: 65, AvgScore: 72, Coordinates: Coordinates{Lat: 37.4080, Lng: 126.6782}},
	{Name: "더샵 아파트", Location: "경기도 성남시", CompetitionRate: 8, MinScore: 60, AvgScore: 65, Coordinates: Coordinates{Lat: 37.4449, Lng: 127.1389}},
}
