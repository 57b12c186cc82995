package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
	"github.com/Dan9191/ziptalk-calculator/internal/metrics"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

const (
	// DefaultUploadFileName is stored when an upload carries no file name
	DefaultUploadFileName = "uploaded_competition_data.xlsx"
	// MaxUploadRows caps the number of rows accepted in one upload
	MaxUploadRows = 1000

	recentApartmentsLimit = 4
)

const (
	colName = iota
	colLocation
	colRate
	colMinScore
	colAvgScore
	colLat
	colLng
)

// uploadRow gives access to a row given either as an object keyed by column
// header or as a positional array.
type uploadRow struct {
	object map[string]any
	array  []any
}

func decodeRow(raw json.RawMessage) (*uploadRow, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return &uploadRow{object: t}, nil
	case []any:
		return &uploadRow{array: t}, nil
	default:
		return nil, fmt.Errorf("row must be an object or an array")
	}
}

func (r *uploadRow) value(col int) any {
	if r.object != nil {
		if v, ok := r.object[models.CompetitionColumns[col]]; ok && v != nil && v != "" {
			return v
		}
		return r.object[strconv.Itoa(col)]
	}
	if col < len(r.array) {
		return r.array[col]
	}
	return nil
}

func (r *uploadRow) text(col int) string {
	switch v := r.value(col).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (r *uploadRow) number(col int) (float64, bool) {
	var f float64
	switch v := r.value(col).(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseUploadRow converts one uploaded row to an apartment. line is 1-based.
func parseUploadRow(raw json.RawMessage, line int) (*models.Apartment, error) {
	row, err := decodeRow(raw)
	if err != nil {
		return nil, invalid("row %d: %v", line, err)
	}

	apt := &models.Apartment{
		Name:     row.text(colName),
		Location: row.text(colLocation),
	}
	if apt.Name == "" {
		return nil, invalid("row %d: %s is required", line, models.CompetitionColumns[colName])
	}
	if apt.Location == "" {
		return nil, invalid("row %d: %s is required", line, models.CompetitionColumns[colLocation])
	}

	numbers := make([]float64, len(models.CompetitionColumns))
	for col := colRate; col <= colLng; col++ {
		v, ok := row.number(col)
		if !ok {
			return nil, invalid("row %d: %s must be a number", line, models.CompetitionColumns[col])
		}
		numbers[col] = v
	}
	if numbers[colRate] < 0 {
		return nil, invalid("row %d: %s must not be negative", line, models.CompetitionColumns[colRate])
	}
	for _, col := range []int{colMinScore, colAvgScore} {
		if numbers[col] < 0 || numbers[col] > calculator.MaxTotalScore {
			return nil, invalid("row %d: %s must be between 0 and %d", line, models.CompetitionColumns[col], calculator.MaxTotalScore)
		}
	}

	apt.CompetitionRate = numbers[colRate]
	apt.MinScore = int(numbers[colMinScore])
	apt.AvgScore = int(numbers[colAvgScore])
	apt.Coordinates = models.Coordinates{Lat: numbers[colLat], Lng: numbers[colLng]}
	return apt, nil
}

func buildSummary(views []models.ApartmentView) *models.CompetitionSummary {
	var sum float64
	for _, v := range views {
		sum += v.CompetitionRate
	}
	avg := sum / float64(len(views))

	recent := make([]models.RecentApartment, 0, recentApartmentsLimit)
	for _, v := range views[:min(recentApartmentsLimit, len(views))] {
		recent = append(recent, models.RecentApartment{
			ID:              v.ID,
			Name:            v.Name,
			Location:        v.Location,
			CompetitionRate: v.CompetitionRate,
			MinScore:        v.RequiredScore - calculator.MinScoreMargin,
			AvgScore:        v.RequiredScore,
		})
	}

	return &models.CompetitionSummary{
		Apartments:             views,
		AverageCompetitionRate: avg,
		NationalAvgDiff:        avg - calculator.NationalAverageCompetitionRate,
		WinningChance:          calculator.DefaultWinningChance,
		RequiredScore:          calculator.DefaultRequiredScore,
		RecentApartments:       recent,
	}
}

// ProcessCompetitionData stores uploaded competition rows and returns the
// summary shown to the administrator. Nothing is stored when any row is invalid.
func (s *Service) ProcessCompetitionData(ctx context.Context, rows []json.RawMessage, fileName string, userID *int64) (*models.CompetitionSummary, error) {
	if len(rows) == 0 {
		return nil, invalid("data must contain at least one row")
	}
	if len(rows) > MaxUploadRows {
		return nil, invalid("data must not contain more than %d rows", MaxUploadRows)
	}
	if fileName == "" {
		fileName = DefaultUploadFileName
	}

	apartments := make([]*models.Apartment, 0, len(rows))
	for i, raw := range rows {
		apt, err := parseUploadRow(raw, i+1)
		if err != nil {
			return nil, err
		}
		apartments = append(apartments, apt)
	}

	var views []models.ApartmentView
	entry := &models.CompetitionData{UserID: userID, FileName: fileName}
	encode := func(stored []*models.Apartment) (json.RawMessage, error) {
		views = toViews(stored)
		return json.Marshal(views)
	}
	if err := s.repo.CreateCompetitionUpload(ctx, apartments, entry, encode); err != nil {
		return nil, err
	}
	s.invalidateApartments(ctx)
	metrics.ApartmentsImported.WithLabelValues("upload").Add(float64(len(apartments)))

	summary := buildSummary(views)
	s.log.WithFields(logrus.Fields{
		"file":       fileName,
		"apartments": len(apartments),
		"entry_id":   entry.ID,
	}).Info("Competition data uploaded")

	s.notifyUpload(fileName, len(apartments), summary.AverageCompetitionRate)
	return summary, nil
}

func (s *Service) notifyUpload(fileName string, count int, avgRate float64) {
	if s.notifier == nil || s.config.AdminEmail == "" {
		return
	}
	if err := s.notifier.SendUploadNotification(s.config.AdminEmail, fileName, count, avgRate); err != nil {
		s.log.WithError(err).Warn("Failed to send upload notification")
	}
}

// ListCompetitionData returns all upload entries, newest first
func (s *Service) ListCompetitionData(ctx context.Context) ([]*models.CompetitionData, error) {
	return s.repo.ListCompetitionData(ctx)
}

// DeleteCompetitionData removes an upload entry. Its apartments are kept.
func (s *Service) DeleteCompetitionData(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCompetitionData(ctx, id); err != nil {
		return err
	}
	s.invalidateApartments(ctx)
	s.log.Infof("Competition data deleted: %d", id)
	return nil
}
