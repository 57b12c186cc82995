// Package spreadsheet reads and writes competition data workbooks.
package spreadsheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

const (
	// SheetName is the worksheet of the template
	SheetName = "경쟁률 데이터"
	// TemplateFileName is offered as the download name of the template
	TemplateFileName = "청약_경쟁률_데이터_템플릿.xlsx"
	// ContentType is the MIME type of xlsx workbooks
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNoRows is returned when a workbook holds no data rows
var ErrNoRows = errors.New("workbook contains no data rows")

// Template builds the example workbook offered to administrators
func Template() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(models.CompetitionColumns))
	for i, col := range models.CompetitionColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, apt := range models.SampleApartments {
		row := []any{apt.Name, apt.Location, apt.CompetitionRate, apt.MinScore, apt.AvgScore,
			apt.Coordinates.Lat, apt.Coordinates.Lng}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// ParseRows reads the first sheet of a workbook. The first row is the header;
// every following non-empty row becomes a JSON object keyed by header.
func ParseRows(r io.Reader) ([]json.RawMessage, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	out := make([]json.RawMessage, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		obj := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			obj[name] = strings.TrimSpace(row[i])
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
