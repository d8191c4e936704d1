package export

import (
	"math"
	"strconv"
	"strings"

	"dealerscraper/internal/models"
)

// Table is a flat, ordered set of rows under a fixed header
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
}

// Headers returns the column names
func (t *Table) Headers() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// VehicleTable builds the vehicles sheet, already normalised
func VehicleTable(vehicles []*models.VehicleRecord) *Table {
	t := &Table{Name: "Vehicles", Columns: VehicleColumns}
	for _, v := range vehicles {
		t.Rows = append(t.Rows, vehicleRow(v))
	}
	Normalize(t)
	return t
}

// HistoryTable builds the history sheet, already normalised
func HistoryTable(events []models.HistoryEvent) *Table {
	t := &Table{Name: "Carfax History", Columns: HistoryColumns}
	for _, e := range events {
		t.Rows = append(t.Rows, historyRow(e))
	}
	Normalize(t)
	return t
}

// Normalize rewrites nil, blank strings and NaN floats to the sentinel.
// Rows shorter than the header are padded. Applying it twice changes nothing.
func Normalize(t *Table) {
	for i, row := range t.Rows {
		for len(row) < len(t.Columns) {
			row = append(row, nil)
		}
		for j, cell := range row {
			row[j] = normalizeCell(cell)
		}
		t.Rows[i] = row
	}
}

func normalizeCell(cell interface{}) interface{} {
	switch v := cell.(type) {
	case nil:
		return models.NA
	case string:
		if strings.TrimSpace(v) == "" {
			return models.NA
		}
	case float64:
		if math.IsNaN(v) {
			return models.NA
		}
	case float32:
		if math.IsNaN(float64(v)) {
			return models.NA
		}
	}
	return cell
}

// formatCell renders a cell for text outputs
func formatCell(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return models.NA
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return models.YesNo(v)
	default:
		return models.NA
	}
}
