package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dealerscraper/internal/export"
	"dealerscraper/internal/models"
)

// CriticalFields are the vehicle columns summarised after a run
var CriticalFields = []string{
	"Title", "Year", "Make", "Model", "Sale Price", "Dealer Phone", "Description",
	"Accident Details", "Service Records Count", "Number of Owners", "Total History Records",
}

// counters are filled when positive rather than when not N/A
var counters = map[string]bool{
	"Service Records Count": true,
	"Number of Owners":      true,
	"Total History Records": true,
}

// FieldQuality is the fill rate of one column
type FieldQuality struct {
	Field   string
	Filled  int
	Total   int
	Percent float64
}

// Status is the marker shown next to a fill rate
func (q FieldQuality) Status() string {
	switch {
	case q.Percent >= 50:
		return "✅"
	case q.Percent >= 20:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Summary is the run footer
type Summary struct {
	Elapsed       time.Duration
	Vehicles      int
	Listed        int
	HistoryEvents int
}

// Quality computes the fill rate of every critical field present in t
func Quality(t *export.Table) []FieldQuality {
	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		index[c.Name] = i
	}

	var out []FieldQuality
	for _, field := range CriticalFields {
		col, ok := index[field]
		if !ok {
			continue
		}
		q := FieldQuality{Field: field, Total: len(t.Rows)}
		for _, row := range t.Rows {
			if filled(row[col], counters[field]) {
				q.Filled++
			}
		}
		if q.Total > 0 {
			q.Percent = float64(q.Filled) / float64(q.Total) * 100
		}
		out = append(out, q)
	}
	return out
}

func filled(cell interface{}, counter bool) bool {
	if counter {
		n, ok := cell.(int)
		return ok && n > 0
	}
	s, ok := cell.(string)
	return !ok || s != models.NA
}

// Print renders the quality table and run footer
func Print(w io.Writer, quality []FieldQuality, s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle("DATA QUALITY REPORT")
	t.AppendHeader(table.Row{"", "Field", "Filled", "%"})
	for _, q := range quality {
		t.AppendRow(table.Row{q.Status(), q.Field, fmt.Sprintf("%d/%d", q.Filled, q.Total), fmt.Sprintf("%.1f%%", q.Percent)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	elapsed := s.Elapsed.Round(time.Second)
	mins := int(elapsed / time.Minute)
	secs := int((elapsed % time.Minute) / time.Second)
	t.AppendFooter(table.Row{"", "Time", fmt.Sprintf("%dm %ds", mins, secs), ""})
	t.AppendFooter(table.Row{"", "Vehicles", fmt.Sprintf("%d/%d", s.Vehicles, s.Listed), ""})
	t.AppendFooter(table.Row{"", "History records", s.HistoryEvents, ""})
	t.Render()
}
