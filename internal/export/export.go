package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealerscraper/internal/models"
	"dealerscraper/internal/util"
	"dealerscraper/internal/validation"
)

// TimestampLayout is the run timestamp used in every output file name
const TimestampLayout = "20060102_150405"

// ErrNothingToExport is returned when a run collected no vehicles
var ErrNothingToExport = errors.New("no vehicles to export")

// Options describes one run being exported
type Options struct {
	Dir     string
	Prefix  string
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Listed  int
}

// Files lists the outputs that were written. HistoryCSV is empty when the run had no events.
type Files struct {
	JSON        string
	VehiclesCSV string
	HistoryCSV  string
	Workbook    string
	Archive     string
}

// All returns the written paths in write order
func (f *Files) All() []string {
	var paths []string
	for _, p := range []string{f.JSON, f.VehiclesCSV, f.HistoryCSV, f.Workbook, f.Archive} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Run writes the JSON, CSV, workbook and archive outputs for a run. A failing
// writer does not stop the others; their errors are joined.
func Run(opts Options, vehicles []*models.VehicleRecord, history []models.HistoryEvent, log *zap.Logger) (*Files, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(vehicles) == 0 {
		return nil, ErrNothingToExport
	}
	if err := validation.ValidateOutputPrefix(opts.Prefix); err != nil {
		return nil, err
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	} else if err := validation.ValidateRunID(opts.RunID); err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	vehicleTable := VehicleTable(vehicles)
	historyTable := HistoryTable(history)
	for _, t := range []*Table{vehicleTable, historyTable} {
		if err := validation.ValidateTable(t.Headers(), t.Rows); err != nil {
			return nil, fmt.Errorf("%s table failed validation: %w", t.Name, err)
		}
	}

	doc := &models.RunDocument{
		Vehicles: vehicles,
		History:  history,
		Metadata: models.RunMetadata{
			RunID:             opts.RunID,
			ScrapedAt:         opts.Started.Format(time.RFC3339),
			TotalVehicles:     len(vehicles),
			ListedVehicles:    opts.Listed,
			ScrapeTimeMinutes: util.Minutes(opts.Elapsed),
		},
	}

	ts := opts.Started.Format(TimestampLayout)
	name := func(format string) string {
		return filepath.Join(opts.Dir, fmt.Sprintf(format, opts.Prefix, ts))
	}

	files := &Files{}
	var errs []error
	write := func(kind, path string, fn func() error, dst *string) {
		if err := fn(); err != nil {
			log.Error("Export failed", zap.String("kind", kind), zap.String("path", path), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			return
		}
		*dst = path
		log.Info("Saved", zap.String("kind", kind), zap.String("path", path))
	}

	jsonPath := name("%s_%s.json")
	write("json", jsonPath, func() error { return WriteJSON(jsonPath, doc) }, &files.JSON)

	vehiclesPath := name("%s_Vehicles_%s.csv")
	write("vehicles csv", vehiclesPath, func() error { return WriteCSV(vehiclesPath, vehicleTable) }, &files.VehiclesCSV)

	if len(history) > 0 {
		historyPath := name("%s_History_%s.csv")
		write("history csv", historyPath, func() error { return WriteCSV(historyPath, historyTable) }, &files.HistoryCSV)
	}

	workbookPath := name("%s_%s.xlsx")
	write("workbook", workbookPath, func() error { return WriteWorkbook(workbookPath, vehicleTable, historyTable) }, &files.Workbook)

	archivePath := name("%s_%s.db")
	write("archive", archivePath, func() error {
		return WriteArchive(archivePath, doc, opts.Started, opts.Elapsed)
	}, &files.Archive)

	return files, errors.Join(errs...)
}
