package database

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dealerscraper/internal/models"
)

// ImportJSON archives a previously written JSON export. It returns false when
// the run is already in the archive.
func (d *Database) ImportJSON(jsonPath string) (bool, error) {
	file, err := os.Open(jsonPath)
	if err != nil {
		return false, fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	var doc models.RunDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return false, fmt.Errorf("failed to decode export JSON: %w", err)
	}

	run, err := runFromDocument(&doc)
	if err != nil {
		return false, err
	}

	exists, err := d.HasRun(run.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := d.SaveRun(run); err != nil {
		return false, err
	}
	return true, nil
}

func runFromDocument(doc *models.RunDocument) (*Run, error) {
	meta := doc.Metadata
	if meta.RunID == "" {
		return nil, fmt.Errorf("export has no run_id")
	}

	scrapedAt, err := time.Parse(time.RFC3339, meta.ScrapedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid scraped_at %q: %w", meta.ScrapedAt, err)
	}

	return &Run{
		ID:        meta.RunID,
		ScrapedAt: scrapedAt,
		Listed:    meta.ListedVehicles,
		Elapsed:   time.Duration(meta.ScrapeTimeMinutes * float64(time.Minute)),
		Vehicles:  doc.Vehicles,
		History:   doc.History,
	}, nil
}
