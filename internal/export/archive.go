package export

import (
	"fmt"
	"time"

	"dealerscraper/internal/database"
	"dealerscraper/internal/models"
)

// WriteArchive stores the run in a SQLite file at path
func WriteArchive(path string, doc *models.RunDocument, started time.Time, elapsed time.Duration) error {
	db, err := database.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &database.Run{
		ID:        doc.Metadata.RunID,
		ScrapedAt: started,
		Listed:    doc.Metadata.ListedVehicles,
		Elapsed:   elapsed,
		Vehicles:  doc.Vehicles,
		History:   doc.History,
	}
	if err := db.SaveRun(run); err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	return db.Close()
}
