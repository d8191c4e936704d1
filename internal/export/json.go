package export

import (
	"encoding/json"
	"fmt"
	"os"

	"dealerscraper/internal/models"
)

// WriteJSON writes the run document with two-space indentation and no HTML escaping
func WriteJSON(path string, doc *models.RunDocument) error {
	if doc.History == nil {
		doc.History = []models.HistoryEvent{}
	}
	if doc.Vehicles == nil {
		doc.Vehicles = []*models.VehicleRecord{}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return file.Close()
}
