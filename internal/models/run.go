package models

// RunMetadata describes one scrape run in the JSON export
type RunMetadata struct {
	RunID             string  `json:"run_id"`
	ScrapedAt         string  `json:"scraped_at"`
	TotalVehicles     int     `json:"total_vehicles"`
	ListedVehicles    int     `json:"listed_vehicles"`
	ScrapeTimeMinutes float64 `json:"scrape_time_minutes"`
}

// RunDocument is the top-level JSON export
type RunDocument struct {
	Vehicles []*VehicleRecord `json:"vehicles"`
	History  []HistoryEvent   `json:"carfax_history"`
	Metadata RunMetadata      `json:"metadata"`
}
