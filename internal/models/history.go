package models

// HistoryEvent represents one row of a history report timeline
type HistoryEvent struct {
	VehicleID  string `json:"Vehicle ID"`
	VIN        string `json:"VIN"`
	Year       Int    `json:"Year"`
	Make       string `json:"Make"`
	Model      string `json:"Model"`
	Date       string `json:"Date"`
	Odometer   string `json:"Odometer"`
	Source     string `json:"Source"`
	RecordType string `json:"Record Type"`
	Details    string `json:"Details"`
}

// NewHistoryEvent tags a timeline row with its parent vehicle. Empty cells become NA.
func NewHistoryEvent(parent *VehicleRecord, date, odometer, source, recordType, details string) HistoryEvent {
	return HistoryEvent{
		VehicleID:  parent.ID,
		VIN:        OrNA(parent.ReportVIN),
		Year:       parent.Year,
		Make:       OrNA(parent.Make),
		Model:      OrNA(parent.Model),
		Date:       OrNA(date),
		Odometer:   OrNA(odometer),
		Source:     OrNA(source),
		RecordType: OrNA(recordType),
		Details:    OrNA(details),
	}
}
