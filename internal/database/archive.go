package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealerscraper/internal/models"
	"dealerscraper/internal/util"
)

// Run is everything one scrape produced
type Run struct {
	ID        string
	ScrapedAt time.Time
	Listed    int
	Elapsed   time.Duration
	Vehicles  []*models.VehicleRecord
	History   []models.HistoryEvent
}

// RunSummary is one row of the runs table
type RunSummary struct {
	ID                string
	ScrapedAt         time.Time
	ListedVehicles    int
	TotalVehicles     int
	HistoryEvents     int
	ScrapeTimeMinutes float64
}

// VehicleSummary is the indexed subset of an archived vehicle
type VehicleSummary struct {
	VehicleID       string
	Year            models.Int
	Make            string
	Model           string
	VIN             string
	SalePrice       models.Int
	Odometer        models.Int
	Owners          int
	AccidentSummary string
	DetailURL       string
}

func nullInt(v models.Int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v.Value), Valid: v.Valid}
}

func fromNullInt(v sql.NullInt64) models.Int {
	if !v.Valid {
		return models.Int{}
	}
	return models.IntOf(int(v.Int64))
}

// SaveRun writes a run with its vehicles and history events in one transaction
func (d *Database) SaveRun(run *Run) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, scraped_at, listed_vehicles, total_vehicles, history_events, scrape_time_minutes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.ScrapedAt, run.Listed, len(run.Vehicles), len(run.History), util.Minutes(run.Elapsed))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	vehicleStmt, err := tx.Prepare(`
		INSERT INTO vehicles
		(run_id, vehicle_id, year, make, model, title, vin, sale_price, odometer, owners, accident_summary, detail_url, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare vehicle statement: %w", err)
	}
	defer vehicleStmt.Close()

	for _, v := range run.Vehicles {
		record, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode vehicle %s: %w", v.ID, err)
		}
		_, err = vehicleStmt.Exec(run.ID, v.ID, nullInt(v.Year), v.Make, v.Model, v.Title, v.VIN,
			nullInt(v.SalePrice), nullInt(v.Odometer), v.OwnerCount, v.AccidentSummary, v.DetailURL, string(record))
		if err != nil {
			return fmt.Errorf("failed to insert vehicle %s: %w", v.ID, err)
		}
	}

	eventStmt, err := tx.Prepare(`
		INSERT INTO history_events
		(run_id, vehicle_id, vin, event_date, odometer, source, record_type, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history statement: %w", err)
	}
	defer eventStmt.Close()

	for _, e := range run.History {
		_, err := eventStmt.Exec(run.ID, e.VehicleID, e.VIN, e.Date, e.Odometer, e.Source, e.RecordType, e.Details)
		if err != nil {
			return fmt.Errorf("failed to insert history event for vehicle %s: %w", e.VehicleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HasRun reports whether a run id is already archived
func (d *Database) HasRun(id string) (bool, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up run: %w", err)
	}
	return n > 0, nil
}

// GetRuns lists archived runs, newest first. limit <= 0 returns all of them.
func (d *Database) GetRuns(limit int) ([]RunSummary, error) {
	query := `
		SELECT id, scraped_at, listed_vehicles, total_vehicles, history_events, scrape_time_minutes
		FROM runs
		ORDER BY scraped_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.ScrapedAt, &r.ListedVehicles, &r.TotalVehicles, &r.HistoryEvents, &r.ScrapeTimeMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunVehicles returns the vehicles archived for a run, in scrape order
func (d *Database) GetRunVehicles(runID string) ([]VehicleSummary, error) {
	ok, err := d.HasRun(runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := d.db.Query(`
		SELECT vehicle_id, year, make, model, vin, sale_price, odometer, owners, accident_summary, detail_url
		FROM vehicles
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []VehicleSummary
	for rows.Next() {
		var v VehicleSummary
		var year, price, odometer sql.NullInt64
		err := rows.Scan(&v.VehicleID, &year, &v.Make, &v.Model, &v.VIN, &price, &odometer,
			&v.Owners, &v.AccidentSummary, &v.DetailURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		v.Year = fromNullInt(year)
		v.SalePrice = fromNullInt(price)
		v.Odometer = fromNullInt(odometer)
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// GetVehicleRecord decodes the full archived record of one vehicle in a run
func (d *Database) GetVehicleRecord(runID, vehicleID string) (*models.VehicleRecord, error) {
	var raw string
	err := d.db.QueryRow("SELECT record FROM vehicles WHERE run_id = ? AND vehicle_id = ?", runID, vehicleID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s not found in run %s", vehicleID, runID)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	var v models.VehicleRecord
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle record: %w", err)
	}
	return &v, nil
}
