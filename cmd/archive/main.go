package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"dealerscraper/internal/database"
)

const usage = `Usage: archive <command> <database> [args]
Commands:
  status <db>                 - Show schema version and table counts
  runs <db> [limit]           - List archived runs, newest first
  vehicles <db> <run-id>      - List the vehicles of one run
  record <db> <run-id> <id>   - Print one archived vehicle record as JSON
  import <db> <json>...       - Archive JSON exports written by the scraper`

func main() {
	fmt.Println("🗃️  Dealer Scrape Archive Tool")
	fmt.Println("==============================")

	if err := dispatch(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func dispatch(args []string, out io.Writer) error {
	if len(args) < 2 {
		fmt.Fprintln(out, usage)
		return errors.New("missing command or database path")
	}

	command, dbPath, rest := args[0], args[1], args[2:]

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "status":
		return showStatus(db, out)
	case "runs":
		limit := 0
		if len(rest) > 0 {
			if limit, err = strconv.Atoi(rest[0]); err != nil {
				return fmt.Errorf("invalid limit %q", rest[0])
			}
		}
		return listRuns(db, limit, out)
	case "vehicles":
		if len(rest) < 1 {
			return errors.New("vehicles needs a run id")
		}
		return listVehicles(db, rest[0], out)
	case "record":
		if len(rest) < 2 {
			return errors.New("record needs a run id and a vehicle id")
		}
		return showRecord(db, rest[0], rest[1], out)
	case "import":
		if len(rest) < 1 {
			return errors.New("import needs at least one JSON file")
		}
		return importExports(db, rest, out)
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func showStatus(db *database.Database, out io.Writer) error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	counts, err := db.TableCounts()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "📊 Schema version: %s\n", version)
	t := newTable(out)
	t.AppendHeader(table.Row{"Table", "Rows"})
	for _, name := range []string{"runs", "vehicles", "history_events"} {
		t.AppendRow(table.Row{name, counts[name]})
	}
	t.Render()
	return nil
}

func listRuns(db *database.Database, limit int, out io.Writer) error {
	runs, err := db.GetRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs archived yet")
		return nil
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Run", "Scraped At", "Vehicles", "Listed", "History", "Minutes"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.ScrapedAt.Format("2006-01-02 15:04:05"),
			r.TotalVehicles,
			r.ListedVehicles,
			r.HistoryEvents,
			fmt.Sprintf("%.2f", r.ScrapeTimeMinutes),
		})
	}
	t.Render()
	return nil
}

func listVehicles(db *database.Database, runID string, out io.Writer) error {
	vehicles, err := db.GetRunVehicles(runID)
	if err != nil {
		return err
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Year", "Make", "Model", "VIN", "Price", "Odometer", "Owners", "Accidents"})
	for _, v := range vehicles {
		t.AppendRow(table.Row{
			v.VehicleID, v.Year.String(), v.Make, v.Model, v.VIN,
			v.SalePrice.String(), v.Odometer.String(), v.Owners, v.AccidentSummary,
		})
	}
	t.Render()
	return nil
}

func showRecord(db *database.Database, runID, vehicleID string, out io.Writer) error {
	record, err := db.GetVehicleRecord(runID, vehicleID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

func importExports(db *database.Database, paths []string, out io.Writer) error {
	imported := 0
	for _, path := range paths {
		ok, err := db.ImportJSON(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			fmt.Fprintf(out, "Skipping %s: run already archived\n", path)
			continue
		}
		imported++
		fmt.Fprintf(out, "📥 Imported %s\n", path)
	}
	fmt.Fprintf(out, "✅ Imported %d of %d exports\n", imported, len(paths))
	return nil
}
