package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dealerscraper/internal/database"
	"dealerscraper/internal/models"
)

var started = time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

func sampleVehicles() []*models.VehicleRecord {
	dealer := models.DealerDefaults{Name: "Curve Motors", Phone: "(416) 555-0100", Address: "1 Curve Rd"}

	civic := models.NewVehicleRecord("101", dealer)
	civic.Year = models.IntOf(2019)
	civic.Make = "Honda"
	civic.Model = "Civic"
	civic.Title = "2019 Honda Civic LX <Low KM>"
	civic.VIN = "2HGFC2F59KH000001"
	civic.OriginalPrice = models.IntOf(19995)
	civic.SalePrice = models.IntOf(17495)
	civic.SpecialPrice = true
	civic.WeeklyPayment = models.FloatOf(89.5)
	civic.Odometer = models.IntOf(45210)
	civic.PhotoCount = 24
	civic.ImageCount = 3
	civic.ImageURLs = models.URLList{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg"}
	civic.OwnerCount = 3
	civic.TotalRecords = 7

	return []*models.VehicleRecord{civic, models.NewVehicleRecord("102", dealer)}
}

func sampleHistory(v *models.VehicleRecord) []models.HistoryEvent {
	return []models.HistoryEvent{
		models.NewHistoryEvent(v, "2019-03-01", "12 km", "Ontario MTO", "Registration", "First Owner reported"),
		models.NewHistoryEvent(v, "2021-01-10", "22,000 km", "Police", "Accident Reported", ""),
	}
}

func TestVehicleTableHasEveryColumnFilled(t *testing.T) {
	table := VehicleTable(sampleVehicles())

	require.Len(t, table.Columns, 52)
	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		require.Len(t, row, 52)
		for i, cell := range row {
			require.NotNil(t, cell, table.Columns[i].Name)
			if s, ok := cell.(string); ok {
				require.NotEmpty(t, strings.TrimSpace(s), table.Columns[i].Name)
			}
		}
	}

	// a bare record is all sentinels apart from counters and dealer defaults
	bare := table.Rows[1]
	require.Equal(t, models.NA, bare[1])
	require.Equal(t, "No", bare[10])
	require.Equal(t, 0, bare[26])
	require.Equal(t, models.NoAccidents, bare[39])
	require.Equal(t, "Curve Motors", bare[49])
	require.Equal(t, "https://cdn.example/a.jpg, https://cdn.example/b.jpg", table.Rows[0][29])
}

func TestNormalizeIsIdempotent(t *testing.T) {
	table := &Table{
		Columns: []Column{{"A", KindText}, {"B", KindText}, {"C", KindNumber}, {"D", KindText}},
		Rows: [][]interface{}{
			{nil, "  ", math.NaN(), "kept"},
			{"x", 0},
		},
	}

	Normalize(table)
	want := [][]interface{}{
		{models.NA, models.NA, models.NA, "kept"},
		{"x", 0, models.NA, models.NA},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}

	Normalize(table)
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Fatalf("second pass changed rows (-want +got):\n%s", diff)
	}
}

func TestHistoryTableFillsEmptyCells(t *testing.T) {
	vehicles := sampleVehicles()
	table := HistoryTable(sampleHistory(vehicles[0]))

	require.Len(t, table.Rows, 2)
	require.Equal(t, models.NA, table.Rows[1][9])
	require.Equal(t, "101", table.Rows[0][0])
	require.Equal(t, 2019, table.Rows[0][2])
}

func TestWriteCSVHasBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.csv")
	require.NoError(t, WriteCSV(path, VehicleTable(sampleVehicles())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), utf8BOM))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Vehicle ID", records[0][0])
	require.Equal(t, "17495", records[1][9])
	require.Equal(t, "89.5", records[1][11])
	require.Equal(t, "Yes", records[1][10])
	require.Equal(t, models.NA, records[2][9])
}

func TestWriteJSONDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	doc := &models.RunDocument{
		Vehicles: sampleVehicles(),
		Metadata: models.RunMetadata{RunID: "id", TotalVehicles: 2},
	}
	require.NoError(t, WriteJSON(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, `"carfax_history": []`)
	require.Contains(t, text, "<Low KM>")
	require.Contains(t, text, "\n  \"vehicles\": [")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	first := decoded["vehicles"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, 17495.0, first["Sale Price"])
	require.Equal(t, true, first["Special Price"])
	second := decoded["vehicles"].([]interface{})[1].(map[string]interface{})
	require.Equal(t, models.NA, second["Sale Price"])
	require.Equal(t, models.NA, second["All Image URLs"])
}

func styleOf(t *testing.T, f *excelize.File, sheet, cell string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	return style
}

// filterRange returns the autofilter range excelize records as a sheet-scoped defined name
func filterRange(t *testing.T, f *excelize.File, sheet string) string {
	t.Helper()
	for _, dn := range f.GetDefinedName() {
		if dn.Scope == sheet {
			return dn.RefersTo
		}
	}
	t.Fatalf("no autofilter on %s", sheet)
	return ""
}

func TestWriteWorkbook(t *testing.T) {
	vehicles := sampleVehicles()
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteWorkbook(path, VehicleTable(vehicles), HistoryTable(sampleHistory(vehicles[0]))))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Vehicles", "Carfax History", readmeSheet}, f.GetSheetList())

	rows, err := f.GetRows("Vehicles")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Vehicle ID", rows[0][0])

	header := styleOf(t, f, "Vehicles", "A1")
	require.True(t, header.Font.Bold)
	require.Equal(t, 1, header.Fill.Pattern)

	height, err := f.GetRowHeight("Vehicles", 1)
	require.NoError(t, err)
	require.Equal(t, float64(headerHeight), height)

	price := styleOf(t, f, "Vehicles", "J2")
	require.NotNil(t, price.CustomNumFmt)
	require.Equal(t, "$#,##0", *price.CustomNumFmt)
	require.Equal(t, 0, price.Fill.Pattern)

	// row 3 is shaded and its missing price keeps the sentinel without a number format
	shaded := styleOf(t, f, "Vehicles", "J3")
	require.Equal(t, 1, shaded.Fill.Pattern)
	require.Nil(t, shaded.CustomNumFmt)

	raw, err := f.GetCellValue("Vehicles", "A2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "101", raw)
	cellType, err := f.GetCellType("Vehicles", "A2")
	require.NoError(t, err)
	require.NotEqual(t, excelize.CellTypeSharedString, cellType)

	panes, err := f.GetPanes("Vehicles")
	require.NoError(t, err)
	require.True(t, panes.Freeze)
	require.Equal(t, "A2", panes.TopLeftCell)

	vin := styleOf(t, f, "Vehicles", "F2")
	require.NotNil(t, vin.CustomNumFmt)
	require.Equal(t, "@", *vin.CustomNumFmt)

	historyFormats := map[string]string{"A2": "0", "B2": "@", "C2": "0"}
	for cell, want := range historyFormats {
		style := styleOf(t, f, "Carfax History", cell)
		require.NotNil(t, style.CustomNumFmt, cell)
		require.Equal(t, want, *style.CustomNumFmt, cell)
	}
	historyVIN, err := f.GetCellValue("Carfax History", "B2")
	require.NoError(t, err)
	require.Equal(t, "2HGFC2F59KH000001", historyVIN)

	require.Equal(t, "'Vehicles'!$A$1:$AZ$3", filterRange(t, f, "Vehicles"))
	require.Equal(t, "'Carfax History'!$A$1:$J$3", filterRange(t, f, "Carfax History"))

	width, err := f.GetColWidth("Vehicles", "Z")
	require.NoError(t, err)
	require.LessOrEqual(t, width, float64(maxColWidth))

	readme, err := f.GetRows(readmeSheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Sheet", "Rows", "Description"}, readme[0])
	require.Equal(t, "Vehicles", readme[1][0])
	require.Equal(t, "2", readme[1][1])
	require.Equal(t, "Carfax History", readme[2][0])
}

func TestRunWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dir: dir, Prefix: "CurveMotors", Started: started, Elapsed: 3 * time.Minute, Listed: 4}

	// a nil logger falls back to a no-op one
	files, err := Run(opts, sampleVehicles(), nil, nil)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "CurveMotors_20240501_093015.json"), files.JSON)
	require.Equal(t, filepath.Join(dir, "CurveMotors_Vehicles_20240501_093015.csv"), files.VehiclesCSV)
	require.Empty(t, files.HistoryCSV)
	require.Equal(t, filepath.Join(dir, "CurveMotors_20240501_093015.xlsx"), files.Workbook)
	require.Equal(t, filepath.Join(dir, "CurveMotors_20240501_093015.db"), files.Archive)
	require.Len(t, files.All(), 4)

	for _, p := range files.All() {
		_, err := os.Stat(p)
		require.NoError(t, err, p)
	}
	_, err = os.Stat(filepath.Join(dir, "CurveMotors_History_20240501_093015.csv"))
	require.True(t, os.IsNotExist(err))

	f, err := excelize.OpenFile(files.Workbook)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Vehicles", readmeSheet}, f.GetSheetList())
	readme, err := f.GetRows(readmeSheet)
	require.NoError(t, err)
	require.Len(t, readme, 3)
	require.Equal(t, []string{"Carfax History", "0"}, readme[2][:2])

	var doc models.RunDocument
	data, err := os.ReadFile(files.JSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotNil(t, doc.History)
	require.Empty(t, doc.History)
	require.Equal(t, 2, doc.Metadata.TotalVehicles)
	require.Equal(t, 4, doc.Metadata.ListedVehicles)
	require.Equal(t, 3.0, doc.Metadata.ScrapeTimeMinutes)
	require.Len(t, doc.Metadata.RunID, 36)

	db, err := database.NewDatabase(files.Archive)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.GetRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, doc.Metadata.RunID, runs[0].ID)
	require.Equal(t, 0, runs[0].HistoryEvents)
}

func TestRunWithHistory(t *testing.T) {
	vehicles := sampleVehicles()
	opts := Options{Dir: t.TempDir(), Prefix: "CurveMotors", RunID: "0d9c5e0a-3f1e-4c55-9b7d-6a0e8f2b1c11", Started: started}

	files, err := Run(opts, vehicles, sampleHistory(vehicles[0]), zap.NewNop())
	require.NoError(t, err)
	require.NotEmpty(t, files.HistoryCSV)
	require.Len(t, files.All(), 5)

	data, err := os.ReadFile(files.HistoryCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Accident Reported", records[2][8])
}

func TestRunRejectsEmptyRuns(t *testing.T) {
	_, err := Run(Options{Dir: t.TempDir(), Prefix: "CurveMotors", Started: started}, nil, nil, zap.NewNop())
	require.True(t, errors.Is(err, ErrNothingToExport))

	_, err = Run(Options{Dir: t.TempDir(), Prefix: "bad prefix", Started: started}, sampleVehicles(), nil, zap.NewNop())
	require.Error(t, err)

	_, err = Run(Options{Dir: t.TempDir(), Prefix: "CurveMotors", RunID: "run-1", Started: started}, sampleVehicles(), nil, zap.NewNop())
	require.Error(t, err)
}
