package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/config"
	"dealerscraper/internal/models"
)

func testRules(t *testing.T) config.Rules {
	t.Helper()
	rules, err := config.DefaultRules()
	require.NoError(t, err)
	rules.Timing = rules.Timing.NoDelays()
	return rules
}

func newTestScraper(t *testing.T, b browser.Browser) (*Scraper, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := New(b, testRules(t), zap.New(core))
	require.NoError(t, err)
	return s, logs
}

func findVehicle(t *testing.T, vehicles []*models.VehicleRecord, id string) *models.VehicleRecord {
	t.Helper()
	for _, v := range vehicles {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("vehicle %s not found", id)
	return nil
}

func TestRunScrapesFixtureInventory(t *testing.T) {
	b := browser.NewFixtureBrowser(fixturePages())
	s, logs := newTestScraper(t, b)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, result.Listed)
	require.Len(t, result.Vehicles, 3, "item without a detail link is skipped")
	require.Equal(t, "101", result.Vehicles[0].ID)
	require.Equal(t, "102", result.Vehicles[1].ID)
	require.Equal(t, "104", result.Vehicles[2].ID)
	require.Len(t, result.History, 6)
	require.Equal(t, 0, b.OpenPages(), "every page must be closed")
	require.False(t, result.Started.IsZero())

	require.NotZero(t, logs.FilterMessage("detail page error").Len())
}

func TestListingFields(t *testing.T) {
	s, _ := newTestScraper(t, browser.NewFixtureBrowser(fixturePages()))
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	civic := findVehicle(t, result.Vehicles, "101")
	require.Equal(t, civicURL, civic.DetailURL)
	require.Equal(t, "https://www.curvemotors.ca/forms/contact-us?selected_vehicle=101", civic.ContactURL)
	require.Equal(t, models.IntOf(45210), civic.Odometer)
	require.Equal(t, models.IntOf(19995), civic.OriginalPrice)
	require.Equal(t, models.IntOf(17495), civic.SalePrice)
	require.True(t, civic.SpecialPrice)
	require.Equal(t, "2HGFC2F59KH000001", civic.VIN)
	require.Equal(t, civicReport, civic.ReportURL)
	require.Equal(t, "Sedan", civic.BodyStyle)
	require.Equal(t, "Gasoline", civic.FuelType)
	require.Equal(t, "Blue", civic.ExteriorColor)
	require.Equal(t, "Black", civic.InteriorColor)
	require.Equal(t, "CVT", civic.Transmission)
	require.Equal(t, "2.0L I4", civic.Engine)
	require.Equal(t, "FWD", civic.Drivetrain)
	require.Equal(t, models.IntOf(4), civic.Doors)
	require.Equal(t, "C1234", civic.StockNumber)
	require.Equal(t, 24, civic.PhotoCount)
	require.Equal(t, "https://cdn.azureedge.net/curvemotors/101-main.jpg", civic.MainImageURL)

	ford := findVehicle(t, result.Vehicles, "102")
	require.Equal(t, models.IntOf(42000), ford.SalePrice, "sale price falls back to the original price")
	require.False(t, ford.SpecialPrice)
	require.Equal(t, models.NA, ford.VIN)
	require.Equal(t, 0, ford.PhotoCount)
	require.Equal(t, models.NA, ford.MainImageURL)
	require.Equal(t, models.NA, ford.BodyStyle)
}

func TestDetailEnrichment(t *testing.T) {
	s, _ := newTestScraper(t, browser.NewFixtureBrowser(fixturePages()))
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	civic := findVehicle(t, result.Vehicles, "101")
	require.Equal(t, "2019 Honda Civic LX Low KM", civic.Title)
	require.Equal(t, models.IntOf(2019), civic.Year)
	require.Equal(t, "Honda", civic.Make)
	require.Equal(t, "Civic", civic.Model)
	require.Equal(t, models.FloatOf(89.5), civic.WeeklyPayment)
	require.Contains(t, civic.Description, "one owner")
	require.Equal(t, "Used", civic.Condition)
	require.Equal(t, "2.0L", civic.EngineSize)
	require.Equal(t, "7.8L/100km", civic.CityFuel)
	require.Equal(t, "6.0L/100km", civic.HighwayFuel)
	require.Equal(t, models.IntOf(5), civic.Passengers)
	require.Equal(t, models.URLList{
		"https://cdn.azureedge.net/curvemotors/a.jpg",
		"https://cdn.azureedge.net/curvemotors/b.jpg",
	}, civic.ImageURLs)
	require.Equal(t, 2, civic.ImageCount)
	require.Equal(t, "416-555-0199", civic.DealerPhone)
	require.Equal(t, "100 Main St, Toronto", civic.DealerAddress)
	require.Equal(t, "Curve Motors", civic.DealerName)

	ford := findVehicle(t, result.Vehicles, "102")
	require.Equal(t, "2020 Ford F-150 XLT SuperCrew", ford.Title, "title comes from the document title")
	require.Equal(t, "Ford", ford.Make)
	require.Equal(t, "F-150 XLT SuperCrew", ford.Model)
	require.Equal(t, models.NA, ford.Description, "short descriptions are dropped")
	require.False(t, ford.WeeklyPayment.Valid)
	require.Equal(t, "905.555.0123", ford.DealerPhone)
	require.Equal(t, "3210 Weston Rd, North York, ON M9M 2T4", ford.DealerAddress)

	missing := findVehicle(t, result.Vehicles, "104")
	require.Equal(t, models.NA, missing.Title)
	require.False(t, missing.Year.Valid)
	require.Equal(t, "416-752-2220", missing.DealerPhone)
	require.Equal(t, models.NewHistorySummary(), missing.HistorySummary, "no report link keeps every history sentinel")
}

func TestHistoryEnrichmentDesktop(t *testing.T) {
	s, _ := newTestScraper(t, browser.NewFixtureBrowser(fixturePages()))
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	civic := findVehicle(t, result.Vehicles, "101")
	h := civic.HistorySummary
	require.Equal(t, "2HGFC2F59KH000001", h.ReportVIN)
	require.Equal(t, "1234567", h.ReportNumber)
	require.Equal(t, "2024-05-01", h.ReportDate)
	require.Equal(t, "Canada", h.CountryOfAssembly)
	require.Equal(t, models.IntOf(45210), h.LastOdometer)

	require.Equal(t, "1 accident reported", h.AccidentSummary)
	require.Equal(t, "7 service records", h.ServiceSummary)
	require.Equal(t, 7, h.ServiceRecordsCount)
	require.Equal(t, "Ontario", h.RegistrationSummary)
	require.Equal(t, "No open recalls", h.OpenRecalls)
	require.Equal(t, "No theft reported", h.StolenStatus)
	require.Equal(t, "No U.S. history", h.USHistory)

	require.Equal(t, 7, h.TotalRecords, "every row counts, including short ones")
	require.Equal(t, 3, h.OwnerCount)
	require.Equal(t, "2019-03-01", h.FirstOwnerDate)
	require.Equal(t, "2021-01-10: Rear bumper collision | 2023-09-09: Front damage repaired", h.AccidentDetails)

	first := result.History[0]
	require.Equal(t, "101", first.VehicleID)
	require.Equal(t, "2HGFC2F59KH000001", first.VIN)
	require.Equal(t, models.IntOf(2019), first.Year)
	require.Equal(t, "Honda", first.Make)
	require.Equal(t, "Civic", first.Model)
	require.Equal(t, "2019-03-01", first.Date)
	require.Equal(t, "12 km", first.Odometer)
	require.Equal(t, "Ontario MTO", first.Source)
	require.Equal(t, "Registration", first.RecordType)
	require.Equal(t, "First Owner reported", first.Details)
}

func TestHistoryEnrichmentMobileCountsOnly(t *testing.T) {
	s, _ := newTestScraper(t, browser.NewFixtureBrowser(fixturePages()))
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	ford := findVehicle(t, result.Vehicles, "102")
	require.Equal(t, "1FTEW1EP0LF000002", ford.ReportVIN)
	require.Equal(t, 5, ford.TotalRecords)
	require.Equal(t, 0, ford.OwnerCount)
	require.Equal(t, models.NA, ford.FirstOwnerDate)
	require.Equal(t, models.NoAccidents, ford.AccidentSummary)
	require.Equal(t, "2022-01-01 Minor collision, left side", ford.AccidentDetails)

	for _, ev := range result.History {
		require.NotEqual(t, "102", ev.VehicleID, "mobile rows carry no events")
	}
}

func TestHistoryWithoutAccidents(t *testing.T) {
	pages := fixturePages()
	pages[civicReport] = `<html><body>
<table id="detailed-history-table"><tbody>
<tr><td></td><td>2019-03-01</td><td>12 km</td><td>Ontario MTO</td><td>Registration</td><td>First Owner reported</td></tr>
</tbody></table></body></html>`

	s, _ := newTestScraper(t, browser.NewFixtureBrowser(pages))
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	civic := findVehicle(t, result.Vehicles, "101")
	require.Equal(t, models.NA, civic.AccidentDetails)
	require.Equal(t, models.NoAccidents, civic.AccidentSummary)
	require.Equal(t, models.NotStolen, civic.StolenStatus)
	require.Equal(t, 1, civic.OwnerCount)
	require.Equal(t, models.NA, civic.ReportVIN)
}

func TestRunFailsWithoutListing(t *testing.T) {
	pages := map[string]string{inventoryURL: `<html><body><p>No vehicles</p></body></html>`}
	b := browser.NewFixtureBrowser(pages)
	s, _ := newTestScraper(t, b)

	_, err := s.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrListingUnavailable))
	require.Equal(t, 0, b.OpenPages())

	s, _ = newTestScraper(t, browser.NewFixtureBrowser(nil))
	_, err = s.Run(context.Background())
	require.ErrorIs(t, err, ErrListingUnavailable)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &cancellingBrowser{FixtureBrowser: browser.NewFixtureBrowser(fixturePages()), cancelAfter: civicURL, cancel: cancel}
	s, _ := newTestScraper(t, b)

	result, err := s.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Vehicles, 1, "the vehicle in flight completes, the rest are not started")
	require.Equal(t, 0, b.OpenPages())
}

// cancellingBrowser cancels the run once a given URL has been opened
type cancellingBrowser struct {
	*browser.FixtureBrowser
	cancelAfter string
	cancel      context.CancelFunc
}

func (b *cancellingBrowser) Open(ctx context.Context, url string, timeout time.Duration) (browser.Page, error) {
	page, err := b.FixtureBrowser.Open(ctx, url, timeout)
	if url == b.cancelAfter {
		b.cancel()
	}
	return page, err
}

func TestNewRejectsUnknownFields(t *testing.T) {
	rules := testRules(t)
	rules.History.Tiles = append(rules.History.Tiles, config.TileRule{Field: "mileage", Keywords: []string{"Odometer"}, Value: "p"})
	_, err := New(browser.NewFixtureBrowser(nil), rules, nil)
	require.Error(t, err)

	rules = testRules(t)
	rules.Detail.Specs = append(rules.Detail.Specs, config.LabelRule{Field: "warranty", Labels: []string{"Warranty"}})
	_, err = New(browser.NewFixtureBrowser(nil), rules, nil)
	require.Error(t, err)
}
