package export

import (
	"strings"

	"dealerscraper/internal/models"
)

// Kind decides how a column is formatted in the workbook
type Kind int

const (
	KindText Kind = iota
	// KindForcedText is stored with the text number format so long digit strings survive
	KindForcedText
	KindNumber
	KindPrice
	KindPayment
	KindDistance
)

// Column is one output column
type Column struct {
	Name string
	Kind Kind
}

// VehicleColumns is the fixed vehicle schema, in output order
var VehicleColumns = []Column{
	{"Vehicle ID", KindNumber},
	{"Year", KindNumber},
	{"Make", KindText},
	{"Model", KindText},
	{"Title", KindText},
	{"VIN", KindForcedText},
	{"Stock Number", KindForcedText},
	{"Condition", KindText},
	{"Original Price", KindPrice},
	{"Sale Price", KindPrice},
	{"Special Price", KindText},
	{"Weekly Payment", KindPayment},
	{"Odometer", KindDistance},
	{"Body Style", KindText},
	{"Engine", KindText},
	{"Engine Size", KindText},
	{"Transmission", KindText},
	{"Drivetrain", KindText},
	{"Fuel Type", KindText},
	{"City Fuel Economy", KindText},
	{"Highway Fuel Economy", KindText},
	{"Exterior Color", KindText},
	{"Interior Color", KindText},
	{"Doors", KindNumber},
	{"Passengers", KindNumber},
	{"Description", KindText},
	{"Number of Photos", KindNumber},
	{"Image Count", KindNumber},
	{"Main Image URL", KindText},
	{"All Image URLs", KindText},
	{"Detail Page URL", KindText},
	{"Contact Us URL", KindText},
	{"Carfax Report URL", KindText},
	{"Carfax VIN", KindForcedText},
	{"Carfax Report Number", KindForcedText},
	{"Carfax Report Date", KindText},
	{"Carfax Last Odometer", KindDistance},
	{"Carfax Country of Assembly", KindText},
	{"Total History Records", KindNumber},
	{"Accident Summary", KindText},
	{"Accident Details", KindText},
	{"Service Records Count", KindNumber},
	{"Service Records Summary", KindText},
	{"Registration Summary", KindText},
	{"Number of Owners", KindNumber},
	{"First Owner Date", KindText},
	{"Open Recalls", KindText},
	{"Stolen Status", KindText},
	{"US History", KindText},
	{"Dealer Name", KindText},
	{"Dealer Phone", KindForcedText},
	{"Dealer Address", KindText},
}

// HistoryColumns is the fixed history event schema
var HistoryColumns = []Column{
	{"Vehicle ID", KindNumber},
	{"VIN", KindForcedText},
	{"Year", KindNumber},
	{"Make", KindText},
	{"Model", KindText},
	{"Date", KindText},
	{"Odometer", KindText},
	{"Source", KindText},
	{"Record Type", KindText},
	{"Details", KindText},
}

func joinURLs(urls models.URLList) interface{} {
	if len(urls) == 0 {
		return models.NA
	}
	return strings.Join(urls, ", ")
}

// vehicleRow flattens a record in VehicleColumns order
func vehicleRow(v *models.VehicleRecord) []interface{} {
	h := v.HistorySummary
	return []interface{}{
		v.ID,
		v.Year.Cell(),
		v.Make,
		v.Model,
		v.Title,
		v.VIN,
		v.StockNumber,
		v.Condition,
		v.OriginalPrice.Cell(),
		v.SalePrice.Cell(),
		models.YesNo(v.SpecialPrice),
		v.WeeklyPayment.Cell(),
		v.Odometer.Cell(),
		v.BodyStyle,
		v.Engine,
		v.EngineSize,
		v.Transmission,
		v.Drivetrain,
		v.FuelType,
		v.CityFuel,
		v.HighwayFuel,
		v.ExteriorColor,
		v.InteriorColor,
		v.Doors.Cell(),
		v.Passengers.Cell(),
		v.Description,
		v.PhotoCount,
		v.ImageCount,
		v.MainImageURL,
		joinURLs(v.ImageURLs),
		v.DetailURL,
		v.ContactURL,
		v.ReportURL,
		h.ReportVIN,
		h.ReportNumber,
		h.ReportDate,
		h.LastOdometer.Cell(),
		h.CountryOfAssembly,
		h.TotalRecords,
		h.AccidentSummary,
		h.AccidentDetails,
		h.ServiceRecordsCount,
		h.ServiceSummary,
		h.RegistrationSummary,
		h.OwnerCount,
		h.FirstOwnerDate,
		h.OpenRecalls,
		h.StolenStatus,
		h.USHistory,
		v.DealerName,
		v.DealerPhone,
		v.DealerAddress,
	}
}

func historyRow(e models.HistoryEvent) []interface{} {
	return []interface{}{
		e.VehicleID,
		e.VIN,
		e.Year.Cell(),
		e.Make,
		e.Model,
		e.Date,
		e.Odometer,
		e.Source,
		e.RecordType,
		e.Details,
	}
}
