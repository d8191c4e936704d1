package models

// DealerDefaults holds the site-specific values used when a detail page has no contact info
type DealerDefaults struct {
	Name    string
	Phone   string
	Address string
}

// VehicleRecord represents one listing item after enrichment
type VehicleRecord struct {
	ID          string `json:"Vehicle ID"`
	Year        Int    `json:"Year"`
	Make        string `json:"Make"`
	Model       string `json:"Model"`
	Title       string `json:"Title"`
	VIN         string `json:"VIN"`
	StockNumber string `json:"Stock Number"`
	Condition   string `json:"Condition"`

	// Pricing
	OriginalPrice Int   `json:"Original Price"`
	SalePrice     Int   `json:"Sale Price"`
	SpecialPrice  bool  `json:"Special Price"`
	WeeklyPayment Float `json:"Weekly Payment"`

	// Specs
	Odometer      Int    `json:"Odometer"`
	BodyStyle     string `json:"Body Style"`
	Engine        string `json:"Engine"`
	EngineSize    string `json:"Engine Size"`
	Transmission  string `json:"Transmission"`
	Drivetrain    string `json:"Drivetrain"`
	FuelType      string `json:"Fuel Type"`
	CityFuel      string `json:"City Fuel Economy"`
	HighwayFuel   string `json:"Highway Fuel Economy"`
	ExteriorColor string `json:"Exterior Color"`
	InteriorColor string `json:"Interior Color"`
	Doors         Int    `json:"Doors"`
	Passengers    Int    `json:"Passengers"`
	Description   string `json:"Description"`

	// Media
	PhotoCount   int     `json:"Number of Photos"`
	ImageCount   int     `json:"Image Count"`
	MainImageURL string  `json:"Main Image URL"`
	ImageURLs    URLList `json:"All Image URLs"`

	// Links
	DetailURL  string `json:"Detail Page URL"`
	ContactURL string `json:"Contact Us URL"`
	ReportURL  string `json:"Carfax Report URL"`

	HistorySummary

	DealerName    string `json:"Dealer Name"`
	DealerPhone   string `json:"Dealer Phone"`
	DealerAddress string `json:"Dealer Address"`
}

// HistorySummary is the per-vehicle digest of a history report
type HistorySummary struct {
	ReportVIN           string `json:"Carfax VIN"`
	ReportNumber        string `json:"Carfax Report Number"`
	ReportDate          string `json:"Carfax Report Date"`
	LastOdometer        Int    `json:"Carfax Last Odometer"`
	CountryOfAssembly   string `json:"Carfax Country of Assembly"`
	TotalRecords        int    `json:"Total History Records"`
	AccidentSummary     string `json:"Accident Summary"`
	AccidentDetails     string `json:"Accident Details"`
	ServiceRecordsCount int    `json:"Service Records Count"`
	ServiceSummary      string `json:"Service Records Summary"`
	RegistrationSummary string `json:"Registration Summary"`
	OpenRecalls         string `json:"Open Recalls"`
	StolenStatus        string `json:"Stolen Status"`
	USHistory           string `json:"US History"`
	OwnerCount          int    `json:"Number of Owners"`
	FirstOwnerDate      string `json:"First Owner Date"`
}

const (
	// NoAccidents is the accident summary when no tile says otherwise
	NoAccidents = "No accidents reported"
	// NotStolen is the stolen status when no tile says otherwise
	NotStolen = "Not stolen"
)

// NewHistorySummary returns a summary with every field at its sentinel
func NewHistorySummary() HistorySummary {
	return HistorySummary{
		ReportVIN:           NA,
		ReportNumber:        NA,
		ReportDate:          NA,
		CountryOfAssembly:   NA,
		AccidentSummary:     NoAccidents,
		AccidentDetails:     NA,
		ServiceSummary:      NA,
		RegistrationSummary: NA,
		OpenRecalls:         NA,
		StolenStatus:        NotStolen,
		USHistory:           NA,
		FirstOwnerDate:      NA,
	}
}

// NewVehicleRecord creates a record with every field set to its value or sentinel
func NewVehicleRecord(id string, dealer DealerDefaults) *VehicleRecord {
	return &VehicleRecord{
		ID:             OrNA(id),
		Make:           NA,
		Model:          NA,
		Title:          NA,
		VIN:            NA,
		StockNumber:    NA,
		Condition:      NA,
		BodyStyle:      NA,
		Engine:         NA,
		EngineSize:     NA,
		Transmission:   NA,
		Drivetrain:     NA,
		FuelType:       NA,
		CityFuel:       NA,
		HighwayFuel:    NA,
		ExteriorColor:  NA,
		InteriorColor:  NA,
		Description:    NA,
		MainImageURL:   NA,
		DetailURL:      NA,
		ContactURL:     NA,
		ReportURL:      NA,
		HistorySummary: NewHistorySummary(),
		DealerName:     OrNA(dealer.Name),
		DealerPhone:    OrNA(dealer.Phone),
		DealerAddress:  OrNA(dealer.Address),
	}
}

// HasReport reports whether the listing linked a history report
func (v *VehicleRecord) HasReport() bool {
	return v.ReportURL != "" && v.ReportURL != NA
}

// Label is a short human description used in progress output
func (v *VehicleRecord) Label() string {
	return v.Year.String() + " " + v.Make + " " + v.Model
}
