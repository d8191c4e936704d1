package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"dealerscraper/internal/models"
	"dealerscraper/internal/validation"
)

//go:embed sites/curvemotors.json5
var defaultRules []byte

// Rules is the site-specific extraction table: selectors, labels, patterns, limits and delays
type Rules struct {
	Site    SiteRules    `json:"site"`
	Listing ListingRules `json:"listing"`
	Detail  DetailRules  `json:"detail"`
	History HistoryRules `json:"history"`
	Timing  Timing       `json:"timing"`
}

// SiteRules holds dealer identity and the defaults used when a page has no contact info
type SiteRules struct {
	Name               string `json:"name"`
	BaseURL            string `json:"base_url"`
	InventoryURL       string `json:"inventory_url"`
	ContactURLTemplate string `json:"contact_url_template"`
	DefaultPhone       string `json:"default_phone"`
	DefaultAddress     string `json:"default_address"`
	OutputPrefix       string `json:"output_prefix"`
}

// ContactURL fills the contact template with a vehicle id
func (s SiteRules) ContactURL(id string) string {
	return strings.ReplaceAll(s.ContactURLTemplate, "{id}", id)
}

// LabelRule maps any of Labels (substring match) to a record field
type LabelRule struct {
	Field   string   `json:"field"`
	Labels  []string `json:"labels"`
	Numeric bool     `json:"numeric"`
}

// Matches reports whether text contains one of the rule's labels
func (r LabelRule) Matches(text string) bool {
	for _, l := range r.Labels {
		if strings.Contains(text, l) {
			return true
		}
	}
	return false
}

type ListingRules struct {
	Item               string      `json:"item"`
	IDPrefix           string      `json:"id_prefix"`
	LoadMore           []string    `json:"load_more"`
	LoadMoreButtonText string      `json:"load_more_button_text"`
	MaxScrolls         int         `json:"max_scrolls"`
	StableRounds       int         `json:"stable_rounds"`
	DetailLink         string      `json:"detail_link"`
	Odometer           string      `json:"odometer"`
	OriginalPrice      string      `json:"original_price"`
	Price              string      `json:"price"`
	SpecialRibbon      string      `json:"special_ribbon"`
	VIN                string      `json:"vin"`
	VINAttr            string      `json:"vin_attr"`
	ReportLink         string      `json:"report_link"`
	SpecCell           string      `json:"spec_cell"`
	SpecValue          string      `json:"spec_value"`
	Specs              []LabelRule `json:"specs"`
	PhotoCount         string      `json:"photo_count"`
	MainImage          string      `json:"main_image"`
}

type DetailRules struct {
	Title                string      `json:"title"`
	TitleMinLength       int         `json:"title_min_length"`
	TitleSeparator       string      `json:"title_separator"`
	OGTitle              string      `json:"og_title"`
	Description          string      `json:"description"`
	DescriptionMinLength int         `json:"description_min_length"`
	WeeklyPayment        string      `json:"weekly_payment"`
	SpecCard             string      `json:"spec_card"`
	SpecLabel            string      `json:"spec_label"`
	SpecValue            string      `json:"spec_value"`
	Specs                []LabelRule `json:"specs"`
	Images               string      `json:"images"`
	ImageExclude         []string    `json:"image_exclude"`
	ThumbPrefix          string      `json:"thumb_prefix"`
	MaxImages            int         `json:"max_images"`
	PhoneLink            string      `json:"phone_link"`
	PhonePattern         string      `json:"phone_pattern"`
	Address              string      `json:"address"`
	MaxModelTokens       int         `json:"max_model_tokens"`
	StopWords            []string    `json:"stop_words"`
}

// TileRule classifies a report summary tile by keyword and names the element holding its value
type TileRule struct {
	Field    string   `json:"field"`
	Keywords []string `json:"keywords"`
	Value    string   `json:"value"`
}

type HistoryRules struct {
	Ready                    string     `json:"ready"`
	TableReady               string     `json:"table_ready"`
	VIN                      string     `json:"vin"`
	Info                     string     `json:"info"`
	ReportNumber             string     `json:"report_number"`
	ReportDate               string     `json:"report_date"`
	Country                  string     `json:"country"`
	Odometer                 string     `json:"odometer"`
	Tile                     string     `json:"tile"`
	Tiles                    []TileRule `json:"tiles"`
	Rows                     []string   `json:"rows"`
	MobileRows               string     `json:"mobile_rows"`
	Cell                     string     `json:"cell"`
	MinCells                 int        `json:"min_cells"`
	AccidentTypeKeywords     []string   `json:"accident_type_keywords"`
	AccidentDetailKeywords   []string   `json:"accident_detail_keywords"`
	FirstOwnerMarkers        []string   `json:"first_owner_markers"`
	NewOwnerMarkers          []string   `json:"new_owner_markers"`
	MaxAccidents             int        `json:"max_accidents"`
	AccidentExcerpt          int        `json:"accident_excerpt"`
	AccidentSection          string     `json:"accident_section"`
	AccidentSectionRows      string     `json:"accident_section_rows"`
	AccidentSectionMinLength int        `json:"accident_section_min_length"`
	AccidentSectionExcerpt   int        `json:"accident_section_excerpt"`
}

// Timing holds every delay and bound in milliseconds
type Timing struct {
	NavigationTimeoutMS       int `json:"navigation_timeout_ms"`
	ReportNavigationTimeoutMS int `json:"report_navigation_timeout_ms"`
	ListingWaitMS             int `json:"listing_wait_ms"`
	ScrollSettleMS            int `json:"scroll_settle_ms"`
	LoadMoreSettleMS          int `json:"load_more_settle_ms"`
	DetailSettleMS            int `json:"detail_settle_ms"`
	ReportReadyWaitMS         int `json:"report_ready_wait_ms"`
	ReportSettleMS            int `json:"report_settle_ms"`
	ReportTableWaitMS         int `json:"report_table_wait_ms"`
	VehiclePauseMS            int `json:"vehicle_pause_ms"`
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (t Timing) NavigationTimeout() time.Duration       { return ms(t.NavigationTimeoutMS) }
func (t Timing) ReportNavigationTimeout() time.Duration { return ms(t.ReportNavigationTimeoutMS) }
func (t Timing) ListingWait() time.Duration             { return ms(t.ListingWaitMS) }
func (t Timing) ScrollSettle() time.Duration            { return ms(t.ScrollSettleMS) }
func (t Timing) LoadMoreSettle() time.Duration          { return ms(t.LoadMoreSettleMS) }
func (t Timing) DetailSettle() time.Duration            { return ms(t.DetailSettleMS) }
func (t Timing) ReportReadyWait() time.Duration         { return ms(t.ReportReadyWaitMS) }
func (t Timing) ReportSettle() time.Duration            { return ms(t.ReportSettleMS) }
func (t Timing) ReportTableWait() time.Duration         { return ms(t.ReportTableWaitMS) }
func (t Timing) VehiclePause() time.Duration            { return ms(t.VehiclePauseMS) }

// NoDelays returns a copy with every settle delay and pause zeroed, keeping the bounded waits.
// Used by fixture-backed runs where nothing loads asynchronously.
func (t Timing) NoDelays() Timing {
	t.ScrollSettleMS = 0
	t.LoadMoreSettleMS = 0
	t.DetailSettleMS = 0
	t.ReportSettleMS = 0
	t.VehiclePauseMS = 0
	return t
}

// DefaultRules returns the embedded rules for the default dealer site
func DefaultRules() (Rules, error) {
	var rules Rules
	if err := json5.Unmarshal(defaultRules, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse embedded site rules: %w", err)
	}
	return rules, nil
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// ReadRules loads the embedded defaults and merges, in order of priority:
//  1. <name>.<ext>
//  2. <name>.local.<ext>
//
// An empty path returns the defaults. A named file that does not exist is an error,
// the .local sibling is optional.
func ReadRules(path string) (Rules, error) {
	rules, err := DefaultRules()
	if err != nil {
		return rules, err
	}
	if path == "" {
		return rules, rules.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read site rules %s: %w", path, err)
	}
	if err := mergeRules(&rules, data); err != nil {
		return rules, fmt.Errorf("failed to merge site rules %s: %w", path, err)
	}

	prefix, ext := splitExt(path)
	localPath := prefix + ".local" + ext
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return rules, fmt.Errorf("failed to read site rules %s: %w", localPath, err)
	}
	if len(local) > 0 {
		if err := mergeRules(&rules, local); err != nil {
			return rules, fmt.Errorf("failed to merge site rules %s: %w", localPath, err)
		}
	}

	return rules, rules.Validate()
}

func mergeRules(dst *Rules, data []byte) error {
	var override Rules
	if err := json5.Unmarshal(data, &override); err != nil {
		return err
	}
	return mergo.Merge(dst, override, mergo.WithOverride)
}

// Validate checks the fields every stage depends on and that each pattern compiles
func (r Rules) Validate() error {
	required := map[string]string{
		"site.base_url":       r.Site.BaseURL,
		"site.inventory_url":  r.Site.InventoryURL,
		"site.output_prefix":  r.Site.OutputPrefix,
		"listing.item":        r.Listing.Item,
		"listing.detail_link": r.Listing.DetailLink,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("site rules: %s is required", key)
		}
	}
	if err := validation.ValidateOutputPrefix(r.Site.OutputPrefix); err != nil {
		return fmt.Errorf("site rules: site.output_prefix: %w", err)
	}

	patterns := map[string]string{
		"detail.weekly_payment": r.Detail.WeeklyPayment,
		"detail.phone_pattern":  r.Detail.PhonePattern,
		"history.report_number": r.History.ReportNumber,
		"history.report_date":   r.History.ReportDate,
	}
	for key, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("site rules: %s: %w", key, err)
		}
	}

	if r.Listing.MaxScrolls <= 0 || r.Listing.StableRounds <= 0 {
		return fmt.Errorf("site rules: listing.max_scrolls and listing.stable_rounds must be positive")
	}
	return nil
}

// Dealer returns the contact defaults for new records
func (r Rules) Dealer() models.DealerDefaults {
	return models.DealerDefaults{
		Name:    r.Site.Name,
		Phone:   r.Site.DefaultPhone,
		Address: r.Site.DefaultAddress,
	}
}
