package scraper

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/config"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/models"
	"dealerscraper/internal/util"
)

// fieldSetters maps the field names used by label rules onto the record
var fieldSetters = map[string]func(v *models.VehicleRecord, text string, n models.Int){
	"body_style":     func(v *models.VehicleRecord, text string, _ models.Int) { v.BodyStyle = text },
	"fuel_type":      func(v *models.VehicleRecord, text string, _ models.Int) { v.FuelType = text },
	"exterior_color": func(v *models.VehicleRecord, text string, _ models.Int) { v.ExteriorColor = text },
	"interior_color": func(v *models.VehicleRecord, text string, _ models.Int) { v.InteriorColor = text },
	"transmission":   func(v *models.VehicleRecord, text string, _ models.Int) { v.Transmission = text },
	"engine":         func(v *models.VehicleRecord, text string, _ models.Int) { v.Engine = text },
	"drivetrain":     func(v *models.VehicleRecord, text string, _ models.Int) { v.Drivetrain = text },
	"stock_number":   func(v *models.VehicleRecord, text string, _ models.Int) { v.StockNumber = text },
	"condition":      func(v *models.VehicleRecord, text string, _ models.Int) { v.Condition = text },
	"engine_size":    func(v *models.VehicleRecord, text string, _ models.Int) { v.EngineSize = text },
	"city_fuel":      func(v *models.VehicleRecord, text string, _ models.Int) { v.CityFuel = text },
	"highway_fuel":   func(v *models.VehicleRecord, text string, _ models.Int) { v.HighwayFuel = text },
	"doors":          func(v *models.VehicleRecord, _ string, n models.Int) { v.Doors = n },
	"passengers":     func(v *models.VehicleRecord, _ string, n models.Int) { v.Passengers = n },
}

func setField(v *models.VehicleRecord, field string, numeric bool, text string) {
	set, ok := fieldSetters[field]
	if !ok {
		return
	}
	var n models.Int
	if numeric {
		n = extract.SmallInt(text)
	}
	set(v, models.OrNA(text), n)
}

func checkLabelRules(section string, rules []config.LabelRule) error {
	for _, r := range rules {
		if _, ok := fieldSetters[r.Field]; !ok {
			return fmt.Errorf("site rules: %s: unknown field %q", section, r.Field)
		}
	}
	return nil
}

// enrichDetail opens the detail page and fills title, name, description, specs, images
// and dealer contact. Any failure leaves the fields already set and the defaults.
func (s *Scraper) enrichDetail(ctx context.Context, v *models.VehicleRecord) {
	dr := s.rules.Detail

	page, err := s.browser.Open(ctx, v.DetailURL, s.rules.Timing.NavigationTimeout())
	if err != nil {
		s.log.Warn("detail page error", zap.String("vehicle_id", v.ID), zap.String("error", util.Summarize(err, 50)))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("detail page error", zap.String("vehicle_id", v.ID), zap.String("error", util.Summarize(r, 50)))
		}
		page.Close()
	}()

	if err := browser.Sleep(ctx, s.rules.Timing.DetailSettle()); err != nil {
		return
	}

	v.Title = models.OrNA(s.resolveTitle(page, v.DetailURL))
	name := s.titles.Parse(v.Title)
	v.Year, v.Make, v.Model = name.Year, name.Make, name.Model

	if desc, ok := page.Find(dr.Description); ok {
		text := strings.TrimSpace(desc.Text())
		if len([]rune(text)) > dr.DescriptionMinLength {
			v.Description = text
		}
		v.WeeklyPayment = extract.WeeklyPayment(s.weeklyPayment, text)
	}

	for _, card := range page.FindAll(dr.SpecCard) {
		s.applySpecCard(v, card)
	}

	var srcs []string
	for _, img := range page.FindAll(dr.Images) {
		if src, ok := img.Attr("src"); ok {
			srcs = append(srcs, src)
		}
	}
	urls, count := s.images.Collect(srcs)
	v.ImageURLs = models.URLList(urls)
	v.ImageCount = count

	if phone := s.findPhone(page); phone != "" {
		v.DealerPhone = phone
	}
	if addr := browser.TextOf(page, dr.Address); addr != "" {
		v.DealerAddress = addr
	}
}

// resolveTitle walks the title fallbacks in order until one is usable
func (s *Scraper) resolveTitle(page browser.Page, detailURL string) string {
	dr := s.rules.Detail
	candidates := []func() string{
		func() string { return browser.TextOf(page, dr.Title) },
		func() string { return extract.TitleFromPageTitle(page.Title(), dr.TitleSeparator) },
		func() string { return browser.AttrOf(page, dr.OGTitle, "content") },
		func() string { return extract.TitleFromURL(detailURL) },
	}

	title := ""
	for _, next := range candidates {
		if extract.Usable(title, dr.TitleMinLength) {
			break
		}
		if candidate := next(); candidate != "" {
			title = candidate
		}
	}
	return title
}

// applySpecCard sets the field of the first rule whose label the card carries
func (s *Scraper) applySpecCard(v *models.VehicleRecord, card browser.Node) {
	dr := s.rules.Detail
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("spec card skipped", zap.String("vehicle_id", v.ID), zap.Any("panic", r))
		}
	}()

	label, ok := card.Find(dr.SpecLabel)
	if !ok {
		return
	}
	value, ok := card.Find(dr.SpecValue)
	if !ok {
		return
	}

	labelText := strings.TrimSpace(label.Text())
	for _, rule := range dr.Specs {
		if rule.Matches(labelText) {
			setField(v, rule.Field, rule.Numeric, strings.TrimSpace(value.Text()))
			return
		}
	}
}

// findPhone prefers a tel: link, then the first phone-shaped number in the page text
func (s *Scraper) findPhone(page browser.Page) string {
	if link, ok := page.Find(s.rules.Detail.PhoneLink); ok {
		if phone := strings.TrimSpace(link.Text()); phone != "" {
			return phone
		}
		if href, ok := link.Attr("href"); ok {
			if phone := extract.PhoneFromHref(href); phone != "" {
				return phone
			}
		}
	}
	return extract.FindPhone(s.phone, page.Text())
}
