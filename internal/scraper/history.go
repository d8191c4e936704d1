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

// tileHandlers maps tile rule fields onto the history summary
var tileHandlers = map[string]func(h *models.HistorySummary, value string){
	"accident":     func(h *models.HistorySummary, value string) { h.AccidentSummary = value },
	"registration": func(h *models.HistorySummary, value string) { h.RegistrationSummary = value },
	"recall":       func(h *models.HistorySummary, value string) { h.OpenRecalls = value },
	"stolen":       func(h *models.HistorySummary, value string) { h.StolenStatus = value },
	"us_history":   func(h *models.HistorySummary, value string) { h.USHistory = value },
	"service": func(h *models.HistorySummary, value string) {
		h.ServiceSummary = value
		if n, ok := extract.FirstDigits(value); ok {
			h.ServiceRecordsCount = n
		}
	},
}

// tileRule is one (predicate, handler) pair; rules are tried in order and the first match wins
type tileRule struct {
	field   string
	matches func(text string) bool
	value   string
	apply   func(h *models.HistorySummary, value string)
}

func buildTileRules(rules []config.TileRule) ([]tileRule, error) {
	out := make([]tileRule, 0, len(rules))
	for _, r := range rules {
		apply, ok := tileHandlers[r.Field]
		if !ok {
			return nil, fmt.Errorf("site rules: history.tiles: unknown field %q", r.Field)
		}
		keywords := r.Keywords
		out = append(out, tileRule{
			field:   r.Field,
			matches: func(text string) bool { return extract.ContainsAny(text, keywords) },
			value:   r.Value,
			apply:   apply,
		})
	}
	return out, nil
}

// timelineStrategy is a (row source, handler) pair tried in order until one finds rows
type timelineStrategy struct {
	selector string
	handle   func(v *models.VehicleRecord, rows []browser.Node) []models.HistoryEvent
}

func (s *Scraper) timelineStrategies() []timelineStrategy {
	hr := s.rules.History
	strategies := make([]timelineStrategy, 0, len(hr.Rows)+1)
	for _, selector := range hr.Rows {
		strategies = append(strategies, timelineStrategy{selector: selector, handle: s.parseTimeline})
	}
	if hr.MobileRows != "" {
		strategies = append(strategies, timelineStrategy{selector: hr.MobileRows, handle: countMobileRows})
	}
	return strategies
}

// enrichHistory opens the linked report and fills the history summary.
// It returns the timeline rows as events tagged with the vehicle.
func (s *Scraper) enrichHistory(ctx context.Context, v *models.VehicleRecord) (events []models.HistoryEvent) {
	hr := s.rules.History
	timing := s.rules.Timing

	page, err := s.browser.Open(ctx, v.ReportURL, timing.ReportNavigationTimeout())
	if err != nil {
		s.log.Warn("history report error", zap.String("vehicle_id", v.ID), zap.String("error", util.Summarize(err, 30)))
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("history report error", zap.String("vehicle_id", v.ID), zap.String("error", util.Summarize(r, 30)))
		}
		page.Close()
	}()

	page.WaitFor(hr.Ready, timing.ReportReadyWait())
	if err := browser.Sleep(ctx, timing.ReportSettle()); err != nil {
		return nil
	}
	page.WaitFor(hr.TableReady, timing.ReportTableWait())

	s.readReportScalars(page, v)

	for _, tile := range page.FindAll(hr.Tile) {
		s.applyTile(v, tile)
	}

	for _, strategy := range s.timelineStrategies() {
		rows := page.FindAll(strategy.selector)
		if len(rows) == 0 {
			continue
		}
		events = strategy.handle(v, rows)
		s.log.Debug("history rows", zap.String("vehicle_id", v.ID), zap.String("selector", strategy.selector), zap.Int("rows", len(rows)))
		break
	}

	if v.AccidentDetails == models.NA {
		if details := s.accidentSectionDetails(page); details != "" {
			v.AccidentDetails = details
		}
	}

	return events
}

func (s *Scraper) readReportScalars(page browser.Page, v *models.VehicleRecord) {
	hr := s.rules.History

	if vin := browser.TextOf(page, hr.VIN); vin != "" {
		v.ReportVIN = vin
	}
	if info := browser.TextOf(page, hr.Info); info != "" {
		if num := extract.Capture(s.reportNumber, info); num != "" {
			v.ReportNumber = num
		}
		if date := extract.Capture(s.reportDate, info); date != "" {
			v.ReportDate = date
		}
	}
	if country := browser.TextOf(page, hr.Country); country != "" {
		v.CountryOfAssembly = country
	}
	if odo := extract.ParseInt(browser.TextOf(page, hr.Odometer)); odo.Valid {
		v.LastOdometer = odo
	}
}

// applyTile classifies one summary tile. The first matching rule owns the tile
// even when its value element is missing.
func (s *Scraper) applyTile(v *models.VehicleRecord, tile browser.Node) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("tile skipped", zap.String("vehicle_id", v.ID), zap.Any("panic", r))
		}
	}()

	text := tile.Text()
	for _, rule := range s.tiles {
		if !rule.matches(text) {
			continue
		}
		if el, ok := tile.Find(rule.value); ok {
			rule.apply(&v.HistorySummary, models.OrNA(strings.TrimSpace(el.Text())))
		} else {
			s.log.Debug("tile has no value element", zap.String("vehicle_id", v.ID), zap.String("tile", rule.field))
		}
		return
	}
}

// parseTimeline turns full desktop rows into events and derives accident details and owner counts
func (s *Scraper) parseTimeline(v *models.VehicleRecord, rows []browser.Node) []models.HistoryEvent {
	hr := s.rules.History
	v.TotalRecords = len(rows)

	var (
		events    []models.HistoryEvent
		accidents []string
		owners    int
		firstDate = models.NA
	)

	for _, row := range rows {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Debug("history row skipped", zap.String("vehicle_id", v.ID), zap.Any("panic", r))
				}
			}()

			cells := row.FindAll(hr.Cell)
			if len(cells) < hr.MinCells {
				return
			}
			cell := func(i int) string {
				if i < len(cells) {
					return strings.TrimSpace(cells[i].Text())
				}
				return ""
			}
			date, odometer, source, recordType, details := cell(1), cell(2), cell(3), cell(4), cell(5)

			events = append(events, models.NewHistoryEvent(v, date, odometer, source, recordType, details))

			if extract.ContainsAnyFold(recordType, hr.AccidentTypeKeywords) || extract.ContainsAnyFold(details, hr.AccidentDetailKeywords) {
				accidents = append(accidents, fmt.Sprintf("%s: %s", date, util.Truncate(details, hr.AccidentExcerpt)))
			}

			switch {
			case extract.ContainsAny(details, hr.FirstOwnerMarkers):
				firstDate = models.OrNA(date)
				owners++
			case extract.ContainsAny(details, hr.NewOwnerMarkers):
				owners++
			}
		}()
	}

	if len(accidents) > 0 {
		if hr.MaxAccidents > 0 && len(accidents) > hr.MaxAccidents {
			accidents = accidents[:hr.MaxAccidents]
		}
		v.AccidentDetails = strings.Join(accidents, " | ")
	}
	v.OwnerCount = owners
	v.FirstOwnerDate = firstDate

	return events
}

// countMobileRows records only how many rows the mobile layout shows; it carries no per-row detail
func countMobileRows(v *models.VehicleRecord, rows []browser.Node) []models.HistoryEvent {
	v.TotalRecords = len(rows)
	return nil
}

// accidentSectionDetails reads excerpts from the dedicated accident section
func (s *Scraper) accidentSectionDetails(page browser.Page) string {
	hr := s.rules.History
	if hr.AccidentSection == "" {
		return ""
	}
	section, ok := page.Find(hr.AccidentSection)
	if !ok {
		return ""
	}

	rows := section.FindAll(hr.AccidentSectionRows)
	if hr.MaxAccidents > 0 && len(rows) > hr.MaxAccidents {
		rows = rows[:hr.MaxAccidents]
	}

	var excerpts []string
	for _, row := range rows {
		text := strings.TrimSpace(row.Text())
		if len([]rune(text)) <= hr.AccidentSectionMinLength {
			continue
		}
		text = strings.ReplaceAll(text, "\n", " ")
		excerpts = append(excerpts, util.Truncate(text, hr.AccidentSectionExcerpt))
	}
	return strings.Join(excerpts, " | ")
}
