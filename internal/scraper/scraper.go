package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/config"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/models"
	"dealerscraper/internal/util"
)

// ErrListingUnavailable means the inventory page never showed a listing item
var ErrListingUnavailable = errors.New("inventory listing unavailable")

// Result is everything collected by one run
type Result struct {
	Vehicles []*models.VehicleRecord
	History  []models.HistoryEvent
	// Listed is the number of item containers found on the inventory page
	Listed  int
	Started time.Time
	Elapsed time.Duration
}

// Scraper walks the inventory page, every detail page and every linked history report
type Scraper struct {
	browser browser.Browser
	rules   config.Rules
	log     *zap.Logger

	titles *extract.TitleParser
	images extract.ImageFilter
	tiles  []tileRule
	pacer  *rate.Limiter
	now    func() time.Time

	weeklyPayment *regexp.Regexp
	phone         *regexp.Regexp
	reportNumber  *regexp.Regexp
	reportDate    *regexp.Regexp
}

// New builds a scraper for the given site rules
func New(b browser.Browser, rules config.Rules, log *zap.Logger) (*Scraper, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := checkLabelRules("listing.specs", rules.Listing.Specs); err != nil {
		return nil, err
	}
	if err := checkLabelRules("detail.specs", rules.Detail.Specs); err != nil {
		return nil, err
	}
	tiles, err := buildTileRules(rules.History.Tiles)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	limit := rate.Inf
	if pause := rules.Timing.VehiclePause(); pause > 0 {
		limit = rate.Every(pause)
	}

	return &Scraper{
		browser: b,
		rules:   rules,
		log:     log,
		titles:  extract.NewTitleParser(rules.Detail.StopWords, rules.Detail.MaxModelTokens),
		images: extract.ImageFilter{
			Exclude:     rules.Detail.ImageExclude,
			ThumbPrefix: rules.Detail.ThumbPrefix,
			Max:         rules.Detail.MaxImages,
		},
		tiles:         tiles,
		pacer:         rate.NewLimiter(limit, 1),
		now:           time.Now,
		weeklyPayment: compileOptional(rules.Detail.WeeklyPayment),
		phone:         compileOptional(rules.Detail.PhonePattern),
		reportNumber:  compileOptional(rules.History.ReportNumber),
		reportDate:    compileOptional(rules.History.ReportDate),
	}, nil
}

// patterns were checked by Rules.Validate
func compileOptional(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	return regexp.MustCompile(pattern)
}

// Run scrapes the whole inventory. The only error is a listing page that never loads;
// failures on a single vehicle are logged and the run continues. Cancelling ctx stops
// the run after the current page and returns what was collected.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	result := &Result{Started: s.now()}
	defer func() { result.Elapsed = s.now().Sub(result.Started) }()

	s.log.Info("loading inventory page", zap.String("url", s.rules.Site.InventoryURL))
	page, err := s.browser.Open(ctx, s.rules.Site.InventoryURL, s.rules.Timing.NavigationTimeout())
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrListingUnavailable, err)
	}
	defer page.Close()

	items, err := s.CollectListing(ctx, page)
	if err != nil {
		return result, err
	}
	result.Listed = len(items)
	s.log.Info("found vehicles", zap.Int("count", len(items)))

	for idx, item := range items {
		if ctx.Err() != nil {
			s.log.Warn("run cancelled", zap.Int("processed", idx), zap.Int("total", len(items)))
			break
		}

		record, events, err := s.scrapeVehicle(ctx, idx+1, len(items), item)
		if err != nil {
			s.log.Error("vehicle failed",
				zap.Int("index", idx+1),
				zap.String("error", util.Summarize(err, 60)),
			)
			continue
		}
		if record == nil {
			continue
		}

		result.Vehicles = append(result.Vehicles, record)
		result.History = append(result.History, events...)
	}

	return result, nil
}

// scrapeVehicle runs the three stages for one listing item. A nil record means the item was skipped.
func (s *Scraper) scrapeVehicle(ctx context.Context, idx, total int, item browser.Node) (record *models.VehicleRecord, events []models.HistoryEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, events = nil, nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	record, ok := s.parseListingItem(item)
	if !ok {
		s.log.Info("skipping item without detail link", zap.Int("index", idx), zap.Int("total", total))
		return nil, nil, nil
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, nil, err
	}

	s.log.Info("vehicle",
		zap.Int("index", idx),
		zap.Int("total", total),
		zap.String("vehicle_id", record.ID),
		zap.String("url", record.DetailURL),
	)

	s.enrichDetail(ctx, record)
	s.log.Info("detail",
		zap.String("vehicle_id", record.ID),
		zap.String("vehicle", record.Label()),
		zap.String("sale_price", record.SalePrice.String()),
	)

	if record.HasReport() {
		events = s.enrichHistory(ctx, record)
	}

	s.log.Info("complete", zap.String("vehicle_id", record.ID), zap.Int("history_events", len(events)))
	return record, events, nil
}
