package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/models"
)

// CollectListing triggers lazy loading until the number of item containers stops changing
// and returns the containers in page order.
func (s *Scraper) CollectListing(ctx context.Context, page browser.Page) ([]browser.Node, error) {
	lr := s.rules.Listing
	timing := s.rules.Timing

	if !page.WaitFor(lr.Item, timing.ListingWait()) {
		return nil, fmt.Errorf("%w: no %q within %s", ErrListingUnavailable, lr.Item, timing.ListingWait())
	}

	s.log.Info("scrolling to load all vehicles")
	previous, unchanged := 0, 0
	for attempt := 0; attempt < lr.MaxScrolls; attempt++ {
		if err := page.ScrollToBottom(); err != nil {
			s.log.Debug("scroll failed", zap.Error(err))
		}
		if err := browser.Sleep(ctx, timing.ScrollSettle()); err != nil {
			break
		}

		if s.clickLoadMore(page) {
			if err := browser.Sleep(ctx, timing.LoadMoreSettle()); err != nil {
				break
			}
		}

		current := len(page.FindAll(lr.Item))
		s.log.Debug("loaded vehicles", zap.Int("count", current), zap.Int("attempt", attempt+1))

		if current == previous {
			unchanged++
			if unchanged >= lr.StableRounds {
				break
			}
		} else {
			unchanged = 0
		}
		previous = current
	}

	return page.FindAll(lr.Item), nil
}

// clickLoadMore clicks the first load-more control it finds; a failed click is ignored
func (s *Scraper) clickLoadMore(page browser.Page) bool {
	lr := s.rules.Listing

	var control browser.Node
	for _, selector := range lr.LoadMore {
		if el, ok := page.Find(selector); ok {
			control = el
			break
		}
	}
	if control == nil && lr.LoadMoreButtonText != "" {
		for _, button := range page.FindAll("button") {
			if strings.Contains(button.Text(), lr.LoadMoreButtonText) {
				control = button
				break
			}
		}
	}
	if control == nil {
		return false
	}

	if err := control.Click(); err != nil {
		s.log.Debug("load more click failed", zap.Error(err))
		return false
	}
	return true
}

// parseListingItem reads the summary fields from one item container.
// It returns false when the item has no detail link.
func (s *Scraper) parseListingItem(item browser.Node) (*models.VehicleRecord, bool) {
	lr := s.rules.Listing

	rawID, _ := item.Attr("id")
	id := strings.TrimPrefix(strings.TrimSpace(rawID), lr.IDPrefix)

	href := browser.AttrOf(item, lr.DetailLink, "href")
	if href == "" {
		return nil, false
	}

	v := models.NewVehicleRecord(id, s.rules.Dealer())
	v.DetailURL = s.resolve(href)
	if s.rules.Site.ContactURLTemplate != "" {
		v.ContactURL = s.rules.Site.ContactURL(id)
	}

	if el, ok := item.Find(lr.Odometer); ok {
		v.Odometer = extract.ParseInt(el.Text())
	}
	if el, ok := item.Find(lr.OriginalPrice); ok {
		v.OriginalPrice = extract.ParseInt(el.Text())
	}
	if prices := item.FindAll(lr.Price); len(prices) > 0 {
		v.SalePrice = extract.ParseInt(prices[len(prices)-1].Text())
	} else {
		v.SalePrice = v.OriginalPrice
	}
	_, v.SpecialPrice = item.Find(lr.SpecialRibbon)

	v.VIN = models.OrNA(browser.AttrOf(item, lr.VIN, lr.VINAttr))
	if report := browser.AttrOf(item, lr.ReportLink, "href"); report != "" {
		v.ReportURL = s.resolve(report)
	}

	// each label takes the first cell that mentions it, ignoring case and spacing
	cells := item.FindAll(lr.SpecCell)
	texts := make([]string, len(cells))
	for i, cell := range cells {
		texts[i] = strings.Join(strings.Fields(cell.Text()), " ")
	}
	for _, rule := range lr.Specs {
		for i, cell := range cells {
			if !extract.ContainsAnyFold(texts[i], rule.Labels) {
				continue
			}
			if value, ok := cell.Find(lr.SpecValue); ok {
				setField(v, rule.Field, rule.Numeric, strings.TrimSpace(value.Text()))
				break
			}
		}
	}

	if el, ok := item.Find(lr.PhotoCount); ok {
		if n, ok := extract.FirstDigits(el.Text()); ok {
			v.PhotoCount = n
		}
	}
	v.MainImageURL = models.OrNA(browser.AttrOf(item, lr.MainImage, "src"))

	return v, true
}

// resolve makes href absolute against the site base URL
func (s *Scraper) resolve(href string) string {
	base, err := url.Parse(s.rules.Site.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
