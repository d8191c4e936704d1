package browser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// HTMLPage is a static document parsed with goquery. No scripts run, so waits succeed
// only for elements already present and scrolling or clicking changes nothing.
type HTMLPage struct {
	doc    *goquery.Document
	closed bool
	onDone func()
}

// ParseHTML builds a page from markup
func ParseHTML(html string) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &HTMLPage{doc: doc}, nil
}

func (p *HTMLPage) Find(selector string) (Node, bool) {
	return htmlNode{sel: p.doc.Selection}.Find(selector)
}

func (p *HTMLPage) FindAll(selector string) []Node {
	return htmlNode{sel: p.doc.Selection}.FindAll(selector)
}

func (p *HTMLPage) Text() string {
	return p.doc.Find("body").Text()
}

func (p *HTMLPage) Attr(string) (string, bool) { return "", false }

func (p *HTMLPage) Click() error { return nil }

func (p *HTMLPage) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

func (p *HTMLPage) WaitFor(selector string, _ time.Duration) bool {
	return p.doc.Find(selector).Length() > 0
}

func (p *HTMLPage) ScrollToBottom() error {
	if p.closed {
		return ErrClosed
	}
	return nil
}

func (p *HTMLPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.onDone != nil {
		p.onDone()
	}
	return nil
}

type htmlNode struct {
	sel *goquery.Selection
}

func (n htmlNode) Find(selector string) (Node, bool) {
	found := n.sel.Find(selector)
	if found.Length() == 0 {
		return nil, false
	}
	return htmlNode{sel: found.First()}, true
}

func (n htmlNode) FindAll(selector string) []Node {
	var nodes []Node
	n.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, htmlNode{sel: s})
	})
	return nodes
}

func (n htmlNode) Text() string {
	return n.sel.Text()
}

func (n htmlNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n htmlNode) Click() error { return nil }

// HTTPBrowser fetches pages over plain HTTP and parses them without running scripts.
// Suitable for server-rendered mirrors of the dealer site.
type HTTPBrowser struct {
	client *resty.Client
}

// NewHTTPBrowser returns a browser backed by a resty client
func NewHTTPBrowser() *HTTPBrowser {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 60)
	return &HTTPBrowser{client: client}
}

func (b *HTTPBrowser) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := b.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("navigation failed: %s returned %s", url, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return &HTMLPage{doc: doc}, nil
}

func (b *HTTPBrowser) Close() error { return nil }

// FixtureBrowser serves fixed markup by URL. It records how many pages are open
// so callers can check that every page was closed.
type FixtureBrowser struct {
	mu     sync.Mutex
	pages  map[string]string
	opened []string
	open   int
}

// NewFixtureBrowser returns a browser serving pages keyed by exact URL
func NewFixtureBrowser(pages map[string]string) *FixtureBrowser {
	return &FixtureBrowser{pages: pages}
}

func (b *FixtureBrowser) Open(ctx context.Context, url string, _ time.Duration) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	html, ok := b.pages[url]
	b.opened = append(b.opened, url)
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("navigation failed: no fixture for %s", url)
	}

	page, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.open++
	b.mu.Unlock()
	page.onDone = func() {
		b.mu.Lock()
		b.open--
		b.mu.Unlock()
	}
	return page, nil
}

// Opened lists every URL requested, in order
func (b *FixtureBrowser) Opened() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.opened...)
}

// OpenPages is the number of pages opened and not yet closed
func (b *FixtureBrowser) OpenPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *FixtureBrowser) Close() error { return nil }
