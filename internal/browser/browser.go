// Package browser is the capability the scraper drives: open a URL, query the DOM,
// read text and attributes, wait, scroll, click, close. Two backends implement it:
// a headless Chrome driven by go-rod and a static HTML backend built on goquery.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrClosed is returned when a closed browser or page is used
var ErrClosed = errors.New("browser: closed")

// Node is an element in a loaded page
type Node interface {
	// Find returns the first descendant matching selector, without waiting
	Find(selector string) (Node, bool)
	// FindAll returns every descendant matching selector in document order
	FindAll(selector string) []Node
	// Text is the rendered text of the element
	Text() string
	Attr(name string) (string, bool)
	Click() error
}

// Page is a loaded document. Its Node methods operate on the whole document
// and Text returns the body text.
type Page interface {
	Node
	Title() string
	// WaitFor blocks until selector matches or timeout expires. Expiry is "not found", never an error.
	WaitFor(selector string, timeout time.Duration) bool
	ScrollToBottom() error
	Close() error
}

// Browser opens pages
type Browser interface {
	// Open navigates a new page to url, failing if navigation takes longer than timeout
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
	Close() error
}

// TextOf returns the trimmed text of the first match for selector, or "" when absent
func TextOf(n Node, selector string) string {
	el, ok := n.Find(selector)
	if !ok {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// AttrOf returns the trimmed attribute of the first match for selector, or "" when absent
func AttrOf(n Node, selector, attr string) string {
	el, ok := n.Find(selector)
	if !ok {
		return ""
	}
	v, _ := el.Attr(attr)
	return strings.TrimSpace(v)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
