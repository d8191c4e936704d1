package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

const (
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	clickTimeout = 5 * time.Second
)

// RodOptions configures the Chrome launcher
type RodOptions struct {
	Headless  bool
	ChromeBin string
	Logger    *zap.Logger
}

// RodBrowser drives a real Chrome through the DevTools protocol
type RodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	log      *zap.Logger
}

// NewRodBrowser launches Chrome and connects to it
func NewRodBrowser(opts RodOptions) (*RodBrowser, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("window-size", "1920,1080").
		Set("user-agent", userAgent)

	if chromiumPath := findChromiumPath(opts.ChromeBin); chromiumPath != "" {
		log.Info("using local chromium", zap.String("path", chromiumPath))
		l = l.Bin(chromiumPath)
	}

	if isDockerEnvironment() {
		log.Info("docker environment detected, applying container settings")
		l = l.Set("disable-setuid-sandbox").
			Set("no-first-run").
			Set("disable-default-apps")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	log.Info("browser initialized", zap.Bool("headless", opts.Headless))
	return &RodBrowser{browser: b, launcher: l, log: log}, nil
}

func (r *RodBrowser) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	if r.browser == nil {
		return nil, ErrClosed
	}

	page, err := stealth.Page(r.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page = page.Context(ctx)

	nav := page
	if timeout > 0 {
		nav = page.Timeout(timeout)
	}
	if err := nav.Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("page load failed: %w", err)
	}

	return &rodPage{page: page}, nil
}

func (r *RodBrowser) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	if r.launcher != nil {
		r.launcher.Kill()
	}
	r.log.Debug("browser closed")
	return err
}

type rodNode struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []Node {
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, rodNode{el: el})
	}
	return nodes
}

func (n rodNode) Find(selector string) (Node, bool) {
	els, err := n.el.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return rodNode{el: els.First()}, true
}

func (n rodNode) FindAll(selector string) []Node {
	els, err := n.el.Elements(selector)
	if err != nil {
		return nil
	}
	return wrapElements(els)
}

func (n rodNode) Text() string {
	text, err := n.el.Text()
	if err != nil {
		return ""
	}
	return text
}

func (n rodNode) Attr(name string) (string, bool) {
	v, err := n.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (n rodNode) Click() error {
	return n.el.Timeout(clickTimeout).Click(proto.InputMouseButtonLeft, 1)
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Find(selector string) (Node, bool) {
	els, err := p.page.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return rodNode{el: els.First()}, true
}

func (p *rodPage) FindAll(selector string) []Node {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil
	}
	return wrapElements(els)
}

func (p *rodPage) Text() string {
	res, err := p.page.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (p *rodPage) Attr(string) (string, bool) { return "", false }

func (p *rodPage) Click() error { return nil }

func (p *rodPage) Title() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *rodPage) WaitFor(selector string, timeout time.Duration) bool {
	_, err := p.page.Timeout(timeout).Element(selector)
	return err == nil
}

func (p *rodPage) ScrollToBottom() error {
	_, err := p.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// findChromiumPath looks for a Chromium/Chrome binary, preferring an explicit override
func findChromiumPath(override string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// isDockerEnvironment checks if running inside Docker
func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
	}

	return false
}
