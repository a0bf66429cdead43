package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page is a live browser page. It implements dom.Source.
type Page struct {
	page   *rod.Page
	logger *slog.Logger
}

// Snapshot serializes the rendered DOM and parses it.
func (p *Page) Snapshot(ctx context.Context) (*goquery.Document, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: read DOM: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("browser: parse DOM: %w", err)
	}
	return doc, nil
}

// Location returns the page URL.
func (p *Page) Location(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// Follow clicks the first element matching selector.
func (p *Page) Follow(ctx context.Context, selector string) (bool, error) {
	page := p.page.Context(ctx)

	has, el, err := page.Has(selector)
	if err != nil {
		return false, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	if !has {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return true, fmt.Errorf("browser: click %q: %w", selector, err)
	}
	return true, nil
}

// Back navigates one step back in the page history.
func (p *Page) Back(ctx context.Context) error {
	if err := p.page.Context(ctx).NavigateBack(); err != nil {
		return fmt.Errorf("browser: navigate back: %w", err)
	}
	return nil
}

// Reload reloads the page and waits for it to load. Used to recover a page
// whose scripting context is gone.
func (p *Page) Reload(ctx context.Context) error {
	page := p.page.Context(ctx)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("browser: reload: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		p.logger.Warn("browser: wait load after reload", "error", err)
	}
	return nil
}

// Close closes the page.
func (p *Page) Close() error {
	return p.page.Close()
}
