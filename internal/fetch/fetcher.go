package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/prospector/internal/dom"
)

// DefaultUserAgent is sent when no User-Agent header is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// ErrStatus is returned when a page responds with a non-success status.
var ErrStatus = errors.New("unexpected page status")

// Fetcher retrieves and parses pages.
type Fetcher struct {
	http   *resty.Client
	logger *slog.Logger

	cookie  string
	headers map[string]string
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		headers: map[string]string{"User-Agent": DefaultUserAgent},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	f.http = resty.New().
		SetTimeout(f.timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeaders(f.headers)
	if f.cookie != "" {
		f.http.SetHeader("Cookie", f.cookie)
	}
	return f
}

// Load implements dom.Loader.
func (f *Fetcher) Load(ctx context.Context, rawURL string) (*goquery.Document, error) {
	doc, _, err := f.fetch(ctx, rawURL)
	return doc, err
}

// Open fetches rawURL and returns a static source positioned on it. The
// source location is the final URL after redirects.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (*dom.Static, error) {
	doc, final, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return dom.NewStatic(final, doc, dom.WithLoader(f)), nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*goquery.Document, string, error) {
	resp, err := f.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	f.logger.Debug("page fetched",
		"url", rawURL,
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"duration", resp.Time(),
	)

	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned %d", ErrStatus, rawURL, resp.StatusCode())
	}

	body, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return doc, final, nil
}
