package dom

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Loader resolves a navigation target to a parsed document.
type Loader interface {
	Load(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, rawURL string) (*goquery.Document, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, rawURL string) (*goquery.Document, error) {
	return f(ctx, rawURL)
}

// MapLoader serves documents from an in-memory map keyed by absolute URL.
// Unknown URLs yield an error.
type MapLoader map[string]string

// Load implements Loader.
func (m MapLoader) Load(_ context.Context, rawURL string) (*goquery.Document, error) {
	body, ok := m[rawURL]
	if !ok {
		return nil, fmt.Errorf("dom: no document for %s", rawURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

type position struct {
	url string
	doc *goquery.Document
}

// Static is a Source over already-parsed documents. Follow reads the href of
// the matched control, resolves it against the current location and loads
// the target through the Loader, pushing it on a history stack.
type Static struct {
	mu      sync.Mutex
	history []position
	loader  Loader
}

// StaticOption configures a Static source.
type StaticOption func(*Static)

// WithLoader sets the Loader used to resolve navigation targets.
// Without a loader, Follow fails for every control that exists.
func WithLoader(l Loader) StaticOption {
	return func(s *Static) {
		s.loader = l
	}
}

// NewStatic creates a Static source positioned on doc at location.
func NewStatic(location string, doc *goquery.Document, opts ...StaticOption) *Static {
	s := &Static{history: []position{{url: location, doc: doc}}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseStatic parses HTML from r and returns a Static source positioned on it.
func ParseStatic(location string, r io.Reader, opts ...StaticOption) (*Static, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse %s: %w", location, err)
	}
	return NewStatic(location, doc, opts...), nil
}

func (s *Static) current() (position, error) {
	if len(s.history) == 0 || s.history[len(s.history)-1].doc == nil {
		return position{}, ErrNoDocument
	}
	return s.history[len(s.history)-1], nil
}

// Snapshot implements Source.
func (s *Static) Snapshot(_ context.Context) (*goquery.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return goquery.CloneDocument(cur.doc), nil
}

// Location implements Source.
func (s *Static) Location(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return "", err
	}
	return cur.url, nil
}

// Follow implements Source.
func (s *Static) Follow(ctx context.Context, selector string) (bool, error) {
	s.mu.Lock()
	cur, err := s.current()
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	control := cur.doc.Find(selector).First()
	if control.Length() == 0 {
		return false, nil
	}
	if s.loader == nil {
		return true, fmt.Errorf("dom: cannot follow %q: no loader configured", selector)
	}

	target, err := resolve(cur.url, Attr(control, "href"))
	if err != nil {
		return true, err
	}
	doc, err := s.loader.Load(ctx, target)
	if err != nil {
		return true, fmt.Errorf("dom: follow %s: %w", target, err)
	}

	s.mu.Lock()
	s.history = append(s.history, position{url: target, doc: doc})
	s.mu.Unlock()
	return true, nil
}

// Back implements Source.
func (s *Static) Back(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < 2 {
		return ErrNoHistory
	}
	s.history = s.history[:len(s.history)-1]
	return nil
}

// Depth returns the number of positions on the history stack.
func (s *Static) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func resolve(base, href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("dom: navigation control has no href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("dom: invalid href %q: %w", href, err)
	}
	if base == "" {
		return ref.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("dom: invalid location %q: %w", base, err)
	}
	return b.ResolveReference(ref).String(), nil
}
