package section

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/locale"
)

// Method records which signal located a section.
type Method int

const (
	// ByIdentifier means an element id equal to the canonical key matched.
	ByIdentifier Method = iota + 1
	// ByAlias means a descendant id equal to a localized alias matched.
	ByAlias
	// ByHeading means the section heading contained a localized alias.
	ByHeading
)

// String returns a short name for logging.
func (m Method) String() string {
	switch m {
	case ByIdentifier:
		return "identifier"
	case ByAlias:
		return "alias"
	case ByHeading:
		return "heading"
	default:
		return "unknown"
	}
}

// Section is a resolved subtree of a snapshot. Node points into the
// snapshot it was resolved from; it is only valid for one extraction pass.
type Section struct {
	Key  string
	Via  Method
	Node *goquery.Selection
}

// Find runs selector inside the section.
func (s Section) Find(selector string) *goquery.Selection {
	return s.Node.Find(selector)
}

const (
	containerSelector = "section"
	headingSelector   = "h2"
)

// Resolver resolves canonical section keys against a document.
type Resolver struct {
	table  *locale.Table
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver backed by table.
// A nil table selects locale.Default().
func NewResolver(table *locale.Table, opts ...Option) *Resolver {
	r := &Resolver{table: table}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		r.table = locale.Default()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve locates the section for key. The boolean is false when no signal
// matched.
func (r *Resolver) Resolve(doc *goquery.Document, key string) (Section, bool) {
	if doc == nil {
		return Section{}, false
	}

	resolvers := []struct {
		via Method
		fn  func(*goquery.Document, string) *goquery.Selection
	}{
		{ByIdentifier, r.byIdentifier},
		{ByAlias, r.byAlias},
		{ByHeading, r.byHeading},
	}
	for _, res := range resolvers {
		if node := res.fn(doc, key); node != nil && node.Length() > 0 {
			r.logger.Debug("section resolved", "key", key, "via", res.via.String())
			return Section{Key: key, Via: res.via, Node: node}, true
		}
	}

	r.logger.Debug("section not found", "key", key)
	return Section{}, false
}

// ResolveAll resolves every key and returns the sections that were found.
func (r *Resolver) ResolveAll(doc *goquery.Document, keys ...string) map[string]Section {
	found := make(map[string]Section, len(keys))
	for _, key := range keys {
		if s, ok := r.Resolve(doc, key); ok {
			found[key] = s
		}
	}
	return found
}

func (r *Resolver) byIdentifier(doc *goquery.Document, key string) *goquery.Selection {
	anchor := doc.Find(dom.IDSelector(key)).First()
	if anchor.Length() == 0 {
		return nil
	}
	if s := anchor.Closest(containerSelector); s.Length() > 0 {
		return s
	}
	if s := anchor.Parent().Closest(containerSelector); s.Length() > 0 {
		return s
	}
	return nil
}

func (r *Resolver) byAlias(doc *goquery.Document, key string) *goquery.Selection {
	aliases := r.table.Aliases(key)
	var match *goquery.Selection
	doc.Find(containerSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		s.Find("[id]").EachWithBreak(func(_ int, n *goquery.Selection) bool {
			id, _ := n.Attr("id")
			if slices.Contains(aliases, locale.Normalize(id)) {
				match = s
			}
			return match == nil
		})
		return match == nil
	})
	return match
}

func (r *Resolver) byHeading(doc *goquery.Document, key string) *goquery.Selection {
	aliases := r.table.Aliases(key)
	var match *goquery.Selection
	doc.Find(containerSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading := locale.Normalize(s.Find(headingSelector).First().Text())
		if heading == "" {
			return true
		}
		for _, alias := range aliases {
			if strings.Contains(heading, alias) {
				match = s
				return false
			}
		}
		return true
	})
	return match
}
