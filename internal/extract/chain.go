package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/section"
)

// Scope selects the subtree a Strategy runs against.
type Scope int

const (
	// ScopeDocument runs the selector against the whole document.
	ScopeDocument Scope = iota
	// ScopeSection runs the selector inside a resolved section.
	ScopeSection
)

// Input is what a strategy or fallback can read during one pass.
type Input struct {
	Doc      *goquery.Document
	Sections map[string]section.Section

	// Fields holds scalar values extracted earlier in the pass, keyed by
	// field name. Fallbacks use it for derived values.
	Fields map[string]string
}

// Field returns an already extracted scalar value.
func (in Input) Field(name string) string {
	if in.Fields == nil {
		return ""
	}
	return in.Fields[name]
}

// Strategy is one attempt at reading a scalar field.
type Strategy struct {
	// Name identifies the strategy in debug logs.
	Name string
	// Scope selects document or section.
	Scope Scope
	// Section is the canonical section key for ScopeSection.
	Section string
	// Selector picks the node. Only the first match in document order is read.
	Selector string
	// Attr, when set, reads this attribute instead of the node text.
	Attr string
	// Cut truncates the value at the first occurrence of any separator.
	Cut []string
	// Reject discards a value that matched but is not usable.
	Reject func(value string) bool
}

func (s Strategy) root(in Input) *goquery.Selection {
	if s.Scope == ScopeSection {
		sec, ok := in.Sections[s.Section]
		if !ok || sec.Node == nil {
			return nil
		}
		return sec.Node
	}
	if in.Doc == nil {
		return nil
	}
	return in.Doc.Selection
}

// Apply runs the strategy and returns the trimmed value, or "".
func (s Strategy) Apply(in Input) string {
	root := s.root(in)
	if root == nil {
		return ""
	}
	node := root.Find(s.Selector).First()
	if node.Length() == 0 {
		return ""
	}

	var v string
	if s.Attr != "" {
		v = dom.Attr(node, s.Attr)
	} else {
		v = dom.Text(node)
	}
	v = CutAt(v, s.Cut)
	if v == "" || (s.Reject != nil && s.Reject(v)) {
		return ""
	}
	return v
}

// FallbackStrategy is the strategy name reported when a chain's fallback
// produced the value.
const FallbackStrategy = "fallback"

// Chain is the ordered extraction plan of one scalar field.
type Chain struct {
	Field      string
	Strategies []Strategy
	Fallback   func(in Input) string
}

// Extract returns the first non-empty value and the name of the strategy
// that produced it. Both are empty when every attempt failed.
func (c Chain) Extract(in Input) (value, via string) {
	for _, s := range c.Strategies {
		if v := s.Apply(in); v != "" {
			return v, s.Name
		}
	}
	if c.Fallback != nil {
		if v := strings.TrimSpace(c.Fallback(in)); v != "" {
			return v, FallbackStrategy
		}
	}
	return "", ""
}

// Value is Extract without the strategy name.
func (c Chain) Value(in Input) string {
	v, _ := c.Extract(in)
	return v
}

// CutAt truncates s at the first occurrence of any separator and trims it.
func CutAt(s string, separators []string) string {
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
