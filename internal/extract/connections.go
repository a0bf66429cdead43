package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/locale"
)

// ConnectionSpec reads the connection counter of a profile.
type ConnectionSpec struct {
	// Selectors are tried in order; every match of a selector is examined
	// before moving to the next one.
	Selectors []string
	// Context is the ancestor whose text must mention a connection keyword.
	Context string
}

var (
	groupingChars = strings.NewReplacer("+", "", ",", "", ".", "", " ", "", "\u00a0", "", "\u202f", "", "\t", "", "\n", "")
	leadingDigits = regexp.MustCompile(`^\d+`)
)

// ParseCount strips grouping and punctuation characters and parses the
// leading digits of s. ok is false when s does not start with a digit.
func ParseCount(s string) (n int, ok bool) {
	digits := leadingDigits.FindString(groupingChars.Replace(strings.TrimSpace(s)))
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Extract returns the connection count, or nil when it is absent.
func (c ConnectionSpec) Extract(doc *goquery.Document, table *locale.Table) *int {
	if doc == nil {
		return nil
	}

	for _, sel := range c.Selectors {
		var found *int
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if !table.IsConnectionContext(c.context(node).Text()) {
				return true
			}
			if n, ok := ParseCount(node.Text()); ok {
				found = &n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}

	return c.fromText(doc.Find("body").Text(), table)
}

// context returns the nearest enclosing context element, excluding the
// node itself, or the parent when there is none.
func (c ConnectionSpec) context(node *goquery.Selection) *goquery.Selection {
	parent := node.Parent()
	if c.Context != "" {
		if ctx := parent.Closest(c.Context); ctx.Length() > 0 {
			return ctx
		}
	}
	return parent
}

func (c ConnectionSpec) fromText(text string, table *locale.Table) *int {
	re := connectionPattern(table.ConnectionKeywords)
	if re == nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	if n, ok := ParseCount(m[1]); ok {
		return &n
	}
	return nil
}

func connectionPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(\d[\d,. \x{00a0}\x{202f}]*)\+?\s*(?:` + strings.Join(quoted, "|") + `)`)
}
