package dom

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoDocument is returned when a Source has no document to snapshot.
var ErrNoDocument = errors.New("dom: no document loaded")

// ErrNoHistory is returned by Back when there is no previous position.
var ErrNoHistory = errors.New("dom: no previous navigation position")

// Source is a read accessor over a rendered document tree.
type Source interface {
	// Snapshot returns the document as currently rendered.
	// The returned tree is a copy; later renders do not affect it.
	Snapshot(ctx context.Context) (*goquery.Document, error)

	// Location returns the URL of the current document.
	Location(ctx context.Context) (string, error)

	// Follow activates the first element matching selector as a client-side
	// navigation. It returns false, without error, when no such element exists.
	// A false result with an error means the lookup failed before anything was
	// activated; true with an error means the navigation started and failed.
	Follow(ctx context.Context, selector string) (bool, error)

	// Back returns to the navigation position held before the last Follow.
	Back(ctx context.Context) error
}

// Text returns the trimmed text content of the first node in sel.
func Text(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}

// Attr returns the trimmed value of attribute name on the first node in sel.
func Attr(sel *goquery.Selection, name string) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

// IDSelector returns a selector matching elements whose id equals id exactly.
// Attribute form is used because identifiers such as "recent-activity" or
// ones starting with a digit are not valid in #id form.
func IDSelector(id string) string {
	return `[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`
}
