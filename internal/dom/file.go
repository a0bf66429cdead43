package dom

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// profilePrefix matches the /in/<slug>/ part of a profile path.
var profilePrefix = regexp.MustCompile(`^/in/[^/]+/`)

// OpenFile parses a saved page and returns a Static source positioned on it.
//
// The location is the page's canonical URL when it declares one (a
// rel=canonical link or an og:url meta), otherwise the file URL. Navigation
// targets are served from sibling files, see SiblingName.
func OpenFile(path string, opts ...StaticOption) (*Static, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	doc, err := readFile(abs)
	if err != nil {
		return nil, err
	}

	location := canonicalLocation(doc)
	if location == "" {
		location = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}

	dir := filepath.Dir(abs)
	loader := LoaderFunc(func(_ context.Context, rawURL string) (*goquery.Document, error) {
		name, err := SiblingName(rawURL)
		if err != nil {
			return nil, err
		}
		return readFile(filepath.Join(dir, name))
	})

	return NewStatic(location, doc, append([]StaticOption{WithLoader(loader)}, opts...)...), nil
}

// SiblingName returns the file name that stores the page at rawURL next to
// a saved profile. The profile prefix is dropped and the remaining path
// segments are joined with dashes, so
// https://www.linkedin.com/in/ada/recent-activity/all/ is stored as
// recent-activity-all.html.
func SiblingName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("dom: invalid navigation target %q: %w", rawURL, err)
	}
	p := profilePrefix.ReplaceAllString(u.Path, "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "", fmt.Errorf("dom: navigation target %q has no page path", rawURL)
	}
	return strings.ReplaceAll(p, "/", "-") + ".html", nil
}

func readFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return nil, fmt.Errorf("dom: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("dom: parse %s: %w", path, err)
	}
	return doc, nil
}

func canonicalLocation(doc *goquery.Document) string {
	if href := Attr(doc.Find(`link[rel="canonical"]`), "href"); href != "" {
		return href
	}
	return Attr(doc.Find(`meta[property="og:url"]`), "content")
}
