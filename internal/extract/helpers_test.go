package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/locale"
	"github.com/nao1215/prospector/internal/section"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func fixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return parse(t, string(data))
}

func input(doc *goquery.Document) Input {
	return Input{
		Doc:      doc,
		Sections: section.NewResolver(locale.Default()).ResolveAll(doc, Sections()...),
		Fields:   map[string]string{},
	}
}
