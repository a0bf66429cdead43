package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/locale"
)

// Item is one multi-part entry read by an ItemSpec.
type Item struct {
	Primary   string
	Secondary string
	// Auxiliary holds the auxiliary span texts in encounter order.
	// Positions are kept, so an entry may be empty.
	Auxiliary []string
}

// Aux returns the i-th auxiliary value, or "" when absent.
func (it Item) Aux(i int) string {
	if i < 0 || i >= len(it.Auxiliary) {
		return ""
	}
	return it.Auxiliary[i]
}

// ItemSpec describes a repeated multi-part field such as experience.
type ItemSpec struct {
	// Items selects the item nodes inside the section.
	Items string
	// Primary selects the required value of an item.
	Primary string
	// Secondary selects the optional second value of an item.
	Secondary string
	// SecondarySeparators truncate the secondary value.
	SecondarySeparators []string
	// Auxiliary selects any number of extra spans per item.
	Auxiliary string
	// Cap bounds the number of emitted items. Zero means no bound.
	Cap int
}

// Extract walks the item nodes of root in document order. Items without a
// primary value are skipped.
func (s ItemSpec) Extract(root *goquery.Selection) []Item {
	items := make([]Item, 0)
	if root == nil {
		return items
	}

	root.Find(s.Items).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		primary := dom.Text(node.Find(s.Primary))
		if primary == "" {
			return true
		}

		it := Item{Primary: primary}
		if s.Secondary != "" {
			it.Secondary = CutAt(dom.Text(node.Find(s.Secondary)), s.SecondarySeparators)
		}
		if s.Auxiliary != "" {
			node.Find(s.Auxiliary).Each(func(_ int, aux *goquery.Selection) {
				it.Auxiliary = append(it.Auxiliary, dom.Text(aux))
			})
		}

		items = append(items, it)
		return s.Cap <= 0 || len(items) < s.Cap
	})
	return items
}

// ListSpec describes a flat list field such as skills.
type ListSpec struct {
	// Field names the skip-pattern list in the locale table.
	Field string
	// Items selects the entry nodes inside the section.
	Items string
	// Cap bounds the number of emitted entries. Zero means no bound.
	Cap int
}

// Extract returns the entry texts of root with noise removed, duplicates
// dropped (first occurrence kept) and the cap applied.
func (s ListSpec) Extract(root *goquery.Selection, table *locale.Table) []string {
	entries := make([]string, 0)
	if root == nil {
		return entries
	}

	seen := make(map[string]struct{})
	root.Find(s.Items).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := dom.Text(node)
		if text == "" || table.Skipped(s.Field, text) {
			return true
		}
		if _, dup := seen[text]; dup {
			return true
		}
		seen[text] = struct{}{}
		entries = append(entries, text)
		return s.Cap <= 0 || len(entries) < s.Cap
	})
	return entries
}
