package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// ErrTableNotFound is returned by LoadFile when the override file does not exist.
var ErrTableNotFound = errors.New("locale table not found")

// Table is the localized vocabulary of the document family.
type Table struct {
	// Sections maps a canonical section key to its localized synonyms.
	Sections map[string][]string `yaml:"sections"`

	// Skip maps a flat-list field (skills, languages) to leading patterns
	// that reject an entry.
	Skip map[string][]string `yaml:"skip"`

	// HeadlineSeparators split a headline into position and company.
	HeadlineSeparators []string `yaml:"headlineSeparators"`

	// CompanyTerminators end the company part of a split headline.
	CompanyTerminators []string `yaml:"companyTerminators"`

	// SecondarySeparators truncate secondary item text.
	SecondarySeparators []string `yaml:"secondarySeparators"`

	// ConnectionKeywords identify the context of a connection counter.
	ConnectionKeywords []string `yaml:"connectionKeywords"`

	// HeaderEchoes are section titles repeated inside section content.
	HeaderEchoes []string `yaml:"headerEchoes"`

	// ControlLabels are "see more" style control texts.
	ControlLabels []string `yaml:"controlLabels"`

	skip map[string]*regexp.Regexp
}

// Default returns a fresh copy of the embedded table.
// It panics if the embedded data is invalid, which is a build defect.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("locale: embedded table is invalid: %v", err))
	}
	return t
}

// Parse decodes a complete table from YAML and compiles its patterns.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("locale: decode: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads an override file and applies it on top of the default table.
// Keys present in the file replace the defaults; absent keys keep them.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided table path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("locale: decode %s: %w", path, err)
	}

	t := Default()
	t.merge(&override)
	if err := t.compile(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) merge(o *Table) {
	for key, aliases := range o.Sections {
		t.Sections[key] = aliases
	}
	for field, patterns := range o.Skip {
		t.Skip[field] = patterns
	}
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&t.HeadlineSeparators, o.HeadlineSeparators)
	replace(&t.CompanyTerminators, o.CompanyTerminators)
	replace(&t.SecondarySeparators, o.SecondarySeparators)
	replace(&t.ConnectionKeywords, o.ConnectionKeywords)
	replace(&t.HeaderEchoes, o.HeaderEchoes)
	replace(&t.ControlLabels, o.ControlLabels)
}

// compile normalizes aliases and builds one anchored, case-insensitive
// regular expression per skip list.
func (t *Table) compile() error {
	if t.Sections == nil {
		t.Sections = make(map[string][]string)
	}
	if t.Skip == nil {
		t.Skip = make(map[string][]string)
	}
	for key, aliases := range t.Sections {
		normalized := make([]string, 0, len(aliases))
		for _, a := range aliases {
			if a = Normalize(a); a != "" && !slices.Contains(normalized, a) {
				normalized = append(normalized, a)
			}
		}
		t.Sections[key] = normalized
	}

	t.skip = make(map[string]*regexp.Regexp, len(t.Skip))
	for field, patterns := range t.Skip {
		if len(patterns) == 0 {
			continue
		}
		re, err := regexp.Compile(`(?i)^(?:` + strings.Join(patterns, "|") + `)`)
		if err != nil {
			return fmt.Errorf("locale: skip patterns for %q: %w", field, err)
		}
		t.skip[field] = re
	}
	return nil
}

// Aliases returns the normalized synonyms of a canonical section key.
// Unknown keys resolve to the key itself.
func (t *Table) Aliases(key string) []string {
	if aliases, ok := t.Sections[key]; ok && len(aliases) > 0 {
		return aliases
	}
	return []string{Normalize(key)}
}

// Skipped reports whether a flat-list entry of the given field is noise.
func (t *Table) Skipped(field, text string) bool {
	re, ok := t.skip[field]
	if !ok {
		return false
	}
	return re.MatchString(norm.NFC.String(text))
}

// IsConnectionContext reports whether text mentions a connection keyword.
func (t *Table) IsConnectionContext(text string) bool {
	return containsAny(Normalize(text), t.ConnectionKeywords)
}

// IsHeaderEcho reports whether text is exactly a section-header echo.
func (t *Table) IsHeaderEcho(text string) bool {
	return equalsAny(Normalize(text), t.HeaderEchoes)
}

// IsControlLabel reports whether text is exactly a "see more" control label.
func (t *Table) IsControlLabel(text string) bool {
	return equalsAny(Normalize(text), t.ControlLabels)
}

// Normalize trims, NFC-normalizes and lowercases s so that composed and
// decomposed accents compare equal.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}

func containsAny(normalized string, needles []string) bool {
	for _, n := range needles {
		if n = Normalize(n); n != "" && strings.Contains(normalized, n) {
			return true
		}
	}
	return false
}

func equalsAny(normalized string, candidates []string) bool {
	for _, c := range candidates {
		if Normalize(c) == normalized {
			return true
		}
	}
	return false
}
