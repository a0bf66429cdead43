package locale

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	table := Default()

	t.Run("has every canonical section", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{"about", "experience", "education", "skills", "languages", "activity", "recent-activity"} {
			if len(table.Sections[key]) == 0 {
				t.Errorf("expected aliases for %q", key)
			}
		}
	})

	t.Run("aliases are normalized", func(t *testing.T) {
		t.Parallel()

		for key, aliases := range table.Sections {
			for _, a := range aliases {
				if a != Normalize(a) {
					t.Errorf("alias %q of %q is not normalized", a, key)
				}
			}
		}
	})

	t.Run("unknown key falls back to itself", func(t *testing.T) {
		t.Parallel()

		got := table.Aliases("Volunteering")
		if len(got) != 1 || got[0] != "volunteering" {
			t.Errorf("expected [volunteering], got %v", got)
		}
	})

	t.Run("returns independent copies", func(t *testing.T) {
		t.Parallel()

		a := Default()
		a.Sections["experience"] = nil
		if len(Default().Sections["experience"]) == 0 {
			t.Error("mutating one table affected another")
		}
	})
}

func TestSkipped(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		name  string
		field string
		text  string
		want  bool
	}{
		{name: "english header echo", field: "skills", text: "Skills", want: true},
		{name: "french header echo", field: "skills", text: "Compétences", want: true},
		{name: "unaccented french header", field: "skills", text: "competences", want: true},
		{name: "see more control", field: "skills", text: "See more skills", want: true},
		{name: "voir les control", field: "skills", text: "Voir les 23 compétences", want: true},
		{name: "numeric noise", field: "skills", text: "12 endorsements", want: true},
		{name: "real skill", field: "skills", text: "Kubernetes", want: false},
		{name: "language header", field: "languages", text: "Langues", want: true},
		{name: "real language", field: "languages", text: "Français", want: false},
		{name: "purely numeric noise", field: "skills", text: "42", want: true},
		{name: "skill starting with a digit", field: "skills", text: "3D Modeling", want: false},
		{name: "short skill starting with a digit", field: "skills", text: "5G", want: false},
		{name: "language starting with the header word", field: "languages", text: "Langue des signes française", want: false},
		{name: "plural language header", field: "languages", text: "Languages", want: true},
		{name: "unknown field never skips", field: "posts", text: "Skills", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := table.Skipped(tt.field, tt.text); got != tt.want {
				t.Errorf("Skipped(%q, %q) = %v, want %v", tt.field, tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	// Decomposed "é": e followed by a combining acute accent.
	decomposed := "Expe\u0301rience"
	if got := Normalize(decomposed); got != "exp\u00e9rience" {
		t.Errorf("expected composed lowercase form, got %q", got)
	}
	if got := Normalize("  FORMATION \n"); got != "formation" {
		t.Errorf("expected trimmed lowercase form, got %q", got)
	}
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	table := Default()

	if !table.IsConnectionContext("500+ connexions") {
		t.Error("expected french connection context")
	}
	if !table.IsConnectionContext("1,234 Connections") {
		t.Error("expected english connection context")
	}
	if table.IsConnectionContext("1,234 followers") {
		t.Error("followers is not a connection context")
	}
	if !table.IsHeaderEcho(" Infos ") {
		t.Error("expected header echo")
	}
	if table.IsHeaderEcho("About me and my work") {
		t.Error("header echo must match exactly")
	}
	if !table.IsControlLabel("See more") {
		t.Error("expected control label")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("overrides present keys and keeps the rest", func(t *testing.T) {
		t.Parallel()

		table, err := LoadFile(filepath.Join("testdata", "override.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exp := table.Aliases("experience")
		if len(exp) != 2 || exp[0] != "berufserfahrung" {
			t.Errorf("expected overridden experience aliases, got %v", exp)
		}
		if len(table.Aliases("education")) == 0 || table.Aliases("education")[0] != "education" {
			t.Errorf("expected default education aliases, got %v", table.Aliases("education"))
		}
		if !table.Skipped("languages", "Sprachen") {
			t.Error("expected overridden language skip pattern")
		}
		if table.Skipped("languages", "Langues") {
			t.Error("default language skip patterns should be replaced")
		}
		if !table.Skipped("skills", "Skills") {
			t.Error("expected default skill skip patterns")
		}
		if table.HeadlineSeparators[0] != " bei " {
			t.Errorf("expected overridden separators, got %v", table.HeadlineSeparators)
		}
		if len(table.ConnectionKeywords) == 0 {
			t.Error("expected default connection keywords")
		}
	})

	t.Run("missing file returns ErrTableNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
		if !errors.Is(err, ErrTableNotFound) {
			t.Errorf("expected ErrTableNotFound, got %v", err)
		}
	})

	t.Run("invalid pattern is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadFile(filepath.Join("testdata", "broken.yaml")); err == nil {
			t.Error("expected error for invalid skip pattern")
		}
	})
}
