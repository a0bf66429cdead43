package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/prospector/internal/model"
)

func scalars(c *Catalog, in Input) map[string]string {
	for _, chain := range c.Scalars() {
		in.Fields[chain.Field] = chain.Value(in)
	}
	return in.Fields
}

func TestCatalogEnglishProfile(t *testing.T) {
	t.Parallel()

	c := NewCatalog(nil)
	in := input(fixture(t, "profile_en.html"))
	got := scalars(c, in)

	want := map[string]string{
		FieldName:     "Ada King Lovelace",
		FieldHeadline: "Analyst at Analytical Engines Ltd | Mathematics",
		FieldLocation: "London, England, United Kingdom",
		FieldPhoto:    "https://media.licdn.com/dms/image/ada-200.jpg",
		FieldBio:      "I write notes on engines that compute things beyond mere numbers.",
		FieldPosition: "Analyst",
		FieldCompany:  "Analytical Engines Ltd",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scalars mismatch (-want +got):\n%s", diff)
	}

	exp := c.Experiences(in.Sections[SectionExperience].Node)
	wantExp := []model.ExperienceEntry{
		{Title: "Analyst", Company: "Analytical Engines Ltd", Duration: "1842 - Present · 10 yrs", Location: "London"},
		{Title: "Translator", Company: "Scientific Memoirs", Duration: "1842 - 1843"},
	}
	if diff := cmp.Diff(wantExp, exp); diff != "" {
		t.Errorf("Experiences() mismatch (-want +got):\n%s", diff)
	}

	edu := c.EducationEntries(in.Sections[SectionEducation].Node)
	if diff := cmp.Diff([]string{"University of London - Mathematics", "Home schooling"}, edu); diff != "" {
		t.Errorf("EducationEntries() mismatch (-want +got):\n%s", diff)
	}

	skills := c.Skills.Extract(in.Sections[SectionSkills].Node, c.Table())
	if diff := cmp.Diff([]string{"Mathematics", "Programming"}, skills); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}

	langs := c.Languages.Extract(in.Sections[SectionLanguages].Node, c.Table())
	if diff := cmp.Diff([]string{"English", "French"}, langs); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}

	if n := c.ConnectionCount(in.Doc); n == nil || *n != 500 {
		t.Errorf("ConnectionCount() = %v, want 500", deref(n))
	}
}

func TestCatalogFrenchProfile(t *testing.T) {
	t.Parallel()

	c := NewCatalog(nil)
	in := input(fixture(t, "profile_fr.html"))
	got := scalars(c, in)

	want := map[string]string{
		FieldName:     "Jeanne Martin",
		FieldHeadline: "Ingénieure logiciel chez Acme | Télétravail",
		FieldLocation: "Lyon, Auvergne-Rhône-Alpes, France",
		FieldPhoto:    "https://media.licdn.com/dms/image/jeanne-160.jpg",
		FieldBio:      "Passionnée par les systèmes distribués.",
		FieldPosition: "Ingénieure logiciel",
		FieldCompany:  "Acme",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scalars mismatch (-want +got):\n%s", diff)
	}

	if _, ok := in.Sections[SectionExperience]; ok {
		t.Error("experience section unexpectedly resolved")
	}

	edu := c.EducationEntries(in.Sections[SectionEducation].Node)
	want2 := []string{"INSA Lyon - Diplôme d'ingénieur, Informatique", "Lycée du Parc"}
	if diff := cmp.Diff(want2, edu); diff != "" {
		t.Errorf("EducationEntries() mismatch (-want +got):\n%s", diff)
	}

	skills := c.Skills.Extract(in.Sections[SectionSkills].Node, c.Table())
	if diff := cmp.Diff([]string{"Go", "Kubernetes"}, skills); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}

	langs := c.Languages.Extract(in.Sections[SectionLanguages].Node, c.Table())
	if diff := cmp.Diff([]string{"Français", "Anglais"}, langs); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}

	if n := c.ConnectionCount(in.Doc); n == nil || *n != 1234 {
		t.Errorf("ConnectionCount() = %v, want 1234", deref(n))
	}
}

func TestHeadlineDerivedRole(t *testing.T) {
	t.Parallel()

	c := NewCatalog(nil)
	in := input(parse(t, `<div class="text-body-medium break-words">Engineer chez Acme | Remote</div>`))
	got := scalars(c, in)
	if got[FieldPosition] != "Engineer" || got[FieldCompany] != "Acme" {
		t.Errorf("derived role = %q / %q, want Engineer / Acme", got[FieldPosition], got[FieldCompany])
	}

	in = input(parse(t, `<div class="text-body-medium break-words">Building things</div>`))
	got = scalars(c, in)
	if got[FieldPosition] != "Building things" || got[FieldCompany] != "" {
		t.Errorf("unsplittable headline = %q / %q", got[FieldPosition], got[FieldCompany])
	}
}

func TestPhotoFallbackSkipsSmallImages(t *testing.T) {
	t.Parallel()

	c := NewCatalog(nil)
	in := input(parse(t, `<div class="pv-top-card">
<img width="64" src="https://cdn/small.jpg">
<img width="120" src="https://cdn/ghost-big.jpg">
<img width="abc" src="https://cdn/broken.jpg">
</div>`))
	if got := c.Photo.Value(in); got != "" {
		t.Errorf("Photo = %q, want empty", got)
	}
}

func TestProfileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     string
	}{
		{"https://www.linkedin.com/in/ada-lovelace/?trk=nav", "https://www.linkedin.com/in/ada-lovelace/"},
		{"https://www.linkedin.com/in/ada-lovelace", "https://www.linkedin.com/in/ada-lovelace/"},
		{"https://www.linkedin.com/in/ada-lovelace/details/skills/", "https://www.linkedin.com/in/ada-lovelace/"},
		{"file:///tmp/ada.html?x=1", "file:///tmp/ada.html"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ProfileURL(tt.location); got != tt.want {
			t.Errorf("ProfileURL(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestIsProfileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     bool
	}{
		{"https://www.linkedin.com/in/ada-lovelace/", true},
		{"https://www.linkedin.com/in/ada-lovelace/recent-activity/all/", true},
		{"https://www.linkedin.com/feed/", false},
		{"https://www.linkedin.com/in/", false},
		{"file:///tmp/ada.html", false},
	}
	for _, tt := range tests {
		if got := IsProfileURL(tt.location); got != tt.want {
			t.Errorf("IsProfileURL(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}
