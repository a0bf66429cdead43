package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/locale"
	"github.com/nao1215/prospector/internal/model"
)

// Scalar field names used as Chain.Field and Input.Fields keys.
const (
	FieldName     = "name"
	FieldHeadline = "headline"
	FieldLocation = "location"
	FieldPhoto    = "profilePhotoUrl"
	FieldBio      = "bio"
	FieldPosition = "currentPosition"
	FieldCompany  = "currentCompany"
)

// Canonical section keys read by the catalog.
const (
	SectionAbout      = "about"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionLanguages  = "languages"
)

// Sections lists the section keys a profile pass resolves.
func Sections() []string {
	return []string{SectionAbout, SectionExperience, SectionEducation, SectionSkills, SectionLanguages}
}

// Entry caps.
const (
	ExperienceCap = 8
	EducationCap  = 5
	SkillsCap     = 15
)

const (
	itemSelector = "li.artdeco-list__item, li.pvs-list__paged-list-item, ul.pvs-list > li"

	titleSelector = "span.mr1.hoverable-link-text.t-bold span[aria-hidden='true'], " +
		"span.t-bold span[aria-hidden='true'], " +
		"div.t-bold span[aria-hidden='true'], " +
		"span.t-bold"

	subtitleSelector = "span.t-14.t-normal:not(.t-black--light) span[aria-hidden='true'], " +
		"span.t-normal:not(.t-bold) span[aria-hidden='true']"

	lightSelector = "span.t-14.t-normal.t-black--light span[aria-hidden='true'], " +
		"span.t-black--light span[aria-hidden='true']"

	bioSpanSelector   = "span[aria-hidden='true']"
	bioHeaderSelector = "h2, h3, .pvs-header__container"

	// Auxiliary positions of an experience item.
	auxDuration = 0
	auxLocation = 1

	photoMinWidth = 100
)

var profilePath = regexp.MustCompile(`https://www\.linkedin\.com/in/[^/?#]+`)

// Catalog is the complete extraction plan for one profile layout family.
type Catalog struct {
	table *locale.Table

	Name       Chain
	Headline   Chain
	Location   Chain
	Photo      Chain
	Bio        Chain
	Position   Chain
	Company    Chain
	Experience ItemSpec
	Education  ItemSpec
	Skills     ListSpec
	Languages  ListSpec
	Connection ConnectionSpec
}

// NewCatalog builds the catalog for the current profile layouts, using table
// for localized separators, keywords and skip patterns.
func NewCatalog(table *locale.Table) *Catalog {
	if table == nil {
		table = locale.Default()
	}
	c := &Catalog{table: table}

	c.Name = Chain{
		Field: FieldName,
		Strategies: documentStrategies(
			"h1.text-heading-xlarge",
			"h1.inline.t-24",
			".pv-top-card--list h1",
			"h1",
		),
	}

	c.Headline = Chain{
		Field: FieldHeadline,
		Strategies: documentStrategies(
			".text-body-medium.break-words",
			".pv-top-card--list .text-body-medium",
			"div.text-body-medium",
		),
	}

	c.Location = Chain{
		Field: FieldLocation,
		Strategies: documentStrategies(
			".text-body-small.inline.t-black--light.break-words",
			".pv-top-card--list .t-black--light",
			"span.text-body-small.t-black--light",
		),
	}

	photo := documentStrategies(
		".pv-top-card-profile-picture__image--show",
		".pv-top-card__photo img",
		"img.profile-photo-edit__preview",
		".ember-view.profile-photo-edit img",
	)
	for i := range photo {
		photo[i].Attr = "src"
		photo[i].Reject = isPlaceholderPhoto
	}
	c.Photo = Chain{Field: FieldPhoto, Strategies: photo, Fallback: topCardPhoto}

	bio := sectionStrategies(SectionAbout,
		".inline-show-more-text span[aria-hidden='true']",
		".pv-shared-text-with-see-more span[aria-hidden='true']",
		".inline-show-more-text",
		".pv-shared-text-with-see-more span.visually-hidden",
		".display-flex.full-width .inline-show-more-text",
	)
	for i := range bio {
		bio[i].Reject = table.IsHeaderEcho
	}
	c.Bio = Chain{Field: FieldBio, Strategies: bio, Fallback: c.bioSpans}

	c.Position = Chain{
		Field: FieldPosition,
		Strategies: sectionStrategies(SectionExperience,
			".display-flex.align-items-center .mr1 .visually-hidden, "+
				"li .display-flex .mr1 span[aria-hidden='true'], "+
				"li span.t-bold span[aria-hidden='true']",
			"span.t-bold span, span.t-14.t-bold",
		),
		Fallback: c.headlinePosition,
	}

	company := sectionStrategies(SectionExperience,
		"li .t-14.t-normal span[aria-hidden='true'], "+
			"li span.t-normal:not(.t-bold) span[aria-hidden='true']",
	)
	for i := range company {
		company[i].Cut = table.SecondarySeparators
	}
	c.Company = Chain{Field: FieldCompany, Strategies: company, Fallback: c.headlineCompany}

	c.Experience = ItemSpec{
		Items:               itemSelector,
		Primary:             titleSelector,
		Secondary:           subtitleSelector,
		SecondarySeparators: table.SecondarySeparators,
		Auxiliary:           lightSelector,
		Cap:                 ExperienceCap,
	}

	c.Education = ItemSpec{
		Items: itemSelector + ", ul > li",
		Primary: "span.mr1.hoverable-link-text.t-bold span[aria-hidden='true'], " +
			"span.t-bold span[aria-hidden='true'], " +
			"span.t-bold",
		Secondary:           subtitleSelector,
		SecondarySeparators: table.SecondarySeparators,
		Cap:                 EducationCap,
	}

	c.Skills = ListSpec{
		Field: SectionSkills,
		Items: "span.mr1.hoverable-link-text.t-bold span[aria-hidden='true'], " +
			"span.t-bold span[aria-hidden='true'], " +
			".mr1.hoverable-link-text span[aria-hidden='true'], " +
			"li span.t-bold",
		Cap: SkillsCap,
	}

	c.Languages = ListSpec{
		Field: SectionLanguages,
		Items: "span.mr1.hoverable-link-text.t-bold span[aria-hidden='true'], " +
			"span.t-bold span[aria-hidden='true'], " +
			"li span.t-bold",
	}

	c.Connection = ConnectionSpec{
		Selectors: []string{
			".t-bold.text-body-small",
			"span.t-bold",
			".pv-top-card--list .t-bold",
		},
		Context: "li, span, a",
	}

	return c
}

// Table returns the locale table the catalog was built with.
func (c *Catalog) Table() *locale.Table {
	return c.table
}

// Scalars returns the scalar chains in extraction order. Headline comes
// before position and company, whose fallbacks read it.
func (c *Catalog) Scalars() []Chain {
	return []Chain{c.Name, c.Headline, c.Location, c.Photo, c.Bio, c.Position, c.Company}
}

// Experiences reads the experience entries of root.
func (c *Catalog) Experiences(root *goquery.Selection) []model.ExperienceEntry {
	entries := make([]model.ExperienceEntry, 0)
	for _, it := range c.Experience.Extract(root) {
		entries = append(entries, model.ExperienceEntry{
			Title:    it.Primary,
			Company:  it.Secondary,
			Duration: it.Aux(auxDuration),
			Location: it.Aux(auxLocation),
		})
	}
	return entries
}

// EducationEntries reads "school - degree" entries of root.
func (c *Catalog) EducationEntries(root *goquery.Selection) []string {
	entries := make([]string, 0)
	for _, it := range c.Education.Extract(root) {
		if it.Secondary != "" {
			entries = append(entries, it.Primary+" - "+it.Secondary)
			continue
		}
		entries = append(entries, it.Primary)
	}
	return entries
}

// ConnectionCount reads the connection counter of doc.
func (c *Catalog) ConnectionCount(doc *goquery.Document) *int {
	return c.Connection.Extract(doc, c.table)
}

// IsProfileURL reports whether location is a profile page.
func IsProfileURL(location string) bool {
	return profilePath.MatchString(location)
}

// ProfileURL returns the canonical profile locator for a page location:
// the /in/<slug>/ form when the location is a profile page, otherwise the
// location without its query string.
func ProfileURL(location string) string {
	if m := profilePath.FindString(location); m != "" {
		return m + "/"
	}
	before, _, _ := strings.Cut(location, "?")
	return before
}

func (c *Catalog) headlinePosition(in Input) string {
	headline := in.Field(FieldHeadline)
	if pos, _, ok := SplitHeadline(headline, c.table.HeadlineSeparators, c.table.CompanyTerminators); ok {
		return pos
	}
	return headline
}

func (c *Catalog) headlineCompany(in Input) string {
	_, company, _ := SplitHeadline(in.Field(FieldHeadline), c.table.HeadlineSeparators, c.table.CompanyTerminators)
	return company
}

// bioSpans scans the about section for the first span that looks like prose
// rather than a header echo or a control label.
func (c *Catalog) bioSpans(in Input) string {
	about, ok := in.Sections[SectionAbout]
	if !ok || about.Node == nil {
		return ""
	}

	var bio string
	about.Find(bioSpanSelector).EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := dom.Text(span)
		n := utf8.RuneCountInString(text)
		switch {
		case n > 30:
			bio = text
		case n > 5 &&
			!c.table.IsHeaderEcho(text) &&
			!c.table.IsControlLabel(text) &&
			span.Closest(bioHeaderSelector).Length() == 0:
			bio = text
		}
		return bio == ""
	})
	return bio
}

func topCardPhoto(in Input) string {
	if in.Doc == nil {
		return ""
	}
	var src string
	in.Doc.Find(".pv-top-card, .scaffold-layout__main").First().Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		width, err := strconv.Atoi(dom.Attr(img, "width"))
		if err != nil || width < photoMinWidth {
			return true
		}
		if s := dom.Attr(img, "src"); s != "" && !isPlaceholderPhoto(s) {
			src = s
		}
		return src == ""
	})
	return src
}

func isPlaceholderPhoto(src string) bool {
	return strings.Contains(src, "ghost")
}

func documentStrategies(selectors ...string) []Strategy {
	out := make([]Strategy, len(selectors))
	for i, sel := range selectors {
		out[i] = Strategy{Name: sel, Scope: ScopeDocument, Selector: sel}
	}
	return out
}

func sectionStrategies(key string, selectors ...string) []Strategy {
	out := make([]Strategy, len(selectors))
	for i, sel := range selectors {
		out[i] = Strategy{Name: key + ": " + sel, Scope: ScopeSection, Section: key, Selector: sel}
	}
	return out
}
