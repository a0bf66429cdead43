package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/extract"
	"github.com/nao1215/prospector/internal/materialize"
	"github.com/nao1215/prospector/internal/model"
	"github.com/nao1215/prospector/internal/section"
)

// ErrSourceUnavailable is returned when the document cannot be read at all.
// The shell may re-establish the source and retry.
var ErrSourceUnavailable = errors.New("document source unavailable")

// StepOption configures a field step.
type StepOption func(*fieldStep)

// WithStepLogger sets the logger of a step.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(s *fieldStep) {
		s.logger = logger
	}
}

// fieldStep carries what every field step needs.
type fieldStep struct {
	catalog *extract.Catalog
	logger  *slog.Logger
}

func newFieldStep(catalog *extract.Catalog, opts []StepOption) fieldStep {
	s := fieldStep{catalog: catalog}
	for _, opt := range opts {
		opt(&s)
	}
	if s.catalog == nil {
		s.catalog = extract.NewCatalog(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// scalar runs chain, records its value for later fallbacks and returns it.
func (s fieldStep) scalar(pass *Pass, chain extract.Chain) string {
	v, via := chain.Extract(pass.Input)
	pass.Input.Fields[chain.Field] = v
	if v == "" {
		s.logger.Debug("field absent", "field", chain.Field)
	} else {
		s.logger.Debug("field extracted", "field", chain.Field, "via", via)
	}
	return v
}

// sectionNode returns the resolved node of key, or nil.
func (s fieldStep) sectionNode(pass *Pass, key string) *goquery.Selection {
	sec, ok := pass.Input.Sections[key]
	if !ok {
		s.logger.Debug("section absent", "section", key)
		return nil
	}
	return sec.Node
}

// SnapshotStep takes the snapshot every later step reads and resolves the
// profile sections on it.
type SnapshotStep struct {
	resolver *section.Resolver
	keys     []string
}

// NewSnapshotStep creates the snapshot step.
func NewSnapshotStep(resolver *section.Resolver) *SnapshotStep {
	if resolver == nil {
		resolver = section.NewResolver(nil)
	}
	return &SnapshotStep{resolver: resolver, keys: extract.Sections()}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do executes the snapshot step.
func (s *SnapshotStep) Do(ctx context.Context, pass *Pass) error {
	if pass.Source == nil {
		return fmt.Errorf("%w: no source", ErrSourceUnavailable)
	}
	doc, err := pass.Source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	location, err := pass.Source.Location(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	pass.Location = location
	pass.Input.Doc = doc
	pass.Input.Sections = s.resolver.ResolveAll(doc, s.keys...)
	return nil
}

// TopCardStep reads identity, headline, location and photo.
type TopCardStep struct{ fieldStep }

// NewTopCardStep creates the top card step.
func NewTopCardStep(catalog *extract.Catalog, opts ...StepOption) *TopCardStep {
	return &TopCardStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *TopCardStep) Name() string {
	return "top_card"
}

// Do executes the top card step.
func (s *TopCardStep) Do(_ context.Context, pass *Pass) error {
	r := pass.Record
	r.FirstName, r.LastName = extract.SplitName(s.scalar(pass, s.catalog.Name))
	r.ProfileURL = extract.ProfileURL(pass.Location)
	r.Headline = s.scalar(pass, s.catalog.Headline)
	r.Location = s.scalar(pass, s.catalog.Location)
	r.ProfilePhotoURL = s.scalar(pass, s.catalog.Photo)
	return nil
}

// AboutStep reads the bio.
type AboutStep struct{ fieldStep }

// NewAboutStep creates the about step.
func NewAboutStep(catalog *extract.Catalog, opts ...StepOption) *AboutStep {
	return &AboutStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *AboutStep) Name() string {
	return "about"
}

// Do executes the about step.
func (s *AboutStep) Do(_ context.Context, pass *Pass) error {
	pass.Record.Bio = s.scalar(pass, s.catalog.Bio)
	return nil
}

// ExperienceStep reads the current role and the experience entries. The
// role falls back to the headline, so TopCardStep must run first.
type ExperienceStep struct{ fieldStep }

// NewExperienceStep creates the experience step.
func NewExperienceStep(catalog *extract.Catalog, opts ...StepOption) *ExperienceStep {
	return &ExperienceStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *ExperienceStep) Name() string {
	return "experience"
}

// Do executes the experience step.
func (s *ExperienceStep) Do(_ context.Context, pass *Pass) error {
	r := pass.Record
	r.CurrentPosition = s.scalar(pass, s.catalog.Position)
	r.CurrentCompany = s.scalar(pass, s.catalog.Company)
	r.PastExperiences = s.catalog.Experiences(s.sectionNode(pass, extract.SectionExperience))
	return nil
}

// EducationStep reads the education entries.
type EducationStep struct{ fieldStep }

// NewEducationStep creates the education step.
func NewEducationStep(catalog *extract.Catalog, opts ...StepOption) *EducationStep {
	return &EducationStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *EducationStep) Name() string {
	return "education"
}

// Do executes the education step.
func (s *EducationStep) Do(_ context.Context, pass *Pass) error {
	pass.Record.Education = s.catalog.EducationEntries(s.sectionNode(pass, extract.SectionEducation))
	return nil
}

// SkillsStep reads the skill list.
type SkillsStep struct{ fieldStep }

// NewSkillsStep creates the skills step.
func NewSkillsStep(catalog *extract.Catalog, opts ...StepOption) *SkillsStep {
	return &SkillsStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *SkillsStep) Name() string {
	return "skills"
}

// Do executes the skills step.
func (s *SkillsStep) Do(_ context.Context, pass *Pass) error {
	skills := s.catalog.Skills.Extract(s.sectionNode(pass, extract.SectionSkills), s.catalog.Table())
	pass.Record.Skills = model.JoinList(skills)
	return nil
}

// LanguagesStep reads the language list.
type LanguagesStep struct{ fieldStep }

// NewLanguagesStep creates the languages step.
func NewLanguagesStep(catalog *extract.Catalog, opts ...StepOption) *LanguagesStep {
	return &LanguagesStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *LanguagesStep) Name() string {
	return "languages"
}

// Do executes the languages step.
func (s *LanguagesStep) Do(_ context.Context, pass *Pass) error {
	langs := s.catalog.Languages.Extract(s.sectionNode(pass, extract.SectionLanguages), s.catalog.Table())
	pass.Record.Languages = model.JoinList(langs)
	return nil
}

// ConnectionsStep reads the connection count.
type ConnectionsStep struct{ fieldStep }

// NewConnectionsStep creates the connections step.
func NewConnectionsStep(catalog *extract.Catalog, opts ...StepOption) *ConnectionsStep {
	return &ConnectionsStep{newFieldStep(catalog, opts)}
}

// Name returns the step name.
func (s *ConnectionsStep) Name() string {
	return "connections"
}

// Do executes the connections step.
func (s *ConnectionsStep) Do(_ context.Context, pass *Pass) error {
	pass.Record.ConnectionCount = s.catalog.ConnectionCount(pass.Input.Doc)
	if pass.Record.ConnectionCount == nil {
		s.logger.Debug("field absent", "field", "connectionCount")
	}
	return nil
}

// RecentPostsStep navigates to the recent activity view, collects post
// excerpts and navigates back. It must be the last step.
type RecentPostsStep struct {
	materializer *materialize.Materializer
	logger       *slog.Logger
}

// NewRecentPostsStep creates the recent posts step.
func NewRecentPostsStep(m *materialize.Materializer, logger *slog.Logger) *RecentPostsStep {
	if m == nil {
		m = materialize.New(materialize.RecentActivity())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecentPostsStep{materializer: m, logger: logger}
}

// Name returns the step name.
func (s *RecentPostsStep) Name() string {
	return "recent_posts"
}

// Do executes the recent posts step.
func (s *RecentPostsStep) Do(ctx context.Context, pass *Pass) error {
	res := s.materializer.Run(ctx, pass.Source)
	posts := make([]model.RecentPost, 0, len(res.Items))
	for _, item := range res.Items {
		posts = append(posts, model.RecentPost{Content: item})
	}
	pass.Record.RecentPosts = posts

	s.logger.Debug("recent posts materialized",
		"outcome", res.Outcome.String(),
		"posts", len(posts),
		"restored", res.Restored,
	)
	return nil
}
