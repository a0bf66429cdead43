package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/extract"
	"github.com/nao1215/prospector/internal/locale"
	"github.com/nao1215/prospector/internal/materialize"
	"github.com/nao1215/prospector/internal/model"
	"github.com/nao1215/prospector/internal/section"
)

// Extractor runs complete extraction passes.
type Extractor struct {
	table        *locale.Table
	materializer *materialize.Materializer
	skipPosts    bool
	logger       *slog.Logger
	pipeline     *Pipeline
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithTable sets the locale table. Defaults to locale.Default().
func WithTable(table *locale.Table) ExtractorOption {
	return func(e *Extractor) {
		e.table = table
	}
}

// WithMaterializer replaces the recent posts materializer.
func WithMaterializer(m *materialize.Materializer) ExtractorOption {
	return func(e *Extractor) {
		e.materializer = m
	}
}

// WithoutRecentPosts drops the recent posts step. The pass then never
// navigates.
func WithoutRecentPosts() ExtractorOption {
	return func(e *Extractor) {
		e.skipPosts = true
	}
}

// WithExtractorLogger sets the logger shared by every step.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor with the standard step sequence.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = locale.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.materializer == nil {
		e.materializer = materialize.New(materialize.RecentActivity(), materialize.WithLogger(e.logger))
	}

	catalog := extract.NewCatalog(e.table)
	stepOpts := []StepOption{WithStepLogger(e.logger)}

	e.pipeline = New(WithLogger(e.logger))
	e.pipeline.AddSteps(
		NewSnapshotStep(section.NewResolver(e.table, section.WithLogger(e.logger))),
		NewTopCardStep(catalog, stepOpts...),
		NewAboutStep(catalog, stepOpts...),
		NewExperienceStep(catalog, stepOpts...),
		NewEducationStep(catalog, stepOpts...),
		NewSkillsStep(catalog, stepOpts...),
		NewLanguagesStep(catalog, stepOpts...),
		NewConnectionsStep(catalog, stepOpts...),
	)
	if !e.skipPosts {
		e.pipeline.AddStep(NewRecentPostsStep(e.materializer, e.logger))
	}
	return e
}

// Pipeline returns the step sequence of e.
func (e *Extractor) Pipeline() *Pipeline {
	return e.pipeline
}

// Extract runs one pass over src and returns the assembled record.
// A cancelled ctx returns ctx.Err(); any other failure is
// ErrSourceUnavailable, possibly joined with its cause.
func (e *Extractor) Extract(ctx context.Context, src dom.Source) (*model.ProfileRecord, error) {
	x := e.Run(ctx, src, "")
	if x.Err != nil {
		return nil, x.Err
	}
	return x.Record, nil
}

// Run is Extract with pass metadata. It always returns an Extraction; a
// failure is recorded in it.
func (e *Extractor) Run(ctx context.Context, src dom.Source, name string) *model.Extraction {
	start := time.Now()
	pass := NewPass(src)
	x := &model.Extraction{Source: name}

	err := e.pipeline.Execute(ctx, pass)
	x.ExtractedAt = time.Now().UTC()
	x.Elapsed = time.Since(start)
	x.Steps = pass.Performed
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			x.SetError(ctxErr)
			return x
		}
		if !errors.Is(err, ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		x.SetError(err)
		return x
	}

	x.Record = pass.Record
	e.logger.Debug("extraction complete",
		"source", name,
		"completeness", pass.Record.Completeness(),
		"elapsed", x.Elapsed,
	)
	return x
}
