package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/extract"
	"github.com/nao1215/prospector/internal/model"
)

// Pass is the shared state of one extraction pass.
type Pass struct {
	// Source is the document boundary the pass reads from.
	Source dom.Source

	// Location is the document URL at snapshot time.
	Location string

	// Input is the snapshot, its resolved sections and the scalar values
	// extracted so far.
	Input extract.Input

	// Record is the record under assembly.
	Record *model.ProfileRecord

	// Performed lists the steps that ran, in order.
	Performed []string
}

// NewPass creates a pass over src with an empty record.
func NewPass(src dom.Source) *Pass {
	return &Pass{
		Source: src,
		Record: model.NewProfileRecord(),
		Input:  extract.Input{Fields: make(map[string]string)},
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the pass accumulated by
// the previous steps.
type Step interface {
	// Do executes the step. A returned error aborts the pass unless the
	// pipeline continues on error; a missing field is not an error.
	Do(ctx context.Context, pass *Pass) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The first error is still returned.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Context cancellation is checked before each step; steps that wait
// (recent posts) honour the context themselves.
//
// Returns the first error encountered. With continueOnError the remaining
// steps still run.
func (p *Pipeline) Execute(ctx context.Context, pass *Pass) error {
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"location", pass.Location,
		)

		if err := step.Do(ctx, pass); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"location", pass.Location,
				"error", err,
			)

			if firstErr == nil {
				firstErr = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}

		pass.Performed = append(pass.Performed, step.Name())
	}

	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
