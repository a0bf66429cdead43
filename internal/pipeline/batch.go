package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/model"
)

// Opener turns a batch target (file path, URL) into a document source.
type Opener func(ctx context.Context, target string) (dom.Source, error)

// BatchProcessor extracts many independent documents concurrently.
// Each target gets its own source and its own pass; passes never share a
// document.
type BatchProcessor struct {
	// extractorFactory creates the extractor used for each target.
	extractorFactory func() *Extractor

	// open creates the source of a target.
	open Opener

	// concurrency is the maximum number of concurrent passes.
	concurrency int

	// recoveries is how many times a target is reopened after its source
	// became unavailable.
	recoveries int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed extractions in input order.
	results []*model.Extraction
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent passes.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRecovery reopens a target up to n times when its pass fails with
// ErrSourceUnavailable. Reopening re-establishes the source from scratch.
func WithRecovery(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n >= 0 {
			b.recoveries = n
		}
	}
}

// DefaultConcurrency is the number of passes run in parallel by default.
const DefaultConcurrency = 4

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(extractorFactory func() *Extractor, open Opener, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		extractorFactory: extractorFactory,
		open:             open,
		concurrency:      DefaultConcurrency,
		results:          make([]*model.Extraction, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch extracts every target and returns the extractions in input
// order. A target that cannot be opened or read yields an Extraction with
// its error set; only cancellation makes ProcessBatch itself fail.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.Extraction, error) {
	bp.logger.Info("starting batch extraction",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.Extraction, len(targets))

	err := bp.run(ctx, targets, func(x *model.Extraction, i int) {
		bp.mu.Lock()
		bp.results[i] = x
		bp.mu.Unlock()
	})

	bp.logger.Info("batch extraction complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback extracts every target and calls callback with
// each extraction as soon as it completes. The callback runs on the
// goroutine of the pass and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(x *model.Extraction, index int),
) error {
	bp.logger.Info("starting batch extraction with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, targets, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, targets []string, done func(*model.Extraction, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("extracting target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			x := bp.extract(ctx, target)
			if x.Err != nil {
				bp.logger.Warn("extraction failed", "target", target, "error", x.Err)
			}
			done(x, i)

			// Failures are recorded in the extraction.
			return nil
		})
	}

	return g.Wait()
}

func (bp *BatchProcessor) extract(ctx context.Context, target string) *model.Extraction {
	x := bp.attempt(ctx, target)
	for retry := 1; retry <= bp.recoveries && errors.Is(x.Err, ErrSourceUnavailable); retry++ {
		if ctx.Err() != nil {
			break
		}
		bp.logger.Info("source unavailable, reopening",
			"target", target,
			"attempt", retry,
			"error", x.Err,
		)
		x = bp.attempt(ctx, target)
	}
	return x
}

func (bp *BatchProcessor) attempt(ctx context.Context, target string) *model.Extraction {
	src, err := bp.open(ctx, target)
	if err != nil {
		x := &model.Extraction{Source: target, ExtractedAt: time.Now().UTC()}
		if ctxErr := ctx.Err(); ctxErr != nil {
			x.SetError(ctxErr)
		} else {
			x.SetError(fmt.Errorf("%w: %w", ErrSourceUnavailable, err))
		}
		return x
	}
	if c, ok := src.(interface{ Close() error }); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				bp.logger.Debug("failed to close source", "target", target, "error", cerr)
			}
		}()
	}
	return bp.extractorFactory().Run(ctx, src, target)
}
