package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/catalog"
	"github.com/nao1215/prospector/internal/config"
	"github.com/nao1215/prospector/internal/database"
	"github.com/nao1215/prospector/internal/extract"
	"github.com/nao1215/prospector/internal/model"
	"github.com/nao1215/prospector/internal/pipeline"
	"github.com/nao1215/prospector/internal/report"
)

var (
	// errNotProfile is returned when the target is not a profile page.
	errNotProfile = errors.New("not a profile page")

	// errUnknownCampaign is returned when --campaign names no listed campaign.
	errUnknownCampaign = errors.New("unknown campaign")
)

// catalogAPI is the part of the catalog client used by push.
type catalogAPI interface {
	Destinations(ctx context.Context) ([]catalog.Destination, error)
	Submit(ctx context.Context, record *model.ProfileRecord, destinationID string) (catalog.Ack, error)
}

// NewPushCmd creates the push command.
func NewPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file-or-url>",
		Short: "Extract a profile and submit it to a campaign",
		Long: `Push extracts one profile page and submits the record to a campaign of the
catalog service.

The flow is:
  1. The page must be a profile (linkedin.com/in/...).
  2. Campaigns are listed; this also checks the catalog credentials.
  3. The record is extracted. If the page stops responding it is reloaded
     once and the extraction is retried.
  4. The record is shown with its completeness and the campaigns.
  5. With --campaign, the record is submitted to that campaign.

Without --campaign, push stops after step 4.

Examples:
  # Preview the record and list campaigns
  prospector push https://www.linkedin.com/in/someone/

  # Submit to campaign 12 using Chrome
  prospector push --source browser --campaign 12 https://www.linkedin.com/in/someone/`,
		Args: cobra.ExactArgs(1),
		RunE: runPushCmd,
	}

	addSourceFlags(cmd)
	addConfigFlag(cmd)
	addCatalogFlags(cmd)

	cmd.Flags().String("campaign", "",
		"Campaign ID to submit the record to")
	cmd.Flags().Bool("save", true,
		"Save the extraction and the submission to the history database")
	addDBFlag(cmd)

	return cmd
}

// runPushCmd executes the push command.
func runPushCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildSourceConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := applyCatalogFlags(cmd, cfg); err != nil {
		return err
	}
	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	campaign, err := cmd.Flags().GetString("campaign")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateCatalog(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	client, err := catalog.New(cfg.CatalogURL,
		catalog.WithToken(cfg.CatalogToken),
		catalog.WithTimeout(cfg.Timeout),
		catalog.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	factory, err := newExtractorFactory(cfg, logger)
	if err != nil {
		return err
	}

	srcs := newSources(cfg, logger)
	defer func() {
		if err := srcs.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = openHistory(cfg.DBDir)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	flow := &pushFlow{
		catalog: client,
		sources: srcs,
		factory: factory,
		db:      db,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		status:  cmd.ErrOrStderr(),
	}
	return flow.run(ctx, cfg.Targets[0], campaign)
}

// pushFlow drives one profile through the submission phases.
type pushFlow struct {
	catalog catalogAPI
	sources *sources
	factory func() *pipeline.Extractor
	db      *database.HistoryDB
	logger  *slog.Logger

	// out receives the rendered phases.
	out io.Writer
	// status receives transient progress.
	status io.Writer
}

func (f *pushFlow) show(v report.View) {
	w := f.out
	if v.Phase == report.PhaseLoading {
		w = f.status
	}
	fmt.Fprint(w, report.RenderView(v))
}

func (f *pushFlow) fail(v report.View, err error) error {
	v.Phase = report.PhaseFailed
	v.Message = failureMessage(err)
	f.show(v)
	return err
}

func (f *pushFlow) run(ctx context.Context, target, campaign string) error {
	f.show(report.View{Phase: report.PhaseLoading})

	src, err := f.sources.Open(ctx, target)
	if err != nil {
		return f.fail(report.View{Location: target}, fmt.Errorf("%w: %w", pipeline.ErrSourceUnavailable, err))
	}
	defer func() { closeSource(src, f.logger) }()

	location, err := src.Location(ctx)
	if err != nil {
		return f.fail(report.View{Location: target}, fmt.Errorf("%w: %w", pipeline.ErrSourceUnavailable, err))
	}
	view := report.View{Location: location, Selected: campaign}
	if !extract.IsProfileURL(location) {
		view.Phase = report.PhaseNotProfile
		f.show(view)
		return fmt.Errorf("%w: %s", errNotProfile, location)
	}

	view.Destinations, err = f.catalog.Destinations(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			view.Phase = report.PhaseNotAuthenticated
			f.show(view)
			return err
		}
		return f.fail(view, err)
	}

	x := f.factory().Run(ctx, src, target)
	if errors.Is(x.Err, pipeline.ErrSourceUnavailable) && ctx.Err() == nil {
		f.logger.Warn("page unavailable, re-establishing", "target", target, "error", x.Err)
		src, err = f.sources.reestablish(ctx, src, target)
		if err != nil {
			return f.fail(view, fmt.Errorf("%w: %w", pipeline.ErrSourceUnavailable, err))
		}
		x = f.factory().Run(ctx, src, target)
	}
	if x.Err != nil {
		return f.fail(view, x.Err)
	}

	view.Record = x.Record
	view.Phase = report.PhaseReady
	f.show(view)

	extractionID := f.save(ctx, x)

	if campaign == "" {
		fmt.Fprintln(f.out, "\nUse --campaign <id> to submit this profile.")
		return nil
	}
	if !hasDestination(view.Destinations, campaign) {
		return f.fail(view, fmt.Errorf("%w: %s", errUnknownCampaign, campaign))
	}

	ack, err := f.catalog.Submit(ctx, x.Record, campaign)
	if err != nil {
		return f.fail(view, err)
	}

	view.Phase = report.PhaseSubmitted
	f.show(view)
	f.recordSubmission(ctx, extractionID, x.Record.ProfileURL, campaign, ack)
	return nil
}

func (f *pushFlow) save(ctx context.Context, x *model.Extraction) int64 {
	if f.db == nil {
		return 0
	}
	id, err := f.db.SaveExtraction(ctx, x)
	if err != nil {
		f.logger.Error("failed to save extraction", "error", err)
		return 0
	}
	return id
}

func (f *pushFlow) recordSubmission(ctx context.Context, extractionID int64, profileURL, destination string, ack catalog.Ack) {
	if f.db == nil {
		return
	}
	err := f.db.RecordSubmission(ctx, &database.Submission{
		ExtractionID:  extractionID,
		ProfileURL:    profileURL,
		DestinationID: destination,
		AckID:         ack.ID(),
		SubmittedAt:   time.Now().UTC(),
	})
	if err != nil {
		f.logger.Error("failed to record submission", "error", err)
	}
}

func hasDestination(dests []catalog.Destination, id string) bool {
	for _, d := range dests {
		if d.ID == id {
			return true
		}
	}
	return false
}

// failureMessage turns an error into the message of the failed phase.
func failureMessage(err error) string {
	var apiErr *catalog.APIError
	switch {
	case errors.Is(err, catalog.ErrUnreachable):
		return "Catalog unreachable. Check catalog.url and try again."
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, errUnknownCampaign):
		return err.Error()
	case errors.Is(err, pipeline.ErrSourceUnavailable):
		return "Could not read the page. Reload it and try again."
	case errors.Is(err, config.ErrUnknownSource):
		return err.Error()
	default:
		return report.DefaultFailureMessage
	}
}
