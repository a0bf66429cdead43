package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/config"
	"github.com/nao1215/prospector/internal/database"
	"github.com/nao1215/prospector/internal/model"
	"github.com/nao1215/prospector/internal/pipeline"
	"github.com/nao1215/prospector/internal/report"
)

// errExtractionsFailed is returned when at least one target produced no record.
var errExtractionsFailed = errors.New("extraction failed")

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file-or-url...]",
		Short: "Extract prospect records from profile pages",
		Long: `Extract reads one or more profile pages and prints a structured record for
each, with a completeness score over ten profile fields.

Sources:
  file     Saved HTML pages. The profile URL is taken from the page's
           canonical link. The recent activity view is read from a sibling
           file named recent-activity-all.html.
  http     Pages fetched over HTTP with the configured session cookie.
  browser  Pages rendered by Chrome (launched, or remote with --remote-url).

Without --source, URL targets use http and anything else uses file.

Examples:
  # Extract a saved page
  prospector extract ada.html

  # Extract several pages concurrently and print JSON
  prospector extract --json --batch 4 ada.html grace.html alan.html

  # Fetch a page in Chrome and save the result to the history
  prospector extract --source browser --save https://www.linkedin.com/in/someone/

  # Print only the record the catalog accepts
  prospector extract --json --record-only ada.html`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtractCmd,
	}

	addSourceFlags(cmd)
	addConfigFlag(cmd)

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent extractions")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("record-only", false,
		"With --json, output only the profile record")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("save", false,
		"Save successful extractions to the history database")
	addDBFlag(cmd)

	return cmd
}

// addSourceFlags registers the flags that control how pages are opened and
// read. They are shared by extract and push.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "",
		"Page source: file, http or browser (default: http for URLs, file otherwise)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page load timeout")
	cmd.Flags().Bool("no-posts", false,
		"Skip the recent activity view")
	cmd.Flags().Duration("posts-timeout", config.DefaultPostsTimeout,
		"How long to wait for recent posts")
	cmd.Flags().String("locale", "",
		"Vocabulary table override file (section aliases and skip patterns)")
	cmd.Flags().String("remote-url", "",
		"DevTools URL of a running Chrome for the browser source")
	cmd.Flags().Bool("headless", true,
		"Run a launched Chrome without a window")
	cmd.Flags().Bool("stealth", true,
		"Patch browser pages against automation detection")
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildExtractConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runExtract(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildExtractConfig creates a Config from the configuration file and the
// extract flags.
func buildExtractConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildSourceConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.RecordOnly, err = cmd.Flags().GetBool("record-only")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildSourceConfig loads the configuration file and applies the source
// flags. Flags override file values only when set explicitly.
func buildSourceConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	if err := applyDBFlag(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Source, err = cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		cfg.Source = detectSource(args)
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.SkipRecentPosts, err = cmd.Flags().GetBool("no-posts")
	if err != nil {
		return nil, err
	}

	cfg.PostsTimeout, err = cmd.Flags().GetDuration("posts-timeout")
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("locale") {
		if cfg.LocalePath, err = cmd.Flags().GetString("locale"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("remote-url") {
		if cfg.RemoteURL, err = cmd.Flags().GetString("remote-url"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("headless") {
		if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("stealth") {
		if cfg.Stealth, err = cmd.Flags().GetBool("stealth"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// detectSource picks http when every target is a URL and file otherwise.
func detectSource(targets []string) string {
	if len(targets) == 0 {
		return config.DefaultSource
	}
	for _, t := range targets {
		if !isURL(t) {
			return config.SourceFile
		}
	}
	return config.SourceHTTP
}

// runExtract extracts every target and writes the reports.
func runExtract(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting extraction",
		"targets", len(cfg.Targets),
		"source", cfg.Source,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = openHistory(cfg.DBDir)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
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

	bp := pipeline.NewBatchProcessor(factory, srcs.Open,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithRecovery(1),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	extractions, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return fmt.Errorf("extraction cancelled: %w", err)
	}
	logger.Info("extraction finished", "elapsed", time.Since(startTime).Round(time.Millisecond))

	if err := outputReport(cfg, stdout, extractions); err != nil {
		return err
	}

	failed := 0
	for _, x := range extractions {
		if x.Err != nil {
			failed++
			continue
		}
		if err := saveExtraction(ctx, db, x, logger); err != nil {
			logger.Error("failed to save extraction", "source", x.Source, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d targets", errExtractionsFailed, failed, len(extractions))
	}
	return nil
}

// newReportWriter returns the writer for the requested format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		opts := []report.JSONWriterOption{
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		}
		if cfg.RecordOnly {
			opts = append(opts, report.WithRecordOnly())
		}
		return report.NewJSONWriter(w, opts...)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the extractions in the requested format. A single
// extraction is written as one document, several as a batch.
func outputReport(cfg *config.Config, stdout io.Writer, extractions []*model.Extraction) error {
	out, closeOut, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := newReportWriter(cfg, out)
	if len(extractions) == 1 {
		_, err = writer.Write(extractions[0])
	} else {
		_, err = writer.WriteAll(extractions)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveExtraction stores x in the history database.
// If db is nil, this function is a no-op.
func saveExtraction(ctx context.Context, db *database.HistoryDB, x *model.Extraction, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveExtraction(ctx, x)
	if err != nil {
		return fmt.Errorf("failed to save extraction: %w", err)
	}
	logger.Info("extraction saved to database", "id", id, "profile", x.Record.ProfileURL)
	return nil
}
