package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/database"
	"github.com/nao1215/prospector/internal/extract"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [profile-url]",
		Short: "Show saved extractions",
		Long: `History lists the extractions saved with 'extract --save' or 'push'.

Without an argument it lists every saved profile. With a profile URL it
lists the extractions of that profile with their completeness, and the
campaigns the profile was submitted to.

Examples:
  # List saved profiles
  prospector history

  # Show the extractions of one profile
  prospector history https://www.linkedin.com/in/someone/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	addConfigFlag(cmd)
	addDBFlag(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openHistory(cfg.DBDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		return listProfiles(ctx, db, cmd.OutOrStdout())
	}
	return listHistory(ctx, db, cmd.OutOrStdout(), extract.ProfileURL(args[0]))
}

// listProfiles lists every profile with a saved extraction.
func listProfiles(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	profiles, err := db.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(out, "No saved profiles found in the database.")
		fmt.Fprintln(out, "\nUse 'prospector extract --save <profile>' to save an extraction.")
		return nil
	}

	fmt.Fprintf(out, "Saved profiles (%d):\n\n", len(profiles))
	for _, p := range profiles {
		fmt.Fprintf(out, "  • %s\n", p)
	}
	fmt.Fprintln(out, "\nUse 'prospector history <profile-url>' to see the extractions of a profile.")

	return nil
}

// listHistory lists the extractions and submissions of a profile.
func listHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, profileURL string) error {
	entries, err := db.History(ctx, profileURL)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No extractions found for %s\n", profileURL)
		return nil
	}

	fmt.Fprintf(out, "Extraction history for %s (%d extractions):\n\n", profileURL, len(entries))
	fmt.Fprintf(out, "  %-6s  %-20s  %-12s  %-9s  %s\n", "ID", "Date", "Completeness", "Elapsed", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Fprintf(out, "  %-6d  %-20s  %-12s  %-9s  %s\n",
			e.ID,
			e.ExtractedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d%%", e.Completeness),
			e.Elapsed.Round(time.Millisecond),
			e.Source,
		)
	}

	subs, err := db.Submissions(ctx, profileURL)
	if err != nil {
		return fmt.Errorf("failed to get submissions: %w", err)
	}
	if len(subs) > 0 {
		fmt.Fprintf(out, "\nSubmissions (%d):\n\n", len(subs))
		for _, s := range subs {
			fmt.Fprintf(out, "  %s  campaign %s", s.SubmittedAt.Local().Format("2006-01-02 15:04:05"), s.DestinationID)
			if s.AckID != "" {
				fmt.Fprintf(out, "  (prospect %s)", s.AckID)
			}
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out, "\nUse 'prospector compare <profile-url>' to compare the latest two extractions.")
	return nil
}
