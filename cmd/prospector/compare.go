package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/database"
	"github.com/nao1215/prospector/internal/extract"
	"github.com/nao1215/prospector/internal/model"
)

// errNotEnoughHistory is returned when a profile has fewer than two
// extractions to compare.
var errNotEnoughHistory = errors.New("at least 2 extractions are required for comparison")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <profile-url>",
		Short: "Compare the saved extractions of a profile",
		Long: `Compare shows what changed between two saved extractions of a profile:
the fields that differ, the completeness change, and a field-level diff.

By default the latest extraction is compared with the one before it.

Examples:
  # Compare the latest two extractions
  prospector compare https://www.linkedin.com/in/someone/

  # Compare the latest extraction with extraction 3
  prospector compare --with-id 3 https://www.linkedin.com/in/someone/

  # Output the comparison as JSON
  prospector compare --json https://www.linkedin.com/in/someone/`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	addConfigFlag(cmd)
	addDBFlag(cmd)

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific extraction by ID (see 'prospector history')")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return err
	}

	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
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

	result, err := compareHistory(ctx, db, extract.ProfileURL(args[0]), withID)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	outputComparisonText(cmd.OutOrStdout(), result)
	return nil
}

// ComparisonResult holds the result of comparing two extractions.
type ComparisonResult struct {
	ProfileURL string             `json:"profileUrl"`
	Previous   ExtractionMetadata `json:"previous"`
	Current    ExtractionMetadata `json:"current"`

	// CompletenessDelta is current minus previous completeness.
	CompletenessDelta int `json:"completenessDelta"`

	// ChangedFields are the JSON names of the record fields that differ.
	ChangedFields []string `json:"changedFields"`

	// Diff is a human-readable diff of the records, "-" previous, "+" current.
	Diff string `json:"diff,omitempty"`
}

// ExtractionMetadata identifies one side of a comparison.
type ExtractionMetadata struct {
	ID           int64     `json:"id"`
	ExtractedAt  time.Time `json:"extractedAt"`
	Completeness int       `json:"completeness"`
}

// compareHistory loads the two extractions to compare and diffs them.
func compareHistory(ctx context.Context, db *database.HistoryDB, profileURL string, withID int64) (*ComparisonResult, error) {
	recent, err := db.Recent(ctx, profileURL, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("no extractions found for %s", profileURL)
	}

	current := recent[0]
	var previous *model.Extraction

	if withID > 0 {
		previous, err = db.GetByID(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get extraction %d: %w", withID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("extraction with ID %d not found", withID)
		}
		if previous.Record.ProfileURL != profileURL {
			return nil, fmt.Errorf("extraction %d belongs to %s, not %s", withID, previous.Record.ProfileURL, profileURL)
		}
	} else {
		if len(recent) < 2 {
			return nil, fmt.Errorf("%w (found %d)", errNotEnoughHistory, len(recent))
		}
		previous = recent[1]
	}

	return compareExtractions(profileURL, previous, current)
}

// compareExtractions diffs two extractions of the same profile.
func compareExtractions(profileURL string, previous, current *model.Extraction) (*ComparisonResult, error) {
	changed, err := changedFields(previous.Record, current.Record)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		ProfileURL:    profileURL,
		Previous:      metadataOf(previous),
		Current:       metadataOf(current),
		ChangedFields: changed,
		Diff:          cmp.Diff(previous.Record, current.Record),
	}
	result.CompletenessDelta = result.Current.Completeness - result.Previous.Completeness
	return result, nil
}

func metadataOf(x *model.Extraction) ExtractionMetadata {
	return ExtractionMetadata{
		ID:           x.ID,
		ExtractedAt:  x.ExtractedAt,
		Completeness: x.Record.Completeness(),
	}
}

// changedFields returns the sorted JSON names of the fields that differ.
func changedFields(previous, current *model.ProfileRecord) ([]string, error) {
	prev, err := fieldMap(previous)
	if err != nil {
		return nil, err
	}
	cur, err := fieldMap(current)
	if err != nil {
		return nil, err
	}

	changed := []string{}
	for key, v := range cur {
		if !cmp.Equal(prev[key], v) {
			changed = append(changed, key)
		}
	}
	for key := range prev {
		if _, ok := cur[key]; !ok {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)
	return changed, nil
}

// fieldMap decodes the wire form of r into its JSON fields.
func fieldMap(r *model.ProfileRecord) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return m, nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Profile Comparison: %s\n", result.ProfileURL)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious extraction: #%d  %s  %d%%\n",
		result.Previous.ID,
		result.Previous.ExtractedAt.Local().Format("2006-01-02 15:04:05"),
		result.Previous.Completeness)
	fmt.Fprintf(out, "Current extraction:  #%d  %s  %d%%\n",
		result.Current.ID,
		result.Current.ExtractedAt.Local().Format("2006-01-02 15:04:05"),
		result.Current.Completeness)
	fmt.Fprintf(out, "\nCompleteness change: %s\n", formatDelta(result.CompletenessDelta))

	if len(result.ChangedFields) == 0 {
		fmt.Fprintln(out, "\nNo changes.")
		return
	}

	fmt.Fprintf(out, "\nChanged fields (%d): %s\n", len(result.ChangedFields), strings.Join(result.ChangedFields, ", "))
	fmt.Fprintln(out, "\nDiff (-previous +current):")
	fmt.Fprintln(out, result.Diff)
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
