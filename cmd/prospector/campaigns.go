package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/catalog"
)

// NewCampaignsCmd creates the campaigns command.
func NewCampaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List the campaigns of the catalog",
		Long: `Campaigns lists the campaigns a profile can be submitted to, with the number
of prospects each one holds. It also checks the catalog credentials.

Examples:
  # List campaigns using the catalog from .prospector
  prospector campaigns

  # List campaigns of another catalog as JSON
  prospector campaigns --catalog-url https://crm.example.com --token s3cret --json`,
		Args: cobra.NoArgs,
		RunE: runCampaignsCmd,
	}

	addConfigFlag(cmd)
	addCatalogFlags(cmd)
	cmd.Flags().BoolP("json", "j", false, "Output campaigns as JSON")

	return cmd
}

// runCampaignsCmd executes the campaigns command.
func runCampaignsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCatalog(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
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

	return listCampaigns(ctx, client, cmd.OutOrStdout(), jsonOutput)
}

// listCampaigns prints the destinations of the catalog.
func listCampaigns(ctx context.Context, client catalogAPI, out io.Writer, jsonOutput bool) error {
	dests, err := client.Destinations(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			return fmt.Errorf("%w (set catalog.token in .prospector or use --token)", err)
		}
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(dests)
	}

	if len(dests) == 0 {
		fmt.Fprintln(out, "No campaigns found.")
		return nil
	}

	fmt.Fprintf(out, "Campaigns (%d):\n\n", len(dests))
	fmt.Fprintf(out, "  %-8s  %-40s  %s\n", "ID", "Name", "Prospects")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, d := range dests {
		fmt.Fprintf(out, "  %-8s  %-40s  %d\n", d.ID, d.Name, d.Count)
	}
	fmt.Fprintln(out, "\nUse 'prospector push --campaign <id> <profile>' to submit a profile.")

	return nil
}
