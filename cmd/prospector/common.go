package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/prospector/internal/config"
	"github.com/nao1215/prospector/internal/database"
	applog "github.com/nao1215/prospector/internal/log"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure logger, installs it as the default and
// returns it.
func setupLogger(verbose bool) *slog.Logger {
	logger := applog.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// loadConfigFile reads the configuration file into cfg.
// If the user explicitly specified a path, a missing file is an error;
// otherwise a missing file leaves the defaults in place.
func loadConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.ApplyFile(f)
	return nil
}

// addConfigFlag registers the -c flag.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .prospector in current or home directory)")
}

// addDBFlag registers the --db-dir flag.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"History database directory (default: dbDir from the config file, then "+config.XDGDataDir()+")")
}

// applyDBFlag overrides the database directory when --db-dir is set.
func applyDBFlag(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("db-dir") {
		return nil
	}
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	cfg.DBDir = dir
	return nil
}

// addCatalogFlags registers the flags that locate the catalog.
func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog-url", "",
		"Catalog base URL (default: catalog.url from the config file, then "+config.DefaultCatalogURL+")")
	cmd.Flags().String("token", "",
		"Catalog bearer token (default: catalog.token from the config file)")
}

// buildBaseConfig loads the configuration file and applies the catalog and
// database flags the command defines.
func buildBaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}
	if cmd.Flags().Lookup("catalog-url") != nil {
		if err := applyCatalogFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("db-dir") != nil {
		if err := applyDBFlag(cmd, cfg); err != nil {
			return nil, err
		}
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyCatalogFlags overrides file values with explicitly set flags.
func applyCatalogFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("catalog-url") {
		v, err := cmd.Flags().GetString("catalog-url")
		if err != nil {
			return err
		}
		cfg.CatalogURL = v
	}
	if cmd.Flags().Changed("token") {
		v, err := cmd.Flags().GetString("token")
		if err != nil {
			return err
		}
		cfg.CatalogToken = v
	}
	return nil
}

// openHistory opens the history database in dir.
func openHistory(dir string) (*database.HistoryDB, error) {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openOutput returns the report destination: the report file when set,
// otherwise fallback. The returned close function is never nil.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain personal data and are readable by the owner only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// isURL reports whether target is an http or https URL.
func isURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
