package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Source kinds.
const (
	SourceFile    = "file"
	SourceHTTP    = "http"
	SourceBrowser = "browser"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "prospector"

	// DefaultSource reads documents from saved HTML files.
	DefaultSource = SourceFile

	// DefaultTimeout bounds page loads and catalog requests.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of documents extracted concurrently.
	DefaultBatchSize = 4

	// DefaultPostsTimeout is how long recent posts are awaited after the
	// activity view opens.
	DefaultPostsTimeout = 8 * time.Second

	// DefaultCatalogURL is the catalog service used when none is configured.
	DefaultCatalogURL = "http://localhost:3000"
)

// Config holds all configuration options for prospector.
// It is populated from CLI flags and the configuration file and passed down
// explicitly.
type Config struct {
	// Source selects how targets are opened: file, http or browser.
	Source string

	// Targets are file paths or URLs, depending on Source.
	Targets []string

	// Timeout bounds page loads and catalog requests.
	Timeout time.Duration

	// BatchSize is the number of documents extracted concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path.
	// If empty, .prospector is searched in the current directory and then
	// in the home directory.
	ConfigFilePath string

	// File is the loaded configuration file, nil when none was found.
	File *File

	// JSONReport writes JSON instead of text. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport writes Markdown instead of text.
	MarkdownReport bool

	// RecordOnly limits JSON output to the wire record.
	RecordOnly bool

	// ReportFile is the output file path. Empty writes to stdout.
	ReportFile string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB stores every successful extraction in the history database.
	SaveToDB bool

	// SkipRecentPosts disables the activity view navigation.
	SkipRecentPosts bool

	// PostsTimeout bounds the wait for recent posts.
	PostsTimeout time.Duration

	// CatalogURL is the base URL of the catalog service.
	CatalogURL string

	// CatalogToken is the bearer token of the catalog service.
	CatalogToken string

	// RemoteURL is the DevTools URL of a running Chrome for the browser source.
	RemoteURL string

	// Headless runs a launched Chrome without a window.
	Headless bool

	// Stealth patches browser pages against automation detection.
	Stealth bool

	// LocalePath is a vocabulary table override file.
	LocalePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Source:       DefaultSource,
		Timeout:      DefaultTimeout,
		BatchSize:    DefaultBatchSize,
		PostsTimeout: DefaultPostsTimeout,
		CatalogURL:   DefaultCatalogURL,
		Headless:     true,
		Stealth:      true,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for prospector.
// On Linux: ~/.local/share/prospector
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for prospector.
// On Linux: ~/.config/prospector
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for prospector.
// On Linux: ~/.cache/prospector
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ApplyFile copies values from the configuration file into c. Only values
// present in the file are applied; flags set explicitly should be applied
// after this call.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	if f.Catalog.URL != "" {
		c.CatalogURL = f.Catalog.URL
	}
	if f.Catalog.Token != "" {
		c.CatalogToken = f.Catalog.Token
	}
	if f.Browser.RemoteURL != "" {
		c.RemoteURL = f.Browser.RemoteURL
	}
	if f.Browser.Headless != nil {
		c.Headless = *f.Browser.Headless
	}
	if f.Browser.Stealth != nil {
		c.Stealth = *f.Browser.Stealth
	}
	if f.Locale != "" {
		c.LocalePath = f.Locale
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Session returns the session settings for a target host.
func (c *Config) Session(host string) SessionConfig {
	if c.File == nil {
		return SessionConfig{}
	}
	return c.File.SessionFor(host)
}

// Validate checks if the configuration is valid for an extraction run.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if !slices.Contains([]string{SourceFile, SourceHTTP, SourceBrowser}, c.Source) {
		return ErrUnknownSource
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.SkipRecentPosts && c.PostsTimeout <= 0 {
		return ErrInvalidPostsTimeout
	}
	return nil
}

// ValidateCatalog checks the settings needed to reach the catalog.
func (c *Config) ValidateCatalog() error {
	if c.CatalogURL == "" {
		return ErrNoCatalogURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
