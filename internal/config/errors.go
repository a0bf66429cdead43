package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no document path or URL is given.
	ErrNoTarget = errors.New("no target specified: provide a profile file or URL")

	// ErrInvalidTimeout is returned when the page timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownSource is returned for a source kind other than file, http
	// or browser.
	ErrUnknownSource = errors.New("unknown source: must be one of file, http, browser")

	// ErrInvalidPostsTimeout is returned when the recent posts wait is not
	// positive.
	ErrInvalidPostsTimeout = errors.New("invalid posts timeout: must be positive")

	// ErrNoCatalogURL is returned when a catalog command runs without a
	// catalog URL.
	ErrNoCatalogURL = errors.New("no catalog URL configured: set catalog.url in .prospector or use --catalog-url")
)
