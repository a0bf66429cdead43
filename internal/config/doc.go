// Package config provides configuration structures and utilities for
// prospector: where documents come from, how the catalog is reached, which
// vocabulary table is used and how reports are written.
package config
