// Package database provides SQLite-based extraction history for prospector.
//
// This package implements the HistoryDB, which stores:
//   - Extraction records keyed by canonical profile URL. Completeness is
//     scored from the stored record on every read, never stored apart from it
//   - Catalog submissions made from those extractions
//
// The history is what the history and compare commands read. SQLite is
// accessed through modernc.org/sqlite, so no CGO is required.
package database
