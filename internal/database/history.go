package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/prospector/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "prospector.db"

// storedTime is fixed width so that extracted_at sorts as text.
const storedTime = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRecord is returned when an extraction without a record is saved.
var ErrNoRecord = errors.New("database: extraction has no record")

// HistoryDB stores extraction history.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB inside dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_url TEXT NOT NULL,
		source TEXT NOT NULL,
		extracted_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		steps TEXT,
		record_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_profile ON extractions(profile_url);
	CREATE INDEX IF NOT EXISTS idx_extractions_time ON extractions(extracted_at);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		extraction_id INTEGER,
		profile_url TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		ack_id TEXT,
		submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (extraction_id) REFERENCES extractions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_profile ON submissions(profile_url);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveExtraction stores an extraction and sets its ID.
// Failed extractions (no record) are not stored.
func (h *HistoryDB) SaveExtraction(ctx context.Context, e *model.Extraction) (int64, error) {
	if e.Record == nil {
		return 0, ErrNoRecord
	}

	recordJSON, err := json.Marshal(e.Record)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize record: %w", err)
	}
	stepsJSON, err := json.Marshal(e.Steps)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize steps: %w", err)
	}

	extractedAt := e.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now()
	}

	query := `
	INSERT INTO extractions (profile_url, source, extracted_at, elapsed_ms, steps, record_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		e.Record.ProfileURL,
		e.Source,
		extractedAt.UTC().Format(storedTime),
		e.Elapsed.Milliseconds(),
		string(stepsJSON),
		string(recordJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save extraction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read extraction id: %w", err)
	}
	e.ID = id
	return id, nil
}

const selectExtraction = `
	SELECT id, source, extracted_at, elapsed_ms, steps, record_json
	FROM extractions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*model.Extraction, error) {
	var (
		e           model.Extraction
		extractedAt string
		elapsedMS   int64
		stepsJSON   sql.NullString
		recordJSON  string
	)
	if err := row.Scan(&e.ID, &e.Source, &extractedAt, &elapsedMS, &stepsJSON, &recordJSON); err != nil {
		return nil, err
	}

	e.ExtractedAt = parseTimestamp(extractedAt)
	e.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	if stepsJSON.Valid && stepsJSON.String != "" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &e.Steps); err != nil {
			return nil, fmt.Errorf("failed to parse steps: %w", err)
		}
	}

	record := model.NewProfileRecord()
	if err := json.Unmarshal([]byte(recordJSON), record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	e.Record = record

	return &e, nil
}

// Latest returns the most recent extraction of a profile, or nil when the
// profile has never been saved.
func (h *HistoryDB) Latest(ctx context.Context, profileURL string) (*model.Extraction, error) {
	row := h.db.QueryRowContext(ctx, selectExtraction+`
	WHERE profile_url = ?
	ORDER BY extracted_at DESC, id DESC
	LIMIT 1
	`, profileURL)

	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return e, nil
}

// Recent returns up to limit extractions of a profile, newest first.
func (h *HistoryDB) Recent(ctx context.Context, profileURL string, limit int) ([]*model.Extraction, error) {
	rows, err := h.db.QueryContext(ctx, selectExtraction+`
	WHERE profile_url = ?
	ORDER BY extracted_at DESC, id DESC
	LIMIT ?
	`, profileURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get extractions: %w", err)
	}
	defer rows.Close()

	var out []*model.Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns the extraction with the given ID, or nil when absent.
func (h *HistoryDB) GetByID(ctx context.Context, id int64) (*model.Extraction, error) {
	row := h.db.QueryRowContext(ctx, selectExtraction+`WHERE id = ?`, id)

	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return e, nil
}

// HistoryEntry summarizes a stored extraction. Completeness is scored from
// the stored record when the entry is read.
type HistoryEntry struct {
	ID           int64
	ProfileURL   string
	Source       string
	ExtractedAt  time.Time
	Elapsed      time.Duration
	Completeness int
}

// History lists the stored extractions of a profile, newest first.
func (h *HistoryDB) History(ctx context.Context, profileURL string) ([]HistoryEntry, error) {
	query := `
	SELECT id, profile_url, source, extracted_at, elapsed_ms, record_json
	FROM extractions
	WHERE profile_url = ?
	ORDER BY extracted_at DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var extractedAt string
		var elapsedMS int64
		var recordJSON string

		if err := rows.Scan(&entry.ID, &entry.ProfileURL, &entry.Source, &extractedAt, &elapsedMS, &recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		record := model.NewProfileRecord()
		if err := json.Unmarshal([]byte(recordJSON), record); err != nil {
			return nil, fmt.Errorf("failed to parse record %d: %w", entry.ID, err)
		}
		entry.Completeness = record.Completeness()
		entry.ExtractedAt = parseTimestamp(extractedAt)
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, entry)
	}

	return results, rows.Err()
}

// ListProfiles returns every profile URL with at least one extraction.
func (h *HistoryDB) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT DISTINCT profile_url FROM extractions
	ORDER BY profile_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// Submission records that a profile was sent to a catalog destination.
type Submission struct {
	ID            int64
	ExtractionID  int64
	ProfileURL    string
	DestinationID string
	AckID         string
	SubmittedAt   time.Time
}

// RecordSubmission stores a submission. A zero ExtractionID stores NULL.
func (h *HistoryDB) RecordSubmission(ctx context.Context, s *Submission) error {
	var extractionID sql.NullInt64
	if s.ExtractionID != 0 {
		extractionID = sql.NullInt64{Int64: s.ExtractionID, Valid: true}
	}

	result, err := h.db.ExecContext(ctx, `
	INSERT INTO submissions (extraction_id, profile_url, destination_id, ack_id)
	VALUES (?, ?, ?, ?)
	`, extractionID, s.ProfileURL, s.DestinationID, s.AckID)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read submission id: %w", err)
	}
	s.ID = id
	return nil
}

// Submissions lists the submissions of a profile, newest first.
func (h *HistoryDB) Submissions(ctx context.Context, profileURL string) ([]Submission, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, extraction_id, profile_url, destination_id, ack_id, submitted_at
	FROM submissions
	WHERE profile_url = ?
	ORDER BY submitted_at DESC, id DESC
	`, profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var results []Submission
	for rows.Next() {
		var s Submission
		var extractionID sql.NullInt64
		var ackID sql.NullString
		var submittedAt string

		if err := rows.Scan(&s.ID, &extractionID, &s.ProfileURL, &s.DestinationID, &ackID, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		s.ExtractionID = extractionID.Int64
		s.AckID = ackID.String
		s.SubmittedAt = parseTimestamp(submittedAt)
		results = append(results, s)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
