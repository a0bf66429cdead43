package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/prospector/internal/model"
)

const adaURL = "https://www.linkedin.com/in/ada-lovelace/"

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newExtraction(url, headline string, at time.Time) *model.Extraction {
	count := 42
	r := model.NewProfileRecord()
	r.FirstName = "Ada"
	r.LastName = "Lovelace"
	r.ProfileURL = url
	r.Headline = headline
	r.ConnectionCount = &count
	r.PastExperiences = []model.ExperienceEntry{{Title: "Analyst", Company: "Engines", Duration: "2 yrs"}}

	return &model.Extraction{
		Source:      url,
		ExtractedAt: at,
		Elapsed:     2500 * time.Millisecond,
		Steps:       []string{"snapshot", "top_card"},
		Record:      r,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false requires existing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveExtraction(context.Background(), newExtraction(adaURL, "x", time.Now())); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		got, err := db.ListProfiles(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{adaURL}, got); diff != "" {
			t.Errorf("ListProfiles() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSaveAndLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := newExtraction(adaURL, "Analyst", base)
	newer := newExtraction(adaURL, "Principal Analyst", base.Add(500*time.Millisecond))

	for _, e := range []*model.Extraction{older, newer} {
		id, err := db.SaveExtraction(ctx, e)
		if err != nil {
			t.Fatalf("SaveExtraction() error = %v", err)
		}
		if id == 0 || e.ID != id {
			t.Fatalf("ID = %d, e.ID = %d", id, e.ID)
		}
	}

	got, err := db.Latest(ctx, adaURL)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got == nil {
		t.Fatal("Latest() returned nil")
	}
	if diff := cmp.Diff(newer.Record, got.Record); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if !got.ExtractedAt.Equal(newer.ExtractedAt) {
		t.Errorf("ExtractedAt = %v, want %v", got.ExtractedAt, newer.ExtractedAt)
	}
	if got.Elapsed != 2500*time.Millisecond {
		t.Errorf("Elapsed = %v", got.Elapsed)
	}
	if diff := cmp.Diff(newer.Steps, got.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	byID, err := db.GetByID(ctx, older.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetByID() = %v, %v", byID, err)
	}
	if byID.Record.Headline != "Analyst" {
		t.Errorf("GetByID() headline = %q", byID.Record.Headline)
	}

	recent, err := db.Recent(ctx, adaURL, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != newer.ID || recent[1].ID != older.ID {
		t.Errorf("Recent() order wrong: %+v", recent)
	}
}

func TestMissingEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	got, err := db.Latest(ctx, "https://www.linkedin.com/in/nobody/")
	if err != nil || got != nil {
		t.Errorf("Latest() = %v, %v, want nil, nil", got, err)
	}
	byID, err := db.GetByID(ctx, 999)
	if err != nil || byID != nil {
		t.Errorf("GetByID() = %v, %v, want nil, nil", byID, err)
	}
}

func TestSaveWithoutRecord(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	_, err := db.SaveExtraction(context.Background(), &model.Extraction{Source: "x"})
	if !errors.Is(err, ErrNoRecord) {
		t.Errorf("SaveExtraction() error = %v, want ErrNoRecord", err)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range 3 {
		if _, err := db.SaveExtraction(ctx, newExtraction(adaURL, "h", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	other := "https://www.linkedin.com/in/charles-babbage/"
	if _, err := db.SaveExtraction(ctx, newExtraction(other, "h", base)); err != nil {
		t.Fatal(err)
	}

	entries, err := db.History(ctx, adaURL)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("History() returned %d entries, want 3", len(entries))
	}
	if !entries[0].ExtractedAt.After(entries[2].ExtractedAt) {
		t.Error("History() should be newest first")
	}
	// headline and connection count and experience are filled.
	if entries[0].Completeness != 30 {
		t.Errorf("Completeness = %d, want 30", entries[0].Completeness)
	}

	profiles, err := db.ListProfiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{adaURL, other}, profiles); diff != "" {
		t.Errorf("ListProfiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryScoresStoredRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	empty := model.NewProfileRecord()
	empty.ProfileURL = adaURL
	id, err := db.SaveExtraction(ctx, &model.Extraction{Source: adaURL, Record: empty})
	if err != nil {
		t.Fatal(err)
	}

	filled := model.NewProfileRecord()
	filled.ProfileURL = adaURL
	filled.Headline = "Analyst"
	filled.Bio = "Notes on engines."
	filled.Location = "London"
	data, err := json.Marshal(filled)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.db.ExecContext(ctx, `UPDATE extractions SET record_json = ? WHERE id = ?`, string(data), id); err != nil {
		t.Fatal(err)
	}

	entries, err := db.History(ctx, adaURL)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	stored, err := db.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("History() returned %d entries, want 1", len(entries))
	}
	if got, want := entries[0].Completeness, stored.Record.Completeness(); got != want || got != 30 {
		t.Errorf("Completeness = %d, want %d from the stored record (30)", got, want)
	}
}

func TestSubmissions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	e := newExtraction(adaURL, "h", time.Now())
	if _, err := db.SaveExtraction(ctx, e); err != nil {
		t.Fatal(err)
	}

	first := &Submission{ExtractionID: e.ID, ProfileURL: adaURL, DestinationID: "c1", AckID: "p-1"}
	second := &Submission{ProfileURL: adaURL, DestinationID: "c2"}
	for _, s := range []*Submission{first, second} {
		if err := db.RecordSubmission(ctx, s); err != nil {
			t.Fatalf("RecordSubmission() error = %v", err)
		}
		if s.ID == 0 {
			t.Fatal("submission ID not set")
		}
	}

	got, err := db.Submissions(ctx, adaURL)
	if err != nil {
		t.Fatalf("Submissions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Submissions() returned %d, want 2", len(got))
	}
	byDest := map[string]Submission{}
	for _, s := range got {
		byDest[s.DestinationID] = s
	}
	if byDest["c1"].ExtractionID != e.ID || byDest["c1"].AckID != "p-1" {
		t.Errorf("c1 submission = %+v", byDest["c1"])
	}
	if byDest["c2"].ExtractionID != 0 || byDest["c2"].AckID != "" {
		t.Errorf("c2 submission = %+v", byDest["c2"])
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01 10:00:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:00:00.500000000Z", time.Date(2026, 3, 1, 10, 0, 0, 500000000, time.UTC)},
		{"not a time", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
