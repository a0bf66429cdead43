package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/prospector/internal/catalog"
	"github.com/nao1215/prospector/internal/config"
	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/pipeline"
	"github.com/nao1215/prospector/internal/report"
)

// fakeCatalog serves the two catalog endpoints and records submissions.
type fakeCatalog struct {
	mu        sync.Mutex
	submitted []map[string]any

	campaignsStatus int
	submitStatus    int
	submitError     string
}

func (c *fakeCatalog) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/campaigns", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.campaignsStatus != 0 {
			w.WriteHeader(c.campaignsStatus)
			_, _ = w.Write([]byte(`{"error":"Non autorisé"}`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"id": 12, "name": "Founders", "_count": {"prospects": 3}},
			{"id": "c-7", "name": "Engineers", "_count": {"prospects": 0}}
		]`))
	})
	mux.HandleFunc("POST /api/prospects/from-extension", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.submitted = append(c.submitted, body)
		c.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if c.submitStatus != 0 {
			w.WriteHeader(c.submitStatus)
			_, _ = w.Write([]byte(`{"error":"` + c.submitError + `"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (c *fakeCatalog) submissions() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

func pushArgs(t *testing.T, srv *httptest.Server, dbDir string, extra ...string) []string {
	t.Helper()
	args := []string{"push", "-c", emptyConfig(t), "--no-posts", "--catalog-url", srv.URL, "--db-dir", dbDir}
	return append(args, extra...)
}

func TestRunPushCmd(t *testing.T) {
	t.Run("submits the record to the campaign", func(t *testing.T) {
		fc := &fakeCatalog{}
		srv := fc.start(t)
		dbDir := t.TempDir()

		out, err := execute(t, pushArgs(t, srv, dbDir, "--campaign", "12", adaProfile)...)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}
		for _, want := range []string{"Ada King Lovelace", "Completeness", "Founders", "Prospect added to Founders."} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}

		subs := fc.submissions()
		if len(subs) != 1 {
			t.Fatalf("expected 1 submission, got %d", len(subs))
		}
		if subs[0]["campaignId"] != "12" || subs[0]["firstName"] != "Ada" || subs[0]["linkedinUrl"] != adaURL {
			t.Errorf("unexpected submission body: %v", subs[0])
		}

		history, err := execute(t, "history", "-c", emptyConfig(t), "--db-dir", dbDir, adaURL)
		if err != nil {
			t.Fatalf("history: unexpected error: %v", err)
		}
		if !strings.Contains(history, "campaign 12") || !strings.Contains(history, "(prospect 42)") {
			t.Errorf("expected the submission in the history\n%s", history)
		}
	})

	t.Run("stops after listing without a campaign", func(t *testing.T) {
		fc := &fakeCatalog{}
		srv := fc.start(t)

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), adaProfile)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Use --campaign <id>") {
			t.Errorf("expected a campaign hint\n%s", out)
		}
		if len(fc.submissions()) != 0 {
			t.Error("expected no submission")
		}
	})

	t.Run("not a profile page", func(t *testing.T) {
		fc := &fakeCatalog{}
		srv := fc.start(t)

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), "--campaign", "12", feedPage)...)
		if !errors.Is(err, errNotProfile) {
			t.Fatalf("expected errNotProfile, got %v", err)
		}
		if !strings.Contains(out, "Not a profile page: https://www.linkedin.com/feed/") {
			t.Errorf("unexpected output\n%s", out)
		}
	})

	t.Run("catalog rejects the credentials", func(t *testing.T) {
		fc := &fakeCatalog{campaignsStatus: http.StatusForbidden}
		srv := fc.start(t)

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), "--campaign", "12", adaProfile)...)
		if !errors.Is(err, catalog.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if !strings.Contains(out, "Not signed in to the catalog.") {
			t.Errorf("unexpected output\n%s", out)
		}
	})

	t.Run("unknown campaign", func(t *testing.T) {
		fc := &fakeCatalog{}
		srv := fc.start(t)

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), "--campaign", "99", adaProfile)...)
		if !errors.Is(err, errUnknownCampaign) {
			t.Fatalf("expected errUnknownCampaign, got %v", err)
		}
		if !strings.Contains(out, "Error: unknown campaign: 99") {
			t.Errorf("unexpected output\n%s", out)
		}
		if len(fc.submissions()) != 0 {
			t.Error("expected no submission")
		}
	})

	t.Run("catalog refuses the submission", func(t *testing.T) {
		fc := &fakeCatalog{submitStatus: http.StatusConflict, submitError: "Prospect already exists"}
		srv := fc.start(t)

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), "--campaign", "c-7", adaProfile)...)
		var apiErr *catalog.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
			t.Fatalf("expected a 409 APIError, got %v", err)
		}
		if !strings.Contains(out, "Error: Prospect already exists") {
			t.Errorf("unexpected output\n%s", out)
		}
		if len(fc.submissions()) != 1 {
			t.Errorf("expected exactly one attempt, got %d", len(fc.submissions()))
		}
	})

	t.Run("unreachable catalog", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		out, err := execute(t, pushArgs(t, srv, t.TempDir(), "--campaign", "12", adaProfile)...)
		if !errors.Is(err, catalog.ErrUnreachable) {
			t.Fatalf("expected ErrUnreachable, got %v", err)
		}
		if !strings.Contains(out, "Catalog unreachable") {
			t.Errorf("unexpected output\n%s", out)
		}
	})
}

// flakySource reports a failed reload.
type flakySource struct {
	*dom.Static
	reloadErr error
	reloads   int
}

func (f *flakySource) Reload(context.Context) error {
	f.reloads++
	return f.reloadErr
}

func TestSourcesReestablish(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.NewConfig()
	cfg.Source = config.SourceFile
	srcs := newSources(cfg, logger)

	t.Run("reloads a live page in place", func(t *testing.T) {
		t.Parallel()

		page := &flakySource{}
		got, err := srcs.reestablish(context.Background(), page, adaProfile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != dom.Source(page) || page.reloads != 1 {
			t.Errorf("expected the same page reloaded once, got %T after %d reloads", got, page.reloads)
		}
	})

	t.Run("reopens when the reload fails", func(t *testing.T) {
		t.Parallel()

		page := &flakySource{reloadErr: errors.New("target closed")}
		got, err := srcs.reestablish(context.Background(), page, adaProfile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := got.(*dom.Static); !ok {
			t.Errorf("expected a reopened static source, got %T", got)
		}
	})
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unreachable", catalog.ErrUnreachable, "Catalog unreachable. Check catalog.url and try again."},
		{"api error", &catalog.APIError{Status: 500, Message: "Campaign is archived"}, "Campaign is archived"},
		{"source", pipeline.ErrSourceUnavailable, "Could not read the page. Reload it and try again."},
		{"other", errors.New("boom"), report.DefaultFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := failureMessage(tt.err); got != tt.want {
				t.Errorf("failureMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
