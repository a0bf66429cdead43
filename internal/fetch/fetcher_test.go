package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/prospector/internal/dom"
)

const profilePage = `<html><body>
<h1>Ada Lovelace</h1>
<a id="activity" href="/in/ada/recent-activity/all/">Activity</a>
</body></html>`

const activityPage = `<html><body><div class="feed"><p>first post</p></div></body></html>`

func newProfileServer(t *testing.T, seen *http.Header) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/in/ada/", func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.Header.Clone()
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(profilePage))
	})
	mux.HandleFunc("/in/ada/recent-activity/all/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(activityPage))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/in/ada/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherLoad(t *testing.T) {
	t.Parallel()

	t.Run("sends session cookie and headers", func(t *testing.T) {
		t.Parallel()

		var seen http.Header
		srv := newProfileServer(t, &seen)
		f := New(
			WithCookie("li_at=abc; JSESSIONID=xyz"),
			WithHeaders(map[string]string{"Accept-Language": "fr-FR"}),
			WithTimeout(5*time.Second),
		)

		doc, err := f.Load(context.Background(), srv.URL+"/in/ada/")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := dom.Text(doc.Find("h1")); got != "Ada Lovelace" {
			t.Errorf("h1 = %q, want %q", got, "Ada Lovelace")
		}
		if got := seen.Get("Cookie"); got != "li_at=abc; JSESSIONID=xyz" {
			t.Errorf("Cookie = %q", got)
		}
		if got := seen.Get("Accept-Language"); got != "fr-FR" {
			t.Errorf("Accept-Language = %q", got)
		}
		if got := seen.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q", got)
		}
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// "Zoé" in Latin-1.
			_, _ = w.Write([]byte("<html><body><h1>Zo\xe9</h1></body></html>"))
		}))
		t.Cleanup(srv.Close)

		doc, err := New().Load(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := dom.Text(doc.Find("h1")); got != "Zoé" {
			t.Errorf("h1 = %q, want %q", got, "Zoé")
		}
	})

	t.Run("non-success status", func(t *testing.T) {
		t.Parallel()

		srv := newProfileServer(t, nil)
		_, err := New().Load(context.Background(), srv.URL+"/missing")
		if !errors.Is(err, ErrStatus) {
			t.Fatalf("Load() error = %v, want ErrStatus", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		if _, err := New().Load(context.Background(), url); err == nil {
			t.Fatal("Load() expected error for closed server")
		}
	})
}

func TestFetcherOpen(t *testing.T) {
	t.Parallel()

	t.Run("location follows redirects", func(t *testing.T) {
		t.Parallel()

		srv := newProfileServer(t, nil)
		src, err := New().Open(context.Background(), srv.URL+"/old")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		loc, err := src.Location(context.Background())
		if err != nil {
			t.Fatalf("Location() error = %v", err)
		}
		if want := srv.URL + "/in/ada/"; loc != want {
			t.Errorf("Location() = %q, want %q", loc, want)
		}
	})

	t.Run("follow and back go through the fetcher", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		srv := newProfileServer(t, nil)
		src, err := New().Open(ctx, srv.URL+"/in/ada/")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		ok, err := src.Follow(ctx, "#activity")
		if err != nil || !ok {
			t.Fatalf("Follow() = %v, %v, want true, nil", ok, err)
		}
		doc, err := src.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if got := dom.Text(doc.Find(".feed p")); got != "first post" {
			t.Errorf("feed text = %q", got)
		}

		if err := src.Back(ctx); err != nil {
			t.Fatalf("Back() error = %v", err)
		}
		loc, _ := src.Location(ctx)
		if want := srv.URL + "/in/ada/"; loc != want {
			t.Errorf("Location() after Back = %q, want %q", loc, want)
		}
	})
}
