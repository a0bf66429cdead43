package report

import (
	"strings"
	"testing"

	"github.com/nao1215/prospector/internal/catalog"
	"github.com/nao1215/prospector/internal/model"
)

func TestRenderView(t *testing.T) {
	t.Parallel()

	record := createTestExtraction().Record
	dests := []catalog.Destination{
		{ID: "c1", Name: "Founders", Count: 12},
		{ID: "c2", Name: "Engineers", Count: 3},
	}

	tests := []struct {
		name string
		view View
		want []string
	}{
		{
			name: "not a profile",
			view: View{Phase: PhaseNotProfile, Location: "https://example.com/"},
			want: []string{"Not a profile page: https://example.com/"},
		},
		{
			name: "not authenticated",
			view: View{Phase: PhaseNotAuthenticated},
			want: []string{"Not signed in"},
		},
		{
			name: "loading",
			view: View{Phase: PhaseLoading},
			want: []string{"Loading..."},
		},
		{
			name: "ready lists destinations with counts",
			view: View{Phase: PhaseReady, Record: record, Destinations: dests, Selected: "c2"},
			want: []string{
				"Ada Lovelace",
				"Analyst - Analytical Engines Ltd",
				"Completeness [########--] 80%",
				"   c1  Founders (12)",
				" * c2  Engineers (3)",
			},
		},
		{
			name: "ready without destinations",
			view: View{Phase: PhaseReady, Record: record},
			want: []string{"(none)"},
		},
		{
			name: "submitted names the destination",
			view: View{Phase: PhaseSubmitted, Destinations: dests, Selected: "c1"},
			want: []string{"Prospect added to Founders."},
		},
		{
			name: "failed with default message",
			view: View{Phase: PhaseFailed},
			want: []string{"Error: " + DefaultFailureMessage},
		},
		{
			name: "failed with message",
			view: View{Phase: PhaseFailed, Message: "catalog unreachable"},
			want: []string{"Error: catalog unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RenderView(tt.view)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("RenderView() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestRenderViewIsPure(t *testing.T) {
	t.Parallel()

	r := model.NewProfileRecord()
	v := View{Phase: PhaseReady, Record: r}
	if RenderView(v) != RenderView(v) {
		t.Error("RenderView should be deterministic")
	}
	if r.FirstName != "" || len(r.RecentPosts) != 0 {
		t.Error("RenderView must not modify the record")
	}
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	if got := PhaseNotAuthenticated.String(); got != "not_authenticated" {
		t.Errorf("String() = %q", got)
	}
	if got := Phase(0).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}

func TestBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  int
		want string
	}{
		{0, "[----------]"},
		{50, "[#####-----]"},
		{100, "[##########]"},
		{140, "[##########]"},
		{-5, "[----------]"},
	}
	for _, tt := range tests {
		if got := Bar(tt.pct, 10); got != tt.want {
			t.Errorf("Bar(%d) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
