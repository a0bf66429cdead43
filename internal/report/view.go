package report

import (
	"fmt"
	"strings"

	"github.com/nao1215/prospector/internal/catalog"
	"github.com/nao1215/prospector/internal/model"
)

// Phase is the display state of the catalog submission flow.
type Phase int

const (
	// PhaseNotProfile means the current location is not a profile page.
	PhaseNotProfile Phase = iota + 1
	// PhaseNotAuthenticated means the catalog rejected the credentials.
	PhaseNotAuthenticated
	// PhaseLoading means destinations or the record are being fetched.
	PhaseLoading
	// PhaseReady means a record and destinations are available.
	PhaseReady
	// PhaseSubmitted means the record was accepted by the catalog.
	PhaseSubmitted
	// PhaseFailed means the flow stopped on an error.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotProfile:
		return "not_profile"
	case PhaseNotAuthenticated:
		return "not_authenticated"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSubmitted:
		return "submitted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultFailureMessage is shown for a failed phase without a message.
const DefaultFailureMessage = "Something went wrong."

// View is everything needed to render one phase.
type View struct {
	Phase        Phase
	Location     string
	Record       *model.ProfileRecord
	Destinations []catalog.Destination
	// Selected is the destination ID chosen for submission.
	Selected string
	Message  string
}

// RenderView renders v as text. It has no side effects.
func RenderView(v View) string {
	var sb strings.Builder

	switch v.Phase {
	case PhaseNotProfile:
		sb.WriteString("Not a profile page")
		if v.Location != "" {
			sb.WriteString(": " + v.Location)
		}
		sb.WriteString("\nOpen a profile (linkedin.com/in/...) and try again.\n")
	case PhaseNotAuthenticated:
		sb.WriteString("Not signed in to the catalog.\n")
		sb.WriteString("Set catalog.token in .prospector and try again.\n")
	case PhaseLoading:
		sb.WriteString("Loading...\n")
	case PhaseReady:
		renderReady(&sb, v)
	case PhaseSubmitted:
		sb.WriteString("Prospect added")
		if name := destinationName(v.Destinations, v.Selected); name != "" {
			sb.WriteString(" to " + name)
		}
		sb.WriteString(".\n")
	case PhaseFailed:
		msg := v.Message
		if msg == "" {
			msg = DefaultFailureMessage
		}
		sb.WriteString("Error: " + msg + "\n")
	default:
		sb.WriteString("Unknown state.\n")
	}

	return sb.String()
}

func renderReady(sb *strings.Builder, v View) {
	r := v.Record
	if r == nil {
		r = model.NewProfileRecord()
	}

	sb.WriteString(orDash(r.FullName()))
	sb.WriteString("\n")
	if r.Headline != "" {
		sb.WriteString(r.Headline + "\n")
	}
	if role := r.CurrentRole(); role != "" {
		sb.WriteString(role + "\n")
	}
	sb.WriteString(fmt.Sprintf("Completeness %s %d%%\n", Bar(r.Completeness(), 10), r.Completeness()))

	sb.WriteString("\nCampaigns:\n")
	if len(v.Destinations) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, d := range v.Destinations {
		marker := " "
		if d.ID == v.Selected {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf(" %s %s  %s (%d)\n", marker, d.ID, d.Name, d.Count))
	}
}

// Bar draws pct as a bar of width cells.
func Bar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := (pct*width + 50) / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func destinationName(dests []catalog.Destination, id string) string {
	for _, d := range dests {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}
