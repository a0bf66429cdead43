package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/prospector/internal/model"
)

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have no values.
	showEmpty bool

	// verbose adds post excerpts and pass metadata.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one extraction.
func (w *SimpleWriter) Write(extraction *model.Extraction) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, extraction)
	if r := extraction.Record; r != nil {
		w.writeProfile(&sb, r)
		w.writeExperience(&sb, r)
		w.writeList(&sb, "EDUCATION", r.Education)
		w.writeList(&sb, "SKILLS", r.SkillList())
		w.writeList(&sb, "LANGUAGES", r.LanguageList())
		w.writePosts(&sb, r)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteAll outputs each extraction in order.
func (w *SimpleWriter) WriteAll(extractions []*model.Extraction) (int, error) {
	return writeEach(extractions, w.Write)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, e *model.Extraction) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        PROSPECTOR PROFILE\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source:       %s\n", e.Source))
	sb.WriteString(fmt.Sprintf("Extracted:    %s\n", e.ExtractedAt.Format("2006-01-02 15:04:05 MST")))
	if w.verbose {
		sb.WriteString(fmt.Sprintf("Elapsed:      %s\n", e.Elapsed.Round(time.Millisecond)))
		sb.WriteString(fmt.Sprintf("Steps:        %s\n", strings.Join(e.Steps, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Status:       %s\n", status(e)))
	if e.Record != nil {
		sb.WriteString(fmt.Sprintf("Completeness: %d%%\n", e.Record.Completeness()))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeProfile(sb *strings.Builder, r *model.ProfileRecord) {
	w.writeSection(sb, "PROFILE")

	connections := "-"
	if r.ConnectionCount != nil {
		connections = fmt.Sprintf("%d", *r.ConnectionCount)
	}

	sb.WriteString(fmt.Sprintf("  Name:        %s\n", orDash(r.FullName())))
	sb.WriteString(fmt.Sprintf("  URL:         %s\n", orDash(r.ProfileURL)))
	sb.WriteString(fmt.Sprintf("  Headline:    %s\n", orDash(r.Headline)))
	sb.WriteString(fmt.Sprintf("  Role:        %s\n", orDash(r.CurrentRole())))
	sb.WriteString(fmt.Sprintf("  Location:    %s\n", orDash(r.Location)))
	sb.WriteString(fmt.Sprintf("  Connections: %s\n", connections))
	if r.Bio != "" || w.showEmpty {
		sb.WriteString(fmt.Sprintf("  Bio:         %s\n", orDash(r.Bio)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeExperience(sb *strings.Builder, r *model.ProfileRecord) {
	if len(r.PastExperiences) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, "EXPERIENCE")

	if len(r.PastExperiences) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, exp := range r.PastExperiences {
		sb.WriteString(fmt.Sprintf("  * %s\n", exp.Title))
		if exp.Company != "" {
			sb.WriteString(fmt.Sprintf("    Company:  %s\n", exp.Company))
		}
		if exp.Duration != "" {
			sb.WriteString(fmt.Sprintf("    Duration: %s\n", exp.Duration))
		}
		if exp.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", exp.Location))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title string, values []string) {
	if len(values) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, title)

	if len(values) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, v := range values {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", v))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePosts(sb *strings.Builder, r *model.ProfileRecord) {
	if len(r.RecentPosts) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, "RECENT POSTS")

	if len(r.RecentPosts) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for i, p := range r.RecentPosts {
		content := p.Content
		if !w.verbose {
			content = truncateString(content, 80)
		}
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, content))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
