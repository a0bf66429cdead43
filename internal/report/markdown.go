package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/prospector/internal/model"
)

// MarkdownWriter outputs extractions in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one extraction as a Markdown document.
func (w *MarkdownWriter) Write(extraction *model.Extraction) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, extraction)
	if r := extraction.Record; r != nil {
		w.writeCompleteness(md, r)
		w.writeIdentity(md, r)
		w.writeAbout(md, r)
		w.writeExperience(md, r)
		w.writeLists(md, r)
		w.writePosts(md, r)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs each extraction as its own document, one after another.
func (w *MarkdownWriter) WriteAll(extractions []*model.Extraction) (int, error) {
	return writeEach(extractions, w.Write)
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, e *model.Extraction) {
	title := "Profile Extraction"
	if e.Record != nil && e.Record.FullName() != "" {
		title = e.Record.FullName()
	}
	md.H1(title)
	md.PlainText("")

	profileURL := ""
	if e.Record != nil {
		profileURL = e.Record.ProfileURL
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + e.Source + "`"},
			{"Profile", orDash(profileURL)},
			{"Extracted", e.ExtractedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", e.Elapsed.Round(time.Millisecond).String()},
			{"Status", status(e)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCompleteness(md *markdown.Markdown, r *model.ProfileRecord) {
	md.H2("Completeness")
	md.PlainText("")

	score := r.Completeness()
	missing := r.MissingFields()
	filled := len(model.CompletenessFields()) - len(missing)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Optional Fields"),
		piechart.WithShowData(true),
	)
	if filled > 0 {
		chart.LabelAndIntValue("Filled", uint64(filled))
	}
	if len(missing) > 0 {
		chart.LabelAndIntValue("Missing", uint64(len(missing)))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	switch {
	case score == 100:
		md.Tip("Every optional field was extracted.")
	case score >= 50:
		md.Importantf("Completeness %d%%. Missing: %s.", score, joinFields(missing))
	default:
		md.Warningf("Completeness %d%%. Missing: %s.", score, joinFields(missing))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeIdentity(md *markdown.Markdown, r *model.ProfileRecord) {
	md.H2("Profile")
	md.PlainText("")

	connections := "-"
	if r.ConnectionCount != nil {
		connections = strconv.Itoa(*r.ConnectionCount)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Headline", orDash(r.Headline)},
			{"Current role", orDash(r.CurrentRole())},
			{"Location", orDash(r.Location)},
			{"Photo", orDash(r.ProfilePhotoURL)},
			{"Connections", connections},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAbout(md *markdown.Markdown, r *model.ProfileRecord) {
	if r.Bio == "" {
		return
	}
	md.H2("About")
	md.PlainText("")
	md.PlainText(r.Bio)
	md.PlainText("")
}

func (w *MarkdownWriter) writeExperience(md *markdown.Markdown, r *model.ProfileRecord) {
	md.H2("Experience")
	md.PlainText("")

	if len(r.PastExperiences) == 0 {
		md.PlainText("No experience found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.PastExperiences))
	for i, exp := range r.PastExperiences {
		rows[i] = []string{
			exp.Title,
			orDash(exp.Company),
			orDash(exp.Duration),
			orDash(exp.Location),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Company", "Duration", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeLists(md *markdown.Markdown, r *model.ProfileRecord) {
	lists := []struct {
		title  string
		values []string
	}{
		{"Education", r.Education},
		{"Skills", r.SkillList()},
		{"Languages", r.LanguageList()},
	}

	for _, l := range lists {
		if len(l.values) == 0 {
			continue
		}
		md.H2(l.title)
		md.PlainText("")
		md.BulletList(l.values...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writePosts(md *markdown.Markdown, r *model.ProfileRecord) {
	if len(r.RecentPosts) == 0 {
		return
	}
	md.H2("Recent Posts")
	md.PlainText("")
	for i, p := range r.RecentPosts {
		md.Details("Post "+strconv.Itoa(i+1), p.Content)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [prospector](https://github.com/nao1215/prospector)*")
}

func joinFields(fields []model.CompletenessField) string {
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = string(f)
	}
	return model.JoinList(values)
}
