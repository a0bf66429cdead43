package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/prospector/internal/model"
)

// JSONWriter outputs extractions in JSON format.
//
// By default each extraction is wrapped in a JSONReport carrying its
// metadata and completeness. WithRecordOnly writes the bare record, which
// is exactly the body the catalog service accepts.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
	recordOnly   bool
	version      string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithRecordOnly writes only the profile record.
func WithRecordOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.recordOnly = true
	}
}

// WithVersion stamps wrapped reports with the producing version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one extraction.
func (w *JSONWriter) Write(extraction *model.Extraction) (int, error) {
	if w.recordOnly {
		return w.writeJSON(extraction.Record)
	}
	return w.writeJSON(NewJSONReport(extraction, w.version))
}

// WriteAll outputs the batch as a single JSON array.
func (w *JSONWriter) WriteAll(extractions []*model.Extraction) (int, error) {
	if w.recordOnly {
		records := make([]*model.ProfileRecord, 0, len(extractions))
		for _, e := range extractions {
			records = append(records, e.Record)
		}
		return w.writeJSON(records)
	}

	reports := make([]*JSONReport, 0, len(extractions))
	for _, e := range extractions {
		reports = append(reports, NewJSONReport(e, w.version))
	}
	return w.writeJSON(reports)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a record with the metadata of its extraction.
// Completeness is computed when the report is built; it is not stored on
// the record.
type JSONReport struct {
	Version      string                    `json:"version,omitempty"`
	Source       string                    `json:"source"`
	ExtractedAt  time.Time                 `json:"extractedAt"`
	ElapsedMS    int64                     `json:"elapsedMs"`
	Steps        []string                  `json:"steps,omitempty"`
	Completeness int                       `json:"completeness"`
	Missing      []model.CompletenessField `json:"missing,omitempty"`
	Record       *model.ProfileRecord      `json:"record"`
	Error        string                    `json:"error,omitempty"`
}

// NewJSONReport builds the wrapped form of an extraction.
func NewJSONReport(e *model.Extraction, version string) *JSONReport {
	r := &JSONReport{
		Version:     version,
		Source:      e.Source,
		ExtractedAt: e.ExtractedAt,
		ElapsedMS:   e.Elapsed.Milliseconds(),
		Steps:       e.Steps,
		Record:      e.Record,
		Error:       e.ErrorMessage,
	}
	if e.Record != nil {
		r.Completeness = e.Record.Completeness()
		r.Missing = e.Record.MissingFields()
	}
	return r
}
