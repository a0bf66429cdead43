package report

import (
	"io"

	"github.com/nao1215/prospector/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one extraction.
	// Returns the number of bytes written and any error encountered.
	Write(extraction *model.Extraction) (int, error)

	// WriteAll outputs a batch of extractions in order.
	WriteAll(extractions []*model.Extraction) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the extraction to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(extraction *model.Extraction) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(extraction)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the batch to all configured Writers.
func (m *MultiWriter) WriteAll(extractions []*model.Extraction) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(extractions)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// writeEach calls write for every extraction, summing bytes.
func writeEach(extractions []*model.Extraction, write func(*model.Extraction) (int, error)) (int, error) {
	var total int
	for _, e := range extractions {
		n, err := write(e)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// status summarizes how an extraction ended.
func status(e *model.Extraction) string {
	switch {
	case e.ErrorMessage != "":
		return "Failed - " + e.ErrorMessage
	case e.Record == nil:
		return "No record"
	default:
		return "Complete"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
