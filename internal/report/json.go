package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/hotellens/internal/model"
)

// JSONWriter outputs the SearchResponse document, the same shape the
// HTTP API serves.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
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

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs report.Response as JSON.
func (w *JSONWriter) Write(report *Report) (int, error) {
	return w.writeJSON(report.Response)
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

// JSONReport wraps a response with the query and tool version, for
// reports saved to disk.
type JSONReport struct {
	Version  string                `json:"version"`
	Query    model.SearchParams    `json:"query"`
	City     string                `json:"city,omitempty"`
	Response *model.SearchResponse `json:"response"`
}

// FullJSONWriter outputs reports with the JSONReport wrapper.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the wrapped report.
func (w *FullJSONWriter) Write(report *Report) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:  w.version,
		Query:    report.Params,
		City:     report.City,
		Response: report.Response,
	})
}
