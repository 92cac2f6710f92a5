package report

import (
	"encoding/json"
	"io"

	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// JSONWriter outputs results as JSON.
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

// WriteScore implements Writer.
func (w *JSONWriter) WriteScore(r scoring.Result) (int, error) {
	return w.writeJSON(r)
}

// WriteBad implements Writer. A nil slice is written as an empty array.
func (w *JSONWriter) WriteBad(bad []pipeline.BadFigure) (int, error) {
	if bad == nil {
		bad = []pipeline.BadFigure{}
	}
	return w.writeJSON(bad)
}

// WritePredictions implements Writer.
func (w *JSONWriter) WritePredictions(preds []pipeline.Prediction) (int, error) {
	if preds == nil {
		preds = []pipeline.Prediction{}
	}
	return w.writeJSON(preds)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
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
