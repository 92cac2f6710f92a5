package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// ErrUnknownFormat is returned by ParseFormat and New for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown}

// ParseFormat resolves a user supplied format name. "md" is accepted as an
// alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Writer outputs command results.
type Writer interface {
	// WriteScore outputs a scoring run.
	WriteScore(result scoring.Result) (int, error)

	// WriteBad outputs the figures rejected by the label classifier.
	WriteBad(bad []pipeline.BadFigure) (int, error)

	// WritePredictions outputs the text read from a predicted mask.
	WritePredictions(preds []pipeline.Prediction) (int, error)
}

// New returns the writer for format.
func New(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// pairStatus is the one-word state of a scored list entry.
func pairStatus(d scoring.PairResult) string {
	if d.Scored {
		return "scored"
	}
	return "skipped"
}
