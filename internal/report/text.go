package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// TextWriter outputs plain text for terminal display.
type TextWriter struct {
	baseWriter

	// details adds one line per list entry to score output.
	details bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithDetails includes per-pair lines in score output.
func WithDetails(details bool) TextWriterOption {
	return func(w *TextWriter) {
		w.details = details
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScore implements Writer.
func (w *TextWriter) WriteScore(r scoring.Result) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Pairs:     %d", r.Pairs)
	if r.Skipped > 0 {
		fmt.Fprintf(&sb, " (%d skipped)", r.Skipped)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Counts:    TP=%d FP=%d FN=%d\n", r.TP, r.FP, r.FN)
	fmt.Fprintf(&sb, "Precision: %s\n", r.Precision)
	fmt.Fprintf(&sb, "Recall:    %s\n", r.Recall)
	fmt.Fprintf(&sb, "F1 score:  %s\n", r.F1)

	if w.details && len(r.Details) > 0 {
		sb.WriteString("\n")
		for _, d := range r.Details {
			if d.Scored {
				fmt.Fprintf(&sb, "%-7s %s TP=%d FP=%d FN=%d\n", pairStatus(d), d.Prediction, d.TP, d.FP, d.FN)
				continue
			}
			fmt.Fprintf(&sb, "%-7s %s: %s\n", pairStatus(d), d.Prediction, d.Error)
		}
	}

	return io.WriteString(w.output, sb.String())
}

// WriteBad implements Writer. Each identifier is printed on its own line.
func (w *TextWriter) WriteBad(bad []pipeline.BadFigure) (int, error) {
	var sb strings.Builder
	for _, b := range bad {
		sb.WriteString(b.ID)
		sb.WriteString("\n")
	}
	return io.WriteString(w.output, sb.String())
}

// WritePredictions implements Writer.
func (w *TextWriter) WritePredictions(preds []pipeline.Prediction) (int, error) {
	var sb strings.Builder
	for i, p := range preds {
		r := p.Region
		fmt.Fprintf(&sb, "region %d: center=(%.1f,%.1f) size=%.1fx%.1f angle=%.1f\n",
			i, r.Center.X, r.Center.Y, r.Width, r.Height, r.Angle)
		if p.Error != "" {
			fmt.Fprintf(&sb, "  error: %s\n", p.Error)
			continue
		}
		for j, text := range p.Texts {
			fmt.Fprintf(&sb, "  %3d°: %s\n", j*90, oneLine(text))
		}
	}
	return io.WriteString(w.output, sb.String())
}

// oneLine collapses whitespace so multi-line OCR output stays on one row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
