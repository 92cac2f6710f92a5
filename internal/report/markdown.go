package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// MarkdownWriter outputs results as GitHub-flavoured Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteScore implements Writer.
func (w *MarkdownWriter) WriteScore(r scoring.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Mask Accuracy Report")
	md.PlainText("")
	w.writeScoreAlert(md, r)

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Pairs", strconv.Itoa(r.Pairs)},
			{"Skipped", strconv.Itoa(r.Skipped)},
			{"True positives", strconv.FormatInt(r.TP, 10)},
			{"False positives", strconv.FormatInt(r.FP, 10)},
			{"False negatives", strconv.FormatInt(r.FN, 10)},
			{"Precision", r.Precision.String()},
			{"Recall", r.Recall.String()},
			{"F1 score", r.F1.String()},
		},
	})
	md.PlainText("")

	w.writeCountChart(md, r)
	w.writeDetails(md, r.Details)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeScoreAlert(md *markdown.Markdown, r scoring.Result) {
	switch {
	case r.Err() != nil:
		md.Cautionf("Some metrics are undefined: %v", r.Err())
	case r.Skipped > 0:
		md.Warningf("%d pair(s) were skipped because a mask could not be read.", r.Skipped)
	default:
		md.Note(fmt.Sprintf("All %d pair(s) were scored.", r.Pairs))
	}
	md.PlainText("")
}

// writeCountChart writes a mermaid pie chart of the pixel tallies.
func (w *MarkdownWriter) writeCountChart(md *markdown.Markdown, r scoring.Result) {
	if r.TP+r.FP+r.FN == 0 {
		return
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pixel Classification"),
		piechart.WithShowData(true),
	)
	if r.TP > 0 {
		chart.LabelAndIntValue("True positive", uint64(r.TP))
	}
	if r.FP > 0 {
		chart.LabelAndIntValue("False positive", uint64(r.FP))
	}
	if r.FN > 0 {
		chart.LabelAndIntValue("False negative", uint64(r.FN))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, details []scoring.PairResult) {
	if len(details) == 0 {
		return
	}
	md.H2("Pairs")
	md.PlainText("")

	rows := make([][]string, len(details))
	for i, d := range details {
		note := "-"
		if d.Error != "" {
			note = d.Error
		}
		rows[i] = []string{
			"`" + d.Prediction + "`",
			pairStatus(d),
			strconv.FormatInt(d.TP, 10),
			strconv.FormatInt(d.FP, 10),
			strconv.FormatInt(d.FN, 10),
			note,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Prediction", "Status", "TP", "FP", "FN", "Note"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteBad implements Writer.
func (w *MarkdownWriter) WriteBad(bad []pipeline.BadFigure) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Rejected Figures")
	md.PlainText("")
	if len(bad) == 0 {
		md.Tip("No figure was rejected.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(bad))
	for i, b := range bad {
		rows[i] = []string{"`" + b.ID + "`", b.Reason.Description()}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Figure", "Reason"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}

// WritePredictions implements Writer.
func (w *MarkdownWriter) WritePredictions(preds []pipeline.Prediction) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Recognized Text")
	md.PlainText("")

	rows := make([][]string, len(preds))
	for i, p := range preds {
		texts := make([]string, 4)
		for j := range texts {
			texts[j] = "-"
			if j < len(p.Texts) && oneLine(p.Texts[j]) != "" {
				texts[j] = oneLine(p.Texts[j])
			}
		}
		if p.Error != "" {
			texts[0] = "error: " + p.Error
		}
		rows[i] = append([]string{
			strconv.Itoa(i),
			fmt.Sprintf("(%.1f, %.1f)", p.Region.Center.X, p.Region.Center.Y),
			fmt.Sprintf("%.1f", p.Region.Angle),
		}, texts...)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Region", "Center", "Angle", "0°", "90°", "180°", "270°"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}
