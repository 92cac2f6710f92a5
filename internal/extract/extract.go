// Package extract runs the external figure extractor over a PDF and splits
// its output into per-figure records.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/chartmask/internal/command"
	"github.com/ironsheep/chartmask/internal/figure"
)

// Record is one figure found by the extractor. Raw holds the entry exactly
// as emitted, Figure its decoded form. Err is set when the entry is
// malformed; such records keep their Index so that names stay stable.
type Record struct {
	Index  int
	Raw    json.RawMessage
	Figure figure.Figure
	Err    error
}

// Extractor finds the figures of a PDF. outPrefix names the extractor's
// intermediate output; it is removed before Extract returns.
type Extractor interface {
	Extract(ctx context.Context, pdfPath, outPrefix string) ([]Record, error)
}

// Pdffigures extracts figures with the pdffigures tool, which writes all
// figures of a document as one JSON array to "<prefix>.json".
type Pdffigures struct {
	// Binary is the pdffigures executable. Empty means "pdffigures" on PATH.
	Binary string

	// Run executes the tool. Nil means command.Exec.
	Run command.Runner

	Logger *slog.Logger
}

// Extract implements Extractor. A document without figures, for which
// pdffigures writes no JSON file, yields no records and no error.
func (p *Pdffigures) Extract(ctx context.Context, pdfPath, outPrefix string) ([]Record, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdffigures"
	}
	run := p.Run
	if run == nil {
		run = command.Exec
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("running figure extractor", "pdf", pdfPath)
	if err := run(ctx, bin, "-j", outPrefix, pdfPath); err != nil {
		return nil, err
	}

	jsonPath := outPrefix + ".json"
	data, err := os.ReadFile(jsonPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("extractor found no figures", "pdf", pdfPath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extractor output: %w", err)
	}
	defer os.Remove(jsonPath)

	records, err := Split(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("found figures", "pdf", pdfPath, "count", len(records))
	return records, nil
}

// Split decodes a pdffigures JSON array into records. Only a document that
// is not a JSON array is an error; malformed entries are reported per
// record.
func Split(data []byte) ([]Record, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: extractor output: %v", figure.ErrMalformedRecord, err)
	}

	records := make([]Record, len(raws))
	for i, raw := range raws {
		fig, err := figure.Decode(raw)
		records[i] = Record{Index: i, Raw: raw, Figure: fig, Err: err}
	}
	return records, nil
}
