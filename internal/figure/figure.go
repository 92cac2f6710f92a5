// Package figure models the per-figure records produced by the external
// figure extractor and the file names derived from them.
package figure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/chartmask/internal/geometry"
)

// ErrMalformedRecord is returned when a figure record is not valid JSON or
// lacks a required field. It is fatal for that figure only.
var ErrMalformedRecord = errors.New("malformed figure record")

// TextBox is one text bounding box inside a figure.
type TextBox struct {
	TextBB geometry.Rect `json:"TextBB"`

	// Text is attached by the extractor when available. The core ignores it.
	Text string `json:"Text,omitempty"`
}

// Figure is one extracted figure: its own bounds, the text boxes inside it
// and the (1-based) page it was found on.
type Figure struct {
	Page      int           `json:"Page"`
	ImageBB   geometry.Rect `json:"ImageBB"`
	ImageText []TextBox     `json:"ImageText"`

	// Passthrough fields emitted by pdffigures. They are preserved when a
	// record is re-encoded but never consulted.
	Caption string  `json:"Caption,omitempty"`
	Number  int     `json:"Number,omitempty"`
	Type    string  `json:"Type,omitempty"`
	DPI     float64 `json:"DPI,omitempty"`
}

// rawFigure distinguishes absent fields from zero values during decoding.
type rawFigure struct {
	Page      *int               `json:"Page"`
	ImageBB   *geometry.Rect     `json:"ImageBB"`
	ImageText *[]json.RawMessage `json:"ImageText"`
	Caption   string             `json:"Caption"`
	Number    int                `json:"Number"`
	Type      string             `json:"Type"`
	DPI       float64            `json:"DPI"`
}

// Decode parses one figure record. A missing or non-positive Page, missing
// ImageBB or ImageText, text boxes without a four-element TextBB and
// unordered rectangles all wrap ErrMalformedRecord.
func Decode(data []byte) (Figure, error) {
	var raw rawFigure
	if err := json.Unmarshal(data, &raw); err != nil {
		return Figure{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return raw.validate()
}

func (raw rawFigure) validate() (Figure, error) {
	if raw.Page == nil {
		return Figure{}, fmt.Errorf("%w: missing Page", ErrMalformedRecord)
	}
	if *raw.Page < 1 {
		return Figure{}, fmt.Errorf("%w: page %d is not 1-based", ErrMalformedRecord, *raw.Page)
	}
	if raw.ImageBB == nil {
		return Figure{}, fmt.Errorf("%w: missing ImageBB", ErrMalformedRecord)
	}
	if !raw.ImageBB.Valid() {
		return Figure{}, fmt.Errorf("%w: invalid ImageBB %v", ErrMalformedRecord, *raw.ImageBB)
	}
	if raw.ImageText == nil {
		return Figure{}, fmt.Errorf("%w: missing ImageText", ErrMalformedRecord)
	}

	fig := Figure{
		Page:      *raw.Page,
		ImageBB:   *raw.ImageBB,
		ImageText: make([]TextBox, 0, len(*raw.ImageText)),
		Caption:   raw.Caption,
		Number:    raw.Number,
		Type:      raw.Type,
		DPI:       raw.DPI,
	}
	for i, msg := range *raw.ImageText {
		var tb struct {
			TextBB *geometry.Rect `json:"TextBB"`
			Text   string         `json:"Text"`
		}
		if err := json.Unmarshal(msg, &tb); err != nil {
			return Figure{}, fmt.Errorf("%w: text box %d: %v", ErrMalformedRecord, i, err)
		}
		if tb.TextBB == nil {
			return Figure{}, fmt.Errorf("%w: text box %d missing TextBB", ErrMalformedRecord, i)
		}
		if !tb.TextBB.Valid() {
			return Figure{}, fmt.Errorf("%w: text box %d invalid TextBB %v", ErrMalformedRecord, i, *tb.TextBB)
		}
		fig.ImageText = append(fig.ImageText, TextBox{TextBB: *tb.TextBB, Text: tb.Text})
	}

	return fig, nil
}

// Read decodes a single figure record from r.
func Read(r io.Reader) (Figure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Figure{}, fmt.Errorf("failed to read figure record: %w", err)
	}
	return Decode(data)
}

// Load reads and decodes the figure record at path.
func Load(path string) (Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Figure{}, fmt.Errorf("failed to read figure record: %w", err)
	}
	return Decode(data)
}

// Encode serializes fig as compact JSON.
func Encode(fig Figure) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(fig); err != nil {
		return nil, fmt.Errorf("failed to encode figure: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes fig to path.
func Save(path string, fig Figure) error {
	data, err := Encode(fig)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write figure record: %w", err)
	}
	return nil
}
