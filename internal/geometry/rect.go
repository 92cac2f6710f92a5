// Package geometry provides the rectangle primitives shared by the label
// classifier, the mask generator and the region extractor.
//
// Rectangles are stored as two corners (X0, Y0) and (X1, Y1) in a single 2-D
// coordinate space. The space is whatever the caller uses consistently: the
// figure extractor's point units for figure records, pixels for masks.
// Y grows downward, matching image coordinates.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle. A well-formed Rect has X0 <= X1 and
// Y0 <= Y1; the functions in this package do not clamp or reorder corners.
//
// On the wire a Rect is the four-element array [x0, y0, x1, y1].
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewRect builds a Rect from its corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns X1 - X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Valid reports whether the corners are ordered and finite.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.X0 <= r.X1 && r.Y0 <= r.Y1
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Scale returns r with every coordinate multiplied by f.
func (r Rect) Scale(f float64) Rect {
	return Rect{X0: r.X0 * f, Y0: r.Y0 * f, X1: r.X1 * f, Y1: r.Y1 * f}
}

// Contains reports whether inner lies strictly inside outer on all four
// sides. A rectangle touching the boundary of outer is not contained, so
// Contains(a, a) is always false.
func Contains(inner, outer Rect) bool {
	return inner.X0 > outer.X0 && inner.X1 < outer.X1 &&
		inner.Y0 > outer.Y0 && inner.Y1 < outer.Y1
}

// Area returns (X1-X0)*(Y1-Y0). Malformed rectangles yield negative areas.
func Area(r Rect) float64 {
	return (r.X1 - r.X0) * (r.Y1 - r.Y0)
}

// Overlaps reports whether a and b share interior area.
func Overlaps(a, b Rect) bool {
	return a.X0 < b.X1 && a.X1 > b.X0 && a.Y0 < b.Y1 && a.Y1 > b.Y0
}

// MarshalJSON encodes r as [x0, y0, x1, y1].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes a four-element numeric array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rectangle must be a numeric array: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("rectangle must have 4 coordinates, got %d", len(v))
	}
	*r = Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
	return nil
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g,%g,%g]", r.X0, r.Y0, r.X1, r.Y1)
}
