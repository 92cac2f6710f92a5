package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// RotatedRect is a rectangle of size Width x Height centred on Center and
// rotated by Angle degrees. Width is measured along the direction
// (cos Angle, sin Angle) in image coordinates (Y down), Height along the
// perpendicular.
type RotatedRect struct {
	Center r2.Vec  `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// Degenerate reports whether the rectangle has no area.
func (r RotatedRect) Degenerate() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inflate returns r with both dimensions multiplied by f.
func (r RotatedRect) Inflate(f float64) RotatedRect {
	r.Width *= f
	r.Height *= f
	return r
}

// Axes returns the unit vectors along the width and height directions.
func (r RotatedRect) Axes() (u, v r2.Vec) {
	theta := r.Angle * math.Pi / 180
	u = r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
	v = r2.Vec{X: -math.Sin(theta), Y: math.Cos(theta)}
	return u, v
}

// Corners returns the four corners starting at the top-left of the
// unrotated frame and proceeding clockwise.
func (r RotatedRect) Corners() [4]r2.Vec {
	u, v := r.Axes()
	hu := r2.Scale(r.Width/2, u)
	hv := r2.Scale(r.Height/2, v)
	return [4]r2.Vec{
		r2.Sub(r2.Sub(r.Center, hu), hv),
		r2.Sub(r2.Add(r.Center, hu), hv),
		r2.Add(r2.Add(r.Center, hu), hv),
		r2.Add(r2.Sub(r.Center, hu), hv),
	}
}

// BoundingBox returns the axis-aligned box enclosing the rotated rectangle.
func (r RotatedRect) BoundingBox() Rect {
	c := r.Corners()
	box := Rect{X0: c[0].X, Y0: c[0].Y, X1: c[0].X, Y1: c[0].Y}
	for _, p := range c[1:] {
		box.X0 = math.Min(box.X0, p.X)
		box.Y0 = math.Min(box.Y0, p.Y)
		box.X1 = math.Max(box.X1, p.X)
		box.Y1 = math.Max(box.Y1, p.Y)
	}
	return box
}

// ConvexHull returns the convex hull of pts in counter-clockwise order
// (Andrew's monotone chain). Collinear points are dropped. The input slice
// is not modified.
func ConvexHull(pts []r2.Vec) []r2.Vec {
	if len(pts) < 3 {
		out := make([]r2.Vec, len(pts))
		copy(out, pts)
		return out
	}

	sorted := make([]r2.Vec, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]r2.Vec, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	// All points identical.
	if len(hull) == 0 {
		return []r2.Vec{sorted[0]}
	}
	return hull
}

func turn(o, a, b r2.Vec) float64 {
	return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
}

// MinAreaRect returns the minimum-area rectangle enclosing pts using
// rotating calipers over the convex hull edges.
//
// The angle is normalized to (-45, 45] degrees, swapping Width and Height as
// needed, so a nearly horizontal box always reports a small angle. An empty
// input yields the zero RotatedRect; one point or a collinear set yields a
// rectangle with zero height.
func MinAreaRect(pts []r2.Vec) RotatedRect {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	case 2:
		d := r2.Sub(hull[1], hull[0])
		return normalizeAngle(RotatedRect{
			Center: r2.Scale(0.5, r2.Add(hull[0], hull[1])),
			Width:  r2.Norm(d),
			Angle:  math.Atan2(d.Y, d.X) * 180 / math.Pi,
		})
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		edge := r2.Sub(hull[(i+1)%len(hull)], hull[i])
		if r2.Norm(edge) == 0 {
			continue
		}
		u := r2.Unit(edge)
		v := r2.Vec{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := r2.Dot(p, u)
			pv := r2.Dot(p, v)
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			best = RotatedRect{
				Center: r2.Add(r2.Scale((minU+maxU)/2, u), r2.Scale((minV+maxV)/2, v)),
				Width:  maxU - minU,
				Height: maxV - minV,
				Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
			}
		}
	}
	return normalizeAngle(best)
}

// normalizeAngle folds the angle into (-45, 45]. A rectangle is unchanged by
// a half turn, and a quarter turn swaps its width and height.
func normalizeAngle(r RotatedRect) RotatedRect {
	for r.Angle <= -90 {
		r.Angle += 180
	}
	for r.Angle > 90 {
		r.Angle -= 180
	}
	if r.Angle > 45 {
		r.Angle -= 90
		r.Width, r.Height = r.Height, r.Width
	} else if r.Angle <= -45 {
		r.Angle += 90
		r.Width, r.Height = r.Height, r.Width
	}
	return r
}
