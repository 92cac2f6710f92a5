package detection

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Component is one 8-connected foreground region of a binary image.
type Component struct {
	// Seed is the first pixel of the component in raster order.
	Seed Point

	// Size is the number of pixels in the component.
	Size int

	// Bounds is the pixel bounding box (exclusive max).
	Bounds image.Rectangle

	// extents holds the leftmost and rightmost x for each row, indexed from
	// Bounds.Min.Y. The convex hull of a pixel set only depends on these.
	extents [][2]int
}

// HullPoints returns the row extreme pixels of the component, which are a
// superset of its convex hull vertices.
func (c Component) HullPoints() []r2.Vec {
	pts := make([]r2.Vec, 0, 2*len(c.extents))
	for i, e := range c.extents {
		y := float64(c.Bounds.Min.Y + i)
		pts = append(pts, r2.Vec{X: float64(e[0]), Y: y})
		if e[1] != e[0] {
			pts = append(pts, r2.Vec{X: float64(e[1]), Y: y})
		}
	}
	return pts
}

// FindComponents labels the 8-connected foreground regions of bin (any
// non-zero pixel is foreground) and returns those with at least minPixels
// pixels, in raster discovery order.
func FindComponents(bin *image.Gray, minPixels int) []Component {
	b := bin.Bounds()
	width, height := b.Dx(), b.Dy()

	visited := make([]bool, width*height)
	fg := func(x, y int) bool {
		return bin.Pix[bin.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}

	components := make([]Component, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !fg(x, y) {
				continue
			}
			c := floodFill(fg, visited, x, y, width, height)
			if c.Size >= minPixels {
				components = append(components, c)
			}
		}
	}

	return components
}

// floodFill collects the component containing (startX, startY) with an
// explicit stack, marking its pixels visited.
func floodFill(fg func(x, y int) bool, visited []bool, startX, startY, width, height int) Component {
	stack := []Point{{X: startX, Y: startY}}
	var pixels []Point
	minX, minY, maxX, maxY := startX, startY, startX, startY

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y*width+p.X] || !fg(p.X, p.Y) {
			continue
		}

		visited[p.Y*width+p.X] = true
		pixels = append(pixels, p)
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	extents := make([][2]int, maxY-minY+1)
	for i := range extents {
		extents[i] = [2]int{maxX + 1, minX - 1}
	}
	for _, p := range pixels {
		e := &extents[p.Y-minY]
		e[0] = min(e[0], p.X)
		e[1] = max(e[1], p.X)
	}

	return Component{
		Seed:    Point{X: startX, Y: startY},
		Size:    len(pixels),
		Bounds:  image.Rect(minX, minY, maxX+1, maxY+1),
		extents: extents,
	}
}
