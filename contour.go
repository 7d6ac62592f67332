package logoprep

import (
	"image"
	"math"
	"slices"
)

// Contour is one outermost 8-connected foreground component of a mask,
// holes included.
type Contour struct {
	// Points lists the filled component (component pixels plus enclosed
	// holes) in row-major order.
	Points []image.Point
	// Outline is the outer border traced through pixel centres, starting
	// at the top-left pixel. Thin parts are walked out and back.
	Outline []image.Point
	bounds  image.Rectangle
}

// Area is the shoelace area of Outline. A single pixel or a one pixel wide
// stroke has area 0, an N×M block has area (N-1)(M-1), and spurs add
// nothing.
func (c *Contour) Area() float64 {
	n := len(c.Outline)
	if n < 3 {
		return 0
	}
	var sum int
	for i, p := range c.Outline {
		q := c.Outline[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// Bounds is the pixel bounding box; Dx and Dy are the box width and height.
func (c *Contour) Bounds() image.Rectangle {
	return c.bounds
}

func (c *Contour) AspectRatio() float64 {
	if c.bounds.Dy() == 0 {
		return 0
	}
	return float64(c.bounds.Dx()) / float64(c.bounds.Dy())
}

var (
	neighbours4 = [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neighbours8 = [8]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	// Clockwise on screen (y down), starting east.
	moore = [8]image.Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
)

func mooreDir(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return -1
}

// traceOuter follows the outer border of the 8-connected component that
// contains start, which must be its first pixel in raster order. It is
// the outer border following of Suzuki and Abe.
func traceOuter(in func(p image.Point) bool, start image.Point) []image.Point {
	// First neighbour clockwise from the west; the pixel visited last.
	last := image.Point{-1, -1}
	for k := range 8 {
		if q := start.Add(moore[(4+k)%8]); in(q) {
			last = q
			break
		}
	}
	if last.X < 0 {
		return []image.Point{start}
	}
	pts := []image.Point{start}
	prev, cur := last, start
	for {
		d := mooreDir(prev.Sub(cur))
		next := cur
		for k := 1; k <= 8; k++ {
			if q := cur.Add(moore[(d-k+8)%8]); in(q) {
				next = q
				break
			}
		}
		if next == start && cur == last {
			return pts
		}
		pts = append(pts, next)
		prev, cur = cur, next
	}
}

// FindExternalContours returns the outermost components of m. Components
// that sit inside the hole of another component are not returned; they
// are covered when the enclosing contour is filled.
func FindExternalContours(m *Mask) []*Contour {
	w, h := m.W, m.H
	if w == 0 || h == 0 {
		return nil
	}
	outside := outsideBackground(m)
	labels := make([]int32, w*h)
	var contours []*Contour
	var stack []int
	var label int32
	for start, v := range m.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}
		label++
		labels[start] = label
		stack = append(stack[:0], start)
		var comp []int
		external := false
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, i)
			x, y := i%w, i/w
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				external = true
			}
			for _, d := range neighbours8 {
				nx, ny := x+d.X, y+d.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if m.Pix[j] == 0 {
					if outside[j] && (d.X == 0 || d.Y == 0) {
						external = true
					}
					continue
				}
				if labels[j] == 0 {
					labels[j] = label
					stack = append(stack, j)
				}
			}
		}
		if external {
			c := fillComponent(labels, label, comp, w, h)
			first := slices.Min(comp)
			c.Outline = traceOuter(func(p image.Point) bool {
				return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
			}, image.Pt(first%w, first/w))
			contours = append(contours, c)
		}
	}
	return contours
}

// outsideBackground marks the background pixels 4-connected to the image
// border.
func outsideBackground(m *Mask) []bool {
	w, h := m.W, m.H
	seen := make([]bool, w*h)
	var stack []int
	push := func(x, y int) {
		i := y*w + x
		if m.Pix[i] == 0 && !seen[i] {
			seen[i] = true
			stack = append(stack, i)
		}
	}
	for x := range w {
		push(x, 0)
		push(x, h-1)
	}
	for y := range h {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for _, d := range neighbours4 {
			nx, ny := x+d.X, y+d.Y
			if nx >= 0 && ny >= 0 && nx < w && ny < h {
				push(nx, ny)
			}
		}
	}
	return seen
}

// fillComponent fills the holes of one labelled component by flooding its
// bounding box frame; whatever the flood does not reach is inside.
func fillComponent(labels []int32, label int32, comp []int, w, h int) *Contour {
	minX, minY, maxX, maxY := w, h, -1, -1
	for _, i := range comp {
		x, y := i%w, i/w
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	// Local grid with a one pixel frame around the box.
	bw, bh := maxX-minX+3, maxY-minY+3
	inComp := func(lx, ly int) bool {
		x, y := lx+minX-1, ly+minY-1
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}
	reached := make([]bool, bw*bh)
	stack := []int{0}
	reached[0] = true
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lx, ly := i%bw, i/bw
		for _, d := range neighbours4 {
			nx, ny := lx+d.X, ly+d.Y
			if nx < 0 || ny < 0 || nx >= bw || ny >= bh {
				continue
			}
			j := ny*bw + nx
			if reached[j] || inComp(nx, ny) {
				continue
			}
			reached[j] = true
			stack = append(stack, j)
		}
	}

	c := &Contour{bounds: image.Rect(minX, minY, maxX+1, maxY+1)}
	filled := func(lx, ly int) bool {
		if lx < 0 || ly < 0 || lx >= bw || ly >= bh {
			return false
		}
		return !reached[ly*bw+lx]
	}
	for ly := 1; ly < bh-1; ly++ {
		for lx := 1; lx < bw-1; lx++ {
			if !filled(lx, ly) {
				continue
			}
			c.Points = append(c.Points, image.Pt(lx+minX-1, ly+minY-1))
		}
	}
	return c
}

// FillContour sets every pixel of c to 255.
func (m *Mask) FillContour(c *Contour) {
	for _, p := range c.Points {
		m.Set(p.X, p.Y, 255)
	}
}

// SortByArea orders contours from largest to smallest.
func SortByArea(cs []*Contour) {
	slices.SortStableFunc(cs, func(a, b *Contour) int {
		aa, ba := a.Area(), b.Area()
		if aa > ba {
			return -1
		}
		if aa < ba {
			return 1
		}
		return 0
	})
}
