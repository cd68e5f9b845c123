package crop

import (
	"math"

	"github.com/example/shineycrop/internal/geometry"
)

const (
	// DefaultMinSize is the smallest live width or height a resize may produce.
	DefaultMinSize = 30
	// DefaultDragBacktrack is how many whole pixels a rejected drag may give
	// back per axis while looking for a position that fits.
	DefaultDragBacktrack = 10
)

// Region is the live crop rectangle in editor pixels.
type Region struct {
	Rect      geometry.Rect
	MinSize   float64
	Backtrack int
}

// NewRegion returns a region for r with default limits.
func NewRegion(r geometry.Rect) *Region {
	return &Region{Rect: r, MinSize: DefaultMinSize, Backtrack: DefaultDragBacktrack}
}

// Fits reports whether r lies inside the image quad.
func Fits(r geometry.Rect, image geometry.Quad) bool {
	return geometry.QuadInside(geometry.RectangleVertices(r, 0, 0), image)
}

// shrink moves v toward zero by n without crossing it.
func shrink(v float64, n int) float64 {
	step := float64(n)
	if v > 0 {
		return math.Max(0, v-step)
	}
	return math.Min(0, v+step)
}

// Drag moves the rectangle by (dx, dy). When the full move would leave the
// image the delta is reduced one pixel at a time, larger component first, up
// to Backtrack pixels per axis. It returns the delta actually applied.
func (g *Region) Drag(dx, dy float64, image geometry.Quad) (float64, float64, bool) {
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}
	try := func(x, y float64) bool {
		if x == 0 && y == 0 {
			return false
		}
		cand := g.Rect.Translate(x, y)
		if !Fits(cand, image) {
			return false
		}
		g.Rect = cand
		return true
	}
	if try(dx, dy) {
		return dx, dy, true
	}
	for i := 1; i <= g.Backtrack; i++ {
		sx, sy := shrink(dx, i), shrink(dy, i)
		order := [][2]float64{{sx, dy}, {dx, sy}}
		if math.Abs(dy) > math.Abs(dx) {
			order[0], order[1] = order[1], order[0]
		}
		order = append(order, [2]float64{sx, sy})
		for _, c := range order {
			if try(c[0], c[1]) {
				return c[0], c[1], true
			}
		}
	}
	return 0, 0, false
}

// candidate computes the rectangle produced by dragging handle h by (dx, dy).
// With a positive ratio the secondary axis follows the constraint and the
// edge or corner opposite the handle stays put.
func candidate(r geometry.Rect, h Handle, dx, dy, ratio float64) geometry.Rect {
	left, top, right, bottom := r.Left, r.Top, r.Right(), r.Bottom()
	if ratio <= 0 {
		switch h {
		case HandleT:
			top += dy
		case HandleB:
			bottom += dy
		case HandleL:
			left += dx
		case HandleR:
			right += dx
		case HandleTL:
			left += dx
			top += dy
		case HandleTR:
			right += dx
			top += dy
		case HandleBL:
			left += dx
			bottom += dy
		case HandleBR:
			right += dx
			bottom += dy
		}
		return geometry.Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
	}

	c := r.Center()
	switch h {
	case HandleT, HandleB:
		hgt := r.Height + dy
		if h == HandleT {
			hgt = r.Height - dy
		}
		w := hgt * ratio
		out := geometry.Rect{Left: c.X - w/2, Top: top, Width: w, Height: hgt}
		if h == HandleT {
			out.Top = bottom - hgt
		}
		return out
	case HandleL, HandleR:
		w := r.Width + dx
		if h == HandleL {
			w = r.Width - dx
		}
		hgt := w / ratio
		out := geometry.Rect{Left: left, Top: c.Y - hgt/2, Width: w, Height: hgt}
		if h == HandleL {
			out.Left = right - w
		}
		return out
	}

	sx, sy := 1.0, 1.0
	if h == HandleTL || h == HandleBL {
		sx = -1
	}
	if h == HandleTL || h == HandleTR {
		sy = -1
	}
	w := r.Width + sx*dx
	hgt := r.Height + sy*dy
	if math.Abs(dx) >= math.Abs(dy)*ratio {
		hgt = w / ratio
	} else {
		w = hgt * ratio
	}
	out := geometry.Rect{Left: left, Top: top, Width: w, Height: hgt}
	if sx < 0 {
		out.Left = right - w
	}
	if sy < 0 {
		out.Top = bottom - hgt
	}
	return out
}

// Resize drags handle h by (dx, dy). Candidates smaller than MinSize or
// reaching outside the image are rejected and leave the region unchanged.
func (g *Region) Resize(h Handle, dx, dy, ratio float64, image geometry.Quad) bool {
	if h == HandleNone {
		return false
	}
	cand := candidate(g.Rect, h, dx, dy, ratio)
	if cand.Width < g.MinSize || cand.Height < g.MinSize {
		return false
	}
	if !Fits(cand, image) {
		return false
	}
	g.Rect = cand
	return true
}

// ConstrainedRect returns the rectangle r reshaped to width/height == ratio
// about its centre: the narrower side grows, and if that leaves the image the
// other side shrinks instead.
func ConstrainedRect(r geometry.Rect, ratio float64, image geometry.Quad) geometry.Rect {
	c := r.Center()
	grow := geometry.RectFromCenter(c, r.Height*ratio, r.Height)
	shrunk := geometry.RectFromCenter(c, r.Width, r.Width/ratio)
	if r.Width/r.Height >= ratio {
		grow = geometry.RectFromCenter(c, r.Width, r.Width/ratio)
		shrunk = geometry.RectFromCenter(c, r.Height*ratio, r.Height)
	}
	if Fits(grow, image) {
		return grow
	}
	return shrunk
}

// EnforceConstraint reshapes the region to ratio. A non-positive ratio
// removes the constraint and leaves the rectangle alone.
func (g *Region) EnforceConstraint(ratio float64, image geometry.Quad) bool {
	if ratio <= 0 {
		return false
	}
	g.Rect = ConstrainedRect(g.Rect, ratio, image)
	return true
}
