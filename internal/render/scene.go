package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	"github.com/rclancey/earcut"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/theme"
)

const checkerSize = 8

// DrawScene paints s onto dst. img is the raster the editor currently
// holds and may be nil, in which case only the background is drawn.
func DrawScene(dst *image.RGBA, s editor.Scene, img image.Image, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)
	if img == nil || img.Bounds().Empty() || s.ImageSize.Empty() {
		return
	}

	quad := coverage(dst.Bounds(), quadTriangles(s.Image))
	drawCheckerboard(dst, quad, checkerSize, th.CheckerLight, th.CheckerDark)
	xdraw.BiLinear.Transform(dst, imageTransform(s, img.Bounds()), img, img.Bounds(), xdraw.Over, nil)

	hole := s.Viewport
	if s.Crop != nil {
		hole = s.Crop.Rect
	}
	if tris := maskTriangles(s.Editor, hole); tris != nil {
		m := coverage(dst.Bounds(), tris)
		draw.DrawMask(dst, dst.Bounds(), &image.Uniform{th.Mask}, image.Point{}, m, m.Bounds().Min, draw.Over)
	}

	for _, l := range s.Grid {
		drawLine(dst, l.A, l.B, th.Grid, 1)
	}
	if c := s.Crop; c != nil {
		for _, l := range c.Grid {
			drawLine(dst, l.A, l.B, th.Grid, 1)
		}
		drawRect(dst, c.Rect, th.CropBorder, 2)
		for _, h := range c.Handles {
			fill := th.Handle
			if h.Handle == c.Active {
				fill = theme.Active(fill)
			}
			r := pixelRect(h.Rect)
			draw.Draw(dst, r, &image.Uniform{fill}, image.Point{}, draw.Over)
			drawRect(dst, h.Rect, th.HandleBorder, 1)
		}
	}
	if f := s.Focal; f != nil && f.Opacity > 0 {
		cx, cy := int(math.Round(f.Pos.X)), int(math.Round(f.Pos.Y))
		r := int(math.Round(f.Radius))
		drawFilledCircle(dst, cx, cy, r, theme.Fade(th.Focal, f.Opacity))
		drawCircle(dst, cx, cy, r, theme.Fade(th.FocalRing, f.Opacity), 2)
	}
	if s.View == editor.ViewRotate {
		drawLabel(dst, fmt.Sprintf("%.1f°", s.Angle), s.Viewport, th.Foreground)
	}
}

// imageTransform maps source pixels of the raster to canvas pixels: centre
// on the origin, mirror, scale to the drawn size, rotate and move to the
// quad's centre.
func imageTransform(s editor.Scene, sr image.Rectangle) f64.Aff3 {
	sx := s.ImageSize.Width / float64(sr.Dx())
	sy := s.ImageSize.Height / float64(sr.Dy())
	if s.Flip.X != 0 {
		sx = -sx
	}
	if s.Flip.Y != 0 {
		sy = -sy
	}
	rot := geometry.RotationMatrix(s.Angle)
	m := f64.Aff3{
		rot[0] * sx, rot[1] * sy, 0,
		rot[3] * sx, rot[4] * sy, 0,
	}
	srcCentre := geometry.Pt(float64(sr.Min.X)+float64(sr.Dx())/2, float64(sr.Min.Y)+float64(sr.Dy())/2)
	c := s.Image.Center()
	moved := geometry.Apply(m, srcCentre)
	m[2] = c.X - moved.X
	m[5] = c.Y - moved.Y
	return m
}

type triangle [3]geometry.Point

func quadTriangles(q geometry.Quad) []triangle {
	return []triangle{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}}
}

// maskTriangles triangulates the canvas with a rectangular hole cut out.
func maskTriangles(editorSize geometry.Dimensions, hole geometry.Rect) []triangle {
	if editorSize.Empty() {
		return nil
	}
	// The outer ring sits a pixel outside the canvas so a hole reaching
	// the canvas edge never shares an edge with it.
	outer := geometry.RectangleVertices(geometry.Rect{Left: -1, Top: -1, Width: editorSize.Width + 2, Height: editorSize.Height + 2}, 0, 0)
	points := outer.Points()
	var holes []int
	if hole.Width > 0 && hole.Height > 0 {
		holes = []int{len(points)}
		h := geometry.RectangleVertices(hole, 0, 0)
		points = append(points, h.Points()...)
	}
	coords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		coords = append(coords, p.X, p.Y)
	}
	idx, err := earcut.Earcut(coords, holes, 2)
	if err != nil {
		log.Printf("mask triangulation: %v", err)
		return nil
	}
	tris := make([]triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		tris = append(tris, triangle{points[idx[i]], points[idx[i+1]], points[idx[i+2]]})
	}
	return tris
}

// coverage marks every pixel whose centre lies in one of tris. Pixels on
// a shared edge are marked once, so blending through the mask never
// doubles up.
func coverage(bounds image.Rectangle, tris []triangle) *image.Alpha {
	m := image.NewAlpha(bounds)
	for _, t := range tris {
		fillTriangle(m, t)
	}
	return m
}

func fillTriangle(m *image.Alpha, t triangle) {
	x0, y0 := t[0].X, t[0].Y
	x1, y1 := t[1].X, t[1].Y
	x2, y2 := t[2].X, t[2].Y

	b := m.Bounds()
	minX := max(b.Min.X, int(math.Floor(math.Min(math.Min(x0, x1), x2))))
	maxX := min(b.Max.X, int(math.Ceil(math.Max(math.Max(x0, x1), x2))))
	minY := max(b.Min.Y, int(math.Floor(math.Min(math.Min(y0, y1), y2))))
	maxY := min(b.Max.Y, int(math.Ceil(math.Max(math.Max(y0, y1), y2))))
	if minX >= maxX || minY >= maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	const eps = -1e-6
	for y := minY; y < maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float64(x) + 0.5
			w0 := ((y1-y2)*(px-x2) + (x2-x1)*(py-y2)) * invDet
			w1 := ((y2-y0)*(px-x2) + (x0-x2)*(py-y2)) * invDet
			w2 := 1 - w0 - w1
			if w0 >= eps && w1 >= eps && w2 >= eps {
				m.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
}

// drawCheckerboard fills the pixels set in mask with a checkerboard of the
// given colours. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, mask *image.Alpha, size int, light, dark color.RGBA) {
	r := dst.Bounds().Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(x, y).A == 0 {
				continue
			}
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

// blend composites the premultiplied c over the pixel at (x, y).
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	if c.A == 255 {
		img.SetRGBA(x, y, c)
		return
	}
	d := img.RGBAAt(x, y)
	k := 255 - uint32(c.A)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8(uint32(c.R) + uint32(d.R)*k/255),
		G: uint8(uint32(c.G) + uint32(d.G)*k/255),
		B: uint8(uint32(c.B) + uint32(d.B)*k/255),
		A: uint8(uint32(c.A) + uint32(d.A)*k/255),
	})
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.RGBA) {
	if thick <= 1 {
		blend(img, x, y, col)
		return
	}
	r := thick / 2
	for dx := -r; dx < thick-r; dx++ {
		for dy := -r; dy < thick-r; dy++ {
			blend(img, x+dx, y+dy, col)
		}
	}
}

func drawLine(img *image.RGBA, a, b geometry.Point, col color.RGBA, thick int) {
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, r geometry.Rect, col color.RGBA, thick int) {
	pr := pixelRect(r)
	if pr.Empty() {
		return
	}
	tl := geometry.Pt(float64(pr.Min.X), float64(pr.Min.Y))
	tr := geometry.Pt(float64(pr.Max.X-1), float64(pr.Min.Y))
	br := geometry.Pt(float64(pr.Max.X-1), float64(pr.Max.Y-1))
	bl := geometry.Pt(float64(pr.Min.X), float64(pr.Max.Y-1))
	drawLine(img, tl, tr, col, thick)
	drawLine(img, tr, br, col, thick)
	drawLine(img, br, bl, col, thick)
	drawLine(img, bl, tl, col, thick)
}

func drawCircle(img *image.RGBA, cx, cy, r int, col color.RGBA, thick int) {
	start := -thick / 2
	for i := 0; i < max(thick, 1); i++ {
		if rr := r + start + i; rr >= 0 {
			drawCircleThin(img, cx, cy, rr, col)
		}
	}
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			blend(img, cx+p[0], cy+p[1], col)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				blend(img, cx+dx, cy+dy, col)
			}
		}
	}
}

// drawLabel writes text centred under the top edge of frame.
func drawLabel(img *image.RGBA, text string, frame geometry.Rect, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(text).Ceil()
	x := int(math.Round(frame.Center().X)) - w/2
	y := int(math.Round(frame.Top)) + face.Metrics().Ascent.Ceil() + 4
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left)), int(math.Round(r.Top)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
