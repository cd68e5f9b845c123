package geometry

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestRectangleVertices(t *testing.T) {
	q := RectangleVertices(Rect{Left: 10, Top: 20, Width: 30, Height: 40}, 1, 2)
	want := Quad{{11, 22}, {41, 22}, {41, 62}, {11, 62}}
	if q != want {
		t.Fatalf("unexpected vertices %v, want %v", q, want)
	}
}

func TestPointsInsideRectangle(t *testing.T) {
	axis := RectangleVertices(Rect{Width: 100, Height: 50}, 0, 0)
	tests := []struct {
		name   string
		points []Point
		want   bool
	}{
		{"centre", []Point{{50, 25}}, true},
		{"corner", []Point{{0, 0}, {100, 50}}, true},
		{"right of box", []Point{{101, 25}}, false},
		{"one bad point rejects all", []Point{{10, 10}, {20, 20}, {50, -1}}, false},
	}
	for _, tc := range tests {
		if got := PointsInsideRectangle(tc.points, axis); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}

	diamond := QuadAround(Pt(0, 0), Dims(100, 100), 45)
	if !PointsInsideRectangle([]Point{{0, 0}, {0, 70}}, diamond) {
		t.Errorf("expected points inside rotated square")
	}
	if PointsInsideRectangle([]Point{{45, 45}}, diamond) {
		t.Errorf("expected (45,45) outside the rotated square")
	}
}

func TestEdgeCrossed(t *testing.T) {
	rect := RectangleVertices(Rect{Width: 100, Height: 100}, 0, 0)
	center := Pt(50, 50)
	tests := []struct {
		vertex Point
		want   int
	}{
		{Pt(50, -20), 0},
		{Pt(130, 50), 1},
		{Pt(50, 140), 2},
		{Pt(-5, 40), 3},
	}
	for _, tc := range tests {
		if got := EdgeCrossed(rect, center, tc.vertex); got != tc.want {
			t.Errorf("vertex %v: got edge %d want %d", tc.vertex, got, tc.want)
		}
	}
}

func TestEdgeCrossedRotated(t *testing.T) {
	center := Pt(400, 300)
	for _, angle := range []float64{0, 17, -30, 90, 135} {
		rect := QuadAround(center, Dims(200, 120), angle)
		for i := 0; i < 4; i++ {
			mid := rect[i].Add(rect[(i+1)%4]).Scale(0.5)
			vertex := center.Add(mid.Sub(center).Scale(1.5))
			if got := EdgeCrossed(rect, center, vertex); got != i {
				t.Errorf("angle %g: vertex beyond edge %d crossed edge %d", angle, i, got)
			}
		}
	}
}

func TestDistanceToLine(t *testing.T) {
	if d := DistanceToLine(Pt(3, 4), Pt(0, 0), Pt(10, 0)); !near(d, 4, 1e-12) {
		t.Fatalf("distance = %v, want 4", d)
	}
	if d := DistanceToLine(Pt(0, 0), Pt(1, 0), Pt(0, 1)); !near(d, math.Sqrt2/2, 1e-12) {
		t.Fatalf("distance = %v, want %v", d, math.Sqrt2/2)
	}
}

func TestZoomRatioToFitRectangle(t *testing.T) {
	containing := RectangleVertices(Rect{Width: 100, Height: 100}, 0, 0)
	center := Pt(50, 50)

	inside := RectangleVertices(Rect{Left: 10, Top: 10, Width: 20, Height: 20}, 0, 0)
	if r := ZoomRatioToFitRectangle(inside, containing, center); r != 1 {
		t.Fatalf("expected 1 for contained rectangle, got %v", r)
	}

	// Right edge overshoots by 10; centre is 50 from that edge.
	over := RectangleVertices(Rect{Left: 60, Top: 40, Width: 50, Height: 20}, 0, 0)
	r := ZoomRatioToFitRectangle(over, containing, center)
	if !near(r, 60.0/50.0, 1e-9) {
		t.Fatalf("ratio = %v, want %v", r, 1.2)
	}
	scaled := QuadAround(center, Dims(100*r, 100*r), 0)
	if !QuadInside(over, scaled) {
		t.Fatalf("rectangle should fit after applying the ratio")
	}
}

func TestImageBoundingBox(t *testing.T) {
	d := Dims(800, 400)
	box := ImageBoundingBox(d, 0, false)
	if box != d {
		t.Fatalf("unrotated box = %v", box)
	}
	box = ImageBoundingBox(d, 90, false)
	if box != d.Swap() {
		t.Fatalf("90 degree box = %v", box)
	}
	box = ImageBoundingBox(d, 10, true)
	s, c := math.Sin(Deg2Rad(10)), math.Cos(Deg2Rad(10))
	if !near(box.Height, 800*c+400*s, 1e-9) || !near(box.Width, 400*c+800*s, 1e-9) {
		t.Fatalf("swapped box = %v", box)
	}
	neg := ImageBoundingBox(d, -10, false)
	pos := ImageBoundingBox(d, 10, false)
	if !near(neg.Width, pos.Width, 1e-9) || !near(neg.Height, pos.Height, 1e-9) {
		t.Fatalf("negative angles should give the same box: %v vs %v", neg, pos)
	}
}

func TestZoomToCoverRatio(t *testing.T) {
	d := Dims(800, 400)
	if r := ZoomToCoverRatio(d, 0); r != 1 {
		t.Fatalf("cover ratio at 0 = %v", r)
	}
	s, c := math.Sin(Deg2Rad(10)), math.Cos(Deg2Rad(10))
	want := math.Max((s*400+c*800)/800, (s*800+c*400)/400)
	if r := ZoomToCoverRatio(d, 10); !near(r, want, 1e-12) {
		t.Fatalf("cover ratio = %v, want %v", r, want)
	}
	if r := ZoomToCoverRatio(d, 10); r < 1.3 || r > 1.34 {
		t.Fatalf("cover ratio %v outside the expected height-bound range", r)
	}
}

func TestZoomToCoverLeavesNoGaps(t *testing.T) {
	frame := Dims(640, 360)
	center := Pt(320, 180)
	for _, angle := range []float64{-45, -30, -7.5, 0, 3, 12.25, 44} {
		r := ZoomToCoverRatio(frame, angle)
		image := QuadAround(center, frame.Scale(r), angle)
		viewport := RectangleVertices(Rect{Width: frame.Width, Height: frame.Height}, 0, 0)
		if !QuadInside(viewport, image) {
			t.Errorf("angle %v: viewport not covered at ratio %v", angle, r)
		}
		box := ImageBoundingBox(frame.Scale(r), angle, false)
		if box.Width < frame.Width || box.Height < frame.Height {
			t.Errorf("angle %v: bounding box %v smaller than frame", angle, box)
		}
	}
}

func TestZoomToFitRatio(t *testing.T) {
	if r := ZoomToFitRatio(Dims(800, 400), 0, 800, 600); r != 1 {
		t.Fatalf("fitting box should keep ratio 1, got %v", r)
	}
	r := ZoomToFitRatio(Dims(800, 400), 30, 800, 600)
	box := ImageBoundingBox(Dims(800, 400).Scale(r), 30, false)
	if box.Width > 800+1e-9 || box.Height > 600+1e-9 {
		t.Fatalf("scaled box %v overflows editor", box)
	}
	if !near(box.Width, 800, 1e-9) && !near(box.Height, 600, 1e-9) {
		t.Fatalf("scaled box %v should touch one editor side", box)
	}
}

func TestImageVerticeCoords(t *testing.T) {
	editor := Dims(1000, 800)
	q := ImageVerticeCoords(Dims(800, 400), 0, 0, ZoomRatio(1), editor)
	want := Quad{{100, 200}, {900, 200}, {900, 600}, {100, 600}}
	for i := range q {
		if !near(q[i].X, want[i].X, 1e-9) || !near(q[i].Y, want[i].Y, 1e-9) {
			t.Fatalf("corner %d = %v, want %v", i, q[i], want[i])
		}
	}

	q = ImageVerticeCoords(Dims(800, 400), 90, 0, ZoomRatio(1), editor)
	// Clockwise quarter turn: the image's top-left ends up at the top right.
	if !near(q[0].X, 700, 1e-9) || !near(q[0].Y, 0, 1e-9) {
		t.Fatalf("rotated top-left = %v", q[0])
	}

	fit := ImageVerticeCoords(Dims(800, 400), 0, 20, ZoomFit, Dims(800, 600))
	for _, p := range fit {
		if p.X < -1e-9 || p.X > 800+1e-9 || p.Y < -1e-9 || p.Y > 600+1e-9 {
			t.Fatalf("fit corner %v outside editor", p)
		}
	}
}

func TestRotateOffset(t *testing.T) {
	p := RotateOffset(Pt(10, 0), 90)
	if p != Pt(0, 10) {
		t.Fatalf("rotate by 90 = %v", p)
	}
	q := Pt(3, -7)
	for i := 0; i < 4; i++ {
		q = RotateOffset(q, 90)
	}
	if q != Pt(3, -7) {
		t.Fatalf("four quarter turns = %v", q)
	}
	r := RotateOffset(RotateOffset(Pt(5, 5), 33), -33)
	if !near(r.X, 5, 1e-9) || !near(r.Y, 5, 1e-9) {
		t.Fatalf("rotate and back = %v", r)
	}
}
