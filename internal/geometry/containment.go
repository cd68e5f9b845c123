package geometry

import "math"

// insideTolerance is relative to the squared edge length so that points lying
// exactly on an edge survive floating point noise.
const insideTolerance = 1e-9

// PointsInsideRectangle reports whether every point lies inside rect. The
// rectangle may be rotated; only its first three corners are consulted. For a
// point P with AB = b-a, BC = c-b, AP = P-a and BP = P-b, P is inside iff
// 0 <= AB·AP <= AB·AB and 0 <= BC·BP <= BC·BC.
func PointsInsideRectangle(points []Point, rect Quad) bool {
	a, b, c := rect[0], rect[1], rect[2]
	ab := b.Sub(a)
	bc := c.Sub(b)
	abab := ab.Dot(ab)
	bcbc := bc.Dot(bc)
	tolAB := abab * insideTolerance
	tolBC := bcbc * insideTolerance
	for _, p := range points {
		abap := ab.Dot(p.Sub(a))
		if abap < -tolAB || abap > abab+tolAB {
			return false
		}
		bcbp := bc.Dot(p.Sub(b))
		if bcbp < -tolBC || bcbp > bcbc+tolBC {
			return false
		}
	}
	return true
}

// QuadInside reports whether all four corners of inner lie inside outer.
func QuadInside(inner, outer Quad) bool {
	return PointsInsideRectangle(inner[:], outer)
}

// angleBetween returns the unsigned angle between u and v in radians.
func angleBetween(u, v Point) float64 {
	lu := u.Len()
	lv := v.Len()
	if lu == 0 || lv == 0 {
		return 0
	}
	cos := u.Dot(v) / (lu * lv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// EdgeCrossed returns which edge of rect the ray from center through vertex
// passes: 0 for a→b, 1 for b→c, 2 for c→d and 3 for d→a. An edge is crossed
// when the centre→vertex direction sits between the directions to its two
// endpoints, i.e. the two partial angles add up to the angle the edge spans.
// The edge with the smallest discrepancy wins; ties keep the first.
//
// This angular-span test picks the same edge as comparing the
// centre→vertex/centre→endpoint angle with the sum of the angles the edge
// vector makes with the centre and vertex vectors, for any convex rect that
// contains center.
func EdgeCrossed(rect Quad, center, vertex Point) int {
	cv := vertex.Sub(center)
	best := 0
	bestDiff := math.Inf(1)
	for i := 0; i < 4; i++ {
		cp := rect[i].Sub(center)
		cq := rect[(i+1)%4].Sub(center)
		diff := math.Abs(angleBetween(cv, cp) + angleBetween(cv, cq) - angleBetween(cp, cq))
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

// DistanceToLine returns the distance from p to the infinite line through a and b.
func DistanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	l := ab.Len()
	if l == 0 {
		return p.Sub(a).Len()
	}
	return math.Abs(ab.Y*p.X-ab.X*p.Y+b.X*a.Y-b.Y*a.X) / l
}

// ZoomRatioToFitRectangle returns the multiplicative zoom correction that
// pushes the edge of containing crossed by the first escaping vertex of rect
// out to that vertex. It returns 1 when rect already fits.
func ZoomRatioToFitRectangle(rect, containing Quad, center Point) float64 {
	for _, v := range rect {
		if PointsInsideRectangle([]Point{v}, containing) {
			continue
		}
		edge := EdgeCrossed(containing, center, v)
		a := containing[edge]
		b := containing[(edge+1)%4]
		fromCenter := DistanceToLine(center, a, b)
		if fromCenter == 0 {
			return 1
		}
		fromVertex := DistanceToLine(v, a, b)
		return (fromVertex + fromCenter) / fromCenter
	}
	return 1
}
