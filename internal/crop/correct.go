package crop

import (
	"github.com/example/shineycrop/internal/geometry"
)

// DefaultMaxCorrectionIterations bounds the straighten correction loop.
const DefaultMaxCorrectionIterations = 500

// bisectSteps bounds both the search for a feasible upper zoom and the
// bisection between it and the last infeasible candidate.
const bisectSteps = 60

// Correction reports how Correct arrived at its result.
type Correction struct {
	// Ratio is the factor by which the crop shrank relative to the image.
	Ratio      float64
	Iterations int
	Converged  bool
	// Fallback is set when the iteration cap was hit and the zoom was
	// found by bisection instead.
	Fallback bool
}

// Correct shrinks s until it fits an image of size dims rotated by
// rotation+straighten degrees. The offset of s must already be rotated by the
// angle change. The candidate zoom starts at zoom and is multiplied by the
// ratio from geometry.ZoomRatioToFitRectangle until that ratio reaches 1;
// the crop keeps its live size meanwhile, so relative to the image it shrinks.
//
// If maxIterations is exhausted a bisection finds the smallest fitting zoom.
// When no zoom fits (the crop centre lies outside the image) s is returned
// unchanged.
func Correct(s State, dims geometry.Dimensions, rotation, straighten, zoom float64, maxIterations int) (State, Correction) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxCorrectionIterations
	}
	sf := s.SizeFactor(dims)
	liveW := s.Width * sf * zoom
	liveH := s.Height * sf * zoom
	offset := s.Offset().Scale(sf)
	angle := rotation + straighten

	quads := func(z float64) (crop, image geometry.Quad) {
		image = geometry.QuadAround(geometry.Point{}, dims.Scale(z), angle)
		r := geometry.RectFromCenter(offset.Scale(z), liveW, liveH)
		return geometry.RectangleVertices(r, 0, 0), image
	}
	fits := func(z float64) bool {
		c, img := quads(z)
		return geometry.QuadInside(c, img)
	}

	res := Correction{Ratio: 1}
	z := zoom
	for res.Iterations < maxIterations {
		c, img := quads(z)
		ratio := geometry.ZoomRatioToFitRectangle(c, img, geometry.Point{})
		if ratio == 1 {
			res.Converged = true
			break
		}
		z *= ratio
		res.Iterations++
	}
	if !res.Converged {
		lo := z
		hi := z
		found := false
		for i := 0; i < bisectSteps; i++ {
			hi *= 2
			if fits(hi) {
				found = true
				break
			}
		}
		if !found {
			return s, res
		}
		for i := 0; i < bisectSteps; i++ {
			mid := (lo + hi) / 2
			if fits(mid) {
				hi = mid
			} else {
				lo = mid
			}
		}
		z = hi
		res.Fallback = true
		res.Converged = true
	}

	res.Ratio = z / zoom
	s.Width /= res.Ratio
	s.Height /= res.Ratio
	return s, res
}
