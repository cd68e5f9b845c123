package theme

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the colours used to draw the editor canvas and overlays.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Canvas behind the image
	Foreground color.RGBA // Label text

	// Overlays
	Mask         color.RGBA // Darkens everything outside the crop or viewport
	CropBorder   color.RGBA
	Handle       color.RGBA
	HandleBorder color.RGBA
	Grid         color.RGBA
	Focal        color.RGBA
	FocalRing    color.RGBA

	// Transparent image areas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:         "Default",
		Background:   color.RGBA{220, 220, 220, 255},
		Foreground:   color.RGBA{0, 0, 0, 255},
		Mask:         color.RGBA{0, 0, 0, 128},
		CropBorder:   color.RGBA{255, 255, 255, 255},
		Handle:       color.RGBA{255, 255, 255, 255},
		HandleBorder: color.RGBA{40, 40, 40, 255},
		Grid:         color.RGBA{110, 110, 110, 110},
		Focal:        color.RGBA{255, 196, 0, 255},
		FocalRing:    color.RGBA{0, 0, 0, 255},
		CheckerLight: color.RGBA{220, 220, 220, 255},
		CheckerDark:  color.RGBA{192, 192, 192, 255},
	}
}

// Active returns c brightened for a grip that is being dragged.
func Active(c color.RGBA) color.RGBA {
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := cc.Hsv()
	if v > 0.85 {
		// already bright; shift toward the accent instead
		s = clamp(s+0.35, 0, 1)
		h = 45
	} else {
		v = clamp(v+0.25, 0, 1)
	}
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}

// Fade scales the alpha of c by f in [0,1] and premultiplies the result.
func Fade(c color.RGBA, f float64) color.RGBA {
	f = clamp(f, 0, 1)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: uint8(float64(c.A) * f),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
