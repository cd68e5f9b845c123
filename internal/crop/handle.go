package crop

import (
	"fmt"
	"strings"

	"github.com/example/shineycrop/internal/geometry"
)

// Handle identifies one of the eight resize grips on the crop rectangle.
type Handle int

const (
	HandleNone Handle = iota
	HandleT
	HandleB
	HandleL
	HandleR
	HandleTL
	HandleTR
	HandleBL
	HandleBR
)

var handleNames = [...]string{"", "t", "b", "l", "r", "tl", "tr", "bl", "br"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return fmt.Sprintf("Handle(%d)", int(h))
	}
	return handleNames[h]
}

// ParseHandle converts a handle name such as "tl" into a Handle.
func ParseHandle(s string) (Handle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range handleNames {
		if i > 0 && name == s {
			return Handle(i), nil
		}
	}
	return HandleNone, fmt.Errorf("unknown crop handle %q", s)
}

// Handles lists every grip in drawing order.
var Handles = []Handle{HandleTL, HandleT, HandleTR, HandleR, HandleBR, HandleB, HandleBL, HandleL}

// HandleRect returns the grip square of the given size for h on r.
func HandleRect(r geometry.Rect, h Handle, size float64) geometry.Rect {
	c := r.Center()
	var p geometry.Point
	switch h {
	case HandleTL:
		p = geometry.Pt(r.Left, r.Top)
	case HandleT:
		p = geometry.Pt(c.X, r.Top)
	case HandleTR:
		p = geometry.Pt(r.Right(), r.Top)
	case HandleR:
		p = geometry.Pt(r.Right(), c.Y)
	case HandleBR:
		p = geometry.Pt(r.Right(), r.Bottom())
	case HandleB:
		p = geometry.Pt(c.X, r.Bottom())
	case HandleBL:
		p = geometry.Pt(r.Left, r.Bottom())
	case HandleL:
		p = geometry.Pt(r.Left, c.Y)
	}
	return geometry.RectFromCenter(p, size, size)
}

// HandleAt returns the grip under p, or HandleNone.
func HandleAt(r geometry.Rect, p geometry.Point, size float64) Handle {
	for _, h := range Handles {
		hr := HandleRect(r, h, size)
		if p.X >= hr.Left && p.X <= hr.Right() && p.Y >= hr.Top && p.Y <= hr.Bottom() {
			return h
		}
	}
	return HandleNone
}
