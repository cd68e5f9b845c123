package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/render"
	"github.com/example/shineycrop/internal/theme"
)

// statusHeight is the strip under the canvas holding the status line and
// shortcut hints.
const statusHeight = 36

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

type paintState struct {
	width, height int
	scene         editor.Scene
	img           image.Image
	theme         *theme.Theme
	status        string
	hints         string
	message       string
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	composeFrame(ctx, b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// composeFrame draws the canvas, the status strip and any message into
// dst, giving up early once ctx is cancelled.
func composeFrame(ctx context.Context, dst *image.RGBA, st paintState) {
	th := st.theme
	canvasRect := image.Rect(0, 0, st.width, max(0, st.height-statusHeight))
	if canvas, ok := dst.SubImage(canvasRect).(*image.RGBA); ok && !canvasRect.Empty() {
		render.DrawScene(canvas, st.scene, st.img, th)
	}
	if ctx.Err() != nil {
		return
	}

	bar := image.Rect(0, canvasRect.Max.Y, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{th.Foreground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Background), Face: basicfont.Face7x13}
	d.Dot = fixed.P(6, bar.Min.Y+14)
	d.DrawString(st.status)
	d.Dot = fixed.P(6, bar.Min.Y+30)
	d.DrawString(st.hints)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" {
		md := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: messageFace}
		wmsg := md.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (canvasRect.Dy()-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		box := theme.Fade(th.Background, 0.9)
		draw.Draw(dst, rect, &image.Uniform{box}, image.Point{}, draw.Over)
		drawBorder(dst, rect, th.Foreground)
		md.Dot = fixed.P(px, py)
		md.DrawString(st.message)
	}
}

func drawBorder(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, col)
		dst.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, col)
		dst.SetRGBA(r.Max.X-1, y, col)
	}
}
