package main

import (
	"flag"
	"fmt"

	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// inspectCmd prints the editor geometry for an image size without opening
// a window.
type inspectCmd struct {
	*root
	fs       *flag.FlagSet
	original string
	size     string
	rotation int
	angle    float64

	originalDims geometry.Dimensions
	editorDims   geometry.Dimensions
}

func (i *inspectCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInspectCmd(args []string, r *root) (*inspectCmd, error) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	i := &inspectCmd{root: r, fs: fs}
	fs.StringVar(&i.original, "original", "", "image size as WIDTHxHEIGHT")
	fs.StringVar(&i.size, "size", "1024x768", "editor area as WIDTHxHEIGHT")
	fs.IntVar(&i.rotation, "rotation", 0, "quarter-turn rotation in degrees (0, 90, 180 or 270)")
	fs.Float64Var(&i.angle, "angle", 0, "straighten angle in degrees")
	fs.Usage = usageFunc(i)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if i.original == "" {
		return nil, &UsageError{of: i}
	}
	var err error
	if i.originalDims, err = parseDims(i.original); err != nil {
		return nil, fmt.Errorf("invalid -original: %w", err)
	}
	if i.editorDims, err = parseDims(i.size); err != nil {
		return nil, fmt.Errorf("invalid -size: %w", err)
	}
	if i.rotation%90 != 0 {
		return nil, fmt.Errorf("invalid -rotation: %d is not a multiple of 90", i.rotation)
	}
	if i.angle < -45 || i.angle > 45 {
		return nil, fmt.Errorf("invalid -angle: %g is outside [-45, 45]", i.angle)
	}
	return i, nil
}

func (i *inspectCmd) Run() error {
	out := i.root.stdout
	dims := transform.ScaledImageDimensions(i.originalDims, i.editorDims)

	tr := transform.New()
	tr.Rotation = transform.Rotation(i.rotation).Normalize()
	tr.StraightenAngle = i.angle
	scale := tr.FitScaleFactor(dims, i.editorDims)
	tr.ZoomRatio = tr.FitZoom(dims, i.editorDims)

	rotated := tr.RotatedDimensions(dims)
	box := geometry.ImageBoundingBox(dims, i.angle, tr.Swapped())
	fmt.Fprintf(out, "original:      %s\n", formatDims(i.originalDims))
	fmt.Fprintf(out, "scaled:        %s\n", formatDims(dims))
	fmt.Fprintf(out, "rotated:       %s\n", formatDims(rotated))
	fmt.Fprintf(out, "bounding box:  %s\n", formatDims(box))
	fmt.Fprintf(out, "scale factor:  %.4f\n", scale)
	fmt.Fprintf(out, "cover zoom:    %.4f\n", tr.CoverZoom(dims))
	fmt.Fprintf(out, "fit zoom:      %.4f\n", tr.ZoomRatio)
	fmt.Fprintf(out, "image quad:   ")
	for _, p := range tr.ImageQuad(dims, i.editorDims) {
		fmt.Fprintf(out, " (%.1f,%.1f)", p.X, p.Y)
	}
	fmt.Fprintln(out)
	return nil
}

func formatDims(d geometry.Dimensions) string {
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}
