// Package source loads the images the editor works on.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/example/shineycrop/internal/geometry"
)

var (
	// ErrNotFound is returned when an asset does not exist.
	ErrNotFound = errors.New("source: asset not found")
	// ErrOutsideRoot is returned for asset IDs that leave the source root.
	ErrOutsideRoot = errors.New("source: asset outside root")
)

// FileSource serves assets from the filesystem. Asset IDs are paths
// relative to Root, or any path when Root is empty.
type FileSource struct {
	Root string
}

// NewFileSource returns a source rooted at root.
func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

// Path resolves assetID to a file path.
func (s *FileSource) Path(assetID string) (string, error) {
	if assetID == "" {
		return "", fmt.Errorf("%w: empty asset id", ErrNotFound)
	}
	if s.Root == "" {
		return assetID, nil
	}
	if !filepath.IsLocal(assetID) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, assetID)
	}
	return filepath.Join(s.Root, assetID), nil
}

// Load decodes assetID and shrinks it so neither side exceeds maxPixelSize.
// The returned dimensions are those of the file itself.
func (s *FileSource) Load(ctx context.Context, assetID string, maxPixelSize int) (image.Image, geometry.Dimensions, error) {
	path, err := s.Path(assetID)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	img, err := ReadFile(path)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, geometry.Dimensions{}, err
	}
	b := img.Bounds()
	orig := geometry.Dims(float64(b.Dx()), float64(b.Dy()))
	return Fit(img, maxPixelSize), orig, nil
}

// ReadFile decodes the image at path.
func ReadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	img, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an image, choosing the decoder from the file extension.
// Unknown extensions are sniffed.
func Decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Decode(r)
	case "jpg", "jpeg":
		return jpeg.Decode(r)
	case "gif":
		return gif.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "tif", "tiff":
		return tiff.Decode(r)
	case "webp":
		return webp.Decode(r)
	case "tga":
		return tga.Decode(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}

// Fit scales img down with Catmull-Rom so its longest side is at most
// maxPixelSize. Images that already fit, and a non-positive limit, return
// img unchanged.
func Fit(img image.Image, maxPixelSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxPixelSize <= 0 || (w <= maxPixelSize && h <= maxPixelSize) {
		return img
	}
	nw, nh := maxPixelSize, maxPixelSize
	if w >= h {
		nh = max(1, (h*maxPixelSize+w/2)/w)
	} else {
		nw = max(1, (w*maxPixelSize+h/2)/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
