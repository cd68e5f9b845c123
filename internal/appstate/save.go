package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineycrop/internal/clipboard"
	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/render"
)

var errNoOriginal = errors.New("no source image to export")

// Save writes the payload JSON and the rendered crop next to each other in
// SaveDir.
func (a *AppState) Save() error {
	out, err := a.export()
	if err != nil {
		return err
	}
	_, imgPath, err := WriteEdit(a.SaveDir, a.baseName(), a.Editor.Payload(), out, a.Format, a.Quality)
	if err != nil {
		return err
	}
	log.Printf("saved %s", imgPath)
	a.flash("saved " + filepath.Base(imgPath))
	a.Notifier.Save(imgPath)
	return nil
}

// Copy puts the rendered crop on the clipboard.
func (a *AppState) Copy() error {
	out, err := a.export()
	if err != nil {
		return err
	}
	if err := clipboard.WriteImage(out); err != nil {
		return err
	}
	a.flash("crop copied to clipboard")
	a.Notifier.Copy("crop")
	return nil
}

// CopyPayload puts the payload JSON on the clipboard.
func (a *AppState) CopyPayload() error {
	data, err := json.MarshalIndent(a.Editor.Payload(), "", "  ")
	if err != nil {
		return err
	}
	if err := clipboard.WriteText(string(data)); err != nil {
		return err
	}
	a.flash("payload copied to clipboard")
	a.Notifier.Copy("payload")
	return nil
}

func (a *AppState) export() (*image.NRGBA, error) {
	if a.Original == nil {
		return nil, errNoOriginal
	}
	src, err := a.Original()
	if err != nil {
		return nil, err
	}
	return render.Export(src, a.Editor.Payload(), render.ExportOptions{})
}

func (a *AppState) baseName() string {
	base := filepath.Base(a.Editor.AssetID())
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "crop"
	}
	return base
}

// WriteEdit stores p as <base>.crop.json and img as <base>.crop.<ext> in
// dir, creating dir when needed. It returns both paths.
func WriteEdit(dir, base string, p editor.SavePayload, img image.Image, f render.Format, quality int) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	jsonPath := filepath.Join(dir, base+".crop.json")
	imgPath := filepath.Join(dir, base+".crop"+f.Ext())
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", jsonPath, err)
	}
	if err := render.Save(imgPath, img, quality); err != nil {
		return "", "", err
	}
	return jsonPath, imgPath, nil
}
