package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Copy   bool
	Render bool
}

// Editor holds the tunables of the crop editor. Zero values select the
// editor's defaults.
type Editor struct {
	RoundStraighten         bool
	MinCropSize             float64
	MaxCorrectionIterations int
	ReloadGrowth            float64
	DragBacktrack           int
	AnimationMS             int
	MaxPixelSize            int
	HandleSize              float64
}

// Settings converts e into editor settings.
func (e Editor) Settings() editor.Settings {
	s := editor.DefaultSettings()
	s.RoundStraighten = e.RoundStraighten
	if e.MinCropSize > 0 {
		s.MinCropSize = e.MinCropSize
	}
	if e.MaxCorrectionIterations > 0 {
		s.MaxCorrectionIterations = e.MaxCorrectionIterations
	}
	if e.ReloadGrowth > 1 {
		s.ReloadGrowth = e.ReloadGrowth
	}
	if e.DragBacktrack > 0 {
		s.DragBacktrack = e.DragBacktrack
	}
	if e.AnimationMS > 0 {
		s.AnimationDuration = time.Duration(e.AnimationMS) * time.Millisecond
	}
	if e.MaxPixelSize > 0 {
		s.MaxPixelSize = e.MaxPixelSize
	}
	if e.HandleSize > 0 {
		s.HandleSize = e.HandleSize
	}
	return s
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Notify  Notify
	Editor  Editor
	// Constraints maps preset names to width/height ratios.
	Constraints map[string]float64
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:       "", // Default to empty to allow fallback to Env/Default
		Constraints: DefaultConstraints(),
		Themes:      make(map[string]*theme.Theme),
	}
}

// DefaultConstraints returns the built-in aspect ratio presets.
func DefaultConstraints() map[string]float64 {
	return map[string]float64{
		"square":   1,
		"portrait": 4.0 / 5.0,
		"wide":     16.0 / 9.0,
		"photo":    3.0 / 2.0,
	}
}

// Constraint looks up a preset by name, falling back to a literal ratio
// such as "16:9" or "1.5". The empty string and "free" mean unconstrained.
func (c *Config) Constraint(name string) (float64, error) {
	if name == "" || strings.EqualFold(name, "free") || strings.EqualFold(name, "none") {
		return 0, nil
	}
	if r, ok := c.Constraints[strings.ToLower(name)]; ok {
		return r, nil
	}
	return ParseRatio(name)
}

// ParseRatio parses "W:H", "W/H" or a decimal ratio.
func ParseRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{":", "/"} {
		if a, b, ok := strings.Cut(s, sep); ok {
			w, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid ratio %q: %w", s, err)
			}
			h, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid ratio %q: %w", s, err)
			}
			if w <= 0 || h <= 0 {
				return 0, fmt.Errorf("invalid ratio %q: sides must be positive", s)
			}
			return w / h, nil
		}
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	if r < 0 {
		return 0, fmt.Errorf("invalid ratio %q: must not be negative", s)
	}
	return r, nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "render = %v\n", c.Notify.Render)
	sb.WriteString("\n")

	e := c.Editor
	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "round_straighten = %v\n", e.RoundStraighten)
	fmt.Fprintf(&sb, "min_crop_size = %s\n", formatFloat(e.MinCropSize))
	fmt.Fprintf(&sb, "max_correction_iterations = %d\n", e.MaxCorrectionIterations)
	fmt.Fprintf(&sb, "reload_growth = %s\n", formatFloat(e.ReloadGrowth))
	fmt.Fprintf(&sb, "drag_backtrack = %d\n", e.DragBacktrack)
	fmt.Fprintf(&sb, "animation_ms = %d\n", e.AnimationMS)
	fmt.Fprintf(&sb, "max_pixel_size = %d\n", e.MaxPixelSize)
	fmt.Fprintf(&sb, "handle_size = %s\n", formatFloat(e.HandleSize))
	sb.WriteString("\n")

	if len(c.Constraints) > 0 {
		sb.WriteString("[constraint]\n")
		for _, name := range sortedKeys(c.Constraints) {
			fmt.Fprintf(&sb, "%s = %s\n", name, formatFloat(c.Constraints[name]))
		}
		sb.WriteString("\n")
	}

	// Sort keys for deterministic output
	for _, name := range sortedKeys(c.Themes) {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
