package notify

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineycrop/internal/config"
	"github.com/example/shineycrop/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		got = append(got, sent{title, body, opts})
		return nil
	}
	t.Cleanup(func() { send = prev })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Save("out.png")
	n.Copy("")
	var nilNotifier *Notifier
	nilNotifier.Copy("x")
	if len(*got) != 0 {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}

func TestFromConfig(t *testing.T) {
	got := capture(t)
	t.Setenv("SHINEYCROP_NOTIFY_TITLE", "Crops")
	t.Setenv("SHINEYCROP_NOTIFY_COPY_TEXT", "Clipboard has %s")
	n := FromConfig(config.Notify{Save: true, Copy: true})

	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	n.Save(path)
	n.Copy("")
	n.Render(path, nil)

	if len(*got) != 2 {
		t.Fatalf("want 2 notifications, got %+v", *got)
	}
	if s := (*got)[0]; s.title != "Crops" || !strings.HasSuffix(s.body, "out.png") || s.opts.IconPath != path {
		t.Fatalf("save notification = %+v", s)
	}
	if s := (*got)[1]; s.body != "Clipboard has image" {
		t.Fatalf("copy notification = %+v", s)
	}
}

func TestRenderPreviewIsRemoved(t *testing.T) {
	var icon string
	prev := send
	send = func(_, _ string, opts platform.Options) error {
		icon = opts.IconPath
		if _, err := os.Stat(icon); err != nil {
			t.Errorf("preview missing while notifying: %v", err)
		}
		return nil
	}
	t.Cleanup(func() { send = prev })

	n := New(DefaultPreferences())
	n.Enable(EventRender, true)
	n.Render("missing.png", image.NewRGBA(image.Rect(0, 0, 600, 300)))
	if icon == "" {
		t.Fatalf("no preview icon")
	}
	if _, err := os.Stat(icon); !os.IsNotExist(err) {
		t.Fatalf("preview not cleaned up: %v", err)
	}
}
