package appstate

import (
	"strings"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/transform"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// action is something the user can trigger from the keyboard.
type action struct {
	name string
	// hint is shown in the status bar; empty hides the action.
	hint string
	keys KeyboardShortcuts
	run  func(a *AppState) error
}

const straightenStep = 1

var actions = []action{
	{"rotate-right", "r:rotate", shortcutList{{Rune: 'r'}, {Rune: ']'}}, func(a *AppState) error { return a.Editor.Rotate90(90) }},
	{"rotate-left", "", shortcutList{{Rune: 'R'}, {Rune: '['}}, func(a *AppState) error { return a.Editor.Rotate90(-90) }},
	{"flip-h", "h/v:flip", shortcutList{{Rune: 'h'}}, func(a *AppState) error { return a.Editor.Flip(transform.AxisX) }},
	{"flip-v", "", shortcutList{{Rune: 'v'}}, func(a *AppState) error { return a.Editor.Flip(transform.AxisY) }},
	{"straighten-left", ",/.:straighten", shortcutList{{Rune: ','}, {Rune: '<'}}, func(a *AppState) error { return a.nudge(-straightenStep) }},
	{"straighten-right", "", shortcutList{{Rune: '.'}, {Rune: '>'}}, func(a *AppState) error { return a.nudge(straightenStep) }},
	{"straighten-reset", "", shortcutList{{Rune: '/'}}, func(a *AppState) error { return a.Editor.Straighten(0) }},
	{"view-normal", "n:view", shortcutList{{Rune: 'n'}, {Code: key.CodeEscape}}, func(a *AppState) error { return a.Editor.ShowView(editor.ViewNormal) }},
	{"view-rotate", "t:tilt", shortcutList{{Rune: 't'}}, func(a *AppState) error { return a.Editor.ShowView(editor.ViewRotate) }},
	{"view-crop", "c:crop", shortcutList{{Rune: 'c'}, {Code: key.CodeReturnEnter}}, func(a *AppState) error { return a.toggleCrop() }},
	{"aspect", "a:aspect", shortcutList{{Rune: 'a'}}, func(a *AppState) error { return a.cycleConstraint() }},
	{"reset-crop", "0:reset", shortcutList{{Rune: '0'}}, func(a *AppState) error { return a.Editor.ResetCrop() }},
	{"focal", "f:focal", shortcutList{{Rune: 'f'}}, func(a *AppState) error { return a.Editor.ToggleFocalPoint() }},
	{"focal-reset", "", shortcutList{{Rune: 'F'}}, func(a *AppState) error { return a.Editor.ResetFocalPoint() }},
	{"save", "^S:save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func(a *AppState) error { return a.Save() }},
	{"copy", "^C:copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func(a *AppState) error { return a.Copy() }},
	{"copy-payload", "", shortcutList{{Rune: 'j', Modifiers: key.ModControl}}, func(a *AppState) error { return a.CopyPayload() }},
	{"quit", "q:quit", shortcutList{{Rune: 'q'}}, func(a *AppState) error { a.quit = true; return nil }},
}

var keyboardAction = func() map[KeyShortcut]*action {
	m := map[KeyShortcut]*action{}
	for i := range actions {
		for _, sc := range actions[i].keys.KeyboardShortcuts() {
			m[sc] = &actions[i]
		}
	}
	return m
}()

// shortcutFor normalizes a key event. Printable keys match on the rune, so
// shift is already folded into it; everything else matches on the code.
func shortcutFor(e key.Event) KeyShortcut {
	r := e.Rune
	if e.Modifiers&key.ModControl != 0 && r > 0 && r < 0x20 {
		r += 'a' - 1
	}
	if r > 0 && unicode.IsPrint(r) {
		if e.Modifiers&key.ModControl != 0 {
			r = unicode.ToLower(r)
		}
		return KeyShortcut{Rune: r, Modifiers: e.Modifiers &^ key.ModShift}
	}
	return KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}
}

func lookupAction(e key.Event) (*action, bool) {
	act, ok := keyboardAction[shortcutFor(e)]
	return act, ok
}

// shortcutHints lists the status bar hints in table order.
func shortcutHints() string {
	var parts []string
	for _, act := range actions {
		if act.hint != "" {
			parts = append(parts, act.hint)
		}
	}
	return strings.Join(parts, "  ")
}
