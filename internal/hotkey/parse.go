package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidHotkey    = errors.New("invalid hotkey")
	ErrIncompleteHotkey = errors.New("no valid shortcut was recorded or entered")
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModWin
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModAlt, "alt"},
	{ModCtrl, "ctrl"},
	{ModShift, "shift"},
	{ModWin, "win"},
}

// Combo is a parsed global shortcut: zero or more modifiers plus one key.
type Combo struct {
	Mods Modifier
	Key  string
}

// String returns the canonical lowercase form, modifiers sorted by name.
func (c Combo) String() string {
	parts := make([]string, 0, 5)
	for _, m := range modifierNames {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Upper is the display form used in notifications, e.g. CTRL+SHIFT+C.
func (c Combo) Upper() string {
	return strings.ToUpper(c.String())
}

// Parse validates a shortcut such as "ctrl+shift+c" or "alt+f1".
func Parse(text string) (Combo, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Combo{}, fmt.Errorf("%w: empty shortcut", ErrInvalidHotkey)
	}

	var combo Combo
	for _, token := range strings.Split(text, "+") {
		token = strings.TrimSpace(token)
		if token == "" {
			return Combo{}, fmt.Errorf("%w: empty key in %q", ErrInvalidHotkey, text)
		}
		name := NormalizeKeyName(token)
		if mod, ok := modifierByName(name); ok {
			combo.Mods |= mod
			continue
		}
		if !knownKey(name) {
			return Combo{}, fmt.Errorf("%w: unknown key %q", ErrInvalidHotkey, token)
		}
		if combo.Key != "" {
			return Combo{}, fmt.Errorf("%w: more than one non-modifier key in %q", ErrInvalidHotkey, text)
		}
		combo.Key = name
	}
	if combo.Key == "" {
		return Combo{}, fmt.Errorf("%w: %q has no non-modifier key", ErrInvalidHotkey, text)
	}
	return combo, nil
}

// Canonical parses text and returns its canonical string.
func Canonical(text string) (string, error) {
	combo, err := Parse(text)
	if err != nil {
		return "", err
	}
	return combo.String(), nil
}

// Same reports whether two shortcut strings denote the same combination.
func Same(a, b string) bool {
	ca, errA := Parse(a)
	cb, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return ca == cb
}

var keyAliases = map[string]string{
	"ctrl_l": "ctrl", "ctrl_r": "ctrl", "control": "ctrl", "left ctrl": "ctrl", "right ctrl": "ctrl",
	"shift_l": "shift", "shift_r": "shift", "left shift": "shift", "right shift": "shift",
	"alt_l": "alt", "alt_r": "alt", "alt gr": "alt", "altgr": "alt", "altgraph": "alt", "option": "alt",
	"left alt": "alt", "right alt": "alt",
	"cmd": "win", "cmd_l": "win", "cmd_r": "win", "command": "win", "meta": "win", "super": "win",
	"win_l": "win", "win_r": "win", "windows": "win", "left windows": "win", "right windows": "win", "os": "win",
	"return": "enter", "escape": "esc", "del": "delete", " ": "space", "spacebar": "space",
	"arrowleft": "left", "arrowright": "right", "arrowup": "up", "arrowdown": "down",
	"controlleft": "ctrl", "controlright": "ctrl", "shiftleft": "shift", "shiftright": "shift",
	"altleft": "alt", "altright": "alt", "metaleft": "win", "metaright": "win", "osleft": "win", "osright": "win",
	"numpadenter": "enter",
}

// NormalizeKeyName maps left/right variants, browser key names and browser
// key codes (KeyC, Digit1, Numpad1) to the names Parse understands.
func NormalizeKeyName(name string) string {
	if name != " " {
		name = strings.ToLower(strings.TrimSpace(name))
	}
	if alias, ok := keyAliases[name]; ok {
		return alias
	}
	if key, ok := physicalKey(name); ok {
		return key
	}
	return name
}

// physicalKey strips the layout-independent prefix of a KeyboardEvent.code.
func physicalKey(code string) (string, bool) {
	for _, prefix := range []string{"key", "digit", "numpad"} {
		rest, ok := strings.CutPrefix(code, prefix)
		if !ok || len(rest) != 1 {
			continue
		}
		c := rest[0]
		if prefix == "key" && c >= 'a' && c <= 'z' || prefix != "key" && c >= '0' && c <= '9' {
			return rest, true
		}
	}
	return "", false
}

// IsModifier reports whether a normalized key name is a modifier.
func IsModifier(name string) bool {
	_, ok := modifierByName(name)
	return ok
}

func modifierByName(name string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}

func knownKey(name string) bool {
	_, ok := keyNames[name]
	return ok
}

// KeyNames lists every supported non-modifier key.
func KeyNames() []string {
	names := make([]string, 0, len(keyNames))
	for name := range keyNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
