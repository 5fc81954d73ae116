//go:build linux

package oshotkey

import (
	xhotkey "golang.design/x/hotkey"

	"translatoroverlay/internal/hotkey"
)

// X11 reports Alt as Mod1 and Super as Mod4.
func osModifiers(mods hotkey.Modifier) []xhotkey.Modifier {
	var out []xhotkey.Modifier
	if mods&hotkey.ModCtrl != 0 {
		out = append(out, xhotkey.ModCtrl)
	}
	if mods&hotkey.ModShift != 0 {
		out = append(out, xhotkey.ModShift)
	}
	if mods&hotkey.ModAlt != 0 {
		out = append(out, xhotkey.Mod1)
	}
	if mods&hotkey.ModWin != 0 {
		out = append(out, xhotkey.Mod4)
	}
	return out
}
