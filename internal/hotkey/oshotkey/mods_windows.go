//go:build windows

package oshotkey

import (
	xhotkey "golang.design/x/hotkey"

	"translatoroverlay/internal/hotkey"
)

func osModifiers(mods hotkey.Modifier) []xhotkey.Modifier {
	var out []xhotkey.Modifier
	if mods&hotkey.ModCtrl != 0 {
		out = append(out, xhotkey.ModCtrl)
	}
	if mods&hotkey.ModShift != 0 {
		out = append(out, xhotkey.ModShift)
	}
	if mods&hotkey.ModAlt != 0 {
		out = append(out, xhotkey.ModAlt)
	}
	if mods&hotkey.ModWin != 0 {
		out = append(out, xhotkey.ModWin)
	}
	return out
}
