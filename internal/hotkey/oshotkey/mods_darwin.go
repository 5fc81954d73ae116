//go:build darwin

package oshotkey

import (
	xhotkey "golang.design/x/hotkey"

	"translatoroverlay/internal/hotkey"
)

// Alt maps to Option and Win to Command.
func osModifiers(mods hotkey.Modifier) []xhotkey.Modifier {
	var out []xhotkey.Modifier
	if mods&hotkey.ModCtrl != 0 {
		out = append(out, xhotkey.ModCtrl)
	}
	if mods&hotkey.ModShift != 0 {
		out = append(out, xhotkey.ModShift)
	}
	if mods&hotkey.ModAlt != 0 {
		out = append(out, xhotkey.ModOption)
	}
	if mods&hotkey.ModWin != 0 {
		out = append(out, xhotkey.ModCmd)
	}
	return out
}
