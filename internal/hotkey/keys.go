package hotkey

// keyNames holds every non-modifier key a hotkey can end in. The platform
// key codes live in the oshotkey package.
var keyNames = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
		"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10",
		"f11", "f12", "f13", "f14", "f15", "f16", "f17", "f18", "f19", "f20",
		"space", "enter", "esc", "tab", "delete", "left", "right", "up", "down",
	} {
		keyNames[name] = struct{}{}
	}
}
