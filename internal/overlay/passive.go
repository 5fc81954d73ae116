package overlay

import "errors"

// ErrPassiveUnsupported is returned where the overlay window cannot be made
// click-through.
var ErrPassiveUnsupported = errors.New("click-through overlay is not supported on this platform")

// Extended window styles of a passive overlay.
const (
	exStyleLayered     = 0x00080000
	exStyleTransparent = 0x00000020
	exStyleNoActivate  = 0x08000000

	passiveExStyle = exStyleLayered | exStyleTransparent | exStyleNoActivate
)

// passiveStyle returns style with the passive overlay bits set or cleared.
// The layered bit is only cleared when it was added for the overlay, which
// the caller tracks with hadLayered.
func passiveStyle(style uintptr, passive, hadLayered bool) uintptr {
	if passive {
		return style | passiveExStyle
	}
	cleared := style &^ (exStyleTransparent | exStyleNoActivate)
	if !hadLayered {
		cleared &^= exStyleLayered
	}
	return cleared
}
