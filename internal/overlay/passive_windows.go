//go:build windows

package overlay

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	swShowNoActivate = 4
	lwaAlpha         = 0x2
)

var gwlExStyle int32 = -20

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW                = user32.NewProc("FindWindowW")
	procGetWindowLongPtrW          = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procShowWindow                 = user32.NewProc("ShowWindow")

	// layeredBefore records windows that were layered before SetPassive.
	layeredMu     sync.Mutex
	layeredBefore = map[windows.HWND]bool{}
)

// SetPassive makes the top-level window with the given title ignore mouse
// input and never take focus, or restores normal input when passive is
// false.
func SetPassive(title string, passive bool) error {
	hwnd, err := findWindow(title)
	if err != nil {
		return err
	}
	style, _, _ := procGetWindowLongPtrW.Call(uintptr(hwnd), uintptr(gwlExStyle))

	layeredMu.Lock()
	hadLayered, seen := layeredBefore[hwnd]
	if !seen {
		hadLayered = style&exStyleLayered != 0
		layeredBefore[hwnd] = hadLayered
	}
	layeredMu.Unlock()

	next := passiveStyle(style, passive, hadLayered)
	if next == style {
		return nil
	}
	// The call returns the previous style, so zero is only a failure when
	// the style was not zero.
	if r, _, callErr := procSetWindowLongPtrW.Call(uintptr(hwnd), uintptr(gwlExStyle), next); r == 0 && style != 0 {
		return fmt.Errorf("set window style: %w", callErr)
	}
	if passive && !hadLayered {
		// A layered window stays invisible until its attributes are set.
		if r, _, callErr := procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, 255, lwaAlpha); r == 0 {
			return fmt.Errorf("set layered attributes: %w", callErr)
		}
	}
	return nil
}

// ShowPassive shows the window without activating it.
func ShowPassive(title string) error {
	hwnd, err := findWindow(title)
	if err != nil {
		return err
	}
	procShowWindow.Call(uintptr(hwnd), swShowNoActivate)
	return nil
}

func findWindow(title string) (windows.HWND, error) {
	name, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd, _, callErr := procFindWindowW.Call(0, uintptr(unsafe.Pointer(name)))
	if hwnd == 0 {
		return 0, fmt.Errorf("find window %q: %w", title, callErr)
	}
	return windows.HWND(hwnd), nil
}
