//go:build linux

package oshotkey

import xhotkey "golang.design/x/hotkey"

// x/hotkey defines KeyTab as the Escape keysym on Linux. XK_Tab is 0xff09.
const tabKey = xhotkey.Key(0xff09)
