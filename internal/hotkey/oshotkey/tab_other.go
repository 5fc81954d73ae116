//go:build !linux

package oshotkey

import xhotkey "golang.design/x/hotkey"

const tabKey = xhotkey.KeyTab
