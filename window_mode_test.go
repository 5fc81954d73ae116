package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"translatoroverlay/internal/overlay"
)

type fakeNativeWindow struct {
	passiveErr error
	showErr    error
	styles     []bool
	shows      int
}

func (w *fakeNativeWindow) mode() *windowMode {
	return &windowMode{
		setPassive: func(passive bool) error {
			if w.passiveErr != nil {
				return w.passiveErr
			}
			w.styles = append(w.styles, passive)
			return nil
		},
		showPassive: func() error {
			w.shows++
			return w.showErr
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWindowModeShowsPassiveOverlay(t *testing.T) {
	t.Parallel()

	native := &fakeNativeWindow{}
	m := native.mode()
	if !m.showOverlay() || !m.showOverlay() {
		t.Fatalf("expected passive show")
	}
	if len(native.styles) != 1 || !native.styles[0] || native.shows != 2 {
		t.Fatalf("style must be set once and the window shown each time: %+v, %d shows", native.styles, native.shows)
	}

	m.interactive()
	m.interactive()
	if len(native.styles) != 2 || native.styles[1] {
		t.Fatalf("expected one switch back to interactive: %+v", native.styles)
	}

	m.showOverlay()
	if len(native.styles) != 3 || !native.styles[2] {
		t.Fatalf("overlay must become passive again after settings: %+v", native.styles)
	}
}

func TestWindowModeUnsupportedFallsBack(t *testing.T) {
	t.Parallel()

	native := &fakeNativeWindow{passiveErr: overlay.ErrPassiveUnsupported}
	m := native.mode()
	if m.showOverlay() {
		t.Fatalf("expected fallback to a normal show")
	}
	native.passiveErr = nil
	if m.showOverlay() {
		t.Fatalf("unsupported platforms must not be retried")
	}
	if len(native.styles) != 0 || native.shows != 0 {
		t.Fatalf("unexpected native calls: %+v, %d shows", native.styles, native.shows)
	}
}

func TestWindowModeRetriesAfterTransientFailure(t *testing.T) {
	t.Parallel()

	native := &fakeNativeWindow{showErr: errors.New("window not found")}
	m := native.mode()
	if m.showOverlay() {
		t.Fatalf("expected fallback when the window is missing")
	}
	native.showErr = nil
	if !m.showOverlay() {
		t.Fatalf("expected passive show once the window exists")
	}
}
