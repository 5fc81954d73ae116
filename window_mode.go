package main

import (
	"errors"
	"log/slog"
	"sync"

	"translatoroverlay/internal/overlay"
)

// windowMode switches the native window between the passive overlay, which
// ignores the mouse and never takes focus, and the interactive settings
// panel.
type windowMode struct {
	setPassive  func(passive bool) error
	showPassive func() error
	logger      *slog.Logger

	mu          sync.Mutex
	passive     bool
	unsupported bool
}

// showOverlay shows the window as a passive overlay. It returns false when
// that is not possible and the caller has to show the window normally.
func (m *windowMode) showOverlay() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsupported {
		return false
	}
	if !m.passive {
		if err := m.setPassive(true); err != nil {
			m.fail(err)
			return false
		}
		m.passive = true
	}
	if err := m.showPassive(); err != nil {
		m.fail(err)
		return false
	}
	return true
}

// interactive restores normal mouse and focus handling for the settings
// panel.
func (m *windowMode) interactive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.passive {
		return
	}
	if err := m.setPassive(false); err != nil {
		m.logger.Warn("failed to restore window input", "err", err)
		return
	}
	m.passive = false
}

func (m *windowMode) fail(err error) {
	if errors.Is(err, overlay.ErrPassiveUnsupported) {
		m.unsupported = true
		m.logger.Info("overlay is shown as a normal window", "reason", err)
		return
	}
	m.logger.Warn("failed to show passive overlay", "err", err)
}
