package tray

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"translatoroverlay/internal/config"
)

// Actions are the callbacks behind the tray menu.
type Actions struct {
	OpenSettings   func()
	ChangePosition func(code string) error
	Exit           func()
}

type checkItem interface {
	Check()
	Uncheck()
}

// Tray owns the system tray icon and menu.
type Tray struct {
	actions Actions
	logger  *slog.Logger

	mu        sync.Mutex
	position  string
	positions map[string]checkItem
}

func New(actions Actions, position string, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		actions:   actions,
		logger:    logger,
		position:  position,
		positions: map[string]checkItem{},
	}
}

// Run blocks on the tray event loop until Quit is called.
// Run owns the native event loop until Quit and must be called from the
// main goroutine. Use it when no other UI toolkit is running.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Register adds the tray icon to an event loop owned by another toolkit,
// such as the webview. It does not block.
func (t *Tray) Register() {
	systray.Register(t.onReady, t.onExit)
}

func (t *Tray) Quit() {
	systray.Quit()
}

// Apply keeps the position submenu in sync with settings changed elsewhere.
func (t *Tray) Apply(settings config.Settings) {
	t.setPosition(settings.OverlayPosition)
}

func (t *Tray) onReady() {
	systray.SetIcon(icon)
	systray.SetTitle(config.AppName)
	systray.SetTooltip(config.AppName)

	settings := systray.AddMenuItem("Open Settings", "Open the settings panel")
	positionMenu := systray.AddMenuItem("Overlay Position", "Where translations appear")
	t.mu.Lock()
	current := t.position
	t.mu.Unlock()
	for _, option := range config.OverlayPositions {
		item := positionMenu.AddSubMenuItemCheckbox(option.Label, "", option.Code == current)
		t.mu.Lock()
		t.positions[option.Code] = item
		t.mu.Unlock()
		go t.watchPosition(option.Code, item.ClickedCh)
	}
	systray.AddSeparator()
	exit := systray.AddMenuItem("Exit", "Quit "+config.AppName)

	go func() {
		for range settings.ClickedCh {
			if t.actions.OpenSettings != nil {
				t.actions.OpenSettings()
			}
		}
	}()
	go func() {
		<-exit.ClickedCh
		t.logger.Info("exit requested from tray")
		if t.actions.Exit != nil {
			t.actions.Exit()
		}
	}()
}

func (t *Tray) onExit() {
	t.logger.Debug("tray stopped")
}

func (t *Tray) watchPosition(code string, clicked <-chan struct{}) {
	for range clicked {
		t.selectPosition(code)
	}
}

func (t *Tray) selectPosition(code string) {
	if t.actions.ChangePosition != nil {
		if err := t.actions.ChangePosition(code); err != nil {
			t.logger.Error("failed to change overlay position", "position", code, "err", err)
			// Restore the check marks to the position that is still active.
			t.mu.Lock()
			current := t.position
			t.mu.Unlock()
			t.setPosition(current)
			return
		}
	}
	t.setPosition(code)
}

func (t *Tray) setPosition(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = code
	for c, item := range t.positions {
		if c == code {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}
