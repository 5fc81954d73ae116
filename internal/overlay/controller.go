package overlay

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
)

const (
	testDisplayTime = 3 * time.Second
	testText        = "Test overlay position"
)

// Style is the CSS-facing appearance of the overlay box.
type Style struct {
	FontSize        int    `json:"fontSize"`
	TextColor       string `json:"textColor"`
	BackgroundColor string `json:"backgroundColor"`
	Padding         int    `json:"padding"`
}

// Frame is everything a window needs to draw one overlay message.
type Frame struct {
	Text     string `json:"text"`
	Short    bool   `json:"short"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
	Style    Style  `json:"style"`
}

// Window draws frames on screen.
type Window interface {
	ScreenSize() (Size, error)
	Render(frame Frame)
	Hide()
}

type stopper interface {
	Stop() bool
}

// Controller sizes, positions and times overlay messages.
type Controller struct {
	window Window
	logger *slog.Logger
	after  func(d time.Duration, f func()) stopper

	mu       sync.Mutex
	settings config.Settings
	current  Frame
	visible  bool
	timer    stopper
	// generation invalidates hide callbacks whose timer lost a Stop race.
	generation uint64
}

func NewController(window Window, settings config.Settings, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		window:   window,
		logger:   logger,
		settings: settings,
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Show displays msg and arms the auto-hide timer. Blank text hides the overlay.
func (c *Controller) Show(msg domain.OverlayMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(msg.Text) == "" {
		c.stopTimerLocked()
		c.visible = false
		c.window.Hide()
		return
	}

	c.current = c.frameLocked(msg.Text, msg.Short)
	c.visible = true
	c.window.Render(c.current)

	delay := displayTime(c.settings)
	if msg.Test {
		delay = testDisplayTime
	}
	c.armLocked(delay)
}

// ShowPositionTest shows a short preview at the current anchor.
func (c *Controller) ShowPositionTest() {
	c.Show(domain.OverlayMessage{Text: testText, Short: true, Test: true})
}

// HideAndClear hides the overlay and forgets the shown text.
func (c *Controller) HideAndClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

// Apply restyles the overlay. A visible message is re-laid out and its
// hide timer restarted with the new display time.
func (c *Controller) Apply(settings config.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings = settings
	if !c.visible {
		return
	}
	c.current = c.frameLocked(c.current.Text, c.current.Short)
	c.window.Render(c.current)
	if c.timer != nil {
		c.armLocked(displayTime(settings))
	}
}

// Visible reports whether a message is on screen.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Text returns the text currently shown, or "" when hidden.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		return ""
	}
	return c.current.Text
}

func (c *Controller) frameLocked(text string, short bool) Frame {
	screen, err := c.window.ScreenSize()
	if err != nil {
		c.logger.Warn("screen size unavailable, using fallback", "err", err)
		screen = Size{Width: 1920, Height: 1080}
	}
	size := Layout(text, c.settings, short)
	return Frame{
		Text:     text,
		Short:    short,
		Size:     size,
		Position: Position(c.settings.OverlayPosition, size, screen, c.settings.Padding),
		Style: Style{
			FontSize:        c.settings.FontSize,
			TextColor:       c.settings.TextColor,
			BackgroundColor: c.settings.BackgroundColor,
			Padding:         c.settings.Padding,
		},
	}
}

func (c *Controller) armLocked(delay time.Duration) {
	c.stopTimerLocked()
	gen := c.generation
	c.timer = c.after(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			return
		}
		c.hideLocked()
	})
}

func (c *Controller) stopTimerLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) hideLocked() {
	c.stopTimerLocked()
	c.visible = false
	c.current.Text = ""
	c.window.Hide()
}

func displayTime(s config.Settings) time.Duration {
	return time.Duration(max(s.OverlayDisplayTime, 1)) * time.Second
}
