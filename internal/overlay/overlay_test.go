package overlay

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
)

func TestLayoutClampsWidthAndHeight(t *testing.T) {
	t.Parallel()

	s := config.Defaults()

	short := Layout("Hi", s, false)
	if short.Width != s.OverlayMinWidth {
		t.Fatalf("expected min width, got %d", short.Width)
	}
	if short.Height != s.OverlayMinHeight {
		t.Fatalf("expected min height, got %d", short.Height)
	}

	long := Layout(strings.Repeat("translation ", 200), s, false)
	if long.Width != s.OverlayMaxWidth {
		t.Fatalf("expected max width, got %d", long.Width)
	}
	if long.Height != s.OverlayMaxHeight {
		t.Fatalf("expected max height cap, got %d", long.Height)
	}

	status := Layout(strings.Repeat("word ", 100), s, true)
	if status.Height != s.OverlayShortTextMaxHeight {
		t.Fatalf("expected short-text cap, got %d", status.Height)
	}
}

func TestLayoutEstimatesLines(t *testing.T) {
	t.Parallel()

	s := config.Defaults()
	s.FontSize = 20
	s.Padding = 10
	s.OverlayMinHeight = 1

	// 11 px per glyph and 780 px of text width give 70 characters a line.
	one := Layout(strings.Repeat("a", 40), s, false)
	if one.Width != 40*11+20 {
		t.Fatalf("unexpected single-line width: %d", one.Width)
	}
	if one.Height != 27+10+1 {
		t.Fatalf("unexpected single-line height: %d", one.Height)
	}

	two := Layout(strings.Repeat("a", 40)+" "+strings.Repeat("b", 40), s, false)
	if two.Height != 54+10+1 {
		t.Fatalf("unexpected two-line height: %d", two.Height)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text  string
		width int
		want  []string
	}{
		{"hello world", 20, []string{"hello world"}},
		{"hello world", 7, []string{"hello", "world"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"one\ntwo", 20, []string{"one", "two"}},
		{"zażółć gęślą", 6, []string{"zażółć", "gęślą"}},
	}
	for _, tc := range cases {
		got := wrap(tc.text, tc.width)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Fatalf("wrap(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestPositionAnchors(t *testing.T) {
	t.Parallel()

	screen := Size{Width: 1920, Height: 1080}
	size := Size{Width: 400, Height: 100}
	cases := map[string]Point{
		"top_left":      {X: 10, Y: 10},
		"top_center":    {X: 760, Y: 10},
		"top_right":     {X: 1510, Y: 10},
		"bottom_left":   {X: 10, Y: 970},
		"bottom_center": {X: 760, Y: 970},
		"bottom_right":  {X: 1510, Y: 970},
		"nowhere":       {X: 760, Y: 10},
	}
	for anchor, want := range cases {
		if got := Position(anchor, size, screen, 10); got != want {
			t.Fatalf("Position(%q) = %+v, want %+v", anchor, got, want)
		}
	}
}

func TestControllerShowArmsDisplayTimer(t *testing.T) {
	t.Parallel()

	c, window, timers := newTestController(config.Defaults())
	c.Show(domain.OverlayMessage{Text: "good morning"})

	frame, ok := window.last()
	if !ok || frame.Text != "good morning" || frame.Style.FontSize != 18 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if frame.Position.Y != 10 {
		t.Fatalf("expected top anchor, got %+v", frame.Position)
	}
	if d := timers.lastDelay(); d != 15*time.Second {
		t.Fatalf("expected display time delay, got %s", d)
	}

	timers.fire()
	if c.Visible() || window.hideCount() != 1 {
		t.Fatalf("expected timer to hide overlay")
	}
}

func TestControllerNewMessageReplacesTimer(t *testing.T) {
	t.Parallel()

	c, _, timers := newTestController(config.Defaults())
	c.Show(domain.OverlayMessage{Text: "first"})
	stale := timers.pending()
	c.Show(domain.OverlayMessage{Text: "second"})

	if !stale.stopped {
		t.Fatalf("expected previous timer to be stopped")
	}
	stale.f()
	if !c.Visible() || c.Text() != "second" {
		t.Fatalf("stale timer must not hide the new message")
	}
}

func TestControllerBlankTextHides(t *testing.T) {
	t.Parallel()

	c, window, _ := newTestController(config.Defaults())
	c.Show(domain.OverlayMessage{Text: "x"})
	c.Show(domain.OverlayMessage{Text: "   "})
	if c.Visible() || window.hideCount() != 1 || window.renderCount() != 1 {
		t.Fatalf("blank text should hide without rendering")
	}
}

func TestControllerPositionTestUsesShortTimer(t *testing.T) {
	t.Parallel()

	s := config.Defaults()
	s.OverlayPosition = "bottom_right"
	c, window, timers := newTestController(s)
	c.ShowPositionTest()

	frame, _ := window.last()
	if frame.Text != "Test overlay position" || !frame.Short {
		t.Fatalf("unexpected test frame: %+v", frame)
	}
	if frame.Position.Y != 1080-frame.Size.Height-10 {
		t.Fatalf("expected bottom anchor, got %+v", frame.Position)
	}
	if d := timers.lastDelay(); d != 3*time.Second {
		t.Fatalf("expected 3s test display, got %s", d)
	}
}

func TestControllerApplyRestylesVisibleMessage(t *testing.T) {
	t.Parallel()

	c, window, timers := newTestController(config.Defaults())
	c.Show(domain.OverlayMessage{Text: "hello"})

	next := config.Defaults()
	next.FontSize = 30
	next.OverlayDisplayTime = 40
	c.Apply(next)

	frame, _ := window.last()
	if window.renderCount() != 2 || frame.Style.FontSize != 30 || frame.Text != "hello" {
		t.Fatalf("expected re-render with new style, got %+v", frame)
	}
	if d := timers.lastDelay(); d != 40*time.Second {
		t.Fatalf("expected timer re-armed with new display time, got %s", d)
	}

	c.HideAndClear()
	c.Apply(config.Defaults())
	if window.renderCount() != 2 {
		t.Fatalf("hidden overlay must not render on apply")
	}
}

func TestControllerScreenFallback(t *testing.T) {
	t.Parallel()

	c, window, _ := newTestController(config.Defaults())
	window.screenErr = errors.New("no display")
	c.Show(domain.OverlayMessage{Text: "hello"})
	frame, _ := window.last()
	if frame.Position.X != (1920-frame.Size.Width)/2 {
		t.Fatalf("expected fallback screen, got %+v", frame.Position)
	}
}

func newTestController(s config.Settings) (*Controller, *fakeWindow, *fakeTimers) {
	window := &fakeWindow{screen: Size{Width: 1920, Height: 1080}}
	timers := &fakeTimers{}
	c := NewController(window, s, nil)
	c.after = timers.after
	return c, window, timers
}

type fakeWindow struct {
	mu        sync.Mutex
	screen    Size
	screenErr error
	frames    []Frame
	hides     int
}

func (f *fakeWindow) ScreenSize() (Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen, f.screenErr
}

func (f *fakeWindow) Render(frame Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
}

func (f *fakeWindow) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
}

func (f *fakeWindow) last() (Frame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return Frame{}, false
	}
	return f.frames[len(f.frames)-1], true
}

func (f *fakeWindow) renderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeWindow) hideCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hides
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeTimers struct {
	timers []*fakeTimer
}

func (f *fakeTimers) after(d time.Duration, fn func()) stopper {
	t := &fakeTimer{delay: d, f: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeTimers) pending() *fakeTimer {
	return f.timers[len(f.timers)-1]
}

func (f *fakeTimers) lastDelay() time.Duration {
	return f.pending().delay
}

func (f *fakeTimers) fire() {
	f.pending().f()
}

func TestPassiveStyle(t *testing.T) {
	t.Parallel()

	const base = 0x00000100
	on := passiveStyle(base, true, false)
	if on&exStyleTransparent == 0 || on&exStyleNoActivate == 0 || on&exStyleLayered == 0 {
		t.Fatalf("passive bits missing: %#x", on)
	}
	if on&base == 0 {
		t.Fatalf("existing bits dropped: %#x", on)
	}
	if off := passiveStyle(on, false, false); off != base {
		t.Fatalf("expected original style back, got %#x", off)
	}
	if off := passiveStyle(base|exStyleLayered|exStyleTransparent, false, true); off != base|exStyleLayered {
		t.Fatalf("a window layered before must stay layered, got %#x", off)
	}
}
