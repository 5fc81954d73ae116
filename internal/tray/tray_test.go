package tray

import (
	"errors"
	"testing"

	"translatoroverlay/internal/config"
)

type fakeItem struct {
	checked bool
}

func (f *fakeItem) Check()   { f.checked = true }
func (f *fakeItem) Uncheck() { f.checked = false }

func newTestTray(change func(string) error) (*Tray, map[string]*fakeItem) {
	tr := New(Actions{ChangePosition: change}, "top_center", nil)
	items := map[string]*fakeItem{}
	for _, option := range config.OverlayPositions {
		item := &fakeItem{checked: option.Code == "top_center"}
		items[option.Code] = item
		tr.positions[option.Code] = item
	}
	return tr, items
}

func checked(items map[string]*fakeItem) []string {
	var out []string
	for _, option := range config.OverlayPositions {
		if items[option.Code].checked {
			out = append(out, option.Code)
		}
	}
	return out
}

func TestTraySelectPositionMovesCheckMark(t *testing.T) {
	t.Parallel()

	var requested []string
	tr, items := newTestTray(func(code string) error {
		requested = append(requested, code)
		return nil
	})

	tr.selectPosition("bottom_left")
	if len(requested) != 1 || requested[0] != "bottom_left" {
		t.Fatalf("unexpected change requests: %q", requested)
	}
	if got := checked(items); len(got) != 1 || got[0] != "bottom_left" {
		t.Fatalf("expected only bottom_left checked, got %q", got)
	}
}

func TestTraySelectPositionFailureRestoresCheckMark(t *testing.T) {
	t.Parallel()

	tr, items := newTestTray(func(string) error { return errors.New("save failed") })
	items["top_right"].checked = true

	tr.selectPosition("top_right")
	if got := checked(items); len(got) != 1 || got[0] != "top_center" {
		t.Fatalf("expected top_center to stay checked, got %q", got)
	}
}

func TestTrayApplySyncsPosition(t *testing.T) {
	t.Parallel()

	tr, items := newTestTray(nil)
	s := config.Defaults()
	s.OverlayPosition = "bottom_right"
	tr.Apply(s)
	if got := checked(items); len(got) != 1 || got[0] != "bottom_right" {
		t.Fatalf("expected bottom_right checked, got %q", got)
	}
}
