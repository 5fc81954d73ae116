package hotkey

import (
	"fmt"
	"sort"
	"strings"
)

const recordingPrompt = "Press keys..."

// Recorder captures a key combination from a stream of key events, the way
// the "Change Hotkey" dialog does: modifiers accumulate until the first
// non-modifier key is pressed, which completes the combination.
type Recorder struct {
	initial   string
	active    bool
	pressed   map[string]bool
	recorded  []string
	display   string
	candidate string
}

func NewRecorder(initial string) *Recorder {
	return &Recorder{
		initial:   initial,
		pressed:   make(map[string]bool),
		display:   initial,
		candidate: initial,
	}
}

// Start begins a recording session, discarding earlier input.
func (r *Recorder) Start() {
	r.active = true
	r.pressed = make(map[string]bool)
	r.recorded = nil
	r.display = ""
}

// Recording reports whether a session is in progress.
func (r *Recorder) Recording() bool {
	return r.active
}

// KeyDown feeds a key press. It returns the text to show and whether the
// combination is complete.
func (r *Recorder) KeyDown(name string) (string, bool) {
	if !r.active {
		return r.display, false
	}
	key := NormalizeKeyName(name)
	if key == "" {
		return r.display, false
	}
	r.pressed[key] = true

	if IsModifier(key) {
		r.display = r.heldModifiersDisplay()
		return r.display, false
	}

	r.recorded = append(r.heldModifiers(), key)
	r.candidate = strings.Join(r.recorded, "+")
	r.display = r.candidate
	r.Stop()
	return r.display, true
}

// KeyUp feeds a key release and returns the text to show.
func (r *Recorder) KeyUp(name string) string {
	key := NormalizeKeyName(name)
	delete(r.pressed, key)
	if r.active {
		r.display = r.heldModifiersDisplay()
	}
	return r.display
}

// Stop ends the session; with nothing recorded the initial hotkey is restored.
func (r *Recorder) Stop() {
	if !r.active {
		return
	}
	r.active = false
	if len(r.recorded) == 0 {
		r.display = r.initial
		r.candidate = r.initial
	}
}

// Display is the text currently shown in the input field.
func (r *Recorder) Display() string {
	return r.display
}

// Result is the recorded (or initial) combination.
func (r *Recorder) Result() string {
	return r.candidate
}

func (r *Recorder) heldModifiers() []string {
	held := make([]string, 0, len(r.pressed))
	for key := range r.pressed {
		if IsModifier(key) {
			held = append(held, key)
		}
	}
	sort.Strings(held)
	return held
}

func (r *Recorder) heldModifiersDisplay() string {
	held := r.heldModifiers()
	if len(held) == 0 {
		return recordingPrompt
	}
	return strings.Join(held, " + ") + " + ..."
}

// Accept validates the text the user confirms in the dialog and returns its
// canonical form.
func Accept(text string) (string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || strings.Contains(text, "...") || text == strings.ToLower(recordingPrompt) {
		return "", ErrIncompleteHotkey
	}
	combo, err := Parse(text)
	if err != nil {
		return "", fmt.Errorf("the shortcut %q has an invalid format (examples: ctrl+shift+a, alt+f1, win+space): %w", text, err)
	}
	return combo.String(), nil
}
