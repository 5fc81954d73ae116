package hotkey

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"translatoroverlay/internal/domain"
)

func TestParseCanonicalForms(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ctrl+m":             "ctrl+m",
		"CTRL + SHIFT + C":   "ctrl+shift+c",
		"shift+ctrl+c":       "ctrl+shift+c",
		"control+alt gr+f1":  "alt+ctrl+f1",
		"cmd+space":          "win+space",
		"win+return":         "win+enter",
		"f9":                 "f9",
		"ctrl_l+shift_r+esc": "ctrl+shift+esc",
	}
	for input, want := range cases {
		input := input
		want := want
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			got, err := Canonical(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Fatalf("unexpected canonical form: %q", got)
			}
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "ctrl+", "ctrl+shift", "ctrl+a+b", "ctrl+nope", "+a"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidHotkey) {
			t.Fatalf("expected invalid hotkey for %q, got %v", input, err)
		}
	}
}

func TestSameComparesCanonically(t *testing.T) {
	t.Parallel()

	if !Same("ctrl+shift+c", "Shift+Ctrl+C") {
		t.Fatalf("expected equivalent combos")
	}
	if Same("ctrl+m", "ctrl+shift+m") {
		t.Fatalf("expected different combos")
	}
}

func TestComboUpper(t *testing.T) {
	t.Parallel()

	combo, err := Parse("ctrl+m")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if combo.Upper() != "CTRL+M" {
		t.Fatalf("unexpected upper form: %q", combo.Upper())
	}
}

func TestRecorderCapturesModifiersThenKey(t *testing.T) {
	t.Parallel()

	r := NewRecorder("ctrl+m")
	r.Start()

	if got, done := r.KeyDown("Shift"); done || got != "shift + ..." {
		t.Fatalf("unexpected display after shift: %q done=%v", got, done)
	}
	if got, done := r.KeyDown("Control"); done || got != "ctrl + shift + ..." {
		t.Fatalf("unexpected display after ctrl: %q done=%v", got, done)
	}
	got, done := r.KeyDown("K")
	if !done || got != "ctrl+shift+k" {
		t.Fatalf("unexpected final display: %q done=%v", got, done)
	}
	if r.Recording() {
		t.Fatalf("expected recording to stop")
	}
	if r.Result() != "ctrl+shift+k" {
		t.Fatalf("unexpected result: %q", r.Result())
	}
}

func TestRecorderAcceptsKeyCodes(t *testing.T) {
	t.Parallel()

	r := NewRecorder("ctrl+m")
	r.Start()
	r.KeyDown("ShiftLeft")
	r.KeyDown("ControlRight")
	got, done := r.KeyDown("Digit1")
	if !done || got != "ctrl+shift+1" {
		t.Fatalf("unexpected display: %q done=%v", got, done)
	}
	if _, err := Accept(r.Result()); err != nil {
		t.Fatalf("recorded hotkey rejected: %v", err)
	}
}

func TestNormalizeKeyCodes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"KeyC":        "c",
		"Digit7":      "7",
		"Numpad4":     "4",
		"NumpadEnter": "enter",
		"AltLeft":     "alt",
		"MetaRight":   "win",
		"OSLeft":      "win",
		"F5":          "f5",
		"Escape":      "esc",
		"Keyboard":    "keyboard",
		"NumpadAdd":   "numpadadd",
	}
	for in, want := range cases {
		if got := NormalizeKeyName(in); got != want {
			t.Errorf("NormalizeKeyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecorderKeyUpUpdatesPrompt(t *testing.T) {
	t.Parallel()

	r := NewRecorder("ctrl+m")
	r.Start()
	r.KeyDown("alt")
	if got := r.KeyUp("alt"); got != "Press keys..." {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestRecorderStopWithoutInputRestoresInitial(t *testing.T) {
	t.Parallel()

	r := NewRecorder("ctrl+m")
	r.Start()
	r.KeyDown("ctrl")
	r.Stop()
	if r.Display() != "ctrl+m" || r.Result() != "ctrl+m" {
		t.Fatalf("expected initial hotkey, got %q/%q", r.Display(), r.Result())
	}
}

func TestAccept(t *testing.T) {
	t.Parallel()

	if _, err := Accept("ctrl + ..."); !errors.Is(err, ErrIncompleteHotkey) {
		t.Fatalf("expected incomplete error, got %v", err)
	}
	if _, err := Accept("Press keys..."); !errors.Is(err, ErrIncompleteHotkey) {
		t.Fatalf("expected incomplete error, got %v", err)
	}
	if _, err := Accept("ctrl+bogus"); !errors.Is(err, ErrInvalidHotkey) {
		t.Fatalf("expected invalid error, got %v", err)
	}
	got, err := Accept(" Alt+F1 ")
	if err != nil || got != "alt+f1" {
		t.Fatalf("unexpected accept result: %q %v", got, err)
	}
}

func TestManagerBindDispatchesKeydown(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{}
	m := NewManager(factory.new, discardLogger())

	fired := make(chan struct{}, 1)
	combo, _ := Parse("ctrl+m")
	if err := m.Bind(domain.ActionTranslate, combo, func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	factory.last().keydown <- struct{}{}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("handler was not called")
	}

	current, ok := m.Current(domain.ActionTranslate)
	if !ok || current != combo {
		t.Fatalf("unexpected current combo: %+v %v", current, ok)
	}

	m.UnbindAll()
	if !factory.last().unregistered() {
		t.Fatalf("expected unregister on UnbindAll")
	}
}

func TestManagerBindFailureRestoresPrevious(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{failFor: map[string]error{"ctrl+k": errors.New("already taken")}}
	m := NewManager(factory.new, discardLogger())

	oldCombo, _ := Parse("ctrl+m")
	if err := m.Bind(domain.ActionTranslate, oldCombo, func() {}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	newCombo, _ := Parse("ctrl+k")
	err := m.Bind(domain.ActionTranslate, newCombo, func() {})
	if err == nil {
		t.Fatalf("expected bind error")
	}
	if errors.Is(err, ErrRollbackFailed) {
		t.Fatalf("rollback should have succeeded: %v", err)
	}

	current, ok := m.Current(domain.ActionTranslate)
	if !ok || current != oldCombo {
		t.Fatalf("expected previous combo restored, got %+v %v", current, ok)
	}
}

func TestManagerBindReportsRollbackFailure(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{}
	m := NewManager(factory.new, discardLogger())

	oldCombo, _ := Parse("ctrl+m")
	if err := m.Bind(domain.ActionCopy, oldCombo, func() {}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	factory.setFailures(map[string]error{
		"ctrl+k": errors.New("taken"),
		"ctrl+m": errors.New("also taken"),
	})
	newCombo, _ := Parse("ctrl+k")
	err := m.Bind(domain.ActionCopy, newCombo, func() {})
	if !errors.Is(err, ErrRollbackFailed) {
		t.Fatalf("expected rollback failure, got %v", err)
	}
	if _, ok := m.Current(domain.ActionCopy); ok {
		t.Fatalf("expected no active binding after failed rollback")
	}
}

func TestManagerWithoutFactoryIsUnavailable(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, discardLogger())
	combo, _ := Parse("ctrl+m")
	if err := m.Bind(domain.ActionTranslate, combo, func() {}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, ok := m.Current(domain.ActionTranslate); ok {
		t.Fatalf("expected no binding")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFactory struct {
	mu       sync.Mutex
	failFor  map[string]error
	bindings []*fakeBinding
}

func (f *fakeFactory) new(combo Combo) (Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &fakeBinding{
		keydown:     make(chan struct{}, 1),
		registerErr: f.failFor[combo.String()],
	}
	f.bindings = append(f.bindings, b)
	return b, nil
}

func (f *fakeFactory) setFailures(failures map[string]error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor = failures
}

func (f *fakeFactory) last() *fakeBinding {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bindings[len(f.bindings)-1]
}

type fakeBinding struct {
	mu          sync.Mutex
	keydown     chan struct{}
	registerErr error
	released    bool
}

func (b *fakeBinding) Register() error { return b.registerErr }

func (b *fakeBinding) Unregister() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	return nil
}

func (b *fakeBinding) Keydown() <-chan struct{} { return b.keydown }

func (b *fakeBinding) unregistered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
