package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/hotkey"
	"translatoroverlay/internal/ports"
)

var (
	ErrHotkeyInUse   = errors.New("each function must have a unique keyboard shortcut")
	ErrUnknownOption = errors.New("unknown option")
	ErrOutOfRange    = errors.New("value out of range")
	ErrInvalidURL    = errors.New("url must start with http:// or https://")
)

const maxSummaryItems = 6

// HotkeyError reports a failed hotkey change. Critical is set when the
// previous hotkey could not be restored either.
type HotkeyError struct {
	Action    domain.Action
	Requested string
	Previous  string
	Critical  bool
	Err       error
}

func (e *HotkeyError) Error() string {
	if e.Critical {
		return fmt.Sprintf("Failed to set shortcut '%s' and could not restore '%s'.\nError: %v\n\nThe %s hotkey is inactive.",
			strings.ToUpper(e.Requested), strings.ToUpper(e.Previous), e.Err, strings.ToLower(e.Action.Label()))
	}
	return fmt.Sprintf("Failed to set shortcut '%s'.\nError: %v\n\nPrevious shortcut '%s' remains active.",
		strings.ToUpper(e.Requested), e.Err, strings.ToUpper(e.Previous))
}

func (e *HotkeyError) Unwrap() error {
	return e.Err
}

// SettingsStore persists the settings record.
type SettingsStore interface {
	Snapshot() config.Settings
	Update(fn func(*config.Settings)) (config.Settings, error)
	Reset() ([]string, config.Settings, error)
}

// HotkeyBinder registers global hotkeys with rollback.
type HotkeyBinder interface {
	Bind(action domain.Action, combo hotkey.Combo, handler func()) error
	Unbind(action domain.Action)
	Current(action domain.Action) (hotkey.Combo, bool)
}

// OverlayConfigurer re-styles the overlay and previews its position.
type OverlayConfigurer interface {
	Apply(settings config.Settings)
	ShowPositionTest()
}

// TranslatorProbe checks that a translation server answers.
type TranslatorProbe func(ctx context.Context, url string) error

// Appearance is the overlay styling subset of the settings.
type Appearance struct {
	FontSize        int    `json:"fontSize"`
	TextColor       string `json:"textColor"`
	BackgroundColor string `json:"backgroundColor"`
	Padding         int    `json:"padding"`
}

// SettingsService applies settings-panel and tray changes: it validates,
// re-registers hotkeys, restyles the overlay, persists and notifies.
type SettingsService struct {
	store    SettingsStore
	hotkeys  HotkeyBinder
	overlay  OverlayConfigurer
	notifier ports.Notifier
	probe    TranslatorProbe
	handlers map[domain.Action]func()
	logger   *slog.Logger

	// mu serializes changes so validation and persistence see one record.
	mu       sync.Mutex
	suppress bool
}

func NewSettingsService(
	store SettingsStore,
	hotkeys HotkeyBinder,
	overlay OverlayConfigurer,
	notifier ports.Notifier,
	probe TranslatorProbe,
	handlers map[domain.Action]func(),
	logger *slog.Logger,
) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		store:    store,
		hotkeys:  hotkeys,
		overlay:  overlay,
		notifier: notifier,
		probe:    probe,
		handlers: handlers,
		logger:   logger,
	}
}

// Settings returns the current record.
func (s *SettingsService) Settings() config.Settings {
	return s.store.Snapshot()
}

var hotkeyActions = []domain.Action{domain.ActionTranslate, domain.ActionCopy}

// BindAll registers both hotkeys from the current settings. Failures are
// joined so the caller can show one startup error.
func (s *SettingsService) BindAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindAll(s.store.Snapshot())
}

// bindAll moves both actions to the hotkeys in settings. Both are released
// before either is registered, so the two actions may swap combinations.
// If any registration fails, the previously active combinations are
// restored and the error is returned.
func (s *SettingsService) bindAll(settings config.Settings) error {
	previous := make(map[domain.Action]hotkey.Combo, len(hotkeyActions))
	for _, action := range hotkeyActions {
		if combo, ok := s.hotkeys.Current(action); ok {
			previous[action] = combo
		}
		s.hotkeys.Unbind(action)
	}

	var errs []error
	for _, action := range hotkeyActions {
		text := hotkeyFor(settings, action)
		combo, err := hotkey.Parse(text)
		if err == nil {
			err = s.hotkeys.Bind(action, combo, s.handlers[action])
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s hotkey %q: %w", action, strings.ToUpper(text), err))
		}
	}
	if len(errs) == 0 || len(previous) == 0 {
		return errors.Join(errs...)
	}

	for _, action := range hotkeyActions {
		s.hotkeys.Unbind(action)
	}
	for _, action := range hotkeyActions {
		combo, ok := previous[action]
		if !ok {
			continue
		}
		if err := s.hotkeys.Bind(action, combo, s.handlers[action]); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s hotkey %q: %v", hotkey.ErrRollbackFailed, action, combo.Upper(), err))
		}
	}
	return errors.Join(errs...)
}

// boundTo reports whether both hotkeys in settings are already registered.
func (s *SettingsService) boundTo(settings config.Settings) bool {
	for _, action := range hotkeyActions {
		want, err := hotkey.Parse(hotkeyFor(settings, action))
		if err != nil {
			return false
		}
		if got, ok := s.hotkeys.Current(action); !ok || got != want {
			return false
		}
	}
	return true
}

// activeHotkeys returns settings with the hotkeys replaced by the
// combinations that are currently registered.
func (s *SettingsService) activeHotkeys(settings config.Settings) config.Settings {
	for _, action := range hotkeyActions {
		if combo, ok := s.hotkeys.Current(action); ok {
			setHotkey(&settings, action, combo.String())
		}
	}
	return settings
}

// ChangeHotkey validates text, registers it for action and persists it. It
// returns the canonical hotkey that is active afterwards.
func (s *SettingsService) ChangeHotkey(action domain.Action, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical, err := hotkey.Accept(text)
	if err != nil {
		return "", err
	}
	settings := s.store.Snapshot()
	previous := hotkeyFor(settings, action)
	if hotkey.Same(canonical, previous) {
		return previous, nil
	}
	if hotkey.Same(canonical, hotkeyFor(settings, otherAction(action))) {
		return previous, fmt.Errorf("%w: %q is already used by the %s function", ErrHotkeyInUse, canonical, strings.ToLower(otherAction(action).Label()))
	}

	combo, err := hotkey.Parse(canonical)
	if err != nil {
		return previous, err
	}
	if err := s.hotkeys.Bind(action, combo, s.handlers[action]); err != nil {
		return previous, &HotkeyError{
			Action:    action,
			Requested: canonical,
			Previous:  previous,
			Critical:  errors.Is(err, hotkey.ErrRollbackFailed),
			Err:       err,
		}
	}

	if _, err := s.store.Update(func(next *config.Settings) { setHotkey(next, action, canonical) }); err != nil {
		s.logger.Warn("hotkey changed but settings were not saved", "action", action, "err", err)
	}
	s.notify(fmt.Sprintf("%s hotkey changed to: %s", action.Label(), strings.ToUpper(canonical)))
	return canonical, nil
}

// ChangePosition moves the overlay to one of the six anchors and shows a
// short test message there.
func (s *SettingsService) ChangePosition(position string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !config.Has(config.OverlayPositions, position) {
		return fmt.Errorf("%w: overlay position %q", ErrUnknownOption, position)
	}
	if s.store.Snapshot().OverlayPosition == position {
		return nil
	}
	settings, err := s.store.Update(func(next *config.Settings) { next.OverlayPosition = position })
	s.overlay.Apply(settings)
	s.overlay.ShowPositionTest()
	if err != nil {
		return err
	}
	s.notify("Position changed to: " + config.Label(config.OverlayPositions, position))
	return nil
}

func (s *SettingsService) SetDisplayTime(seconds int) error {
	if seconds < 5 || seconds > 60 {
		return fmt.Errorf("%w: display time must be between 5 and 60 seconds", ErrOutOfRange)
	}
	return s.apply(func(next *config.Settings) { next.OverlayDisplayTime = seconds })
}

func (s *SettingsService) SetPhraseTimeLimit(seconds int) error {
	if seconds < 10 || seconds > 120 {
		return fmt.Errorf("%w: max recording time must be between 10 and 120 seconds", ErrOutOfRange)
	}
	return s.apply(func(next *config.Settings) { next.PhraseTimeLimit = seconds })
}

func (s *SettingsService) SetInitialSilence(seconds float64) error {
	if seconds < 1.5 || seconds > 8.0 {
		return fmt.Errorf("%w: initial silence timeout must be between 1.5 and 8.0 seconds", ErrOutOfRange)
	}
	return s.apply(func(next *config.Settings) { next.InitialSilenceTimeout = seconds })
}

func (s *SettingsService) SetSourceLanguage(code string) error {
	if !config.Has(config.SourceLanguages, code) {
		return fmt.Errorf("%w: source language %q", ErrUnknownOption, code)
	}
	return s.apply(func(next *config.Settings) { next.SourceLanguage = code })
}

func (s *SettingsService) SetTargetLanguage(code string) error {
	if !config.Has(config.TargetLanguages, code) {
		return fmt.Errorf("%w: target language %q", ErrUnknownOption, code)
	}
	return s.apply(func(next *config.Settings) { next.TargetLanguage = code })
}

func (s *SettingsService) SetRecognizerEngine(engine string) error {
	if !config.Has(config.RecognizerEngines, engine) {
		return fmt.Errorf("%w: speech engine %q", ErrUnknownOption, engine)
	}
	return s.apply(func(next *config.Settings) { next.RecognizerEngine = engine })
}

func (s *SettingsService) SetTranslatorURL(url string) error {
	url = strings.TrimSpace(url)
	if !config.ValidURL(url) {
		return ErrInvalidURL
	}
	return s.apply(func(next *config.Settings) { next.LibreTranslateURL = url })
}

func (s *SettingsService) SetAppearance(a Appearance) error {
	if a.FontSize < 6 || a.FontSize > 96 {
		return fmt.Errorf("%w: font size must be between 6 and 96", ErrOutOfRange)
	}
	if a.Padding < 0 || a.Padding > 100 {
		return fmt.Errorf("%w: padding must be between 0 and 100", ErrOutOfRange)
	}
	return s.apply(func(next *config.Settings) {
		next.FontSize = a.FontSize
		next.TextColor = a.TextColor
		next.BackgroundColor = a.BackgroundColor
		next.Padding = a.Padding
	})
}

// ResetDefaults registers the default hotkeys, restores every setting and
// reports one summary notification instead of one per change. Nothing is
// changed when the default hotkeys cannot be registered.
func (s *SettingsService) ResetDefaults() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if defaults := config.Defaults(); !s.boundTo(defaults) {
		if err := s.bindAll(defaults); err != nil {
			s.logger.Error("default hotkeys could not be registered", "err", err)
			return "", fmt.Errorf("defaults not applied: %w", err)
		}
	}

	s.suppress = true
	changed, defaults, saveErr := s.store.Reset()
	s.overlay.Apply(defaults)
	s.suppress = false

	summary := resetSummary(changed)
	s.notify(summary)
	return summary, saveErr
}

// CheckTranslator probes the configured translation server.
func (s *SettingsService) CheckTranslator(ctx context.Context) error {
	if s.probe == nil {
		return errors.New("translator check is not available")
	}
	return s.probe(ctx, s.store.Snapshot().LibreTranslateURL)
}

// Reloaded applies a settings record that changed on disk.
func (s *SettingsService) Reloaded(changed []string, settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range changed {
		if key != "hotkey_translate" && key != "hotkey_copy" {
			continue
		}
		if err := s.bindAll(settings); err != nil {
			s.logger.Error("failed to apply reloaded hotkeys, keeping the active ones", "err", err)
			settings = s.activeHotkeys(settings)
			_, saveErr := s.store.Update(func(next *config.Settings) {
				next.HotkeyTranslate = settings.HotkeyTranslate
				next.HotkeyCopy = settings.HotkeyCopy
			})
			if saveErr != nil {
				s.logger.Warn("failed to save the active hotkeys", "err", saveErr)
			}
		}
		break
	}
	s.overlay.Apply(settings)
	s.logger.Info("settings reloaded from disk", "changed", strings.Join(changed, ","))
}

func (s *SettingsService) apply(fn func(*config.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.Update(fn)
	s.overlay.Apply(settings)
	return err
}

func (s *SettingsService) notify(message string) {
	if s.suppress || s.notifier == nil {
		return
	}
	s.notifier.Notify(config.AppName, message)
}

func resetSummary(changed []string) string {
	if len(changed) == 0 {
		return "Defaults applied (no changes needed)."
	}
	items := make([]string, 0, maxSummaryItems+1)
	for i, key := range changed {
		if i == maxSummaryItems {
			items = append(items, "…")
			break
		}
		items = append(items, config.FriendlyName(key))
	}
	return "Defaults applied: " + strings.Join(items, ", ")
}

func hotkeyFor(settings config.Settings, action domain.Action) string {
	if action == domain.ActionCopy {
		return settings.HotkeyCopy
	}
	return settings.HotkeyTranslate
}

func setHotkey(settings *config.Settings, action domain.Action, value string) {
	if action == domain.ActionCopy {
		settings.HotkeyCopy = value
		return
	}
	settings.HotkeyTranslate = value
}

func otherAction(action domain.Action) domain.Action {
	if action == domain.ActionCopy {
		return domain.ActionTranslate
	}
	return domain.ActionCopy
}
