package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"translatoroverlay/internal/bootstrap"
	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/hotkey"
	"translatoroverlay/internal/hotkey/oshotkey"
	"translatoroverlay/internal/overlay"
	"translatoroverlay/internal/usecase"
)

const (
	eventSession     = "translator:session"
	eventError       = "translator:error"
	eventOverlay     = "translator:overlay"
	eventOverlayHide = "translator:overlay-hide"
	eventView        = "translator:view"

	viewOverlay  = "overlay"
	viewSettings = "settings"

	settingsWidth  = 720
	settingsHeight = 640
)

// App is the Wails application root. The single window is either the
// overlay or the settings panel. The overlay ignores the mouse and never
// takes focus where the platform supports it.
type App struct {
	ctx    context.Context
	rt     config.Runtime
	logger *slog.Logger

	services *bootstrap.Services
	bootErr  error

	window *windowMode

	mu           sync.Mutex
	settingsOpen bool
	quitting     bool
	recorders    map[domain.Action]*hotkey.Recorder
}

func NewApp(rt config.Runtime, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		rt:     rt,
		logger: logger,
		window: &windowMode{
			setPassive:  func(passive bool) error { return overlay.SetPassive(config.AppName, passive) },
			showPassive: func() error { return overlay.ShowPassive(config.AppName) },
			logger:      logger.With("component", "window"),
		},
		recorders: map[domain.Action]*hotkey.Recorder{},
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a.rt, bootstrap.Shell{
		Events:       a,
		Clipboard:    &wailsClipboard{},
		Window:       &wailsWindow{app: a},
		OpenSettings: a.OpenSettings,
		Quit:         a.Quit,
		Hotkeys:      oshotkey.New,
	}, a.logger)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.services = services

	services.Tray.Register()
	if err := services.Start(ctx); err != nil {
		a.logger.Error("hotkey registration failed", "err", err)
		a.SessionError(domain.ErrorCodeHotkey, err.Error())
	}
	a.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReady)
	a.logger.Info("application ready",
		"translate", services.Store.Snapshot().HotkeyTranslate,
		"copy", services.Store.Snapshot().HotkeyCopy,
		"settings", services.Store.Path())
}

func (a *App) shutdown(_ context.Context) {
	if a.services == nil {
		return
	}
	a.services.Close()
	a.services.Tray.Quit()
}

// beforeClose turns the window close button into "close settings".
func (a *App) beforeClose(_ context.Context) bool {
	a.mu.Lock()
	quitting := a.quitting
	a.mu.Unlock()
	if quitting {
		return false
	}
	a.CloseSettings()
	return true
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.services == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateError, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	return a.services.Controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	return map[string]string{
		"version":          config.AppVersion,
		"settingsFile":     a.rt.SettingsPath,
		"audioBackend":     a.rt.Audio.Backend,
		"audioInput":       a.rt.Audio.InputDevice,
		"audioInputFormat": a.rt.Audio.InputFormat,
		"deepgramModel":    a.rt.Deepgram.Model,
		"googleModel":      a.rt.Google.Model,
	}
}

func (a *App) GetSettings() (config.Settings, error) {
	if err := a.requireReady(); err != nil {
		return config.Settings{}, err
	}
	return a.services.Settings.Settings(), nil
}

func (a *App) GetCatalog() config.Catalog {
	return config.DefaultCatalog()
}

// TriggerTranslation starts a capture as if the translate hotkey was pressed.
func (a *App) TriggerTranslation() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.Trigger(a.ctx)
}

func (a *App) CopyLast() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.CopyLast(a.ctx)
}

func (a *App) SetHotkey(action string, text string) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	act, err := parseAction(action)
	if err != nil {
		return "", err
	}
	canonical, err := a.services.Settings.ChangeHotkey(act, text)
	if err != nil {
		var hkErr *usecase.HotkeyError
		if errors.As(err, &hkErr) {
			a.SessionError(domain.ErrorCodeHotkey, hkErr.Error())
		}
		return canonical, err
	}
	return canonical, nil
}

func (a *App) SetPosition(position string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.ChangePosition(position)
}

func (a *App) SetDisplayTime(seconds int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetDisplayTime(seconds)
}

func (a *App) SetPhraseTimeLimit(seconds int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetPhraseTimeLimit(seconds)
}

func (a *App) SetInitialSilence(seconds float64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetInitialSilence(seconds)
}

func (a *App) SetSourceLanguage(code string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetSourceLanguage(code)
}

func (a *App) SetTargetLanguage(code string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetTargetLanguage(code)
}

func (a *App) SetRecognizerEngine(engine string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetRecognizerEngine(engine)
}

func (a *App) SetTranslatorURL(url string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetTranslatorURL(url)
}

func (a *App) SetAppearance(appearance usecase.Appearance) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.SetAppearance(appearance)
}

func (a *App) ResetDefaults() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.services.Settings.ResetDefaults()
}

func (a *App) CheckTranslator() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Settings.CheckTranslator(a.ctx)
}

// StartHotkeyRecording begins capturing a new shortcut for action from the
// key events the settings panel forwards.
func (a *App) StartHotkeyRecording(action string) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	act, err := parseAction(action)
	if err != nil {
		return "", err
	}
	current := a.services.Settings.Settings().HotkeyTranslate
	if act == domain.ActionCopy {
		current = a.services.Settings.Settings().HotkeyCopy
	}
	rec := hotkey.NewRecorder(current)
	rec.Start()

	a.mu.Lock()
	a.recorders[act] = rec
	a.mu.Unlock()
	return rec.Display(), nil
}

// HotkeyInput is what the hotkey field shows while recording.
type HotkeyInput struct {
	Display string `json:"display"`
	Done    bool   `json:"done"`
}

// HotkeyKeyDown feeds a key press; Done is set once a non-modifier key
// completes the shortcut.
func (a *App) HotkeyKeyDown(action string, key string) (HotkeyInput, error) {
	var input HotkeyInput
	err := a.withRecorder(action, func(rec *hotkey.Recorder) {
		input.Display, input.Done = rec.KeyDown(key)
	})
	return input, err
}

func (a *App) HotkeyKeyUp(action string, key string) (string, error) {
	var display string
	err := a.withRecorder(action, func(rec *hotkey.Recorder) {
		display = rec.KeyUp(key)
	})
	return display, err
}

// StopHotkeyRecording ends recording and returns the captured shortcut, or
// the previous one when nothing was recorded.
func (a *App) StopHotkeyRecording(action string) (string, error) {
	var result string
	err := a.withRecorder(action, func(rec *hotkey.Recorder) {
		rec.Stop()
		result = rec.Result()
	})
	return result, err
}

func (a *App) withRecorder(action string, fn func(rec *hotkey.Recorder)) error {
	act, err := parseAction(action)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.recorders[act]
	if !ok {
		return fmt.Errorf("no hotkey recording in progress for %q", action)
	}
	fn(rec)
	return nil
}

// OpenSettings turns the window into the settings panel.
func (a *App) OpenSettings() {
	if a.ctx == nil {
		return
	}
	a.mu.Lock()
	a.settingsOpen = true
	a.mu.Unlock()

	a.window.interactive()
	runtime.WindowSetAlwaysOnTop(a.ctx, false)
	runtime.WindowSetSize(a.ctx, settingsWidth, settingsHeight)
	runtime.WindowCenter(a.ctx)
	runtime.WindowShow(a.ctx)
	runtime.EventsEmit(a.ctx, eventView, viewSettings)
}

// CloseSettings hides the panel and returns the window to overlay duty.
func (a *App) CloseSettings() {
	if a.ctx == nil {
		return
	}
	a.mu.Lock()
	a.settingsOpen = false
	a.mu.Unlock()

	runtime.WindowHide(a.ctx)
	runtime.EventsEmit(a.ctx, eventView, viewOverlay)
}

func (a *App) Quit() {
	a.mu.Lock()
	a.quitting = true
	a.mu.Unlock()
	if a.ctx != nil {
		runtime.Quit(a.ctx)
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) isSettingsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settingsOpen
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func parseAction(action string) (domain.Action, error) {
	switch domain.Action(action) {
	case domain.ActionTranslate, domain.ActionCopy:
		return domain.Action(action), nil
	default:
		return "", fmt.Errorf("%w: hotkey action %q", usecase.ErrUnknownOption, action)
	}
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return "Ready"
	case domain.SessionReasonCalibrating:
		return "Calibrating noise"
	case domain.SessionReasonSpeakNow:
		return "Speak now"
	case domain.SessionReasonProcessing:
		return "Processing speech"
	case domain.SessionReasonTranslating:
		return "Translating"
	case domain.SessionReasonTranslated:
		return "Translation ready"
	case domain.SessionReasonNoSpeech:
		return "No speech detected"
	case domain.SessionReasonUnrecognized:
		return "Speech not recognized"
	case domain.SessionReasonRecognitionFailed:
		return "Speech recognition failed"
	case domain.SessionReasonTranslationFailed:
		return "Translation failed"
	case domain.SessionReasonCaptureFailed:
		return "Microphone error"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapture:
		return "Microphone error"
	case domain.ErrorCodeRecognition:
		return "Speech recognition error"
	case domain.ErrorCodeTranslation:
		return "Translation error"
	case domain.ErrorCodeHotkey:
		return "Hotkey error"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeSettings:
		return "Settings error"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}

// wailsWindow draws overlay frames in the app window. While the settings
// panel is open frames are only forwarded to the page.
type wailsWindow struct {
	app *App
}

func (w *wailsWindow) ScreenSize() (overlay.Size, error) {
	screens, err := runtime.ScreenGetAll(w.app.ctx)
	if err != nil {
		return overlay.Size{}, err
	}
	return primaryScreen(screens)
}

func (w *wailsWindow) Render(frame overlay.Frame) {
	ctx := w.app.ctx
	if !w.app.isSettingsOpen() {
		runtime.WindowSetAlwaysOnTop(ctx, true)
		runtime.WindowSetSize(ctx, frame.Size.Width, frame.Size.Height)
		runtime.WindowSetPosition(ctx, frame.Position.X, frame.Position.Y)
		if !w.app.window.showOverlay() {
			runtime.WindowShow(ctx)
		}
	}
	runtime.EventsEmit(ctx, eventOverlay, frame)
}

func (w *wailsWindow) Hide() {
	ctx := w.app.ctx
	runtime.EventsEmit(ctx, eventOverlayHide)
	if !w.app.isSettingsOpen() {
		runtime.WindowHide(ctx)
	}
}

func primaryScreen(screens []runtime.Screen) (overlay.Size, error) {
	if len(screens) == 0 {
		return overlay.Size{}, errors.New("no screens reported")
	}
	chosen := screens[0]
	for _, s := range screens {
		if s.IsPrimary {
			chosen = s
			break
		}
	}
	return overlay.Size{Width: chosen.Size.Width, Height: chosen.Size.Height}, nil
}
