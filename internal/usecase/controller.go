package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/listener"
	"translatoroverlay/internal/ports"
)

var (
	ErrSessionActive = errors.New("a translation session is already running")
	ErrNothingToCopy = errors.New("no translated text to copy")
)

// Config controls capture and network timing for a session.
type Config struct {
	Audio               ports.AudioConfig
	ChunkSize           int
	CalibrationDuration time.Duration
	RecognitionTimeout  time.Duration
	TranslationTimeout  time.Duration
	PromptInterval      time.Duration
}

// SettingsSource exposes the live settings record.
type SettingsSource interface {
	Snapshot() config.Settings
}

// DumperFactory builds a capture dumper writing into dir.
type DumperFactory func(dir string) ports.CaptureDumper

// Dependencies are the ports a SessionController drives.
type Dependencies struct {
	Settings    SettingsSource
	Audio       ports.AudioCapture
	Recognizers map[string]ports.Recognizer
	Translators TranslatorFactory
	Dumpers     DumperFactory
	Clipboard   ports.Clipboard
	Overlay     ports.Overlay
	Events      ports.EventSink
	Logger      *slog.Logger
}

// SessionController runs one hotkey-triggered capture, recognition and
// translation at a time and remembers the last translation for copying.
type SessionController struct {
	deps      Dependencies
	cfg       Config
	finalizer transcriptFinalizer

	mu         sync.Mutex
	current    *activeSession
	lastResult string
}

func NewSessionController(deps Dependencies, cfg Config) *SessionController {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 2048
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.CalibrationDuration <= 0 {
		cfg.CalibrationDuration = time.Second
	}
	if cfg.PromptInterval <= 0 {
		cfg.PromptInterval = 4500 * time.Millisecond
	}
	return &SessionController{
		deps:      deps,
		cfg:       cfg,
		finalizer: newTranscriptFinalizer(deps.Translators, cfg.RecognitionTimeout, cfg.TranslationTimeout),
	}
}

// Trigger starts a session in the background. While one is running further
// triggers return ErrSessionActive.
func (c *SessionController) Trigger(ctx context.Context) error {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return ErrSessionActive
	}
	active := newActiveSession(uuid.NewString(), c.deps.Logger)
	c.current = active
	c.mu.Unlock()

	go c.run(ctx, active)
	return nil
}

// Wait blocks until the running session, if any, has finished.
func (c *SessionController) Wait() {
	c.mu.Lock()
	active := c.current
	c.mu.Unlock()
	if active != nil {
		<-active.done
	}
}

// CopyLast puts the last translation on the clipboard.
func (c *SessionController) CopyLast(ctx context.Context) error {
	text := c.LastResult()
	if text == "" {
		c.show("No text to copy.", true)
		return ErrNothingToCopy
	}
	if err := c.deps.Clipboard.SetText(ctx, text); err != nil {
		c.deps.Events.SessionError(domain.ErrorCodeClipboard, err.Error())
		c.show(fmt.Sprintf("Clipboard error: %v", err), true)
		return err
	}
	c.show("Copied to clipboard!", true)
	return nil
}

// LastResult returns the last successful translation.
func (c *SessionController) LastResult() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Status returns the current backend status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Status{State: domain.SessionStateIdle, LastResult: c.lastResult}
	}
	return domain.Status{State: c.current.getState(), Active: true, LastResult: c.lastResult}
}

func (c *SessionController) run(ctx context.Context, active *activeSession) {
	state, reason := domain.SessionStateIdle, domain.SessionReasonReady
	defer func() {
		c.finishSession(active, state, reason)
	}()

	fail := func(f *failure) {
		if ctx.Err() != nil {
			return
		}
		active.logger.Warn("session failed", "reason", f.reason, "err", f.err)
		c.deps.Events.SessionError(f.code, f.message)
		c.show(f.message, true)
		state, reason = domain.SessionStateError, f.reason
	}

	settings := c.deps.Settings.Snapshot()
	rec, ok := c.deps.Recognizers[settings.RecognizerEngine]
	if !ok {
		fail(&failure{
			reason:  domain.SessionReasonRecognitionFailed,
			code:    domain.ErrorCodeRecognition,
			message: fmt.Sprintf("Speech engine %q is not available.", settings.RecognizerEngine),
			err:     fmt.Errorf("unknown recognizer engine %q", settings.RecognizerEngine),
		})
		return
	}
	engine := rec.Name()
	active.logger.Info("session started", "engine", engine, "language", settings.SourceLanguage)

	c.deps.Overlay.HideAndClear()
	c.transition(active, domain.SessionStateCalibrating, domain.SessionReasonCalibrating)
	c.show(fmt.Sprintf("Calibrating noise (%s)...", engine), false)

	capture, err := c.deps.Audio.Start(ctx, c.cfg.Audio)
	if err != nil {
		fail(captureFailure(err))
		return
	}
	defer func() { _ = capture.Stop() }()

	lcfg := listener.DefaultConfig(c.cfg.Audio.SampleRate)
	lcfg.ChunkSize = c.cfg.ChunkSize
	mic := listener.New(capture, lcfg)
	if err := mic.Calibrate(ctx, c.cfg.CalibrationDuration); err != nil {
		fail(captureFailure(err))
		return
	}

	c.transition(active, domain.SessionStateListening, domain.SessionReasonSpeakNow)
	prompt := fmt.Sprintf("Speak now (%s)...", engine)
	c.show(prompt, false)
	stopPrompt := c.startPrompt(active, prompt)

	segments, err := collectPhrases(ctx, mic,
		seconds(settings.InitialSilenceTimeout),
		seconds(settings.SilenceTimeout),
		time.Duration(settings.PhraseTimeLimit)*time.Second,
	)
	stopPrompt()
	if stopErr := capture.Stop(); stopErr != nil {
		active.logger.Debug("microphone stop reported an error", "err", stopErr)
	}
	if err != nil && !errors.Is(err, errNoSpeech) {
		fail(captureFailure(err))
		return
	}
	if len(segments) == 0 {
		c.show("No speech detected.", true)
		state, reason = domain.SessionStateIdle, domain.SessionReasonNoSpeech
		return
	}

	audio := listener.Concat(segments)
	active.logger.Debug("speech captured", "segments", len(segments), "duration", listener.Duration(audio))
	c.dump(active, settings, audio)

	c.transition(active, domain.SessionStateProcessing, domain.SessionReasonProcessing)
	c.show(fmt.Sprintf("Processing speech (%s)...", engine), false)
	text, err := c.finalizer.Recognize(ctx, rec, audio, settings.SourceLanguage)
	if err != nil {
		var f *failure
		if errors.As(err, &f) {
			fail(f)
		}
		return
	}

	c.show("Recognized: "+text, false)
	c.transition(active, domain.SessionStateTranslating, domain.SessionReasonTranslating)
	c.show("Translating (LibreTranslate)...", false)
	translated, err := c.finalizer.Translate(ctx, text, settings)
	if err != nil {
		var f *failure
		if errors.As(err, &f) {
			fail(f)
		}
		return
	}

	c.mu.Lock()
	c.lastResult = translated
	c.mu.Unlock()
	c.show(translated, false)
	active.logger.Info("session translated", "chars", len(translated))
	reason = domain.SessionReasonTranslated
}

func captureFailure(err error) *failure {
	return &failure{
		reason:  domain.SessionReasonCaptureFailed,
		code:    domain.ErrorCodeCapture,
		message: fmt.Sprintf("Microphone error: %v", err),
		err:     err,
	}
}

// startPrompt re-shows the prompt while the session is still listening.
func (c *SessionController) startPrompt(active *activeSession, prompt string) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(c.cfg.PromptInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if active.getState() == domain.SessionStateListening {
					c.show(prompt, false)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}
}

func (c *SessionController) dump(active *activeSession, settings config.Settings, audio ports.Audio) {
	if settings.CaptureDumpDir == "" || c.deps.Dumpers == nil {
		return
	}
	path, err := c.deps.Dumpers(settings.CaptureDumpDir).Dump(audio)
	if err != nil {
		active.logger.Warn("failed to dump capture", "err", err)
		return
	}
	active.logger.Info("capture saved", "path", path)
}

func (c *SessionController) show(text string, short bool) {
	c.deps.Overlay.Show(domain.OverlayMessage{Text: text, Short: short})
}

func (c *SessionController) transition(active *activeSession, state domain.SessionState, reason domain.SessionStateReason) {
	active.setState(state)
	c.deps.Events.SessionStateChanged(state, reason)
}

func (c *SessionController) finishSession(active *activeSession, state domain.SessionState, reason domain.SessionStateReason) {
	active.setState(domain.SessionStateIdle)

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.mu.Unlock()

	c.deps.Events.SessionStateChanged(state, reason)
	active.logger.Debug("session finished", "state", state, "reason", reason)
	close(active.done)
}
