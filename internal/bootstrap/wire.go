package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"translatoroverlay/internal/audio"
	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/hotkey"
	"translatoroverlay/internal/notify"
	"translatoroverlay/internal/overlay"
	"translatoroverlay/internal/ports"
	"translatoroverlay/internal/providers/deepgram"
	"translatoroverlay/internal/providers/google"
	"translatoroverlay/internal/providers/libretranslate"
	"translatoroverlay/internal/tray"
	"translatoroverlay/internal/usecase"
)

// Shell is what the hosting UI (webview or console) provides.
type Shell struct {
	Events       ports.EventSink
	Clipboard    ports.Clipboard
	Window       overlay.Window
	Notifier     ports.Notifier
	OpenSettings func()
	Quit         func()
	// Hotkeys registers global hotkeys with the OS. Without it every
	// hotkey bind fails with hotkey.ErrUnavailable.
	Hotkeys      hotkey.BindingFactory
}

// Services is the assembled runtime graph.
type Services struct {
	Runtime    config.Runtime
	Store      *config.Store
	Controller *usecase.SessionController
	Settings   *usecase.SettingsService
	Overlay    *overlay.Controller
	Tray       *tray.Tray

	hotkeys *hotkey.Manager
	google  *google.Recognizer
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// Build wires all backend dependencies for the current runtime. Nothing is
// registered with the OS until Start.
func Build(ctx context.Context, rt config.Runtime, shell Shell, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if shell.Events == nil || shell.Clipboard == nil || shell.Window == nil {
		return nil, errors.New("bootstrap: shell must provide events, clipboard and an overlay window")
	}

	ctx, cancel := context.WithCancel(ctx)
	store := config.NewStore(rt.SettingsPath, logger.With("component", "settings"))
	settings := store.Snapshot()

	httpClient := &http.Client{Timeout: rt.Session.TranslationTimeout}
	translators := func(url string) ports.Translator {
		return libretranslate.NewClient(url, httpClient, logger.With("component", "libretranslate"))
	}
	probe := func(ctx context.Context, url string) error {
		_, err := libretranslate.NewClient(url, httpClient, logger).Languages(ctx)
		return err
	}

	googleRec := google.NewRecognizer(google.Config{
		APIKey:          rt.Google.APIKey,
		CredentialsFile: rt.Google.CredentialsFile,
		Model:           rt.Google.Model,
	}, logger.With("component", "google"))
	deepgramRec := deepgram.NewRecognizer(deepgram.Config{
		APIKey:      rt.Deepgram.APIKey,
		APIBaseURL:  rt.Deepgram.APIBaseURL,
		Model:       rt.Deepgram.Model,
		SmartFormat: rt.Deepgram.SmartFormat,
	}, logger.With("component", "deepgram"))

	overlayCtl := overlay.NewController(shell.Window, settings, logger.With("component", "overlay"))

	controller := usecase.NewSessionController(usecase.Dependencies{
		Settings: store,
		Audio:    newCapture(rt.Audio, logger),
		Recognizers: map[string]ports.Recognizer{
			config.EngineGoogle:   googleRec,
			config.EngineDeepgram: deepgramRec,
		},
		Translators: translators,
		Dumpers: func(dir string) ports.CaptureDumper {
			return audio.NewWAVDumper(dir)
		},
		Clipboard: shell.Clipboard,
		Overlay:   overlayCtl,
		Events:    shell.Events,
		Logger:    logger.With("component", "session"),
	}, usecase.Config{
		Audio: ports.AudioConfig{
			SampleRate:  rt.Audio.SampleRate,
			Channels:    rt.Audio.Channels,
			InputFormat: rt.Audio.InputFormat,
			InputDevice: rt.Audio.InputDevice,
		},
		ChunkSize:           rt.Session.ChunkSize,
		CalibrationDuration: rt.Session.CalibrationDuration,
		RecognitionTimeout:  rt.Session.RecognitionTimeout,
		TranslationTimeout:  rt.Session.TranslationTimeout,
		PromptInterval:      rt.Session.PromptInterval,
	})

	notifier := shell.Notifier
	if notifier == nil {
		notifier = notify.New(logger.With("component", "notify"))
	}

	services := &Services{
		Runtime:    rt,
		Store:      store,
		Controller: controller,
		Overlay:    overlayCtl,
		hotkeys:    hotkey.NewManager(shell.Hotkeys, logger.With("component", "hotkey")),
		google:     googleRec,
		cancel:     cancel,
		logger:     logger,
	}

	view := &settingsView{overlay: overlayCtl}
	services.Settings = usecase.NewSettingsService(
		store,
		services.hotkeys,
		view,
		notifier,
		probe,
		map[domain.Action]func(){
			domain.ActionTranslate: func() { services.translate(ctx) },
			domain.ActionCopy:      func() { services.copyLast(ctx) },
		},
		logger.With("component", "settings"),
	)

	services.Tray = tray.New(tray.Actions{
		OpenSettings:   shell.OpenSettings,
		ChangePosition: services.Settings.ChangePosition,
		Exit:           shell.Quit,
	}, settings.OverlayPosition, logger.With("component", "tray"))
	view.tray = services.Tray

	return services, nil
}

// Start registers the global hotkeys and begins watching the settings file.
// A hotkey failure is returned but does not stop the watcher.
func (s *Services) Start(ctx context.Context) error {
	go func() {
		if err := s.Store.Watch(ctx, s.Settings.Reloaded); err != nil {
			s.logger.Warn("settings file watch disabled", "err", err)
		}
	}()
	return s.Settings.BindAll()
}

// Close cancels a running session, releases hotkeys and clients and saves
// the settings.
func (s *Services) Close() {
	s.cancel()
	s.Controller.Wait()
	s.hotkeys.UnbindAll()
	if err := s.google.Close(); err != nil {
		s.logger.Debug("google client close failed", "err", err)
	}
	if err := s.Store.Save(); err != nil {
		s.logger.Warn("failed to save settings on exit", "err", err)
	}
}

func (s *Services) translate(ctx context.Context) {
	if err := s.Controller.Trigger(ctx); err != nil {
		if errors.Is(err, usecase.ErrSessionActive) {
			s.logger.Debug("translation already in progress")
			return
		}
		s.logger.Error("failed to start translation", "err", err)
	}
}

func (s *Services) copyLast(ctx context.Context) {
	copyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Controller.CopyLast(copyCtx); err != nil && !errors.Is(err, usecase.ErrNothingToCopy) {
		s.logger.Warn("copy failed", "err", err)
	}
}

func newCapture(cfg config.AudioConfig, logger *slog.Logger) ports.AudioCapture {
	if cfg.Backend == config.AudioBackendPortAudio {
		return audio.NewPortAudioCapture(logger.With("component", "portaudio"))
	}
	return audio.NewFFMPEGCapture(cfg.RecorderCommand, logger.With("component", "ffmpeg"))
}

// settingsView fans settings changes out to the overlay and the tray menu.
type settingsView struct {
	overlay *overlay.Controller
	tray    *tray.Tray
}

func (v *settingsView) Apply(settings config.Settings) {
	v.overlay.Apply(settings)
	if v.tray != nil {
		v.tray.Apply(settings)
	}
}

func (v *settingsView) ShowPositionTest() {
	v.overlay.ShowPositionTest()
}
