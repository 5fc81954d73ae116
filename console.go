package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"

	"translatoroverlay/internal/bootstrap"
	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/hotkey/oshotkey"
	"translatoroverlay/internal/overlay"
)

// runConsole runs the hotkeys, tray and translation pipeline without a
// webview. It returns when interrupted or when Exit is chosen in the tray.
func runConsole(rt config.Runtime, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.Build(ctx, rt, bootstrap.Shell{
		Events:    consoleEvents{logger: logger},
		Clipboard: systemClipboard{},
		Window:    consoleWindow{logger: logger},
		OpenSettings: func() {
			logger.Info("edit the settings file, changes are applied automatically", "path", rt.SettingsPath)
		},
		Quit:    stop,
		Hotkeys: oshotkey.New,
	}, logger)
	if err != nil {
		return err
	}

	if err := services.Start(ctx); err != nil {
		logger.Error("hotkey registration failed", "err", err)
	}
	settings := services.Store.Snapshot()
	logger.Info("console mode ready",
		"translate", settings.HotkeyTranslate,
		"copy", settings.HotkeyCopy,
		"settings", rt.SettingsPath)

	runTray(ctx, services.Tray)
	stop()
	logger.Info("shutting down")
	services.Close()
	return nil
}

type trayLoop interface {
	Run()
	Quit()
}

// runTray runs the tray loop on the calling goroutine and quits it once ctx
// is done.
func runTray(ctx context.Context, loop trayLoop) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			loop.Quit()
		case <-done:
		}
	}()
	loop.Run()
}

type systemClipboard struct{}

func (systemClipboard) SetText(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}

type consoleEvents struct {
	logger *slog.Logger
}

func (e consoleEvents) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	e.logger.Debug("session state", "state", state, "reason", reason, "message", sessionReasonMessage(reason))
}

func (e consoleEvents) SessionError(code domain.ErrorCode, detail string) {
	e.logger.Warn(errorMessage(code, detail), "code", code, "detail", detail)
}

// consoleWindow prints overlay text instead of drawing it.
type consoleWindow struct {
	logger *slog.Logger
}

func (w consoleWindow) ScreenSize() (overlay.Size, error) {
	return overlay.Size{Width: 1920, Height: 1080}, nil
}

func (w consoleWindow) Render(frame overlay.Frame) {
	w.logger.Info("overlay", "text", frame.Text)
}

func (w consoleWindow) Hide() {
	w.logger.Debug("overlay hidden")
}
