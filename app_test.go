package main

import (
	"context"
	"errors"
	"testing"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/hotkey"
	"translatoroverlay/internal/usecase"
)

func TestSessionReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonReady:             "Ready",
		domain.SessionReasonCalibrating:       "Calibrating noise",
		domain.SessionReasonSpeakNow:          "Speak now",
		domain.SessionReasonProcessing:        "Processing speech",
		domain.SessionReasonTranslating:       "Translating",
		domain.SessionReasonTranslated:        "Translation ready",
		domain.SessionReasonNoSpeech:          "No speech detected",
		domain.SessionReasonUnrecognized:      "Speech not recognized",
		domain.SessionReasonRecognitionFailed: "Speech recognition failed",
		domain.SessionReasonTranslationFailed: "Translation failed",
		domain.SessionReasonCaptureFailed:     "Microphone error",
	}

	for reason, want := range cases {
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := sessionReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := sessionReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:     "Startup failed",
		domain.ErrorCodeCapture:     "Microphone error",
		domain.ErrorCodeRecognition: "Speech recognition error",
		domain.ErrorCodeTranslation: "Translation error",
		domain.ErrorCodeHotkey:      "Hotkey error",
		domain.ErrorCodeClipboard:   "Clipboard write failed",
		domain.ErrorCodeSettings:    "Settings error",
	}
	for code, want := range cases {
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if _, err := app.SetHotkey("translate", "ctrl+m"); !errors.Is(err, bootErr) {
		t.Fatalf("bound methods should report the boot error, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.SessionStateIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.SessionStateError || status.Active != false || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	if a, err := parseAction("copy"); err != nil || a != domain.ActionCopy {
		t.Fatalf("unexpected action: %q, %v", a, err)
	}
	if _, err := parseAction("paste"); !errors.Is(err, usecase.ErrUnknownOption) {
		t.Fatalf("expected unknown option, got %v", err)
	}
}

func TestPrimaryScreen(t *testing.T) {
	t.Parallel()

	if _, err := primaryScreen(nil); err == nil {
		t.Fatalf("expected error without screens")
	}

	screens := []runtime.Screen{
		{Size: runtime.ScreenSize{Width: 1280, Height: 1024}},
		{IsPrimary: true, Size: runtime.ScreenSize{Width: 2560, Height: 1440}},
	}
	got, err := primaryScreen(screens)
	if err != nil || got.Width != 2560 || got.Height != 1440 {
		t.Fatalf("unexpected primary screen: %+v, %v", got, err)
	}
}

func TestBeforeCloseKeepsRunningUnlessQuitting(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Runtime{}, nil)
	app.quitting = true
	if app.beforeClose(context.Background()) {
		t.Fatalf("close must proceed while quitting")
	}
}

func TestHotkeyRecordingFlow(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Runtime{}, nil)
	rec := hotkey.NewRecorder("ctrl+shift+c")
	rec.Start()
	app.recorders[domain.ActionCopy] = rec

	input, err := app.HotkeyKeyDown("copy", "ctrl")
	if err != nil || input.Done || input.Display != "ctrl + ..." {
		t.Fatalf("unexpected modifier input: %+v, %v", input, err)
	}
	input, err = app.HotkeyKeyDown("copy", "k")
	if err != nil || !input.Done || input.Display != "ctrl+k" {
		t.Fatalf("unexpected completed input: %+v, %v", input, err)
	}
	if got, err := app.StopHotkeyRecording("copy"); err != nil || got != "ctrl+k" {
		t.Fatalf("unexpected result: %q, %v", got, err)
	}

	if _, err := app.HotkeyKeyUp("translate", "ctrl"); err == nil {
		t.Fatalf("expected error without an active recording")
	}
}
