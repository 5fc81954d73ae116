package ports

import (
	"context"
	"errors"
	"io"

	"translatoroverlay/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session producing s16le PCM.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Audio is a block of raw little-endian PCM.
type Audio struct {
	Data        []byte
	SampleRate  int
	SampleWidth int
}

// Recognizer turns captured speech into text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, audio Audio, language string) (string, error)
}

// ErrMalformedTranslation marks a translation answer that arrived but could
// not be used.
var ErrMalformedTranslation = errors.New("malformed translation response")

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text string, sourceLang, targetLang string) (string, error)
}

// CaptureDumper optionally persists the audio sent for recognition.
type CaptureDumper interface {
	Dump(audio Audio) (string, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// Overlay is the transient on-screen text window.
type Overlay interface {
	Show(msg domain.OverlayMessage)
	HideAndClear()
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	SessionError(code domain.ErrorCode, detail string)
}

// Notifier shows desktop notifications (the tray balloon messages).
type Notifier interface {
	Notify(title, message string)
}
