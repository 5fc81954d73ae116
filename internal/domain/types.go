package domain

// SessionState models the capture-and-translate lifecycle.
type SessionState string

const (
	SessionStateIdle        SessionState = "idle"
	SessionStateCalibrating SessionState = "calibrating"
	SessionStateListening   SessionState = "listening"
	SessionStateProcessing  SessionState = "processing"
	SessionStateTranslating SessionState = "translating"
	SessionStateError       SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady             SessionStateReason = "ready"
	SessionReasonCalibrating       SessionStateReason = "calibrating"
	SessionReasonSpeakNow          SessionStateReason = "speak_now"
	SessionReasonProcessing        SessionStateReason = "processing"
	SessionReasonTranslating       SessionStateReason = "translating"
	SessionReasonTranslated        SessionStateReason = "translated"
	SessionReasonNoSpeech          SessionStateReason = "no_speech"
	SessionReasonUnrecognized      SessionStateReason = "unrecognized"
	SessionReasonRecognitionFailed SessionStateReason = "recognition_failed"
	SessionReasonTranslationFailed SessionStateReason = "translation_failed"
	SessionReasonCaptureFailed     SessionStateReason = "capture_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeCapture     ErrorCode = "capture"
	ErrorCodeRecognition ErrorCode = "recognition"
	ErrorCodeTranslation ErrorCode = "translation"
	ErrorCodeHotkey      ErrorCode = "hotkey"
	ErrorCodeClipboard   ErrorCode = "clipboard"
	ErrorCodeSettings    ErrorCode = "settings"
)

// OverlayMessage is one piece of text pushed to the overlay.
type OverlayMessage struct {
	Text string `json:"text"`
	// Short marks status and error lines that use the short-text height bounds.
	Short bool `json:"short"`
	// Test marks a position preview; it hides on its own timer.
	Test bool `json:"test"`
}

// Status summarizes the current runtime status.
type Status struct {
	State      SessionState `json:"state"`
	Active     bool         `json:"active"`
	LastResult string       `json:"lastResult,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// Action names a global hotkey binding.
type Action string

const (
	ActionTranslate Action = "translate"
	ActionCopy      Action = "copy"
)

// Label returns the human-readable action name used in messages.
func (a Action) Label() string {
	switch a {
	case ActionTranslate:
		return "Translation"
	case ActionCopy:
		return "Copy"
	default:
		return string(a)
	}
}
