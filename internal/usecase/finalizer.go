package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"translatoroverlay/internal/config"
	"translatoroverlay/internal/domain"
	"translatoroverlay/internal/ports"
	"translatoroverlay/internal/providers/recognizer"
)

// failure carries the overlay message for an error already reported to the user.
type failure struct {
	reason  domain.SessionStateReason
	code    domain.ErrorCode
	message string
	err     error
}

func (f *failure) Error() string {
	return f.message
}

func (f *failure) Unwrap() error {
	return f.err
}

// TranslatorFactory builds a translator for the configured server URL.
type TranslatorFactory func(url string) ports.Translator

type transcriptFinalizer struct {
	translators        TranslatorFactory
	recognitionTimeout time.Duration
	translationTimeout time.Duration
}

func newTranscriptFinalizer(translators TranslatorFactory, recognitionTimeout, translationTimeout time.Duration) transcriptFinalizer {
	return transcriptFinalizer{
		translators:        translators,
		recognitionTimeout: recognitionTimeout,
		translationTimeout: translationTimeout,
	}
}

func (f transcriptFinalizer) Recognize(ctx context.Context, rec ports.Recognizer, audio ports.Audio, language string) (string, error) {
	if f.recognitionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.recognitionTimeout)
		defer cancel()
	}

	text, err := rec.Recognize(ctx, audio, language)
	if err == nil && strings.TrimSpace(text) == "" {
		err = recognizer.ErrUnknownValue
	}
	if err != nil {
		return "", recognitionFailure(rec.Name(), err)
	}
	return strings.TrimSpace(text), nil
}

func (f transcriptFinalizer) Translate(ctx context.Context, text string, settings config.Settings) (string, error) {
	if f.translationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.translationTimeout)
		defer cancel()
	}

	translator := f.translators(settings.LibreTranslateURL)
	translated, err := translator.Translate(ctx, text, baseLanguage(settings.SourceLanguage), settings.TargetLanguage)
	if err != nil {
		return "", translationFailure(settings.LibreTranslateURL, err)
	}
	return translated, nil
}

func recognitionFailure(engine string, err error) *failure {
	var reqErr *recognizer.RequestError
	switch {
	case errors.Is(err, recognizer.ErrUnknownValue):
		return &failure{
			reason:  domain.SessionReasonUnrecognized,
			code:    domain.ErrorCodeRecognition,
			message: "Failed to recognize speech.",
			err:     err,
		}
	case errors.As(err, &reqErr):
		return &failure{
			reason:  domain.SessionReasonRecognitionFailed,
			code:    domain.ErrorCodeRecognition,
			message: fmt.Sprintf("%s API Error: %v", engine, reqErr.Err),
			err:     err,
		}
	default:
		return &failure{
			reason:  domain.SessionReasonRecognitionFailed,
			code:    domain.ErrorCodeRecognition,
			message: fmt.Sprintf("Unexpected error in %s SR: %v", engine, err),
			err:     err,
		}
	}
}

// translationFailure separates an unreachable or failing server from a
// malformed answer.
func translationFailure(url string, err error) *failure {
	if errors.Is(err, ports.ErrMalformedTranslation) {
		return &failure{
			reason:  domain.SessionReasonTranslationFailed,
			code:    domain.ErrorCodeTranslation,
			message: fmt.Sprintf("Translation error: %v", err),
			err:     err,
		}
	}
	return &failure{
		reason:  domain.SessionReasonTranslationFailed,
		code:    domain.ErrorCodeTranslation,
		message: fmt.Sprintf("LibreTranslate server error. Check if the server is running at %s", url),
		err:     err,
	}
}

// baseLanguage reduces a recognizer locale such as pl-PL to the language
// code the translation server expects.
func baseLanguage(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}
