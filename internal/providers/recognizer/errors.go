// Package recognizer holds the error vocabulary shared by speech recognizers.
package recognizer

import (
	"errors"
	"fmt"
)

// ErrUnknownValue means the service answered but found no usable speech.
var ErrUnknownValue = errors.New("speech was unintelligible")

// RequestError is a transport or API failure while talking to a recognizer.
type RequestError struct {
	Provider string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError wraps err unless it is nil or already a RequestError.
func NewRequestError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return err
	}
	return &RequestError{Provider: provider, Err: err}
}
