package gemini

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when no Gemini credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// InitializationError means the client or chat session could not be
// created. It is fatal for the run; the user has to fix the credential or
// connectivity and start over.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("chat initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// CommunicationError means a single chat turn failed in transport or at
// the service. It is recoverable at the turn boundary; the caller decides
// whether to retry.
type CommunicationError struct {
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("chat turn failed: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}
