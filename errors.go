package parley

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrScriptNotFound  = errors.New("script not found")
	ErrEmptyUtterance  = errors.New("empty utterance")
)

// SessionError ties an error to the conversation it happened in.
type SessionError struct {
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
