package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no session exists for an id or date.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRecordNotFound is returned when no matching response record exists.
	ErrRecordNotFound = errors.New("response record not found")
	// ErrDuplicateRecord is returned when a record already exists for a (session, participant) pair.
	ErrDuplicateRecord = errors.New("response record already exists")
	// ErrTerminalStatus is returned when mutating a record that is already answered or skipped.
	ErrTerminalStatus = errors.New("response record is already closed")
	// ErrInvalidTransition is returned for status changes the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAnswersComplete is returned when every question already has an answer.
	ErrAnswersComplete = errors.New("all questions already answered")
)

// StoreError represents a failed store operation
type StoreError struct {
	Op  string // "create_session", "append_answer", ...
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ResolutionError represents a participant name that could not be resolved to an identity
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("identity resolution error [%s]: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// TransportError represents a failed send through the chat transport
type TransportError struct {
	Op     string // "direct", "channel"
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s] %s: %v", e.Op, e.Target, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// wrapStore wraps err in a StoreError unless it is nil or one of the sentinel
// conditions callers branch on.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrSessionNotFound, ErrRecordNotFound, ErrDuplicateRecord, ErrTerminalStatus, ErrInvalidTransition, ErrAnswersComplete} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
