package scrape

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates an expected element or results container was
// absent after the bounded wait.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return fmt.Errorf("not_found: %w", e.Err).Error()
}

func (e ErrNotFound) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates the attempt exceeded its wait budget.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrParse indicates a field was present but unparsable.
type ErrParse struct {
	Err error
}

func (e ErrParse) Error() string {
	return fmt.Errorf("parse: %w", e.Err).Error()
}

func (e ErrParse) Unwrap() error {
	return e.Err
}

// ErrSession indicates the browser session could not be created,
// navigated, or crashed mid-attempt.
type ErrSession struct {
	Err error
}

func (e ErrSession) Error() string {
	return fmt.Errorf("session: %w", e.Err).Error()
}

func (e ErrSession) Unwrap() error {
	return e.Err
}

// ErrStore indicates the record could not be written to the store.
type ErrStore struct {
	Err error
}

func (e ErrStore) Error() string {
	return fmt.Errorf("store: %w", e.Err).Error()
}

func (e ErrStore) Unwrap() error {
	return e.Err
}

// FailureLabel maps an attempt error onto its taxonomy label, used for
// outcome reporting and metrics.
func FailureLabel(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var parse ErrParse
	if errors.As(err, &parse) {
		return "parse"
	}
	var session ErrSession
	if errors.As(err, &session) {
		return "session"
	}
	var store ErrStore
	if errors.As(err, &store) {
		return "store"
	}
	return "other"
}
