package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the pipeline matches exactly one of
// these with errors.Is.
var (
	ErrConfig             = errors.New("configuration error")
	ErrSession            = errors.New("browser session error")
	ErrSource             = errors.New("order source error")
	ErrSubmissionTimeout  = errors.New("submission timed out")
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrReceipt            = errors.New("receipt error")
	ErrArchive            = errors.New("archive error")
	ErrCleanup            = errors.New("cleanup error")
)

// OrderBotError is the base error type with context.
type OrderBotError struct {
	Phase      string // "config", "session", "source", "submit", "receipt", "archive", "cleanup"
	Kind       error
	Subject    string // file path, URL or order reference the error is about
	Message    string
	Suggestion string
	Cause      error
}

func (e *OrderBotError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.Subject != "" {
		s += fmt.Sprintf(" %s", e.Subject)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *OrderBotError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of this error.
func (e *OrderBotError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewError creates a new OrderBotError.
func NewError(kind error, phase, subject, message string, cause error) *OrderBotError {
	return &OrderBotError{
		Phase:   phase,
		Kind:    kind,
		Subject: subject,
		Message: message,
		Cause:   cause,
	}
}

// NewErrorWithSuggestion creates a new OrderBotError carrying a remediation hint.
func NewErrorWithSuggestion(kind error, phase, subject, message, suggestion string, cause error) *OrderBotError {
	e := NewError(kind, phase, subject, message, cause)
	e.Suggestion = suggestion
	return e
}
