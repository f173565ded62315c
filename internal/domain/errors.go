package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is.
var (
	ErrNavigation        = errors.New("navigation failed")
	ErrTimeout           = errors.New("backend did not respond in time")
	ErrAssertion         = errors.New("assertion failed")
	ErrSessionLost       = errors.New("backend session lost")
	ErrDuplicatePath     = errors.New("duplicate suite path")
	ErrDuplicateCaseName = errors.New("duplicate test case name")
	ErrNotFound          = errors.New("suite not found")
	ErrInvalidDefinition = errors.New("invalid suite definition")
)

// Error is the base error type with context.
type Error struct {
	Phase      string // "config", "scan", "parse", "define", "run", "report"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
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

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error.
func NewError(phase, file string, line int, message string, cause error) *Error {
	return &Error{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a new Error carrying a remediation hint for the user.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *Error {
	e := NewError(phase, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}

// ErrorKind classifies an execution error for reporting.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionLost):
		return "session"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNavigation):
		return "navigation"
	case errors.Is(err, ErrAssertion):
		return "assertion"
	default:
		return "backend"
	}
}
