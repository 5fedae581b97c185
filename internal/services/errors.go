package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generate call.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "MissingCredential"
	KindEmptyInput        ErrorKind = "EmptyInput"
	KindAuthorization     ErrorKind = "AuthorizationError"
	KindNoCapableBackend  ErrorKind = "NoCapableBackend"
	KindGeneration        ErrorKind = "GenerationError"
	// KindMalformedReply never surfaces as a Go error; it is carried by the
	// error-flagged record of a structured result.
	KindMalformedReply ErrorKind = "MalformedReply"
)

var (
	ErrMissingCredential = &GenerationError{Kind: KindMissingCredential}
	ErrEmptyInput        = &GenerationError{Kind: KindEmptyInput}
	ErrAuthorization     = &GenerationError{Kind: KindAuthorization}
	ErrNoCapableBackend  = &GenerationError{Kind: KindNoCapableBackend}
	ErrGeneration        = &GenerationError{Kind: KindGeneration}

	// ErrInvalidMode is returned when a zero Mode reaches the gateway.
	ErrInvalidMode = errors.New("mode is not set")
)

// GenerationError is the value every gateway failure is converted to.
// Detail is diagnostic text safe to show the user; Err is the underlying
// cause, if any.
type GenerationError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is matches any GenerationError of the same kind, so callers can write
// errors.Is(err, services.ErrNoCapableBackend).
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Kind == e.Kind
}

func newGenerationError(kind ErrorKind, detail string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the taxonomy kind of err, or "" when err did not come
// from the gateway.
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

func malformedDetail(err error) string {
	return fmt.Sprintf("AI failed to generate valid JSON. Please try again or reduce text size. (%v)", err)
}
