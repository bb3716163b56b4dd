package data

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes authentication failures.
type ErrorKind string

const (
	KindNotAuthorized        ErrorKind = "NotAuthorized"
	KindUserNotFound         ErrorKind = "UserNotFound"
	KindCodeMismatch         ErrorKind = "CodeMismatch"
	KindUnsupportedChallenge ErrorKind = "UnsupportedChallenge"
	KindInvalidParameter     ErrorKind = "InvalidParameter"
	KindNetwork              ErrorKind = "Network"
	KindUserCancelled        ErrorKind = "UserCancelled"
	KindSessionExpired       ErrorKind = "SessionExpired"
	KindConfiguration        ErrorKind = "Configuration"
	KindUnknown              ErrorKind = "Unknown"
)

// AuthError is the error value carried by error and cancel events.
//
// Two AuthErrors match under errors.Is when their kinds are equal, so
// errors.Is(err, ErrUserCancelled) works for any cancellation.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is matches on kind.
func (e *AuthError) Is(target error) bool {
	var t *AuthError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUserCancelled  = &AuthError{Kind: KindUserCancelled, Message: "user cancelled"}
	ErrNotAuthorized  = &AuthError{Kind: KindNotAuthorized, Message: "not authorized"}
	ErrSessionExpired = &AuthError{Kind: KindSessionExpired, Message: "session expired"}
	ErrCodeMismatch   = &AuthError{Kind: KindCodeMismatch, Message: "code mismatch"}
)

// NewError creates an AuthError without a cause.
func NewError(kind ErrorKind, format string, args ...any) *AuthError {
	return &AuthError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps cause. An AuthError cause is returned unchanged so kinds
// set close to the failure survive re-wrapping.
func WrapError(kind ErrorKind, message string, cause error) *AuthError {
	var ae *AuthError
	if errors.As(cause, &ae) {
		return ae
	}
	return &AuthError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether the user can retry the current step (for
// example re-enter a challenge code) rather than restart the workflow.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindCodeMismatch, KindInvalidParameter:
		return true
	}
	return false
}
