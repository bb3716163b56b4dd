package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeEngineStopped indicates the intake queue is closed.
	ErrCodeEngineStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodeActionPanic indicates an action panicked instead of emitting an
	// error event.
	ErrCodeActionPanic RuntimeErrorCode = "ACTION_PANIC"

	// ErrCodeWaitCancelled indicates WaitFor gave up before the predicate held.
	ErrCodeWaitCancelled RuntimeErrorCode = "WAIT_CANCELLED"
)

// RuntimeError represents an error detected by the engine itself, as opposed
// to domain failures which travel as events.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	// Action is the action name for ErrCodeActionPanic.
	Action string

	Err error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// ErrStopped is returned by WaitFor when the engine stops first.
var ErrStopped = &RuntimeError{Code: ErrCodeEngineStopped, Message: "engine stopped"}

// IsPanicError reports whether err is (or wraps) an action panic.
func IsPanicError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeActionPanic
	}
	return false
}

func newPanicError(action string, recovered any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeActionPanic,
		Message: fmt.Sprintf("action panicked: %v", recovered),
		Action:  action,
	}
}

func newWaitError(err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeWaitCancelled,
		Message: "wait cancelled",
		Err:     err,
	}
}
