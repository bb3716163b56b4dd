// Package states holds what every level of the authentication state tree
// shares. Each level lives in its own subpackage:
//
//	authn                  root: configure, sign in, sign out, refresh
//	├── signin             method selection and challenge routing
//	│   ├── srp            password verifier exchange
//	│   ├── customsignin   custom auth initiation
//	│   ├── hostedui       hosted web sign-in
//	│   └── challenge      answering provider challenges
//	└── signout            hosted, global, revoke and local sign-out steps
//
// A level exports a sealed State interface, its events, an Actions interface
// (the side effects it schedules, implemented in internal/actions), a
// Resolver and Describe. Events are broadcast: every level sees every event.
package states

import (
	"fmt"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
)

// Action is an engine action running against the authflow environment.
type Action = engine.Action[*environment.Environment]

// ActionFunc is the body of an Action.
type ActionFunc = engine.ActionFunc[*environment.Environment]

// NewAction builds a named Action.
func NewAction(name string, fn ActionFunc) Action {
	return engine.NewAction(name, fn)
}

// NewInlineAction builds a named Action that runs on the engine loop.
func NewInlineAction(name string, fn ActionFunc) Action {
	return engine.NewInlineAction(name, fn)
}

// CancelSignIn ends an in-progress sign-in. Err is nil when the caller asked
// to cancel and set when an action gave up.
//
// Handled by authn and by every sign-in level below it.
type CancelSignIn struct {
	Err error
}

func (CancelSignIn) Type() string { return "authn.cancelSignIn" }

// SignInCompleted reports an established session. authn moves to SignedIn and
// persists it; the sign-in level ends in Done.
type SignInCompleted struct {
	Data data.SignedInData
}

func (SignInCompleted) Type() string { return "authn.signInCompleted" }

// WarnUnhandled logs a state value no resolver branch knows. Sealed State
// interfaces make this a nil state in practice.
func WarnUnhandled(logger *slog.Logger, level string, state any, ev engine.Event) {
	logger.Warn("unhandled state variant",
		"level", level,
		"state", fmt.Sprintf("%T", state),
		"event", ev.Type(),
	)
}
