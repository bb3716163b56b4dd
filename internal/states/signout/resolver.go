package signout

import (
	"io"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
)

// Action names.
const (
	ActionHostedUISignOut = "HostedUISignOut"
	ActionGlobalSignOut   = "GlobalSignOut"
	ActionRevokeToken     = "RevokeToken"
	ActionSignOutLocally  = "SignOutLocally"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	HostedUISignOut(session data.SignedInData, global bool) states.Action
	GlobalSignOut(session data.SignedInData) states.Action
	RevokeToken(session data.SignedInData) states.Action
	SignOutLocally(session data.SignedInData) states.Action
}

type resolution = engine.Resolution[State, *environment.Environment]

// Resolver resolves events at the sign-out level.
type Resolver struct {
	actions Actions
	logger  *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards warnings.
func NewResolver(actions Actions, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{actions: actions, logger: logger}
}

// DefaultState returns NotStarted.
func (r *Resolver) DefaultState() State {
	return NotStarted{}
}

// Resolve implements engine.Resolver.
func (r *Resolver) Resolve(old State, ev engine.Event) resolution {
	switch old.(type) {
	case NotStarted, SigningOutHostedUI, SigningOutGlobally, RevokingToken:
		if res, ok := r.advance(old, ev); ok {
			return res
		}

	case SigningOutLocally:
		switch e := ev.(type) {
		case SignedOutSuccess:
			return resolution{NewState: SignedOut{Data: e.Data}}
		case SignedOutFailure:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case SignedOut, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}

	default:
		states.WarnUnhandled(r.logger, "signout", old, ev)
	}
	return engine.Unchanged[State, *environment.Environment](old)
}

// advance moves to a later step. Steps only move forward: hosted UI, then
// global, then revoke, then local.
func (r *Resolver) advance(old State, ev engine.Event) (resolution, bool) {
	step := stepOf(old)
	switch e := ev.(type) {
	case InvokeHostedUISignOut:
		if step < stepHostedUI {
			return resolution{
				NewState: SigningOutHostedUI{Session: e.Session, Global: e.Global},
				Actions:  []states.Action{r.actions.HostedUISignOut(e.Session, e.Global)},
			}, true
		}
	case SignOutGlobally:
		if step < stepGlobal {
			return resolution{
				NewState: SigningOutGlobally{Session: e.Session},
				Actions:  []states.Action{r.actions.GlobalSignOut(e.Session)},
			}, true
		}
	case RevokeToken:
		if step < stepRevoke {
			return resolution{
				NewState: RevokingToken{Session: e.Session},
				Actions:  []states.Action{r.actions.RevokeToken(e.Session)},
			}, true
		}
	case SignOutLocally:
		return resolution{
			NewState: SigningOutLocally{Session: e.Session},
			Actions:  []states.Action{r.actions.SignOutLocally(e.Session)},
		}, true
	}
	return resolution{}, false
}

type step int

const (
	stepNotStarted step = iota
	stepHostedUI
	stepGlobal
	stepRevoke
)

func stepOf(s State) step {
	switch s.(type) {
	case SigningOutHostedUI:
		return stepHostedUI
	case SigningOutGlobally:
		return stepGlobal
	case RevokingToken:
		return stepRevoke
	}
	return stepNotStarted
}
