package authn

import (
	"io"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/signin"
	"github.com/roach88/authflow/internal/states/signout"
)

// Action names.
const (
	ActionConfigureAuthN  = "ConfigureAuthN"
	ActionRefreshSession  = "RefreshSession"
	ActionSaveCredential  = "SaveCredential"
	ActionClearCredential = "ClearCredential"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	ConfigureAuthN(stored *data.SignedInData) states.Action
	RefreshSession(session data.SignedInData) states.Action
	SaveCredential(session data.SignedInData) states.Action
	ClearCredential() states.Action
}

type (
	env        = *environment.Environment
	resolution = engine.Resolution[State, env]
)

// Resolver resolves events for the whole tree.
type Resolver struct {
	actions Actions
	signIn  engine.Resolver[signin.State, env]
	signOut engine.Resolver[signout.State, env]
	slots   []engine.Slot[State, env]
	logger  *slog.Logger
}

// NewResolver creates the root Resolver. A nil logger discards warnings.
func NewResolver(actions Actions, signIn engine.Resolver[signin.State, env], signOut engine.Resolver[signout.State, env], logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		actions: actions,
		signIn:  signIn,
		signOut: signOut,
		logger:  logger,
		slots: []engine.Slot[State, env]{
			engine.Nested[State, signin.State, env]{Resolver: signIn, Child: signInChild, Attach: withSignIn},
			engine.Nested[State, signout.State, env]{Resolver: signOut, Child: signOutChild, Attach: withSignOut},
		},
	}
}

// DefaultState returns NotConfigured.
func (r *Resolver) DefaultState() State {
	return NotConfigured{}
}

// Resolve implements engine.Resolver.
func (r *Resolver) Resolve(old State, ev engine.Event) resolution {
	return engine.Compose(r.resolveOwn(old, ev), old, ev, r.slots...)
}

func (r *Resolver) resolveOwn(old State, ev engine.Event) resolution {
	switch s := old.(type) {
	case NotConfigured:
		if e, ok := ev.(Configure); ok {
			return resolution{
				NewState: Configured{},
				Actions:  []states.Action{r.actions.ConfigureAuthN(e.Stored)},
			}
		}

	case Configured:
		switch e := ev.(type) {
		case InitializedSignedIn:
			return resolution{NewState: SignedIn{Data: e.Data}}
		case InitializedSignedOut:
			return resolution{NewState: SignedOut{Data: e.Data}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case SignedOut:
		switch e := ev.(type) {
		case SignInRequested:
			return r.startSignIn(s, e.SignIn)
		case SignOutRequested:
			return r.startSignOut(nil, e.SignOut)
		}

	case SigningIn:
		switch e := ev.(type) {
		case SignInCompleted:
			return resolution{
				NewState: SignedIn{Data: e.Data},
				Actions:  []states.Action{r.actions.SaveCredential(e.Data)},
			}
		case CancelSignIn:
			reason := e.Err
			if reason == nil {
				reason = data.ErrUserCancelled
			}
			return resolution{NewState: SignedOut{Data: data.SignedOutData{LastSignInError: reason}}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case SignedIn:
		switch e := ev.(type) {
		case SignOutRequested:
			return r.startSignOut(&s.Data, e.SignOut)
		case RefreshSession:
			return resolution{
				NewState: s,
				Actions:  []states.Action{r.actions.RefreshSession(s.Data)},
			}
		case SessionRefreshed:
			return resolution{
				NewState: SignedIn{Data: e.Data},
				Actions:  []states.Action{r.actions.SaveCredential(e.Data)},
			}
		case SessionExpired:
			return resolution{
				NewState: SignedOut{Data: data.SignedOutData{
					LastKnownUsername: s.Data.Username,
					LastSignInError:   e.Err,
				}},
				Actions: []states.Action{r.actions.ClearCredential()},
			}
		}

	case SigningOut:
		switch e := ev.(type) {
		case signout.SignedOutSuccess:
			return resolution{NewState: SignedOut{Data: e.Data}}
		case signout.SignedOutFailure:
			return resolution{NewState: Error{Err: e.Err}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		case CancelSignOut:
			if s.Session.Username == "" {
				return resolution{NewState: SignedOut{}}
			}
			return resolution{NewState: SignedIn{Data: s.Session}}
		}

	case Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: SignedOut{}}
		}

	default:
		states.WarnUnhandled(r.logger, "authn", old, ev)
	}
	return engine.Unchanged[State, env](old)
}

// startSignIn seeds the sign-in level by resolving the method's initiate
// event against its default state. The child's start action is the root's
// initiation action.
func (r *Resolver) startSignIn(from SignedOut, req data.SignInData) resolution {
	if !req.Method.Valid() {
		return resolution{NewState: SignedOut{Data: data.SignedOutData{
			LastKnownUsername: from.Data.LastKnownUsername,
			LastSignInError:   data.NewError(data.KindInvalidParameter, "unknown sign-in method %q", req.Method),
		}}}
	}

	var initiate engine.Event
	switch req.Method {
	case data.MethodSRP:
		initiate = signin.InitiateSignInWithSRP{SignIn: req}
	case data.MethodHostedUI:
		initiate = signin.InitiateHostedUISignIn{SignIn: req}
	case data.MethodCustom:
		initiate = signin.InitiateCustomSignIn{SignIn: req}
	}

	child := r.signIn.Resolve(r.signIn.DefaultState(), initiate)
	return resolution{
		NewState: SigningIn{SignIn: child.NewState},
		Actions:  child.Actions,
	}
}

// startSignOut seeds the sign-out level at the step chosen by
// signout.SelectPath.
func (r *Resolver) startSignOut(session *data.SignedInData, req data.SignOutData) resolution {
	var (
		initiate engine.Event
		current  data.SignedInData
	)
	if session != nil {
		current = *session
	}

	switch signout.SelectPath(session, req) {
	case signout.PathHostedUI:
		initiate = signout.InvokeHostedUISignOut{Session: current, Global: req.GlobalSignOut}
	case signout.PathGlobal:
		initiate = signout.SignOutGlobally{Session: current}
	case signout.PathRevoke:
		initiate = signout.RevokeToken{Session: current}
	default:
		initiate = signout.SignOutLocally{Session: current}
	}

	child := r.signOut.Resolve(r.signOut.DefaultState(), initiate)
	return resolution{
		NewState: SigningOut{SignOut: child.NewState, Session: current},
		Actions:  child.Actions,
	}
}
