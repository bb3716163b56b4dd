package customsignin

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
	ActionInitiateCustomAuth = "InitiateCustomAuth"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	InitiateCustomAuth(signIn data.SignInData) states.Action
}

type resolution = engine.Resolution[State, *environment.Environment]

// Resolver resolves events at the custom sign-in level.
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
	case NotStarted:
		if e, ok := ev.(InitiateCustomSignIn); ok {
			return resolution{
				NewState: InitiatingCustomSignIn{SignIn: e.SignIn},
				Actions:  []states.Action{r.actions.InitiateCustomAuth(e.SignIn)},
			}
		}

	case InitiatingCustomSignIn:
		switch e := ev.(type) {
		case FinalizeSignIn:
			return resolution{NewState: SignedIn{}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case SignedIn, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}

	default:
		states.WarnUnhandled(r.logger, "customsignin", old, ev)
	}
	return engine.Unchanged[State, *environment.Environment](old)
}
