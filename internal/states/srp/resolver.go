package srp

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
	ActionInitiateSRPAuth   = "InitiateSRPAuth"
	ActionVerifyPasswordSRP = "VerifyPasswordSRP"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	InitiateSRPAuth(signIn data.SignInData) states.Action
	VerifyPasswordSRP(signIn data.SignInData, challenge data.AuthChallenge) states.Action
}

type resolution = engine.Resolution[State, *environment.Environment]

// Resolver resolves events at the SRP level. It has no children.
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
	switch s := old.(type) {
	case NotStarted:
		if e, ok := ev.(InitiateSRP); ok {
			return resolution{
				NewState: InitiatingSRPA{SignIn: e.SignIn},
				Actions:  []states.Action{r.actions.InitiateSRPAuth(e.SignIn)},
			}
		}

	case InitiatingSRPA:
		switch e := ev.(type) {
		case RespondPasswordVerifier:
			return resolution{
				NewState: RespondingPasswordVerifier{SignIn: s.SignIn},
				Actions:  []states.Action{r.actions.VerifyPasswordSRP(s.SignIn, e.Challenge)},
			}
		case Finalize:
			// The provider may skip the verifier step entirely.
			return resolution{NewState: SignedIn{}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case RespondingPasswordVerifier:
		switch e := ev.(type) {
		case Finalize:
			return resolution{NewState: SignedIn{}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case SignedIn, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}

	default:
		states.WarnUnhandled(r.logger, "srp", old, ev)
	}
	return engine.Unchanged[State, *environment.Environment](old)
}
