package challenge

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
	ActionVerifyChallengeAnswer = "VerifyChallengeAnswer"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	VerifyChallengeAnswer(challenge data.AuthChallenge, method data.SignInMethod, answer string, metadata map[string]string) states.Action
}

type resolution = engine.Resolution[State, *environment.Environment]

// Resolver resolves events at the challenge level. It has no children.
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
		if e, ok := ev.(WaitForAnswer); ok {
			return resolution{NewState: WaitingForAnswer{Challenge: e.Challenge, Method: e.Method}}
		}

	case WaitingForAnswer:
		switch e := ev.(type) {
		case VerifyChallengeAnswer:
			return resolution{
				NewState: Verifying{Challenge: s.Challenge, Method: s.Method},
				Actions: []states.Action{
					r.actions.VerifyChallengeAnswer(s.Challenge, s.Method, e.Answer, e.ClientMetadata),
				},
			}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case Verifying:
		switch e := ev.(type) {
		case ChallengeVerified:
			return resolution{NewState: Verified{}}
		case RetryAnswer:
			return resolution{NewState: WaitingForAnswer{Challenge: s.Challenge, Method: s.Method, LastError: e.Err}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		}

	case Verified, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}

	default:
		states.WarnUnhandled(r.logger, "challenge", old, ev)
	}
	return engine.Unchanged[State, *environment.Environment](old)
}
