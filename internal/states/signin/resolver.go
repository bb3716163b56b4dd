package signin

import (
	"io"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/srp"
)

// Action names.
const (
	ActionStartSRPAuth         = "StartSRPAuth"
	ActionStartHostedUIAuth    = "StartHostedUIAuth"
	ActionStartCustomAuth      = "StartCustomAuth"
	ActionInitResolveChallenge = "InitResolveChallenge"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	StartSRPAuth(signIn data.SignInData) states.Action
	StartHostedUIAuth(signIn data.SignInData) states.Action
	StartCustomAuth(signIn data.SignInData) states.Action
	InitResolveChallenge(ch data.AuthChallenge, method data.SignInMethod) states.Action
}

type (
	env        = *environment.Environment
	resolution = engine.Resolution[State, env]
)

// Children are the resolvers of the levels nested below sign-in.
type Children struct {
	SRP       engine.Resolver[srp.State, env]
	HostedUI  engine.Resolver[hostedui.State, env]
	Custom    engine.Resolver[customsignin.State, env]
	Challenge engine.Resolver[challenge.State, env]
}

// Resolver resolves events at the sign-in level and its children.
type Resolver struct {
	actions  Actions
	children Children
	slots    []engine.Slot[State, env]
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards warnings.
func NewResolver(actions Actions, children Children, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		actions:  actions,
		children: children,
		logger:   logger,
		slots: []engine.Slot[State, env]{
			engine.Nested[State, srp.State, env]{Resolver: children.SRP, Child: srpChild, Attach: withSRP},
			engine.Nested[State, hostedui.State, env]{Resolver: children.HostedUI, Child: hostedUIChild, Attach: withHostedUI},
			engine.Nested[State, customsignin.State, env]{Resolver: children.Custom, Child: customChild, Attach: withCustom},
			engine.Nested[State, challenge.State, env]{Resolver: children.Challenge, Child: challengeChild, Attach: withChallenge},
		},
	}
}

// DefaultState returns NotStarted.
func (r *Resolver) DefaultState() State {
	return NotStarted{}
}

// Resolve implements engine.Resolver.
func (r *Resolver) Resolve(old State, ev engine.Event) resolution {
	return engine.Compose(r.resolveOwn(old, ev), old, ev, r.slots...)
}

func (r *Resolver) resolveOwn(old State, ev engine.Event) resolution {
	switch old.(type) {
	case NotStarted:
		switch e := ev.(type) {
		case InitiateSignInWithSRP:
			return resolution{
				NewState: SigningInWithSRP{SRP: r.children.SRP.DefaultState()},
				Actions:  []states.Action{r.actions.StartSRPAuth(e.SignIn)},
			}
		case InitiateHostedUISignIn:
			return resolution{
				NewState: SigningInWithHostedUI{HostedUI: r.children.HostedUI.DefaultState()},
				Actions:  []states.Action{r.actions.StartHostedUIAuth(e.SignIn)},
			}
		case InitiateCustomSignIn:
			return resolution{
				NewState: SigningInWithCustom{Custom: r.children.Custom.DefaultState()},
				Actions:  []states.Action{r.actions.StartCustomAuth(e.SignIn)},
			}
		}
		return engine.Unchanged[State, env](old)

	case SigningInWithSRP, SigningInWithHostedUI, SigningInWithCustom, ResolvingChallenge:
		switch e := ev.(type) {
		case ReceivedChallenge:
			if _, ok := old.(SigningInWithHostedUI); ok {
				break
			}
			// Entering or re-entering ResolvingChallenge always starts the
			// challenge level over.
			return resolution{
				NewState: ResolvingChallenge{Challenge: r.children.Challenge.DefaultState()},
				Actions:  []states.Action{r.actions.InitResolveChallenge(e.Challenge, e.Method)},
				Reset:    true,
			}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		case states.SignInCompleted:
			return resolution{NewState: Done{}}
		case states.CancelSignIn:
			return resolution{NewState: Cancelled{}}
		}
		return engine.Unchanged[State, env](old)

	case Done, Cancelled, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}
		return engine.Unchanged[State, env](old)
	}

	states.WarnUnhandled(r.logger, "signin", old, ev)
	return engine.Unchanged[State, env](old)
}
