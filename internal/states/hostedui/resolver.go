package hostedui

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
	ActionShowHostedUI       = "ShowHostedUI"
	ActionFetchHostedUIToken = "FetchHostedUIToken"
)

// Actions builds the side effects this level schedules.
type Actions interface {
	ShowHostedUI(opts data.HostedUIOptions) states.Action
	FetchHostedUIToken(callbackURL string, auth environment.Authorization) states.Action
}

type resolution = engine.Resolution[State, *environment.Environment]

// Resolver resolves events at the hosted UI level.
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
		if e, ok := ev.(ShowHostedUI); ok {
			return resolution{
				NewState: ShowingUI{Options: e.Options},
				Actions:  []states.Action{r.actions.ShowHostedUI(e.Options)},
			}
		}

	case ShowingUI:
		switch e := ev.(type) {
		case FetchToken:
			return resolution{
				NewState: FetchingToken{},
				Actions:  []states.Action{r.actions.FetchHostedUIToken(e.CallbackURL, e.Authorization)},
			}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		case states.CancelSignIn:
			return resolution{NewState: Cancelled{}}
		}

	case FetchingToken:
		switch e := ev.(type) {
		case TokenFetched:
			return resolution{NewState: Done{}}
		case ThrowError:
			return resolution{NewState: Error{Err: e.Err}}
		case states.CancelSignIn:
			return resolution{NewState: Cancelled{}}
		}

	case Done, Cancelled, Error:
		if _, ok := ev.(Reset); ok {
			return resolution{NewState: NotStarted{}}
		}

	default:
		states.WarnUnhandled(r.logger, "hostedui", old, ev)
	}
	return engine.Unchanged[State, *environment.Environment](old)
}
