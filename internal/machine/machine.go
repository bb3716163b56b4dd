// Package machine assembles the authentication state tree with its real
// actions and builds the engine that runs it.
package machine

import (
	"log/slog"

	"github.com/roach88/authflow/internal/actions"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/signin"
	"github.com/roach88/authflow/internal/states/signout"
	"github.com/roach88/authflow/internal/states/srp"
)

// Engine runs the authentication tree.
type Engine = engine.Engine[authn.State, *environment.Environment]

// Transition is one committed transition of the tree.
type Transition = engine.Transition[authn.State]

// NewResolver builds the root resolver with every level wired to the
// production actions. A nil logger discards resolver warnings.
func NewResolver(logger *slog.Logger) *authn.Resolver {
	acts := actions.Actions{}
	signIn := signin.NewResolver(acts, signin.Children{
		SRP:       srp.NewResolver(acts, logger),
		HostedUI:  hostedui.NewResolver(acts, logger),
		Custom:    customsignin.NewResolver(acts, logger),
		Challenge: challenge.NewResolver(acts, logger),
	}, logger)
	return authn.NewResolver(acts, signIn, signout.NewResolver(acts, logger), logger)
}

// New creates an engine in NotConfigured. The environment's logger is used
// unless opts set another; a panicking action ends the workflow in the root
// Error variant.
func New(env *environment.Environment, opts ...engine.Option) *Engine {
	base := []engine.Option{
		engine.WithLogger(env.Logger),
		engine.WithPanicEvent(PanicEvent),
	}
	return engine.New[authn.State, *environment.Environment](NewResolver(env.Logger), env, append(base, opts...)...)
}

// PanicEvent reports a recovered action panic to the root.
func PanicEvent(_ string, err error) engine.Event {
	return authn.ThrowError{Err: err}
}
