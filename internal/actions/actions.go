// Package actions implements the side effects scheduled by every level of
// the state tree. Actions talk to the environment's collaborators and report
// back only by sending events; a failure never escapes as a Go error.
package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/signin"
	"github.com/roach88/authflow/internal/states/signout"
	"github.com/roach88/authflow/internal/states/srp"
)

// Actions implements the Actions interface of every level.
type Actions struct{}

var (
	_ authn.Actions        = Actions{}
	_ signin.Actions       = Actions{}
	_ srp.Actions          = Actions{}
	_ customsignin.Actions = Actions{}
	_ challenge.Actions    = Actions{}
	_ hostedui.Actions     = Actions{}
	_ signout.Actions      = Actions{}
)

type actionBody func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment)

// newAction wraps body so that it runs under the configured timeout with a
// logger scoped to the execution.
func newAction(name string, body actionBody) states.Action {
	return states.NewAction(name, scoped(name, body))
}

// newInlineAction is newAction for store writes, which run on the engine loop
// in commit order.
func newInlineAction(name string, body actionBody) states.Action {
	return states.NewInlineAction(name, scoped(name, body))
}

func scoped(name string, body actionBody) states.ActionFunc {
	return func(ctx context.Context, id string, d engine.Dispatcher, env *environment.Environment) {
		ctx, cancel := env.ActionContext(ctx)
		defer cancel()
		log := env.Logger.With("action", name, "id", id)
		log.Debug("action running")
		body(ctx, log, d, env)
	}
}

// failSignIn reports a sign-in failure at the failing level, then at the
// sign-in level, then ends the sign-in at the root. levelErr may be nil when
// the failure belongs to the sign-in level itself.
func failSignIn(log *slog.Logger, d engine.Dispatcher, levelErr engine.Event, err error) {
	log.Warn("sign-in failed", "kind", data.KindOf(err), "error", err)
	if levelErr != nil {
		d.Send(levelErr)
	}
	d.Send(signin.ThrowError{Err: err})
	d.Send(states.CancelSignIn{Err: err})
}

// completeSignIn reports the session built from tokens. The root persists it
// only if it accepts the completion.
func completeSignIn(log *slog.Logger, d engine.Dispatcher, env *environment.Environment, method data.SignInMethod, tokens data.Tokens) {
	session, err := data.SignedInDataFromTokens(method, tokens, env.Now)
	if err != nil {
		failSignIn(log, d, nil, err)
		return
	}
	log.Info("signed in", "user", session.Username, "method", method)
	d.Send(authn.SignInCompleted{Data: session})
}

// providerError classifies a provider call failure. Context expiry counts as
// a network failure.
func providerError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return data.WrapError(data.KindNetwork, op+": timed out", err)
	}
	return data.WrapError(data.KindUnknown, op, err)
}
