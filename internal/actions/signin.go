package actions

import (
	"context"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/signin"
	"github.com/roach88/authflow/internal/states/srp"
)

func (Actions) StartSRPAuth(req data.SignInData) states.Action {
	return newAction(signin.ActionStartSRPAuth, func(_ context.Context, _ *slog.Logger, d engine.Dispatcher, _ *environment.Environment) {
		d.Send(srp.InitiateSRP{SignIn: req})
	})
}

func (Actions) StartHostedUIAuth(req data.SignInData) states.Action {
	return newAction(signin.ActionStartHostedUIAuth, func(_ context.Context, _ *slog.Logger, d engine.Dispatcher, _ *environment.Environment) {
		d.Send(hostedui.ShowHostedUI{Options: req.HostedUI})
	})
}

func (Actions) StartCustomAuth(req data.SignInData) states.Action {
	return newAction(signin.ActionStartCustomAuth, func(_ context.Context, _ *slog.Logger, d engine.Dispatcher, _ *environment.Environment) {
		d.Send(customsignin.InitiateCustomSignIn{SignIn: req})
	})
}

// InitResolveChallenge presents ch to the user, or fails the sign-in when no
// answer key exists for it.
func (Actions) InitResolveChallenge(ch data.AuthChallenge, method data.SignInMethod) states.Action {
	return newAction(signin.ActionInitResolveChallenge, func(_ context.Context, log *slog.Logger, d engine.Dispatcher, _ *environment.Environment) {
		if _, ok := data.AnswerKey(ch.Name); !ok {
			err := data.NewError(data.KindUnsupportedChallenge, "challenge %s is not supported", ch.Name)
			failSignIn(log, d, nil, err)
			return
		}
		log.Info("waiting for challenge answer", "challenge", ch.Name)
		d.Send(challenge.WaitForAnswer{Challenge: ch, Method: method})
	})
}

// routeResult turns a provider response into the next events: either a
// challenge for the sign-in level or a completed sign-in. finalize is the
// calling level's success event.
func routeResult(log *slog.Logger, d engine.Dispatcher, env *environment.Environment, method data.SignInMethod, res data.AuthResult, finalize engine.Event) {
	if res.IsChallenge() {
		d.Send(signin.ReceivedChallenge{Challenge: *res.Challenge, Method: method})
		return
	}
	if res.Tokens == nil {
		failSignIn(log, d, nil, data.NewError(data.KindUnknown, "provider returned neither challenge nor tokens"))
		return
	}
	if finalize != nil {
		d.Send(finalize)
	}
	completeSignIn(log, d, env, method, *res.Tokens)
}
