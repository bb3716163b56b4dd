package actions

import (
	"context"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/srp"
)

func (Actions) InitiateSRPAuth(req data.SignInData) states.Action {
	return newAction(srp.ActionInitiateSRPAuth, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		res, err := env.Provider.InitiateAuth(ctx, environment.InitiateAuthInput{
			Flow:           environment.FlowUserSRP,
			Username:       req.Username,
			Password:       req.Password,
			SecretHash:     SecretHash(env.Config.Provider, req.Username),
			ClientMetadata: req.ClientMetadata,
		})
		if err != nil {
			err = providerError("initiate srp auth", err)
			failSignIn(log, d, srp.ThrowError{Err: err}, err)
			return
		}
		if res.IsChallenge() && res.Challenge.Name == data.ChallengePasswordVerifier {
			d.Send(srp.RespondPasswordVerifier{Challenge: *res.Challenge})
			return
		}
		routeResult(log, d, env, data.MethodSRP, res, srp.Finalize{})
	})
}

func (Actions) VerifyPasswordSRP(req data.SignInData, ch data.AuthChallenge) states.Action {
	return newAction(srp.ActionVerifyPasswordSRP, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		username := req.Username
		if ch.Username != "" {
			username = ch.Username
		}
		res, err := env.Provider.RespondToChallenge(ctx, environment.RespondToChallengeInput{
			Challenge:      ch,
			Password:       req.Password,
			SecretHash:     SecretHash(env.Config.Provider, username),
			ClientMetadata: req.ClientMetadata,
		})
		if err != nil {
			err = providerError("verify password", err)
			failSignIn(log, d, srp.ThrowError{Err: err}, err)
			return
		}
		if res.IsChallenge() && res.Challenge.Name == data.ChallengePasswordVerifier {
			err := data.NewError(data.KindUnknown, "provider repeated the password verifier challenge")
			failSignIn(log, d, srp.ThrowError{Err: err}, err)
			return
		}
		routeResult(log, d, env, data.MethodSRP, res, srp.Finalize{})
	})
}
