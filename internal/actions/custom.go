package actions

import (
	"context"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/customsignin"
)

func (Actions) InitiateCustomAuth(req data.SignInData) states.Action {
	return newAction(customsignin.ActionInitiateCustomAuth, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		res, err := env.Provider.InitiateAuth(ctx, environment.InitiateAuthInput{
			Flow:           environment.FlowCustom,
			Username:       req.Username,
			SecretHash:     SecretHash(env.Config.Provider, req.Username),
			ClientMetadata: req.ClientMetadata,
		})
		if err != nil {
			err = providerError("initiate custom auth", err)
			failSignIn(log, d, customsignin.ThrowError{Err: err}, err)
			return
		}
		routeResult(log, d, env, data.MethodCustom, res, customsignin.FinalizeSignIn{})
	})
}
