package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/hostedui"
)

var errHostedUIDisabled = data.NewError(data.KindConfiguration, "hosted UI is not configured")

// ShowHostedUI opens the authorize page and waits for the redirect. Closing
// the browser cancels the sign-in.
func (Actions) ShowHostedUI(opts data.HostedUIOptions) states.Action {
	return newAction(hostedui.ActionShowHostedUI, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if env.WebAuth == nil || env.Launcher == nil {
			failSignIn(log, d, hostedui.ThrowError{Err: errHostedUIDisabled}, errHostedUIDisabled)
			return
		}

		auth, err := env.WebAuth.AuthorizeURL(opts)
		if err != nil {
			err = data.WrapError(data.KindConfiguration, "build authorize url", err)
			failSignIn(log, d, hostedui.ThrowError{Err: err}, err)
			return
		}

		callback, err := env.Launcher.Launch(ctx, auth.URL, opts)
		switch {
		case errors.Is(err, data.ErrUserCancelled):
			log.Info("hosted UI closed by user")
			d.Send(states.CancelSignIn{Err: data.ErrUserCancelled})
		case err != nil:
			err = providerError("launch hosted UI", err)
			failSignIn(log, d, hostedui.ThrowError{Err: err}, err)
		default:
			d.Send(hostedui.FetchToken{CallbackURL: callback, Authorization: auth})
		}
	})
}

func (Actions) FetchHostedUIToken(callbackURL string, auth environment.Authorization) states.Action {
	return newAction(hostedui.ActionFetchHostedUIToken, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if env.WebAuth == nil {
			failSignIn(log, d, hostedui.ThrowError{Err: errHostedUIDisabled}, errHostedUIDisabled)
			return
		}
		tokens, err := env.WebAuth.Exchange(ctx, callbackURL, auth)
		if err != nil {
			err = providerError("exchange authorization code", err)
			failSignIn(log, d, hostedui.ThrowError{Err: err}, err)
			return
		}
		d.Send(hostedui.TokenFetched{})
		completeSignIn(log, d, env, data.MethodHostedUI, tokens)
	})
}
