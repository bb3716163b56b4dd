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
	"github.com/roach88/authflow/internal/states/signout"
)

// HostedUISignOut visits the provider's logout page. Closing the browser
// abandons the sign-out; other failures are logged and the remaining steps
// still run.
func (Actions) HostedUISignOut(session data.SignedInData, global bool) states.Action {
	return newAction(signout.ActionHostedUISignOut, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if env.WebAuth == nil || env.Launcher == nil {
			log.Warn("hosted UI not configured, skipping hosted logout")
		} else if err := hostedLogout(ctx, env); err != nil {
			if errors.Is(err, data.ErrUserCancelled) {
				log.Info("hosted logout closed by user")
				d.Send(authn.CancelSignOut{Err: err})
				return
			}
			log.Warn("hosted logout failed", "error", err)
		}

		if global {
			d.Send(signout.SignOutGlobally{Session: session})
			return
		}
		d.Send(signout.RevokeToken{Session: session})
	})
}

func hostedLogout(ctx context.Context, env *environment.Environment) error {
	url, err := env.WebAuth.LogoutURL()
	if err != nil {
		return err
	}
	_, err = env.Launcher.Launch(ctx, url, data.HostedUIOptions{})
	return err
}

func (Actions) GlobalSignOut(session data.SignedInData) states.Action {
	return newAction(signout.ActionGlobalSignOut, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if err := env.Provider.GlobalSignOut(ctx, session.Tokens.AccessToken); err != nil {
			log.Warn("global sign-out failed", "error", err)
		}
		d.Send(signout.RevokeToken{Session: session})
	})
}

func (Actions) RevokeToken(session data.SignedInData) states.Action {
	return newAction(signout.ActionRevokeToken, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if session.Tokens.RefreshToken == "" {
			log.Debug("no refresh token to revoke")
		} else if err := env.Provider.RevokeToken(ctx, session.Tokens.RefreshToken); err != nil {
			log.Warn("token revocation failed", "error", err)
		}
		d.Send(signout.SignOutLocally{Session: session})
	})
}

// SignOutLocally clears the stored credential. It is the last step of every
// sign-out and the only one whose failure fails the sign-out.
func (Actions) SignOutLocally(session data.SignedInData) states.Action {
	return newAction(signout.ActionSignOutLocally, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if err := env.Credentials.Clear(ctx); err != nil {
			log.Error("clearing credential failed", "error", err)
			d.Send(signout.SignedOutFailure{Err: data.WrapError(data.KindUnknown, "clear credential", err)})
			return
		}
		log.Info("signed out", "user", session.Username)
		d.Send(signout.SignedOutSuccess{Data: data.SignedOutData{LastKnownUsername: session.Username}})
	})
}
