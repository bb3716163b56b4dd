package actions

import (
	"context"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/authn"
)

// ConfigureAuthN decides the initial settled state. stored, when nil, is
// loaded from the credential store.
//
//	no credential                        -> signed out
//	unexpired credential                 -> signed in
//	expired, refresh token available     -> signed in, then refresh
//	expired, no refresh token            -> credential cleared, signed out
func (Actions) ConfigureAuthN(stored *data.SignedInData) states.Action {
	return newAction(authn.ActionConfigureAuthN, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		session, ok := data.SignedInData{}, false
		if stored != nil {
			session, ok = *stored, true
		} else {
			var err error
			session, ok, err = env.Credentials.Load(ctx)
			if err != nil {
				log.Warn("loading stored credential failed, starting signed out", "error", err)
				ok = false
			}
		}

		if !ok {
			d.Send(authn.InitializedSignedOut{})
			return
		}

		if !session.Tokens.Expired(env.Now(), env.Config.Session.RefreshSkew) {
			log.Info("restored session", "user", session.Username)
			d.Send(authn.InitializedSignedIn{Data: session})
			return
		}

		if session.Tokens.RefreshToken != "" {
			log.Info("restored expired session, refreshing", "user", session.Username)
			d.Send(authn.InitializedSignedIn{Data: session})
			d.Send(authn.RefreshSession{})
			return
		}

		if err := env.Credentials.Clear(ctx); err != nil {
			log.Warn("clearing expired credential failed", "error", err)
		}
		d.Send(authn.InitializedSignedOut{Data: data.SignedOutData{LastKnownUsername: session.Username}})
	})
}

// RefreshSession exchanges the refresh token. A rejected token expires the
// session; any other failure leaves it in place.
func (Actions) RefreshSession(session data.SignedInData) states.Action {
	return newAction(authn.ActionRefreshSession, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		if session.Tokens.RefreshToken == "" {
			expire(log, d, data.NewError(data.KindSessionExpired, "session has no refresh token"))
			return
		}

		tokens, err := env.Provider.RefreshTokens(ctx, environment.RefreshInput{
			Username:     session.Username,
			RefreshToken: session.Tokens.RefreshToken,
			SecretHash:   SecretHash(env.Config.Provider, session.Username),
		})
		if err != nil {
			if data.KindOf(err) == data.KindNotAuthorized {
				expire(log, d, &data.AuthError{Kind: data.KindSessionExpired, Message: "refresh rejected", Cause: err})
				return
			}
			log.Warn("refresh failed, keeping session", "error", err)
			d.Send(authn.RefreshFailed{Err: providerError("refresh tokens", err)})
			return
		}

		refreshed := session
		refreshed.Tokens = session.Tokens.WithRefreshed(tokens)
		if fresh, err := data.SignedInDataFromTokens(session.Method, refreshed.Tokens, env.Now); err == nil {
			refreshed.Tokens = fresh.Tokens
		}
		log.Info("session refreshed", "user", session.Username)
		d.Send(authn.SessionRefreshed{Data: refreshed})
	})
}

func expire(log *slog.Logger, d engine.Dispatcher, err error) {
	log.Info("session expired", "error", err)
	d.Send(authn.SessionExpired{Err: err})
}

// SaveCredential persists a session the root has accepted. A failed write
// keeps the in-memory session; the next Configure starts signed out.
func (Actions) SaveCredential(session data.SignedInData) states.Action {
	return newInlineAction(authn.ActionSaveCredential, func(ctx context.Context, log *slog.Logger, _ engine.Dispatcher, env *environment.Environment) {
		if err := env.Credentials.Save(ctx, session); err != nil {
			log.Warn("saving credential failed", "user", session.Username, "error", err)
		}
	})
}

// ClearCredential removes the stored session after it expired.
func (Actions) ClearCredential() states.Action {
	return newInlineAction(authn.ActionClearCredential, func(ctx context.Context, log *slog.Logger, _ engine.Dispatcher, env *environment.Environment) {
		if err := env.Credentials.Clear(ctx); err != nil {
			log.Warn("clearing credential failed", "error", err)
		}
	})
}
