package actions

import (
	"context"
	"log/slog"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
	"github.com/roach88/authflow/internal/states/challenge"
)

// VerifyChallengeAnswer sends the user's answer. A wrong code returns the
// challenge to WaitingForAnswer; any other failure ends the sign-in.
func (Actions) VerifyChallengeAnswer(ch data.AuthChallenge, method data.SignInMethod, answer string, metadata map[string]string) states.Action {
	return newAction(challenge.ActionVerifyChallengeAnswer, func(ctx context.Context, log *slog.Logger, d engine.Dispatcher, env *environment.Environment) {
		key, ok := data.AnswerKey(ch.Name)
		if !ok {
			err := data.NewError(data.KindUnsupportedChallenge, "challenge %s is not supported", ch.Name)
			failSignIn(log, d, challenge.ThrowError{Err: err}, err)
			return
		}

		res, err := env.Provider.RespondToChallenge(ctx, environment.RespondToChallengeInput{
			Challenge: ch,
			Responses: map[string]string{
				"USERNAME": ch.Username,
				key:        answer,
			},
			SecretHash:     SecretHash(env.Config.Provider, ch.Username),
			ClientMetadata: metadata,
		})
		if err != nil {
			if data.IsRecoverable(err) {
				log.Info("challenge answer rejected", "challenge", ch.Name, "error", err)
				d.Send(challenge.RetryAnswer{Err: err})
				return
			}
			err = providerError("respond to challenge", err)
			failSignIn(log, d, challenge.ThrowError{Err: err}, err)
			return
		}
		routeResult(log, d, env, method, res, challenge.ChallengeVerified{})
	})
}
