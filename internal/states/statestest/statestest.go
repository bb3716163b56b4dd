// Package statestest builds the full resolver tree with inert actions so
// that state tests can check names and transitions without side effects.
package statestest

import (
	"context"
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

// Actions implements every level's Actions interface. Each returned action
// does nothing but carry the level's action name.
type Actions struct{}

func inert(name string) states.Action {
	return states.NewAction(name, func(context.Context, string, engine.Dispatcher, *environment.Environment) {})
}

func (Actions) ConfigureAuthN(*data.SignedInData) states.Action {
	return inert(authn.ActionConfigureAuthN)
}

func (Actions) RefreshSession(data.SignedInData) states.Action {
	return inert(authn.ActionRefreshSession)
}

func (Actions) SaveCredential(data.SignedInData) states.Action {
	return inert(authn.ActionSaveCredential)
}

func (Actions) ClearCredential() states.Action {
	return inert(authn.ActionClearCredential)
}

func (Actions) StartSRPAuth(data.SignInData) states.Action {
	return inert(signin.ActionStartSRPAuth)
}

func (Actions) StartHostedUIAuth(data.SignInData) states.Action {
	return inert(signin.ActionStartHostedUIAuth)
}

func (Actions) StartCustomAuth(data.SignInData) states.Action {
	return inert(signin.ActionStartCustomAuth)
}

func (Actions) InitResolveChallenge(data.AuthChallenge, data.SignInMethod) states.Action {
	return inert(signin.ActionInitResolveChallenge)
}

func (Actions) InitiateSRPAuth(data.SignInData) states.Action {
	return inert(srp.ActionInitiateSRPAuth)
}

func (Actions) VerifyPasswordSRP(data.SignInData, data.AuthChallenge) states.Action {
	return inert(srp.ActionVerifyPasswordSRP)
}

func (Actions) VerifyChallengeAnswer(data.AuthChallenge, data.SignInMethod, string, map[string]string) states.Action {
	return inert(challenge.ActionVerifyChallengeAnswer)
}

func (Actions) InitiateCustomAuth(data.SignInData) states.Action {
	return inert(customsignin.ActionInitiateCustomAuth)
}

func (Actions) ShowHostedUI(data.HostedUIOptions) states.Action {
	return inert(hostedui.ActionShowHostedUI)
}

func (Actions) FetchHostedUIToken(string, environment.Authorization) states.Action {
	return inert(hostedui.ActionFetchHostedUIToken)
}

func (Actions) HostedUISignOut(data.SignedInData, bool) states.Action {
	return inert(signout.ActionHostedUISignOut)
}

func (Actions) GlobalSignOut(data.SignedInData) states.Action {
	return inert(signout.ActionGlobalSignOut)
}

func (Actions) RevokeToken(data.SignedInData) states.Action {
	return inert(signout.ActionRevokeToken)
}

func (Actions) SignOutLocally(data.SignedInData) states.Action {
	return inert(signout.ActionSignOutLocally)
}

// SignInResolver builds the sign-in level with its children.
func SignInResolver(logger *slog.Logger) *signin.Resolver {
	acts := Actions{}
	return signin.NewResolver(acts, signin.Children{
		SRP:       srp.NewResolver(acts, logger),
		HostedUI:  hostedui.NewResolver(acts, logger),
		Custom:    customsignin.NewResolver(acts, logger),
		Challenge: challenge.NewResolver(acts, logger),
	}, logger)
}

// RootResolver builds the whole tree.
func RootResolver(logger *slog.Logger) *authn.Resolver {
	return authn.NewResolver(Actions{}, SignInResolver(logger), signout.NewResolver(Actions{}, logger), logger)
}
