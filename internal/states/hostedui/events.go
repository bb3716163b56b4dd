package hostedui

import (
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// ShowHostedUI opens the sign-in page.
type ShowHostedUI struct {
	Options data.HostedUIOptions
}

// FetchToken carries the browser's redirect. Authorization holds the PKCE
// verifier and state of the request that produced it.
type FetchToken struct {
	CallbackURL   string
	Authorization environment.Authorization
}

// TokenFetched reports a successful code exchange.
type TokenFetched struct{}

// ThrowError ends the flow in Error.
type ThrowError struct {
	Err error
}

// Reset returns a terminal flow to NotStarted.
type Reset struct{}

func (ShowHostedUI) Type() string { return "hostedUI.showHostedUI" }
func (FetchToken) Type() string { return "hostedUI.fetchToken" }
func (TokenFetched) Type() string { return "hostedUI.tokenFetched" }
func (ThrowError) Type() string { return "hostedUI.throwError" }
func (Reset) Type() string { return "hostedUI.reset" }
