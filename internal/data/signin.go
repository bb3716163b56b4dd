package data

import (
	"maps"
	"time"
)

// SignInMethod identifies how a session was obtained. It decides both the
// sign-in initiation action and the sign-out path.
type SignInMethod string

const (
	MethodSRP      SignInMethod = "srp"
	MethodHostedUI SignInMethod = "hosted_ui"
	MethodCustom   SignInMethod = "custom"
)

// ValidMethods lists the sign-in methods in declaration order.
var ValidMethods = []SignInMethod{MethodSRP, MethodHostedUI, MethodCustom}

// Valid reports whether m is a known method.
func (m SignInMethod) Valid() bool {
	for _, v := range ValidMethods {
		if m == v {
			return true
		}
	}
	return false
}

// HostedUIOptions tunes a hosted web sign-in.
type HostedUIOptions struct {
	// Scopes overrides the configured scopes when non-empty.
	Scopes []string `json:"scopes,omitempty"`

	// IdentityProvider routes straight to a federated provider ("Google").
	IdentityProvider string `json:"identity_provider,omitempty"`

	// IDPIdentifier selects a provider by identifier instead of name.
	IDPIdentifier string `json:"idp_identifier,omitempty"`

	// PrivateSession asks the launcher not to share browser cookies.
	PrivateSession bool `json:"private_session,omitempty"`
}

// SignInData is the payload of a sign-in request.
type SignInData struct {
	Username string
	Password string
	Method   SignInMethod

	// HostedUI is used only when Method is MethodHostedUI.
	HostedUI HostedUIOptions

	// ClientMetadata is forwarded to provider triggers.
	ClientMetadata map[string]string
}

// NewSignInData builds a request, copying metadata so the caller's map can
// be reused.
func NewSignInData(method SignInMethod, username, password string, metadata map[string]string) SignInData {
	return SignInData{
		Username:       username,
		Password:       password,
		Method:         method,
		ClientMetadata: maps.Clone(metadata),
	}
}

// SignedInData describes an established session. It is also the persisted
// credential.
type SignedInData struct {
	UserID     string       `json:"user_id"`
	Username   string       `json:"username"`
	Method     SignInMethod `json:"method"`
	SignedInAt time.Time    `json:"signed_in_at"`
	Tokens     Tokens       `json:"tokens"`
}

// SignedOutData describes the signed-out state.
type SignedOutData struct {
	LastKnownUsername string

	// LastSignInError is the reason the most recent sign-in attempt ended
	// without a session. Nil after a clean sign-out.
	LastSignInError error
}

// SignOutData is the payload of a sign-out request.
type SignOutData struct {
	// GlobalSignOut invalidates every session of the user at the provider.
	GlobalSignOut bool
}
