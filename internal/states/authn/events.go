package authn

import (
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/states"
)

// Configure starts the tree. Stored is the persisted credential, if any.
type Configure struct {
	Stored *data.SignedInData
}

// InitializedSignedIn reports a usable stored session.
type InitializedSignedIn struct {
	Data data.SignedInData
}

// InitializedSignedOut reports that no usable session was stored.
type InitializedSignedOut struct {
	Data data.SignedOutData
}

// SignInRequested asks for a sign-in with the request's method.
type SignInRequested struct {
	SignIn data.SignInData
}

// SignInCompleted reports an established session.
type SignInCompleted = states.SignInCompleted

// CancelSignIn ends an in-progress sign-in.
type CancelSignIn = states.CancelSignIn

// ThrowError moves configuration, sign-in or sign-out to the root Error
// variant. Sent for failures no level below can represent, such as a
// panicking action.
type ThrowError struct {
	Err error
}

// SignOutRequested asks for a sign-out.
type SignOutRequested struct {
	SignOut data.SignOutData
}

// CancelSignOut abandons a sign-out and restores the session.
type CancelSignOut struct {
	Err error
}

// RefreshSession asks for fresh tokens.
type RefreshSession struct{}

// SessionRefreshed carries the refreshed session.
type SessionRefreshed struct {
	Data data.SignedInData
}

// SessionExpired reports that the session can no longer be refreshed.
type SessionExpired struct {
	Err error
}

// RefreshFailed reports a refresh that failed but left the session usable
// (for example a network error).
type RefreshFailed struct {
	Err error
}

// Reset leaves Error.
type Reset struct{}

func (Configure) Type() string { return "authn.configure" }
func (InitializedSignedIn) Type() string { return "authn.initializedSignedIn" }
func (InitializedSignedOut) Type() string { return "authn.initializedSignedOut" }
func (SignInRequested) Type() string { return "authn.signInRequested" }
func (ThrowError) Type() string { return "authn.throwError" }
func (SignOutRequested) Type() string { return "authn.signOutRequested" }
func (CancelSignOut) Type() string { return "authn.cancelSignOut" }
func (RefreshSession) Type() string { return "authn.refreshSession" }
func (SessionRefreshed) Type() string { return "authn.sessionRefreshed" }
func (SessionExpired) Type() string { return "authn.sessionExpired" }
func (RefreshFailed) Type() string { return "authn.refreshFailed" }
func (Reset) Type() string { return "authn.reset" }
