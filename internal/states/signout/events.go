package signout

import "github.com/roach88/authflow/internal/data"

// InvokeHostedUISignOut opens the hosted logout page.
type InvokeHostedUISignOut struct {
	Session data.SignedInData
	Global  bool
}

// SignOutGlobally ends every session of the user at the provider.
type SignOutGlobally struct {
	Session data.SignedInData
}

// RevokeToken revokes the session's refresh token.
type RevokeToken struct {
	Session data.SignedInData
}

// SignOutLocally clears the stored credential.
type SignOutLocally struct {
	Session data.SignedInData
}

// SignedOutSuccess reports that the local credential is gone.
type SignedOutSuccess struct {
	Data data.SignedOutData
}

// SignedOutFailure reports that the local credential could not be cleared.
type SignedOutFailure struct {
	Err error
}

// Reset returns a terminal sign-out to NotStarted.
type Reset struct{}

func (InvokeHostedUISignOut) Type() string { return "signOut.invokeHostedUISignOut" }
func (SignOutGlobally) Type() string { return "signOut.signOutGlobally" }
func (RevokeToken) Type() string { return "signOut.revokeToken" }
func (SignOutLocally) Type() string { return "signOut.signOutLocally" }
func (SignedOutSuccess) Type() string { return "signOut.signedOutSuccess" }
func (SignedOutFailure) Type() string { return "signOut.signedOutFailure" }
func (Reset) Type() string { return "signOut.reset" }
