// Package signout runs the sign-out steps: hosted UI logout, global
// sign-out, token revocation and clearing the local credential. Steps run in
// that order; SelectPath decides where a sign-out enters the sequence.
package signout

import "github.com/roach88/authflow/internal/data"

// State is the sign-out level's variant set.
type State interface {
	signOutState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// SigningOutHostedUI waits for the hosted logout page.
type SigningOutHostedUI struct {
	Session data.SignedInData
	Global  bool
}

// SigningOutGlobally waits for the provider to end every session.
type SigningOutGlobally struct {
	Session data.SignedInData
}

// RevokingToken waits for the refresh token revocation.
type RevokingToken struct {
	Session data.SignedInData
}

// SigningOutLocally waits for the credential store to clear.
type SigningOutLocally struct {
	Session data.SignedInData
}

// SignedOut is terminal success.
type SignedOut struct {
	Data data.SignedOutData
}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) signOutState() {}
func (SigningOutHostedUI) signOutState() {}
func (SigningOutGlobally) signOutState() {}
func (RevokingToken) signOutState() {}
func (SigningOutLocally) signOutState() {}
func (SignedOut) signOutState() {}
func (Error) signOutState() {}

// Describe returns the variant name.
func Describe(s State) string {
	switch s.(type) {
	case NotStarted:
		return "NotStarted"
	case SigningOutHostedUI:
		return "SigningOutHostedUI"
	case SigningOutGlobally:
		return "SigningOutGlobally"
	case RevokingToken:
		return "RevokingToken"
	case SigningOutLocally:
		return "SigningOutLocally"
	case SignedOut:
		return "SignedOut"
	case Error:
		return "Error"
	}
	return "Unknown"
}
