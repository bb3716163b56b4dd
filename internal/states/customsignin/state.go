// Package customsignin starts a CUSTOM_AUTH flow. The provider answers with
// a challenge (handled by the challenge level) or, rarely, tokens.
package customsignin

import "github.com/roach88/authflow/internal/data"

// State is the custom sign-in level's variant set.
type State interface {
	customState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// InitiatingCustomSignIn waits for the provider's first response.
type InitiatingCustomSignIn struct {
	SignIn data.SignInData
}

// SignedIn is terminal success.
type SignedIn struct{}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) customState() {}
func (InitiatingCustomSignIn) customState() {}
func (SignedIn) customState() {}
func (Error) customState() {}

// Describe returns the variant name.
func Describe(s State) string {
	switch s.(type) {
	case NotStarted:
		return "NotStarted"
	case InitiatingCustomSignIn:
		return "InitiatingCustomSignIn"
	case SignedIn:
		return "SignedIn"
	case Error:
		return "Error"
	}
	return "Unknown"
}
