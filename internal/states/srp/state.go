// Package srp drives the password verifier exchange: request the SRP
// challenge, then answer PASSWORD_VERIFIER.
package srp

import "github.com/roach88/authflow/internal/data"

// State is the SRP level's variant set.
type State interface {
	srpState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// InitiatingSRPA waits for the provider's PASSWORD_VERIFIER challenge.
type InitiatingSRPA struct {
	SignIn data.SignInData
}

// RespondingPasswordVerifier waits for the verifier response.
type RespondingPasswordVerifier struct {
	SignIn data.SignInData
}

// SignedIn is terminal success.
type SignedIn struct{}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) srpState() {}
func (InitiatingSRPA) srpState() {}
func (RespondingPasswordVerifier) srpState() {}
func (SignedIn) srpState() {}
func (Error) srpState() {}

// Describe returns the variant name.
func Describe(s State) string {
	switch s.(type) {
	case NotStarted:
		return "NotStarted"
	case InitiatingSRPA:
		return "InitiatingSRPA"
	case RespondingPasswordVerifier:
		return "RespondingPasswordVerifier"
	case SignedIn:
		return "SignedIn"
	case Error:
		return "Error"
	}
	return "Unknown"
}
