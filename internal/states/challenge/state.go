// Package challenge resolves provider challenges (MFA codes, custom
// challenges, new password) by waiting for the user's answer and verifying
// it with the provider.
package challenge

import "github.com/roach88/authflow/internal/data"

// State is the challenge level's variant set.
type State interface {
	challengeState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// WaitingForAnswer waits for the user. LastError is the recoverable error of
// the previous answer, if any.
type WaitingForAnswer struct {
	Challenge data.AuthChallenge
	Method    data.SignInMethod
	LastError error
}

// Verifying sends the answer to the provider.
type Verifying struct {
	Challenge data.AuthChallenge
	Method    data.SignInMethod
}

// Verified is terminal success.
type Verified struct{}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) challengeState() {}
func (WaitingForAnswer) challengeState() {}
func (Verifying) challengeState() {}
func (Verified) challengeState() {}
func (Error) challengeState() {}

// Describe returns the variant name.
func Describe(s State) string {
	switch s.(type) {
	case NotStarted:
		return "NotStarted"
	case WaitingForAnswer:
		return "WaitingForAnswer"
	case Verifying:
		return "Verifying"
	case Verified:
		return "Verified"
	case Error:
		return "Error"
	}
	return "Unknown"
}
