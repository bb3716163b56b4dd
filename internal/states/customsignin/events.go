package customsignin

import "github.com/roach88/authflow/internal/data"

// InitiateCustomSignIn starts the flow.
type InitiateCustomSignIn struct {
	SignIn data.SignInData
}

// FinalizeSignIn reports tokens issued without a challenge.
type FinalizeSignIn struct{}

// ThrowError ends the flow in Error.
type ThrowError struct {
	Err error
}

// Reset returns a terminal flow to NotStarted.
type Reset struct{}

func (InitiateCustomSignIn) Type() string { return "customSignIn.initiate" }
func (FinalizeSignIn) Type() string { return "customSignIn.finalize" }
func (ThrowError) Type() string { return "customSignIn.throwError" }
func (Reset) Type() string { return "customSignIn.reset" }
