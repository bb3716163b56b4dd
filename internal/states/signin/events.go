package signin

import "github.com/roach88/authflow/internal/data"

// InitiateSignInWithSRP starts a password sign-in.
type InitiateSignInWithSRP struct {
	SignIn data.SignInData
}

// InitiateHostedUISignIn starts a hosted web sign-in.
type InitiateHostedUISignIn struct {
	SignIn data.SignInData
}

// InitiateCustomSignIn starts a custom auth sign-in.
type InitiateCustomSignIn struct {
	SignIn data.SignInData
}

// ReceivedChallenge reports a provider challenge for the current sign-in.
type ReceivedChallenge struct {
	Challenge data.AuthChallenge
	Method    data.SignInMethod
}

// ThrowError ends the sign-in in Error.
type ThrowError struct {
	Err error
}

// Reset returns a terminal sign-in to NotStarted.
type Reset struct{}

func (InitiateSignInWithSRP) Type() string { return "signIn.initiateSignInWithSRP" }
func (InitiateHostedUISignIn) Type() string { return "signIn.initiateHostedUISignIn" }
func (InitiateCustomSignIn) Type() string { return "signIn.initiateCustomSignIn" }
func (ReceivedChallenge) Type() string { return "signIn.receivedChallenge" }
func (ThrowError) Type() string { return "signIn.throwError" }
func (Reset) Type() string { return "signIn.reset" }
