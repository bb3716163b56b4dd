package srp

import "github.com/roach88/authflow/internal/data"

// InitiateSRP starts the exchange.
type InitiateSRP struct {
	SignIn data.SignInData
}

// RespondPasswordVerifier carries the provider's verifier challenge.
type RespondPasswordVerifier struct {
	Challenge data.AuthChallenge
}

// Finalize reports that the provider issued tokens.
type Finalize struct{}

// ThrowError ends the exchange in Error.
type ThrowError struct {
	Err error
}

// Reset returns a terminal exchange to NotStarted.
type Reset struct{}

func (InitiateSRP) Type() string { return "srp.initiateSRP" }
func (RespondPasswordVerifier) Type() string { return "srp.respondPasswordVerifier" }
func (Finalize) Type() string { return "srp.finalize" }
func (ThrowError) Type() string { return "srp.throwError" }
func (Reset) Type() string { return "srp.reset" }
