package challenge

import "github.com/roach88/authflow/internal/data"

// WaitForAnswer presents a supported challenge to the user.
type WaitForAnswer struct {
	Challenge data.AuthChallenge
	Method    data.SignInMethod
}

// VerifyChallengeAnswer carries the user's answer.
type VerifyChallengeAnswer struct {
	Answer         string
	ClientMetadata map[string]string
}

// ChallengeVerified reports that the provider accepted the answer.
type ChallengeVerified struct{}

// RetryAnswer reports a recoverable rejection; the user may answer again.
type RetryAnswer struct {
	Err error
}

// ThrowError ends the challenge in Error.
type ThrowError struct {
	Err error
}

// Reset returns a terminal challenge to NotStarted.
type Reset struct{}

func (WaitForAnswer) Type() string { return "challenge.waitForAnswer" }
func (VerifyChallengeAnswer) Type() string { return "challenge.verifyChallengeAnswer" }
func (ChallengeVerified) Type() string { return "challenge.verified" }
func (RetryAnswer) Type() string { return "challenge.retryAnswer" }
func (ThrowError) Type() string { return "challenge.throwError" }
func (Reset) Type() string { return "challenge.reset" }
