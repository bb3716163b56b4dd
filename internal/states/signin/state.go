// Package signin selects the sign-in method and routes provider challenges.
// Each in-progress variant owns the child level of its method.
package signin

import (
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/srp"
)

// State is the sign-in level's variant set.
type State interface {
	signInState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// SigningInWithSRP owns the SRP exchange.
type SigningInWithSRP struct {
	SRP srp.State
}

// SigningInWithHostedUI owns the hosted web flow.
type SigningInWithHostedUI struct {
	HostedUI hostedui.State
}

// SigningInWithCustom owns the custom auth initiation.
type SigningInWithCustom struct {
	Custom customsignin.State
}

// ResolvingChallenge owns the challenge currently presented to the user.
type ResolvingChallenge struct {
	Challenge challenge.State
}

// Done is terminal: a session was established.
type Done struct{}

// Cancelled is terminal: the sign-in was abandoned.
type Cancelled struct{}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) signInState() {}
func (SigningInWithSRP) signInState() {}
func (SigningInWithHostedUI) signInState() {}
func (SigningInWithCustom) signInState() {}
func (ResolvingChallenge) signInState() {}
func (Done) signInState() {}
func (Cancelled) signInState() {}
func (Error) signInState() {}

// Describe returns the slash-joined variant path below this level.
func Describe(s State) string {
	switch s := s.(type) {
	case NotStarted:
		return "NotStarted"
	case SigningInWithSRP:
		return "SigningInWithSRP/" + srp.Describe(s.SRP)
	case SigningInWithHostedUI:
		return "SigningInWithHostedUI/" + hostedui.Describe(s.HostedUI)
	case SigningInWithCustom:
		return "SigningInWithCustom/" + customsignin.Describe(s.Custom)
	case ResolvingChallenge:
		return "ResolvingChallenge/" + challenge.Describe(s.Challenge)
	case Done:
		return "Done"
	case Cancelled:
		return "Cancelled"
	case Error:
		return "Error"
	}
	return "Unknown"
}
