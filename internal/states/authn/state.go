// Package authn is the root of the authentication state tree.
package authn

import (
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/states/signin"
	"github.com/roach88/authflow/internal/states/signout"
)

// State is the root variant set.
type State interface {
	authNState()
}

// NotConfigured is the initial variant.
type NotConfigured struct{}

// Configured waits for the stored credential to be evaluated.
type Configured struct{}

// SigningIn owns the sign-in level.
type SigningIn struct {
	SignIn signin.State
}

// SignedIn holds the established session.
type SignedIn struct {
	Data data.SignedInData
}

// SigningOut owns the sign-out level. Session is the session being ended,
// restored if the sign-out is cancelled; zero when signing out while
// already signed out.
type SigningOut struct {
	SignOut signout.State
	Session data.SignedInData
}

// SignedOut holds what is known after the session ended.
type SignedOut struct {
	Data data.SignedOutData
}

// Error is terminal failure; only Reset leaves it.
type Error struct {
	Err error
}

func (NotConfigured) authNState() {}
func (Configured) authNState() {}
func (SigningIn) authNState() {}
func (SignedIn) authNState() {}
func (SigningOut) authNState() {}
func (SignedOut) authNState() {}
func (Error) authNState() {}

// Describe returns the slash-joined variant path of the whole tree, such as
// "SigningIn/ResolvingChallenge/WaitingForAnswer".
func Describe(s State) string {
	switch s := s.(type) {
	case NotConfigured:
		return "NotConfigured"
	case Configured:
		return "Configured"
	case SigningIn:
		return "SigningIn/" + signin.Describe(s.SignIn)
	case SignedIn:
		return "SignedIn"
	case SigningOut:
		return "SigningOut/" + signout.Describe(s.SignOut)
	case SignedOut:
		return "SignedOut"
	case Error:
		return "Error"
	}
	return "Unknown"
}

// IsSettled reports whether s is a variant an outside caller waits for:
// SignedIn, SignedOut or Error.
func IsSettled(s State) bool {
	switch s.(type) {
	case SignedIn, SignedOut, Error:
		return true
	}
	return false
}

func signInChild(s State) (signin.State, bool) {
	v, ok := s.(SigningIn)
	return v.SignIn, ok
}

func withSignIn(s State, child signin.State) State {
	if _, ok := s.(SigningIn); ok {
		return SigningIn{SignIn: child}
	}
	return s
}

func signOutChild(s State) (signout.State, bool) {
	v, ok := s.(SigningOut)
	return v.SignOut, ok
}

func withSignOut(s State, child signout.State) State {
	if v, ok := s.(SigningOut); ok {
		return SigningOut{SignOut: child, Session: v.Session}
	}
	return s
}
