package signin

import (
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/customsignin"
	"github.com/roach88/authflow/internal/states/hostedui"
	"github.com/roach88/authflow/internal/states/srp"
)

// Child accessors and builders. A builder attaches the child only to the
// variant that owns that child type and returns any other variant unchanged.

func srpChild(s State) (srp.State, bool) {
	v, ok := s.(SigningInWithSRP)
	return v.SRP, ok
}

func withSRP(s State, child srp.State) State {
	if _, ok := s.(SigningInWithSRP); ok {
		return SigningInWithSRP{SRP: child}
	}
	return s
}

func hostedUIChild(s State) (hostedui.State, bool) {
	v, ok := s.(SigningInWithHostedUI)
	return v.HostedUI, ok
}

func withHostedUI(s State, child hostedui.State) State {
	if _, ok := s.(SigningInWithHostedUI); ok {
		return SigningInWithHostedUI{HostedUI: child}
	}
	return s
}

func customChild(s State) (customsignin.State, bool) {
	v, ok := s.(SigningInWithCustom)
	return v.Custom, ok
}

func withCustom(s State, child customsignin.State) State {
	if _, ok := s.(SigningInWithCustom); ok {
		return SigningInWithCustom{Custom: child}
	}
	return s
}

func challengeChild(s State) (challenge.State, bool) {
	v, ok := s.(ResolvingChallenge)
	return v.Challenge, ok
}

func withChallenge(s State, child challenge.State) State {
	if _, ok := s.(ResolvingChallenge); ok {
		return ResolvingChallenge{Challenge: child}
	}
	return s
}
