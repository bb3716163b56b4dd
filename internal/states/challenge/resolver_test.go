package challenge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states"
)

type stubActions struct{}

func (stubActions) VerifyChallengeAnswer(data.AuthChallenge, data.SignInMethod, string, map[string]string) states.Action {
	return states.NewAction(ActionVerifyChallengeAnswer, func(context.Context, string, engine.Dispatcher, *environment.Environment) {})
}

var smsChallenge = data.NewAuthChallenge(data.ChallengeSMSMFA, "alice", "sess-1", map[string]string{"CODE_DELIVERY_DESTINATION": "+1***"})

func allStates() []State {
	return []State{
		NotStarted{},
		WaitingForAnswer{Challenge: smsChallenge, Method: data.MethodSRP},
		Verifying{Challenge: smsChallenge, Method: data.MethodSRP},
		Verified{},
		Error{Err: errors.New("x")},
	}
}

func allEvents() []engine.Event {
	return []engine.Event{
		WaitForAnswer{Challenge: smsChallenge, Method: data.MethodSRP},
		VerifyChallengeAnswer{Answer: "123456"},
		ChallengeVerified{},
		RetryAnswer{Err: data.ErrCodeMismatch},
		ThrowError{Err: errors.New("boom")},
		Reset{},
		states.CancelSignIn{},
	}
}

func TestResolve_Total(t *testing.T) {
	r := NewResolver(stubActions{}, nil)
	for _, s := range allStates() {
		for _, ev := range allEvents() {
			require.NotPanics(t, func() {
				res := r.Resolve(s, ev)
				assert.NotNil(t, res.NewState, "%s + %s", Describe(s), ev.Type())
			})
		}
	}
}

func TestResolve_HappyPath(t *testing.T) {
	r := NewResolver(stubActions{}, nil)

	res := r.Resolve(r.DefaultState(), WaitForAnswer{Challenge: smsChallenge, Method: data.MethodCustom})
	waiting, ok := res.NewState.(WaitingForAnswer)
	require.True(t, ok)
	assert.Equal(t, smsChallenge, waiting.Challenge)
	assert.Empty(t, res.Actions)

	res = r.Resolve(waiting, VerifyChallengeAnswer{Answer: "123456"})
	assert.Equal(t, Verifying{Challenge: smsChallenge, Method: data.MethodCustom}, res.NewState)
	assert.Equal(t, []string{ActionVerifyChallengeAnswer}, engine.ActionNames(res.Actions))

	res = r.Resolve(res.NewState, ChallengeVerified{})
	assert.Equal(t, Verified{}, res.NewState)
	assert.Empty(t, res.Actions)
}

func TestResolve_RetryIsRecoverable(t *testing.T) {
	r := NewResolver(stubActions{}, nil)

	res := r.Resolve(Verifying{Challenge: smsChallenge}, RetryAnswer{Err: data.ErrCodeMismatch})

	waiting, ok := res.NewState.(WaitingForAnswer)
	require.True(t, ok)
	assert.Equal(t, smsChallenge, waiting.Challenge, "same challenge is presented again")
	assert.ErrorIs(t, waiting.LastError, data.ErrCodeMismatch)
	assert.Empty(t, res.Actions)
}

func TestResolve_ErrorAcceptsOnlyReset(t *testing.T) {
	r := NewResolver(stubActions{}, nil)
	failed := Error{Err: errors.New("denied")}

	for _, ev := range allEvents() {
		res := r.Resolve(failed, ev)
		if _, ok := ev.(Reset); ok {
			assert.Equal(t, NotStarted{}, res.NewState)
			continue
		}
		assert.Equal(t, failed, res.NewState, ev.Type())
		assert.Empty(t, res.Actions, ev.Type())
	}
}

func TestResolve_UnknownStateIsUnchanged(t *testing.T) {
	r := NewResolver(stubActions{}, nil)

	res := r.Resolve(nil, Reset{})
	assert.Nil(t, res.NewState)
	assert.Empty(t, res.Actions)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "WaitingForAnswer", Describe(WaitingForAnswer{}))
	assert.Equal(t, "Unknown", Describe(nil))
}
