package signout

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

func noop(context.Context, string, engine.Dispatcher, *environment.Environment) {}

func (stubActions) HostedUISignOut(data.SignedInData, bool) states.Action {
	return states.NewAction(ActionHostedUISignOut, noop)
}

func (stubActions) GlobalSignOut(data.SignedInData) states.Action {
	return states.NewAction(ActionGlobalSignOut, noop)
}

func (stubActions) RevokeToken(data.SignedInData) states.Action {
	return states.NewAction(ActionRevokeToken, noop)
}

func (stubActions) SignOutLocally(data.SignedInData) states.Action {
	return states.NewAction(ActionSignOutLocally, noop)
}

var session = data.SignedInData{UserID: "u1", Username: "alice", Method: data.MethodSRP}

func allStates() []State {
	return []State{
		NotStarted{},
		SigningOutHostedUI{Session: session},
		SigningOutGlobally{Session: session},
		RevokingToken{Session: session},
		SigningOutLocally{Session: session},
		SignedOut{},
		Error{Err: errors.New("x")},
	}
}

func allEvents() []engine.Event {
	return []engine.Event{
		InvokeHostedUISignOut{Session: session},
		SignOutGlobally{Session: session},
		RevokeToken{Session: session},
		SignOutLocally{Session: session},
		SignedOutSuccess{},
		SignedOutFailure{Err: errors.New("disk full")},
		Reset{},
	}
}

func TestSelectPath(t *testing.T) {
	hosted := data.SignedInData{Method: data.MethodHostedUI}
	srpSession := data.SignedInData{Method: data.MethodSRP}

	tests := []struct {
		name    string
		session *data.SignedInData
		global  bool
		want    Path
	}{
		{"hosted", &hosted, false, PathHostedUI},
		{"hosted wins over global", &hosted, true, PathHostedUI},
		{"global", &srpSession, true, PathGlobal},
		{"revoke", &srpSession, false, PathRevoke},
		{"no session", nil, false, PathLocal},
		{"no session ignores global", nil, true, PathLocal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectPath(tt.session, data.SignOutData{GlobalSignOut: tt.global}))
		})
	}
}

func TestResolve_Total(t *testing.T) {
	r := NewResolver(stubActions{}, nil)
	for _, s := range allStates() {
		for _, ev := range allEvents() {
			require.NotPanics(t, func() {
				assert.NotNil(t, r.Resolve(s, ev).NewState, "%s + %s", Describe(s), ev.Type())
			})
		}
	}
}

func TestResolve_FullHostedSequence(t *testing.T) {
	r := NewResolver(stubActions{}, nil)

	steps := []struct {
		ev     engine.Event
		want   State
		action string
	}{
		{InvokeHostedUISignOut{Session: session, Global: true}, SigningOutHostedUI{Session: session, Global: true}, ActionHostedUISignOut},
		{SignOutGlobally{Session: session}, SigningOutGlobally{Session: session}, ActionGlobalSignOut},
		{RevokeToken{Session: session}, RevokingToken{Session: session}, ActionRevokeToken},
		{SignOutLocally{Session: session}, SigningOutLocally{Session: session}, ActionSignOutLocally},
	}

	var s State = NotStarted{}
	for _, step := range steps {
		res := r.Resolve(s, step.ev)
		require.Equal(t, step.want, res.NewState, step.ev.Type())
		assert.Equal(t, []string{step.action}, engine.ActionNames(res.Actions))
		s = res.NewState
	}

	done := data.SignedOutData{LastKnownUsername: "alice"}
	res := r.Resolve(s, SignedOutSuccess{Data: done})
	assert.Equal(t, SignedOut{Data: done}, res.NewState)
	assert.Empty(t, res.Actions)
}

func TestResolve_StepsNeverGoBack(t *testing.T) {
	r := NewResolver(stubActions{}, nil)

	res := r.Resolve(RevokingToken{Session: session}, SignOutGlobally{Session: session})
	assert.Equal(t, RevokingToken{Session: session}, res.NewState)
	assert.Empty(t, res.Actions)

	res = r.Resolve(SigningOutGlobally{Session: session}, InvokeHostedUISignOut{Session: session})
	assert.Equal(t, SigningOutGlobally{Session: session}, res.NewState)
	assert.Empty(t, res.Actions)
}

func TestResolve_LocalFailure(t *testing.T) {
	r := NewResolver(stubActions{}, nil)
	boom := errors.New("disk full")

	res := r.Resolve(SigningOutLocally{}, SignedOutFailure{Err: boom})
	assert.Equal(t, Error{Err: boom}, res.NewState)
	assert.Equal(t, NotStarted{}, r.Resolve(res.NewState, Reset{}).NewState)
}
