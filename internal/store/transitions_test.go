package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authflow/internal/engine"
)

type testEvent string

func (e testEvent) Type() string { return string(e) }

func TestTransitions_AppendAndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []Record{
		{Seq: 2, Event: "authn.initializedSignedOut", From: "Configured", To: "SignedOut", Actions: []string{}},
		{Seq: 1, Event: "authn.configure", From: "NotConfigured", To: "Configured", Actions: []string{"ConfigureAuthN"}},
		{Seq: 3, Event: "authn.signInRequested", From: "SignedOut", To: "SigningIn/SigningInWithSRP/NotStarted", Actions: []string{"StartSRPAuth"}},
	}
	for _, rec := range recs {
		require.NoError(t, s.AppendTransition(ctx, rec))
	}

	got, err := s.ReadTransitions(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].Seq, got[1].Seq, got[2].Seq})
	assert.Equal(t, recs[1], got[0])
	assert.Equal(t, []string{}, got[1].Actions)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}

func TestTransitions_FilterByEvent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTransition(ctx, Record{Seq: 1, Event: "a", From: "X", To: "Y"}))
	require.NoError(t, s.AppendTransition(ctx, Record{Seq: 2, Event: "b", From: "Y", To: "Z"}))

	got, err := s.ReadTransitions(ctx, "b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Seq)
}

func TestTransitions_DuplicateSeqIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTransition(ctx, Record{Seq: 1, Event: "first", From: "A", To: "B"}))
	require.NoError(t, s.AppendTransition(ctx, Record{Seq: 1, Event: "second", From: "A", To: "C"}))

	got, err := s.ReadTransitions(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Event)
}

func TestTransitions_EmptyLog(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ReadTransitions(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	last, err := s.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestTransitionLog_RecordsObservedTransitions(t *testing.T) {
	s := openTestStore(t)
	log := NewTransitionLog[string](s, func(v string) string { return "<" + v + ">" }, nil)

	log.OnTransition(context.Background(), engine.Transition[string]{
		Seq: 7, Event: testEvent("lamp.toggle"), From: "off", To: "on", Actions: []string{"Light"},
	})

	got, err := s.ReadTransitions(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []Record{{Seq: 7, Event: "lamp.toggle", From: "<off>", To: "<on>", Actions: []string{"Light"}}}, got)
}

func TestMarshalActions_Canonical(t *testing.T) {
	text, err := marshalActions(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)

	text, err = marshalActions([]string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, `["B","A"]`, text)

	got, err := unmarshalActions("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	_, err = unmarshalActions("{")
	assert.Error(t, err)
}
