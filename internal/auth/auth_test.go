package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authflow/internal/auth"
	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/store"
	"github.com/roach88/authflow/internal/userpool"
)

func newClient(t *testing.T, stored *data.SignedInData) (*auth.Client, *userpool.Pool, *store.Memory) {
	t.Helper()
	pool := userpool.New("client-1", []userpool.User{
		{Username: "alice", Password: "correct-horse"},
		{Username: "bob", Password: "hunter22", MFA: data.ChallengeSoftwareTokenMFA, MFACode: "123456"},
	})
	creds := store.NewMemory(stored)
	cfg := config.Default()
	cfg.Provider.ClientID = "client-1"

	c := auth.New(environment.New(cfg, pool, creds))
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	return c, pool, creds
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_NotStarted(t *testing.T) {
	c, _, _ := newClient(t, nil)

	_, err := c.SignOut(testContext(t), data.SignOutData{})
	assert.Equal(t, data.KindInvalidParameter, data.KindOf(err), "signing out before configure is rejected")
}

func TestClient_StartSignedOut(t *testing.T) {
	c, _, _ := newClient(t, nil)

	s, err := c.Start(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, authn.SignedOut{}, s)

	again, err := c.Start(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestClient_StartRestoresSession(t *testing.T) {
	session := data.SignedInData{Username: "alice", Tokens: data.Tokens{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}}
	c, _, _ := newClient(t, &session)

	s, err := c.Start(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, authn.SignedIn{Data: session}, s)
}

func TestClient_SignInAndOut(t *testing.T) {
	ctx := testContext(t)
	c, pool, creds := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	res, err := c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "correct-horse", nil))
	require.NoError(t, err)
	assert.Equal(t, auth.StepDone, res.Next)
	assert.Equal(t, "alice", res.Session.Username)
	assert.Equal(t, authn.SignedIn{Data: res.Session}, c.State())

	_, err = c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "correct-horse", nil))
	assert.Equal(t, data.KindInvalidParameter, data.KindOf(err), "already signed in")

	out, err := c.SignOut(ctx, data.SignOutData{})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.LastKnownUsername)
	assert.Equal(t, 0, pool.Active())
	_, ok, _ := creds.Load(ctx)
	assert.False(t, ok)
}

func TestClient_SignInRejected(t *testing.T) {
	ctx := testContext(t)
	c, _, _ := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	_, err = c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "nope", nil))
	assert.ErrorIs(t, err, data.ErrNotAuthorized)

	_, err = c.SignIn(ctx, data.NewSignInData(data.SignInMethod("passkey"), "alice", "", nil))
	assert.Equal(t, data.KindInvalidParameter, data.KindOf(err))
}

func TestClient_ConfirmSignIn(t *testing.T) {
	ctx := testContext(t)
	c, _, _ := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	_, err = c.ConfirmSignIn(ctx, "123456", nil)
	assert.Equal(t, data.KindInvalidParameter, data.KindOf(err), "nothing to confirm")

	res, err := c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "bob", "hunter22", nil))
	require.NoError(t, err)
	require.Equal(t, auth.StepConfirmSignIn, res.Next)
	assert.Equal(t, data.ChallengeSoftwareTokenMFA, res.Challenge.Name)

	res, err = c.ConfirmSignIn(ctx, "999999", nil)
	assert.ErrorIs(t, err, data.ErrCodeMismatch)
	assert.True(t, data.IsRecoverable(err))
	assert.Equal(t, auth.StepConfirmSignIn, res.Next)

	res, err = c.ConfirmSignIn(ctx, "123456", nil)
	require.NoError(t, err)
	assert.Equal(t, auth.StepDone, res.Next)
	assert.Equal(t, "bob", res.Session.Username)
}

func TestClient_CancelSignIn(t *testing.T) {
	ctx := testContext(t)
	c, _, _ := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	_, err = c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "bob", "hunter22", nil))
	require.NoError(t, err)

	require.NoError(t, c.CancelSignIn(ctx))
	assert.Equal(t, authn.SignedOut{Data: data.SignedOutData{LastSignInError: data.ErrUserCancelled}}, c.State())

	require.NoError(t, c.CancelSignIn(ctx), "nothing to cancel")
}

func TestClient_RefreshSession(t *testing.T) {
	ctx := testContext(t)
	c, pool, _ := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	_, err = c.RefreshSession(ctx)
	assert.Equal(t, data.KindInvalidParameter, data.KindOf(err))

	res, err := c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "correct-horse", nil))
	require.NoError(t, err)

	refreshed, err := c.RefreshSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Session.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	pool.SetFailure(errors.New("offline"))
	kept, err := c.RefreshSession(ctx)
	assert.Equal(t, data.KindNetwork, data.KindOf(err))
	assert.Equal(t, refreshed, kept)

	pool.SetFailure(nil)
	require.NoError(t, pool.RevokeToken(ctx, refreshed.Tokens.RefreshToken))
	_, err = c.RefreshSession(ctx)
	assert.ErrorIs(t, err, data.ErrSessionExpired)
	assert.IsType(t, authn.SignedOut{}, c.State())
}

func TestClient_CloseStopsCalls(t *testing.T) {
	ctx := testContext(t)
	c, _, _ := newClient(t, nil)
	_, err := c.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "correct-horse", nil))
	assert.ErrorIs(t, err, auth.ErrNotStarted)
}

func TestClient_ContextCancelled(t *testing.T) {
	c, _, _ := newClient(t, nil)
	_, err := c.Start(testContext(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SignIn(ctx, data.NewSignInData(data.MethodSRP, "alice", "correct-horse", nil))
	assert.ErrorIs(t, err, context.Canceled)
}
