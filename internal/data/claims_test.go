package data

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestParseIDTokenClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signTestToken(t, IDTokenClaims{
		Username: "alice",
		Email:    "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-123",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := ParseIDTokenClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "sub-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, exp.Equal(claims.ExpiresAt.Time))
}

func TestParseIDTokenClaims_Errors(t *testing.T) {
	_, err := ParseIDTokenClaims("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, KindInvalidParameter, KindOf(err))

	noSub := signTestToken(t, jwt.MapClaims{"cognito:username": "bob"})
	_, err = ParseIDTokenClaims(noSub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub")
}

func TestSignedInDataFromTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	idToken := signTestToken(t, IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-9",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	got, err := SignedInDataFromTokens(MethodHostedUI, Tokens{AccessToken: "a", IDToken: idToken}, FixedClock(now))
	require.NoError(t, err)

	assert.Equal(t, "sub-9", got.UserID)
	assert.Equal(t, "sub-9", got.Username, "username falls back to sub")
	assert.Equal(t, MethodHostedUI, got.Method)
	assert.Equal(t, now, got.SignedInAt)
	assert.True(t, exp.Equal(got.Tokens.ExpiresAt), "expiry filled from exp claim")
}
