package data

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims are the ID token claims authflow reads.
type IDTokenClaims struct {
	Username string `json:"cognito:username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseIDTokenClaims decodes the claims of an ID token without verifying
// its signature. Tokens arrive directly from the provider over TLS; only the
// provider's API verifies them.
func ParseIDTokenClaims(idToken string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, WrapError(KindInvalidParameter, "parse id token", err)
	}
	if claims.Subject == "" {
		return nil, NewError(KindInvalidParameter, "id token has no sub claim")
	}
	return claims, nil
}

// SignedInDataFromTokens builds session data from a token set. The username
// falls back to the sub claim when the provider omits cognito:username.
func SignedInDataFromTokens(method SignInMethod, tokens Tokens, at Clock) (SignedInData, error) {
	claims, err := ParseIDTokenClaims(tokens.IDToken)
	if err != nil {
		return SignedInData{}, fmt.Errorf("signed-in data: %w", err)
	}
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if tokens.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		tokens.ExpiresAt = claims.ExpiresAt.Time
	}
	return SignedInData{
		UserID:     claims.Subject,
		Username:   username,
		Method:     method,
		SignedInAt: at(),
		Tokens:     tokens,
	}, nil
}
