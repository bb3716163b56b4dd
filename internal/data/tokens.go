package data

import "time"

// Tokens is the token set issued by the identity provider.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is expired at now, allowing skew
// for clock drift between client and provider.
func (t Tokens) Expired(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(t.ExpiresAt)
}

// WithRefreshed returns t updated with a refresh response. Providers do not
// always rotate the refresh token, so an empty one keeps the old value.
func (t Tokens) WithRefreshed(next Tokens) Tokens {
	if next.RefreshToken == "" {
		next.RefreshToken = t.RefreshToken
	}
	return next
}
