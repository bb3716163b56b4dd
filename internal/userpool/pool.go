// Package userpool is an in-process identity provider. It keeps users in
// memory, walks them through the password verifier, MFA, custom and
// new-password challenges, and issues HS256-signed tokens. The CLI simulator
// and scenario harness run workflows against it; it also serves the hosted
// UI token endpoint over HTTP for the webauth client.
package userpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// User is one account in the pool.
type User struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Email    string `yaml:"email" mapstructure:"email"`

	// MFA is ChallengeSMSMFA or ChallengeSoftwareTokenMFA; empty disables MFA.
	MFA     data.ChallengeName `yaml:"mfa" mapstructure:"mfa"`
	MFACode string             `yaml:"mfa_code" mapstructure:"mfa_code"`

	// CustomAnswer is the expected answer for the custom auth flow.
	CustomAnswer string `yaml:"custom_answer" mapstructure:"custom_answer"`

	NewPasswordRequired bool `yaml:"new_password_required" mapstructure:"new_password_required"`
}

type pending struct {
	username string
	step     data.ChallengeName
}

// Pool implements environment.IdentityProvider.
//
// Safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	users    map[string]*User
	sessions map[string]pending
	refresh  map[string]string // refresh token -> username
	codes    map[string]authCode
	failure  error

	clientID string
	key      []byte
	ttl      time.Duration
	now      data.Clock
}

var _ environment.IdentityProvider = (*Pool)(nil)

// Option configures a Pool.
type Option func(*Pool)

// WithClock sets the clock used for token issue and expiry times.
func WithClock(now data.Clock) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// WithTokenTTL sets the access and ID token lifetime. Default: one hour.
func WithTokenTTL(ttl time.Duration) Option {
	return func(p *Pool) {
		p.ttl = ttl
	}
}

// New creates a pool for the app client clientID.
func New(clientID string, users []User, opts ...Option) *Pool {
	p := &Pool{
		users:    make(map[string]*User, len(users)),
		sessions: make(map[string]pending),
		refresh:  make(map[string]string),
		codes:    make(map[string]authCode),
		clientID: clientID,
		key:      []byte("authflow-userpool-" + clientID),
		ttl:      time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range users {
		u := users[i]
		p.users[u.Username] = &u
	}
	return p
}

// SetFailure makes every provider call fail with err until it is cleared
// with nil. Used to simulate an unreachable provider.
func (p *Pool) SetFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failure = err
}

// SigningKey returns the HMAC key tokens are signed with.
func (p *Pool) SigningKey() []byte {
	return p.key
}

// InitiateAuth implements environment.IdentityProvider.
func (p *Pool) InitiateAuth(ctx context.Context, in environment.InitiateAuthInput) (data.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return data.AuthResult{}, err
	}

	u, ok := p.users[in.Username]
	if !ok {
		return data.AuthResult{}, data.NewError(data.KindUserNotFound, "user %s does not exist", in.Username)
	}

	switch in.Flow {
	case environment.FlowUserSRP:
		return p.challenge(u, data.ChallengePasswordVerifier, map[string]string{"USER_ID_FOR_SRP": u.Username}), nil
	case environment.FlowCustom:
		return p.challenge(u, data.ChallengeCustom, nil), nil
	}
	return data.AuthResult{}, data.NewError(data.KindInvalidParameter, "unsupported auth flow %s", in.Flow)
}

// RespondToChallenge implements environment.IdentityProvider. A wrong MFA
// code or custom answer keeps the session so the user can retry.
func (p *Pool) RespondToChallenge(ctx context.Context, in environment.RespondToChallengeInput) (data.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return data.AuthResult{}, err
	}

	sess, ok := p.sessions[in.Challenge.Session]
	if !ok || sess.step != in.Challenge.Name {
		return data.AuthResult{}, data.NewError(data.KindNotAuthorized, "invalid session for %s", in.Challenge.Name)
	}
	u := p.users[sess.username]

	switch sess.step {
	case data.ChallengePasswordVerifier:
		delete(p.sessions, in.Challenge.Session)
		if in.Password != u.Password {
			return data.AuthResult{}, data.NewError(data.KindNotAuthorized, "incorrect username or password")
		}
		return p.afterPassword(u), nil

	case data.ChallengeSMSMFA, data.ChallengeSoftwareTokenMFA:
		key, _ := data.AnswerKey(sess.step)
		if in.Responses[key] != u.MFACode {
			return data.AuthResult{}, data.NewError(data.KindCodeMismatch, "invalid code received for user")
		}
		delete(p.sessions, in.Challenge.Session)
		if u.NewPasswordRequired {
			return p.challenge(u, data.ChallengeNewPasswordRequired, nil), nil
		}
		return p.issue(u), nil

	case data.ChallengeCustom:
		if in.Responses["ANSWER"] != u.CustomAnswer {
			return data.AuthResult{}, data.NewError(data.KindCodeMismatch, "incorrect answer")
		}
		delete(p.sessions, in.Challenge.Session)
		return p.issue(u), nil

	case data.ChallengeNewPasswordRequired:
		next := in.Responses["NEW_PASSWORD"]
		if len(next) < 8 {
			return data.AuthResult{}, data.NewError(data.KindInvalidParameter, "password does not conform to policy")
		}
		delete(p.sessions, in.Challenge.Session)
		u.Password = next
		u.NewPasswordRequired = false
		return p.issue(u), nil
	}
	return data.AuthResult{}, data.NewError(data.KindUnsupportedChallenge, "unexpected challenge %s", sess.step)
}

// RefreshTokens implements environment.IdentityProvider. The refresh token is
// not rotated.
func (p *Pool) RefreshTokens(ctx context.Context, in environment.RefreshInput) (data.Tokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return data.Tokens{}, err
	}

	username, ok := p.refresh[in.RefreshToken]
	if !ok {
		return data.Tokens{}, data.NewError(data.KindNotAuthorized, "refresh token has been revoked")
	}
	tokens := p.sign(p.users[username])
	return data.Tokens{AccessToken: tokens.AccessToken, IDToken: tokens.IDToken, ExpiresAt: tokens.ExpiresAt}, nil
}

// GlobalSignOut implements environment.IdentityProvider by revoking every
// refresh token of the access token's user.
func (p *Pool) GlobalSignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return err
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(accessToken, claims, p.keyFunc, jwt.WithTimeFunc(p.now)); err != nil {
		return data.WrapError(data.KindNotAuthorized, "invalid access token", err)
	}
	for token, username := range p.refresh {
		if subject(username) == claims.Subject {
			delete(p.refresh, token)
		}
	}
	return nil
}

// RevokeToken implements environment.IdentityProvider.
func (p *Pool) RevokeToken(ctx context.Context, refreshToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return err
	}
	delete(p.refresh, refreshToken)
	return nil
}

// Active reports how many refresh tokens are still valid.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refresh)
}

func (p *Pool) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.failure != nil {
		return data.WrapError(data.KindNetwork, "provider unreachable", p.failure)
	}
	return nil
}

func (p *Pool) afterPassword(u *User) data.AuthResult {
	switch {
	case u.MFA != "":
		return p.challenge(u, u.MFA, map[string]string{"CODE_DELIVERY_DESTINATION": "+*******0000"})
	case u.NewPasswordRequired:
		return p.challenge(u, data.ChallengeNewPasswordRequired, nil)
	}
	return p.issue(u)
}

func (p *Pool) challenge(u *User, name data.ChallengeName, params map[string]string) data.AuthResult {
	session := uuid.NewString()
	p.sessions[session] = pending{username: u.Username, step: name}
	ch := data.NewAuthChallenge(name, u.Username, session, params)
	return data.AuthResult{Challenge: &ch}
}

func (p *Pool) issue(u *User) data.AuthResult {
	tokens := p.sign(u)
	tokens.RefreshToken = uuid.NewString()
	p.refresh[tokens.RefreshToken] = u.Username
	return data.AuthResult{Tokens: &tokens}
}

func subject(username string) string {
	return "sub-" + username
}

func (p *Pool) sign(u *User) data.Tokens {
	now := p.now()
	exp := now.Add(p.ttl)
	registered := jwt.RegisteredClaims{
		Subject:   subject(u.Username),
		Audience:  jwt.ClaimStrings{p.clientID},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}

	id := data.IDTokenClaims{Username: u.Username, Email: u.Email, RegisteredClaims: registered}
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, id).SignedString(p.key)
	if err != nil {
		panic(fmt.Sprintf("userpool: sign id token: %v", err))
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(p.key)
	if err != nil {
		panic(fmt.Sprintf("userpool: sign access token: %v", err))
	}
	return data.Tokens{AccessToken: access, IDToken: idToken, ExpiresAt: exp.Truncate(time.Second)}
}

func (p *Pool) keyFunc(*jwt.Token) (any, error) {
	return p.key, nil
}
