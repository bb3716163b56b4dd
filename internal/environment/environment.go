// Package environment defines the collaborators actions call and the
// Environment value handed explicitly to every action execution.
package environment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/data"
)

// AuthFlow is the provider-side authentication flow.
type AuthFlow string

const (
	FlowUserSRP AuthFlow = "USER_SRP_AUTH"
	FlowCustom  AuthFlow = "CUSTOM_AUTH"
)

// InitiateAuthInput starts a provider flow.
type InitiateAuthInput struct {
	Flow     AuthFlow
	Username string

	// Password is set for FlowUserSRP. The provider client derives the SRP
	// values from it and never sends it on the wire.
	Password string

	SecretHash     string
	ClientMetadata map[string]string
}

// RespondToChallengeInput answers a provider challenge.
type RespondToChallengeInput struct {
	Challenge data.AuthChallenge
	Responses map[string]string

	// Password is set when answering ChallengePasswordVerifier.
	Password string

	SecretHash     string
	ClientMetadata map[string]string
}

// RefreshInput exchanges a refresh token for fresh tokens.
type RefreshInput struct {
	Username     string
	RefreshToken string
	SecretHash   string
}

// IdentityProvider is the network client for the user pool. Implementations
// own the wire protocol and must be safe for concurrent use.
type IdentityProvider interface {
	InitiateAuth(ctx context.Context, in InitiateAuthInput) (data.AuthResult, error)
	RespondToChallenge(ctx context.Context, in RespondToChallengeInput) (data.AuthResult, error)
	RefreshTokens(ctx context.Context, in RefreshInput) (data.Tokens, error)
	GlobalSignOut(ctx context.Context, accessToken string) error
	RevokeToken(ctx context.Context, refreshToken string) error
}

// CredentialStore persists the signed-in session.
type CredentialStore interface {
	// Load returns the stored credential, or false if there is none.
	Load(ctx context.Context) (data.SignedInData, bool, error)
	Save(ctx context.Context, cred data.SignedInData) error
	Clear(ctx context.Context) error
}

// HostedUILauncher opens the provider's web page and blocks until the
// browser redirects back. A closed browser returns data.ErrUserCancelled.
type HostedUILauncher interface {
	Launch(ctx context.Context, url string, opts data.HostedUIOptions) (callbackURL string, err error)
}

// Authorization is one authorize request; it must be presented again to
// Exchange the resulting callback.
type Authorization struct {
	URL      string
	State    string
	Verifier string
}

// WebAuth builds hosted web URLs and redeems authorization codes.
type WebAuth interface {
	AuthorizeURL(opts data.HostedUIOptions) (Authorization, error)
	Exchange(ctx context.Context, callbackURL string, auth Authorization) (data.Tokens, error)
	LogoutURL() (string, error)
}

// Environment carries configuration and collaborators into actions.
//
// WebAuth and Launcher may be nil when hosted UI is not configured; actions
// needing them fail with a KindConfiguration error event.
type Environment struct {
	Config      config.Config
	Provider    IdentityProvider
	Credentials CredentialStore
	WebAuth     WebAuth
	Launcher    HostedUILauncher
	Logger      *slog.Logger
	Now         data.Clock
}

// Option configures an Environment.
type Option func(*Environment)

// WithWebAuth sets the hosted web client and browser launcher.
func WithWebAuth(w WebAuth, l HostedUILauncher) Option {
	return func(e *Environment) {
		e.WebAuth = w
		e.Launcher = l
	}
}

// WithLogger sets the logger. Defaults to a discard handler.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Environment) {
		e.Logger = logger
	}
}

// WithClock sets the wall clock. Defaults to time.Now.
func WithClock(now data.Clock) Option {
	return func(e *Environment) {
		e.Now = now
	}
}

// New creates an Environment.
func New(cfg config.Config, provider IdentityProvider, creds CredentialStore, opts ...Option) *Environment {
	env := &Environment{
		Config:      cfg,
		Provider:    provider,
		Credentials: creds,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:         time.Now,
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ActionContext bounds an action's provider calls by the configured timeout.
func (e *Environment) ActionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Config.Engine.ActionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Config.Engine.ActionTimeout)
}
