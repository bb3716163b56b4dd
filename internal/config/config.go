// Package config loads authflow configuration from a YAML file overlaid by
// AUTHFLOW_* environment variables, then validates it against an embedded
// CUE schema.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AUTHFLOW_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the complete authflow configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider" json:"provider" envPrefix:"PROVIDER_"`
	HostedUI HostedUIConfig `yaml:"hosted_ui" json:"hosted_ui" envPrefix:"HOSTED_UI_"`
	Store    StoreConfig    `yaml:"store" json:"store" envPrefix:"STORE_"`
	Session  SessionConfig  `yaml:"session" json:"session" envPrefix:"SESSION_"`
	Engine   EngineConfig   `yaml:"engine" json:"engine" envPrefix:"ENGINE_"`
}

// ProviderConfig identifies the user pool and app client.
type ProviderConfig struct {
	Region       string `yaml:"region" json:"region" env:"REGION"`
	UserPoolID   string `yaml:"user_pool_id" json:"user_pool_id" env:"USER_POOL_ID"`
	ClientID     string `yaml:"client_id" json:"client_id" env:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" json:"client_secret,omitempty" env:"CLIENT_SECRET"`

	// Endpoint overrides the regional provider endpoint (local emulators).
	Endpoint string `yaml:"endpoint" json:"endpoint,omitempty" env:"ENDPOINT"`
}

// HostedUIConfig configures hosted web sign-in. Empty Domain disables it.
type HostedUIConfig struct {
	Domain             string   `yaml:"domain" json:"domain,omitempty" env:"DOMAIN"`
	SignInRedirectURI  string   `yaml:"sign_in_redirect_uri" json:"sign_in_redirect_uri,omitempty" env:"SIGN_IN_REDIRECT_URI"`
	SignOutRedirectURI string   `yaml:"sign_out_redirect_uri" json:"sign_out_redirect_uri,omitempty" env:"SIGN_OUT_REDIRECT_URI"`
	Scopes             []string `yaml:"scopes" json:"scopes,omitempty" env:"SCOPES" envSeparator:","`
}

// Enabled reports whether hosted web sign-in is configured.
func (h HostedUIConfig) Enabled() bool {
	return h.Domain != ""
}

// StoreConfig selects the credential store.
type StoreConfig struct {
	Driver      string        `yaml:"driver" json:"driver" env:"DRIVER"`
	Path        string        `yaml:"path" json:"path,omitempty" env:"PATH"`
	RedisAddr   string        `yaml:"redis_addr" json:"redis_addr,omitempty" env:"REDIS_ADDR"`
	RedisPrefix string        `yaml:"redis_prefix" json:"redis_prefix,omitempty" env:"REDIS_PREFIX"`
	TTL         time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
}

// SessionConfig tunes session refresh.
type SessionConfig struct {
	// RefreshSkew treats tokens expiring within this window as expired.
	RefreshSkew time.Duration `yaml:"refresh_skew" json:"refresh_skew" env:"REFRESH_SKEW"`
}

// EngineConfig tunes the event loop.
type EngineConfig struct {
	SynchronousActions bool          `yaml:"synchronous_actions" json:"synchronous_actions" env:"SYNCHRONOUS_ACTIONS"`
	ActionTimeout      time.Duration `yaml:"action_timeout" json:"action_timeout" env:"ACTION_TIMEOUT"`
}

// Default returns the configuration used for unset values.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:      DriverMemory,
			RedisPrefix: "authflow:",
		},
		Session: SessionConfig{
			RefreshSkew: 2 * time.Minute,
		},
		Engine: EngineConfig{
			ActionTimeout: 30 * time.Second,
		},
	}
}

// Load reads path (may be empty), applies the process environment and
// validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decodeYAML(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return Config{}, &InvalidError{Errors: errs}
	}
	return cfg, nil
}

// Parse decodes YAML bytes over the defaults without reading the
// environment or validating.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := decodeYAML(bytes.NewReader(b), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// InvalidError reports every validation failure at once.
type InvalidError struct {
	Errors []ValidationError
}

func (e *InvalidError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid config: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("invalid config: %s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
}
