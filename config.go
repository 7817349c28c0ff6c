package tasks

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Deployment profiles. The profile decides whether a missing signing key
// is a startup failure and whether session cookies carry the Secure flag.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// DevSigningKey is the fallback secret for development and test profiles
// only. Production startup fails rather than fall back to it.
const DevSigningKey = "dev-insecure-signing-key"

// AppConfig is the env driven configuration for the auth service
type AppConfig struct {
	Environment          string   `env:"APP_ENV" envDefault:"development"`
	SigningKey           string   `env:"AUTH_SIGNING_KEY"`
	SigningMethod        string   `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey           string   `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenExpiration      int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"24"`
	TokenLookup          string   `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization,cookie:auth_token"`
	AuthScheme           string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer               string   `env:"AUTH_ISSUER" envDefault:"go-tasks"`
	Audience             []string `env:"AUTH_AUDIENCE" envSeparator:","`
	RejectedRouteKey     string   `env:"AUTH_REJECTED_ROUTE_KEY" envDefault:"rejected_route"`
	RejectedRouteDefault string   `env:"AUTH_REJECTED_ROUTE_DEFAULT" envDefault:"/"`
	DatabaseDSN          string   `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	ServerAddr           string   `env:"SERVER_ADDR" envDefault:":8080"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads configuration from the environment, honoring a local
// .env file when present.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the startup invariants. A missing signing key outside
// the development and test profiles is a hard failure, not a fallback.
func (c *AppConfig) Validate() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}

	if c.SigningKey == "" {
		switch c.Environment {
		case EnvDevelopment, EnvTest:
			c.SigningKey = DevSigningKey
		default:
			return ErrMissingSigningKey
		}
	}

	if c.TokenExpiration <= 0 {
		c.TokenExpiration = DefaultTokenExpiration
	}

	return nil
}

func (c *AppConfig) GetSigningKey() string { return c.SigningKey }

func (c *AppConfig) GetSigningMethod() string { return c.SigningMethod }

func (c *AppConfig) GetContextKey() string { return c.ContextKey }

func (c *AppConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c *AppConfig) GetTokenLookup() string { return c.TokenLookup }

func (c *AppConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *AppConfig) GetIssuer() string { return c.Issuer }

func (c *AppConfig) GetAudience() []string { return c.Audience }

func (c *AppConfig) GetRejectedRouteKey() string { return c.RejectedRouteKey }

func (c *AppConfig) GetRejectedRouteDefault() string { return c.RejectedRouteDefault }

func (c *AppConfig) GetEnvironment() string { return c.Environment }

func (c *AppConfig) IsProduction() bool { return c.Environment == EnvProduction }

// TestConfig returns a config suitable for tests: test profile, fixed
// signing key, short but positive expiration.
func TestConfig(signingKey string) *AppConfig {
	if signingKey == "" {
		signingKey = DevSigningKey
	}
	return &AppConfig{
		Environment:          EnvTest,
		SigningKey:           signingKey,
		SigningMethod:        "HS256",
		ContextKey:           "user",
		TokenExpiration:      DefaultTokenExpiration,
		TokenLookup:          "header:Authorization,cookie:" + CookieAuthToken,
		AuthScheme:           "Bearer",
		Issuer:               "go-tasks",
		RejectedRouteKey:     "rejected_route",
		RejectedRouteDefault: "/",
	}
}
