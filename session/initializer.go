package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/jonwraymond/sessionkit/observe"
	"github.com/jonwraymond/sessionkit/resilience"
	"github.com/jonwraymond/sessionkit/token"
	"github.com/jonwraymond/sessionkit/vault"
)

// VaultInitializerConfig configures the standard vault-backed initializer.
type VaultInitializerConfig struct {
	// Dir holds one <profile>.json vault config per profile. Required.
	Dir string

	// Passwords supplies the master password for encrypted configs.
	// Optional: legacy plaintext configs load without one.
	Passwords vault.PasswordSource

	// LoginPath is joined onto the profile's endpoint for token
	// acquisition. Default: "/api/v1/login"
	LoginPath string

	// HTTPClient is shared by the login source and the sessions.
	HTTPClient *http.Client

	// RegistryBuild constructs each session's per-operation executors.
	// Default: circuit breaker wrapping transient-only retry.
	RegistryBuild resilience.BuildFunc

	// Logger, Tracer and Metrics instrument the produced sessions.
	Logger  observe.Logger
	Tracer  observe.Tracer
	Metrics observe.Metrics
}

// NewVaultInitializer builds the standard Initializer: decrypt the
// profile's credential from its vault config, wire the token lifecycle
// for the configured auth mode, and hand back a ready Session.
//
// Token acquisition during initialization is best-effort: a backend that
// cannot issue a token right now produces a session that degrades to its
// fallback auth, while vault and configuration errors always fail
// initialization.
func NewVaultInitializer(cfg VaultInitializerConfig) Initializer {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/api/v1/login"
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}

	return func(ctx context.Context, profile string) (*Session, error) {
		path := filepath.Join(cfg.Dir, profile+".json")
		v := vault.New(path, vault.WithLogger(cfg.Logger))

		masterPassword := ""
		if cfg.Passwords != nil {
			pw, err := cfg.Passwords.Password(ctx)
			switch {
			case err == nil:
				masterPassword = pw
			case errors.Is(err, vault.ErrNoPassword):
				// Legacy plaintext configs load without one;
				// encrypted configs will fail in Load with
				// ErrPasswordRequired.
			default:
				return nil, fmt.Errorf("session: resolve master password: %w", err)
			}
		}

		secret, meta, err := v.Load(ctx, masterPassword)
		if err != nil {
			return nil, err
		}

		mode, err := ParseAuthMode(meta.AuthMode)
		if err != nil {
			return nil, err
		}

		config := Config{
			Profile:      profile,
			BaseURL:      meta.Endpoint,
			Mode:         mode,
			APIKeyHeader: meta.APIKeyHeader,
			Registry:     resilience.NewRegistry(cfg.RegistryBuild),
			HTTPClient:   cfg.HTTPClient,
			Logger:       cfg.Logger,
			Tracer:       cfg.Tracer,
			Metrics:      cfg.Metrics,
		}

		switch mode {
		case ModeToken:
			config.Tokens = token.NewManager(token.ManagerConfig{
				Profile: profile,
				Source: token.NewEndpointSource(token.EndpointSourceConfig{
					URL:        meta.Endpoint + cfg.LoginPath,
					Username:   meta.Username,
					Password:   secret,
					HTTPClient: cfg.HTTPClient,
				}),
				Logger:  cfg.Logger,
				Metrics: cfg.Metrics,
			})
		case ModeAPIKey:
			config.APIKey = secret
		}

		sess, err := New(config)
		if err != nil {
			return nil, err
		}

		// Authentication handshake: acquire the initial token now so
		// the first real call does not pay for it. Failure degrades
		// rather than failing initialization (see package token).
		if mode == ModeToken {
			config.Tokens.EnsureValid(ctx)
		}

		return sess, nil
	}
}
