package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

// PasswordSource supplies the master password that unlocks a vault.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - The password exists only in memory; implementations must never echo
//   or log it.
// - Errors: a source that simply has nothing to offer returns
//   ErrNoPassword so a Chain can fall through to the next source.
type PasswordSource interface {
	Name() string
	Password(ctx context.Context) (string, error)
}

// StaticSource returns a password supplied at construction time.
type StaticSource struct {
	password string
}

// NewStaticSource creates a source holding an explicit password.
func NewStaticSource(password string) *StaticSource {
	return &StaticSource{password: password}
}

// Name returns "static".
func (s *StaticSource) Name() string { return "static" }

// Password returns the held password.
func (s *StaticSource) Password(_ context.Context) (string, error) {
	if s.password == "" {
		return "", ErrNoPassword
	}
	return s.password, nil
}

// EnvSource reads the password from an environment variable.
type EnvSource struct {
	// Var is the environment variable name.
	// Default: "SESSIONKIT_MASTER_PASSWORD"
	Var string
}

// NewEnvSource creates a source reading the given environment variable.
func NewEnvSource(envVar string) *EnvSource {
	if envVar == "" {
		envVar = "SESSIONKIT_MASTER_PASSWORD"
	}
	return &EnvSource{Var: envVar}
}

// Name returns "env".
func (s *EnvSource) Name() string { return "env" }

// Password returns the variable's value. An unset or empty variable
// yields ErrNoPassword, not an empty password.
func (s *EnvSource) Password(_ context.Context) (string, error) {
	value, ok := os.LookupEnv(s.Var)
	if !ok || value == "" {
		return "", ErrNoPassword
	}
	return value, nil
}

// PromptSource reads the password interactively without echoing.
type PromptSource struct {
	// Prompt is written to stderr before reading.
	// Default: "Master password: "
	Prompt string

	// Input is the terminal to read from.
	// Default: os.Stdin
	Input *os.File
}

// NewPromptSource creates an interactive password prompt.
func NewPromptSource(prompt string) *PromptSource {
	if prompt == "" {
		prompt = "Master password: "
	}
	return &PromptSource{Prompt: prompt, Input: os.Stdin}
}

// Name returns "prompt".
func (s *PromptSource) Name() string { return "prompt" }

// Password prompts on stderr and reads with echo disabled.
func (s *PromptSource) Password(ctx context.Context) (string, error) {
	in := s.Input
	if in == nil {
		in = os.Stdin
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassword
	}

	fmt.Fprint(os.Stderr, s.Prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("vault: read password: %w", err)
	}

	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", ErrNoPassword
	}
	return password, nil
}

// KeyringSource reads the password from the OS keyring.
type KeyringSource struct {
	// Service is the keyring service name.
	// Default: "sessionkit"
	Service string

	// User is the keyring account name, typically the profile name.
	User string
}

// NewKeyringSource creates a source backed by the OS keyring.
func NewKeyringSource(service, user string) *KeyringSource {
	if service == "" {
		service = "sessionkit"
	}
	return &KeyringSource{Service: service, User: user}
}

// Name returns "keyring".
func (s *KeyringSource) Name() string { return "keyring" }

// Password fetches the stored password. A missing keyring entry yields
// ErrNoPassword.
func (s *KeyringSource) Password(_ context.Context) (string, error) {
	value, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoPassword
		}
		return "", fmt.Errorf("vault: keyring: %w", err)
	}
	if value == "" {
		return "", ErrNoPassword
	}
	return value, nil
}

// Store saves the password into the OS keyring for later loads.
func (s *KeyringSource) Store(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if err := keyring.Set(s.Service, s.User, password); err != nil {
		return fmt.Errorf("vault: keyring: %w", err)
	}
	return nil
}

// Chain tries each source in order, falling through on ErrNoPassword.
type Chain struct {
	sources []PasswordSource
}

// NewChain creates a chained password source. Nil entries are skipped.
func NewChain(sources ...PasswordSource) *Chain {
	c := &Chain{}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

// Name returns "chain".
func (c *Chain) Name() string { return "chain" }

// Password returns the first password any source yields. Real errors stop
// the chain; only ErrNoPassword falls through.
func (c *Chain) Password(ctx context.Context) (string, error) {
	for _, s := range c.sources {
		password, err := s.Password(ctx)
		if err == nil {
			return password, nil
		}
		if !errors.Is(err, ErrNoPassword) {
			return "", fmt.Errorf("vault: source %s: %w", s.Name(), err)
		}
	}
	return "", ErrNoPassword
}

// ParseSource builds a PasswordSource from a spec string of the form
// "<kind>" or "<kind>:<arg>". Recognized kinds:
//
//	env[:VAR]              environment variable (default SESSIONKIT_MASTER_PASSWORD)
//	keyring[:service/user] OS keyring entry
//	prompt                 interactive terminal prompt
//	static:<password>      literal password (tests and scripts only)
//
// Comma-separated specs chain in order: "env,keyring,prompt" tries each
// until one yields a password.
func ParseSource(spec string) (PasswordSource, error) {
	parts := strings.Split(spec, ",")
	if len(parts) > 1 {
		sources := make([]PasswordSource, 0, len(parts))
		for _, p := range parts {
			s, err := ParseSource(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
		}
		return NewChain(sources...), nil
	}

	kind, arg, _ := strings.Cut(spec, ":")
	switch kind {
	case "env":
		return NewEnvSource(arg), nil
	case "keyring":
		service, user, _ := strings.Cut(arg, "/")
		return NewKeyringSource(service, user), nil
	case "prompt":
		return NewPromptSource(""), nil
	case "static":
		return NewStaticSource(arg), nil
	default:
		return nil, fmt.Errorf("vault: unknown password source %q", kind)
	}
}

// Ensure implementations satisfy PasswordSource
var (
	_ PasswordSource = (*StaticSource)(nil)
	_ PasswordSource = (*EnvSource)(nil)
	_ PasswordSource = (*PromptSource)(nil)
	_ PasswordSource = (*KeyringSource)(nil)
	_ PasswordSource = (*Chain)(nil)
)
