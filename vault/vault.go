package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jonwraymond/sessionkit/observe"
)

const (
	// FormatVersion is the config format written by Save.
	FormatVersion = "2.0"

	// saltLength is the PBKDF2 salt size in bytes.
	saltLength = 16

	// keyLength is the derived AES key size in bytes (AES-256).
	keyLength = 32

	// pbkdf2Iterations follows the 2023 OWASP recommendation for
	// PBKDF2-HMAC-SHA256.
	pbkdf2Iterations = 480000

	fileMode = 0o600
)

// Meta holds the plaintext companion fields stored alongside the
// encrypted credential.
type Meta struct {
	Endpoint     string
	Username     string
	AuthMode     string
	APIKeyHeader string
}

// fileConfig is the on-disk JSON document. Exactly one of
// PasswordEncrypted (current format) or Password (legacy plaintext
// format) is populated; format detection keys on PasswordEncrypted.
type fileConfig struct {
	Version           string `json:"version,omitempty"`
	Salt              string `json:"salt,omitempty"`
	PasswordEncrypted string `json:"password_encrypted,omitempty"`
	Password          string `json:"password,omitempty"` // legacy plaintext format
	Endpoint          string `json:"endpoint,omitempty"`
	Username          string `json:"username,omitempty"`
	AuthMode          string `json:"auth_mode,omitempty"`
	APIKeyHeader      string `json:"api_key_header,omitempty"`
}

// Vault manages one encrypted config file.
//
// Contract:
// - Concurrency: safe for concurrent use; the file is replaced atomically.
// - Errors: all failures are configuration errors (see IsConfiguration),
//   surfaced to the caller, never swallowed.
// - The decrypted secret and the master password are never written to
//   disk or to any log sink.
type Vault struct {
	path   string
	logger observe.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger used for deprecation warnings.
func WithLogger(l observe.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a vault bound to the config file at path.
func New(path string, opts ...Option) *Vault {
	v := &Vault{
		path:   path,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Path returns the config file path.
func (v *Vault) Path() string {
	return v.path
}

// Exists reports whether the config file is present.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Save encrypts secret under masterPassword and writes the config file.
// A fresh salt is generated on every save; two saves of the same secret
// under the same password never share key material.
func (v *Vault) Save(ctx context.Context, secret, masterPassword string, meta Meta) error {
	if masterPassword == "" {
		return ErrEmptyPassword
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("vault: generate salt: %w", err)
	}

	ciphertext, err := encrypt([]byte(secret), masterPassword, salt)
	if err != nil {
		return err
	}

	cfg := fileConfig{
		Version:           FormatVersion,
		Salt:              base64.StdEncoding.EncodeToString(salt),
		PasswordEncrypted: base64.StdEncoding.EncodeToString(ciphertext),
		Endpoint:          meta.Endpoint,
		Username:          meta.Username,
		AuthMode:          meta.AuthMode,
		APIKeyHeader:      meta.APIKeyHeader,
	}

	return v.write(cfg)
}

// Load reads the config file and returns the decrypted secret.
//
// Encrypted configs require masterPassword; a wrong password and a
// corrupted file both surface as ErrDecryptFailed. Legacy plaintext
// configs need no password but log a deprecation warning on every load.
func (v *Vault) Load(ctx context.Context, masterPassword string) (string, Meta, error) {
	cfg, err := v.read()
	if err != nil {
		return "", Meta{}, err
	}

	meta := Meta{
		Endpoint:     cfg.Endpoint,
		Username:     cfg.Username,
		AuthMode:     cfg.AuthMode,
		APIKeyHeader: cfg.APIKeyHeader,
	}

	// Format detection keys on the encrypted marker field, never on
	// file extension or version.
	if cfg.PasswordEncrypted == "" {
		if cfg.Password == "" {
			return "", Meta{}, fmt.Errorf("%w: no credential field", ErrMalformed)
		}
		v.logger.Warn(ctx, "config stores the credential in plaintext; re-save with a master password to encrypt it",
			observe.Field{Key: "path", Value: v.path},
		)
		return cfg.Password, meta, nil
	}

	if cfg.Version != FormatVersion {
		return "", Meta{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, cfg.Version)
	}
	if masterPassword == "" {
		return "", Meta{}, ErrPasswordRequired
	}

	salt, err := base64.StdEncoding.DecodeString(cfg.Salt)
	if err != nil || len(salt) != saltLength {
		return "", Meta{}, fmt.Errorf("%w: bad salt", ErrMalformed)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cfg.PasswordEncrypted)
	if err != nil {
		return "", Meta{}, fmt.Errorf("%w: bad ciphertext encoding", ErrMalformed)
	}

	secret, err := decrypt(ciphertext, masterPassword, salt)
	if err != nil {
		return "", Meta{}, err
	}

	return string(secret), meta, nil
}

// Verify checks that the config file is present and structurally valid
// without decrypting anything. It reports ErrNotFound, ErrMalformed, or
// ErrUnsupportedVersion the same way Load would.
func (v *Vault) Verify() error {
	cfg, err := v.read()
	if err != nil {
		return err
	}
	if cfg.PasswordEncrypted == "" {
		if cfg.Password == "" {
			return fmt.Errorf("%w: no credential field", ErrMalformed)
		}
		return nil
	}
	if cfg.Version != FormatVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, cfg.Version)
	}
	if salt, err := base64.StdEncoding.DecodeString(cfg.Salt); err != nil || len(salt) != saltLength {
		return fmt.Errorf("%w: bad salt", ErrMalformed)
	}
	return nil
}

// Rotate re-encrypts the stored secret under a new master password.
// This is the only supported password-change path: decrypt with the old
// password, re-save with the new one and a fresh salt.
func (v *Vault) Rotate(ctx context.Context, oldPassword, newPassword string) error {
	secret, meta, err := v.Load(ctx, oldPassword)
	if err != nil {
		return err
	}
	return v.Save(ctx, secret, newPassword, meta)
}

func (v *Vault) read() (fileConfig, error) {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, fmt.Errorf("%w: %s", ErrNotFound, v.path)
		}
		return fileConfig{}, fmt.Errorf("vault: read config: %w", err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return cfg, nil
}

// write replaces the config file atomically: write a temp file with 0600
// permissions, then rename over the target.
func (v *Vault) write(cfg fileConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode config: %w", err)
	}

	dir := filepath.Dir(v.path)
	tmp, err := os.CreateTemp(dir, ".vault-*")
	if err != nil {
		return fmt.Errorf("vault: create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("vault: chmod temp config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("vault: write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("vault: close temp config: %w", err)
	}

	if err := os.Rename(tmpName, v.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("vault: replace config: %w", err)
	}
	return nil
}

// deriveKey stretches the master password into an AES-256 key.
func deriveKey(masterPassword string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterPassword), salt, pbkdf2Iterations, keyLength, sha256.New)
}

// encrypt seals plaintext with AES-256-GCM. The random nonce is prepended
// to the returned ciphertext; GCM's tag gives integrity, so a wrong key
// fails authentication instead of yielding garbage plaintext.
func encrypt(plaintext []byte, masterPassword string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(masterPassword, salt))
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens ciphertext produced by encrypt. Any authentication
// failure maps to the single ErrDecryptFailed sentinel; distinguishing a
// wrong password from a corrupted file would leak which is more likely.
func decrypt(ciphertext []byte, masterPassword string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(masterPassword, salt))
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrDecryptFailed
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
