package vault

import "errors"

// Sentinel errors for vault operations. All of them are configuration
// errors in the call-site taxonomy: retrying cannot fix any of them.
var (
	// ErrNotFound indicates the config file does not exist.
	ErrNotFound = errors.New("vault: config file not found")

	// ErrMalformed indicates the config file is not valid JSON or is
	// missing required fields.
	ErrMalformed = errors.New("vault: config file is malformed")

	// ErrUnsupportedVersion indicates a config format version this
	// build does not understand.
	ErrUnsupportedVersion = errors.New("vault: unsupported config version")

	// ErrPasswordRequired indicates an encrypted config was loaded
	// without a master password.
	ErrPasswordRequired = errors.New("vault: master password required for encrypted config")

	// ErrEmptyPassword indicates an empty master password on save.
	ErrEmptyPassword = errors.New("vault: master password must not be empty")

	// ErrDecryptFailed indicates the ciphertext did not authenticate.
	// Deliberately the same for a wrong password and a corrupted file.
	ErrDecryptFailed = errors.New("vault: failed to decrypt")

	// ErrNoPassword indicates a password source had nothing to offer.
	ErrNoPassword = errors.New("vault: no password available")
)

// IsConfiguration reports whether err is one of this package's
// configuration errors.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrEmptyPassword) ||
		errors.Is(err, ErrDecryptFailed)
}
