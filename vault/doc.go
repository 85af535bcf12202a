// Package vault encrypts a stored credential with a password-derived key.
//
// The on-disk artifact is a JSON config file. The credential field is
// AES-256-GCM encrypted under a key derived from a master password with
// PBKDF2-HMAC-SHA256 (480,000 iterations, fresh 16-byte salt per save);
// companion fields like the endpoint URL stay plaintext. A legacy format
// with a plaintext password field is readable but logs a deprecation
// warning on every load.
//
// The master password itself comes from a PasswordSource: an explicit
// value, an environment variable, the OS keyring, or an interactive
// prompt. In every case it exists only in memory and is never echoed or
// logged.
//
//	v := vault.New("/etc/fleet/profile.json")
//	if err := v.Save(ctx, apiPassword, masterPassword, vault.Meta{
//	    Endpoint: "https://mgmt.example.net",
//	    Username: "admin",
//	}); err != nil {
//	    return err
//	}
//
//	secret, meta, err := v.Load(ctx, masterPassword)
package vault
