// Package session maintains exactly one authenticated session per
// connection profile, shared by concurrent callers.
//
// A Supervisor owns one Session slot per profile. GetClient uses
// double-checked locking: an atomic read on the common path, a per-profile
// mutex around first-time initialization, and a re-check under the lock so
// N concurrent callers against an empty slot run initialize exactly once.
// A failed initialize leaves the slot empty, so a later call retries
// cleanly. Profiles never contend with each other.
//
// A Session routes every call through the resilience registry keyed by
// the logical operation name, and classifies outcomes for it: network
// failures and 5xx are transient, 4xx input errors are validation, and a
// 401 invalidates the bearer token, forces one refresh, and replays the
// request once before surfacing an auth error.
//
//	sup := session.NewSupervisor(session.NewVaultInitializer(session.VaultInitializerConfig{
//	    Dir:       "/etc/fleet",
//	    Passwords: vault.NewEnvSource(""),
//	}))
//
//	sess, err := sup.GetClient(ctx, "primary")
//	if err != nil {
//	    return err
//	}
//	resp, err := sess.Call(ctx, "node.power", session.Request{
//	    Method: http.MethodPost,
//	    Path:   "/api/v1/nodes/7/power",
//	    Body:   map[string]string{"state": "on"},
//	})
package session
