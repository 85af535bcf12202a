// Package token tracks a bearer token's validity window and refreshes it
// before it expires.
//
// A token's state is derived from the wall clock, not from events:
// it is Valid until it enters the refresh buffer ahead of its expiry
// (NearExpiry), then Expired. NearExpiry and Expired are treated
// identically: both mean "refresh now". The buffer keeps a request from
// being built with a token that expires mid-flight.
//
// Refresh is guarded by singleflight so N concurrent observers of a stale
// token produce exactly one acquisition against the backend. Acquisition
// runs through the resilience retry policy: transient failures are
// retried with backoff, a definitive credential rejection is not.
//
// Exhausting every attempt does not raise. The token is left unset and
// callers degrade to whatever fallback auth the session is configured
// with; the next real request surfaces the authentication failure
// naturally. This soft-degradation policy is deliberate: it keeps a
// flapping login endpoint from taking down callers that can work without
// a bearer token. The cost is that a persistent auth misconfiguration
// only shows up in logs until a request actually fails.
package token
