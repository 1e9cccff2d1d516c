// Package authcore provides the token lifecycle and rate-limiting core shared
// by the platform's services: signed access/refresh token issuance,
// verification against a shared revocation list, single-active refresh-token
// records, and fixed-window rate limiting over a shared key-value store.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Identity, TokenPair, AuditEvent). Coordination — counter
// keys, revocation bookkeeping, refresh records — lives under internal/ and
// is never exported. Credential storage and password hashing belong to the
// injected [IdentityProvider]; this core never stores passwords.
//
// # Consistency model
//
// All shared mutable state lives in the injected [kv.Store]. Every mutation
// is a single-key atomic operation (increment, set-with-expiry, hash write);
// no multi-key transactions are used, so consistency reduces to the per-key
// linearizability the store provides. In-process objects are transient views
// built per call, never cached across requests.
//
// # What this package must NOT do
//
//   - Expose store clients or key layouts in its public API.
//   - Retry store operations. A retried increment double-counts rate limits.
//   - Distinguish "user not found" from "wrong password" in returned errors.
package authcore
