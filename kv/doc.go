// Package kv defines the narrow key-value capability surface the engine needs
// for cross-process state: revocation marks, rate-limit counters, refresh-token
// records, and the security event trail.
//
// Two implementations are provided: [Redis] (go-redis backed, production) and
// [Memory] (process-local, for tests and examples). The engine only ever sees
// the [Store] interface, so backends can be swapped without touching any
// engine code.
//
// # Consistency contract
//
// Incr, SetWithTTL, and SAdd must be atomic per key. That is the only
// consistency the engine relies on; no multi-key transactions are used.
//
// # What this package must NOT do
//
//   - Build domain key names (those live with the components that own them).
//   - Retry failed operations. Retrying an Incr would double-count limits.
package kv
