// Package rate provides the fixed-window counters that bound sensitive
// operations (login, registration, refresh) per logical key.
//
// # Window semantics
//
// Fixed-window counters: atomic INCR + conditional EXPIRE on the first hit
// of the window. The increment is never reverted after a deny, so a blocked
// caller stays blocked until the window expires naturally, not until traffic
// subsides below the limit.
//
// # Failure policy
//
// Store outages fail closed: Allow reports not-allowed together with the
// store error. Every call site gets the same policy; none may override it.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (which keys guard which flows —
//     those live with the engine).
//   - Be imported outside the authcore module.
package rate
