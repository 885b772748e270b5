// Package trustcore is the trust-and-access core of the platform: it stores
// and verifies user credentials, issues and verifies stateless session
// tokens, guards state-changing requests against cross-site forgery, grants
// short-lived signed access to private stored resources, and throttles
// abusive request patterns per originating identity.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// trustcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (MetricsSnapshot, AuditEvent). The five security
// components live in focused subpackages (password, session, csrf,
// capability, ratelimit) and return simple pass/fail or structured results;
// none of them calls into the surrounding business logic.
//
// # What this package must NOT do
//
//   - Persist anything. Credentials are handed back to the caller's storage,
//     sessions and capabilities are self-verifying, rate-limit windows are
//     transient memory.
//   - Leak WHY a verification failed. Malformed, forged, and expired inputs
//     are uniformly invalid; only rate-limit denial is a distinct outcome.
//   - Start with a missing or placeholder signing secret. That configuration
//     is fatal, never silently defaulted.
//
// # Revocation tradeoff
//
// Sessions and capability grants are signed claims with no server-side
// record, so they cannot be revoked individually before expiry. Rotating the
// signing secret (a process restart with a new value) invalidates all of
// them atomically; that is the only, deliberately coarse, revocation
// mechanism. Likewise the role inside a verified session claim is trusted
// for the session's lifetime — a deactivated account keeps a valid session
// until token expiry. Callers that cannot tolerate that staleness window can
// re-check account status against their own store after [Engine.VerifySession].
package trustcore
