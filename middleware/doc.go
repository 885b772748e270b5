// Package middleware exposes HTTP adapters for the trustcore Engine: session
// resolution, role gating, CSRF enforcement, and per-action rate limiting.
//
// # Guards
//
//   - [Guard] — resolves the session cookie to claims in the request context.
//   - [GuardWithRoleResolver] — same, but re-resolves the role per request
//     for routes where a demotion must bite before token expiry.
//   - [RequireRole] — rejects authenticated requests outside an allowed role set.
//   - [CSRF] — enforces the double-submit token pair on mutating methods.
//   - [RateLimit] / [RateLimitByUser] — per-IP and per-identity budgets.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls and status codes
// (401 no session, 403 forbidden or forged, 429 rate limited). It does NOT
// implement any security decision itself — all decisions are delegated to the
// Engine, which returns pass/fail.
//
// # What this package must NOT do
//
//   - Inspect or construct tokens directly (delegates to Engine).
//   - Swallow a rate-limit denial into a generic failure: 429 stays distinct.
//   - Re-derive the role from storage on its own; the verified claim is
//     authoritative unless the caller opts into a [RoleResolver].
package middleware
