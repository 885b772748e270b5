// Package session encodes and verifies stateless, tamper-evident session
// tokens. A token carries its own claims (identity, role, expiry) and an HMAC
// signature; the server keeps no corresponding record, so a token stays valid
// from issuance until expiry regardless of process restarts.
//
// # Wire formats
//
// The default compact encoding is a URL-safe base64 wrapping of
//
//	<userID>:<role>:<expiry-unix>:<hex-signature>
//
// The signature covers the first three fields. Decoding splits from the
// right, so the signature can never be desynchronized by payload content.
// An alternative JWT encoding (HS256, same claims) can be selected through
// [Config.Encoding]; a codec only verifies tokens in its own encoding.
//
// # What this package must NOT do
//
//   - Persist anything. There is no revocation short of rotating the secret.
//   - Report WHY a token failed. Malformed, forged, and expired tokens are
//     uniformly invalid so the network boundary leaks no oracle.
//   - Import any other trustcore package.
package session
