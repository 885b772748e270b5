// Package password turns plaintext passwords into storable, verifiable
// credential records and never the other way around.
//
// # Record format
//
// Records are encoded as four dollar-delimited fields:
//
//	pbkdf2$<iterations>$<salt-hex>$<digest-hex>
//
// The iteration count is read back from the record itself during verification,
// so records written under an older, cheaper configuration keep verifying
// after a global parameter bump. [PBKDF2.NeedsUpgrade] reports whether a
// record is below the currently configured cost so the caller can re-hash on
// the next successful login.
//
// # Architecture boundaries
//
// This package owns derivation and verification only. Password policy
// (length, reuse history) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve credential records — callers supply plaintext and
//     receive records.
//   - Distinguish a malformed record from a wrong password: both verify false.
//   - Import any other trustcore package.
package password
