// Package hash provides helpers for hashing and verifying secrets.
//
// Password hashers turn a plaintext into an opaque credential record that is
// stored as-is and later verified against candidate plaintexts. Verification
// never returns an error: a malformed record, a decode failure and a mismatch
// all yield Failed, so callers cannot tell them apart.
//
// PBKDF2 is the default password hasher. Argon2id and Bcrypt are available as
// stronger alternatives behind the same interface, and HMACSHA256 produces
// deterministic keyed digests for lookup tokens.
package hash
