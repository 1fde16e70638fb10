package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACSHA256 produces deterministic keyed digests.
//
// It suits high-entropy values such as refresh tokens, which are stored as a
// digest and looked up by recomputing it. It is not a password hasher.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new digester with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC SHA-256 digest of str.
func (s *HMACSHA256) Hash(str string) (string, error) {
	return string(s.gen(str)), nil
}

// Verify checks whether str matches the given digest.
func (s *HMACSHA256) Verify(digest, str string) Result {
	if subtle.ConstantTimeCompare([]byte(digest), s.gen(str)) != 1 {
		return Failed
	}
	return Success
}

func (s *HMACSHA256) gen(str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	sum := h.Sum(nil)
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum)
	return result
}
