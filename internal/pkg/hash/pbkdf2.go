package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2V1 parameters. Records carry no parameters of their own, so changing
// these breaks verification of every record already stored.
const (
	PBKDF2MinIterations = 10000
	PBKDF2SaltLength    = 16
	PBKDF2KeyLength     = 32

	pbkdf2Delimiter = ":"
)

// PBKDF2 implements Hash with PBKDF2-HMAC-SHA256.
//
// Records have the form base64(key) + ":" + base64(salt), using standard
// padded base64, whose alphabet never contains the delimiter.
type PBKDF2 struct {
	iterations int
	random     io.Reader
}

// PBKDF2Option configures a PBKDF2 hasher.
type PBKDF2Option func(*PBKDF2)

// WithIterations sets the iteration count. Values below PBKDF2MinIterations are ignored.
func WithIterations(n int) PBKDF2Option {
	return func(p *PBKDF2) {
		if n >= PBKDF2MinIterations {
			p.iterations = n
		}
	}
}

// WithRandom sets the source used to generate salts.
func WithRandom(r io.Reader) PBKDF2Option {
	return func(p *PBKDF2) {
		p.random = r
	}
}

// NewPBKDF2 returns a PBKDF2 hasher reading salts from crypto/rand unless
// WithRandom says otherwise.
func NewPBKDF2(opts ...PBKDF2Option) *PBKDF2 {
	p := &PBKDF2{
		iterations: PBKDF2MinIterations,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Hash derives a key from plaintext and a fresh salt and returns the encoded record.
func (p *PBKDF2) Hash(plaintext string) (string, error) {
	salt := make([]byte, PBKDF2SaltLength)
	if err := readRandom(p.random, salt); err != nil {
		return "", err
	}

	key := p.derive(plaintext, salt)

	return base64.StdEncoding.EncodeToString(key) + pbkdf2Delimiter + base64.StdEncoding.EncodeToString(salt), nil
}

// Verify re-derives the key with the salt stored in record and compares it in
// constant time. Line breaks anywhere in record make it malformed, even though
// the base64 decoder would skip them.
func (p *PBKDF2) Verify(record, plaintext string) Result {
	if strings.ContainsAny(record, "\r\n") {
		return Failed
	}

	parts := strings.Split(record, pbkdf2Delimiter)
	if len(parts) != 2 {
		return Failed
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Failed
	}

	expected, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(expected) != PBKDF2KeyLength {
		return Failed
	}

	computed := p.derive(plaintext, salt)

	if subtle.ConstantTimeCompare(expected, computed) != 1 {
		return Failed
	}
	return Success
}

func (p *PBKDF2) derive(plaintext string, salt []byte) []byte {
	return pbkdf2.Key([]byte(plaintext), salt, p.iterations, PBKDF2KeyLength, sha256.New)
}
