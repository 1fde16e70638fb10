package hash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRandomSourceUnavailable indicates the secure random source could not be read.
	// Hashing aborts instead of continuing with a predictable salt.
	ErrRandomSourceUnavailable = errors.New("hash: secure random source unavailable")

	// ErrPlaintextTooLong indicates the plaintext exceeds what the algorithm accepts.
	ErrPlaintextTooLong = errors.New("hash: plaintext too long")

	// ErrUnknownAlgorithm indicates an unsupported hashing algorithm name.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")
)

// Result is the outcome of verifying a plaintext against a stored record.
type Result int

const (
	// Failed means the candidate does not match, or the record is unusable.
	Failed Result = iota
	// Success means the candidate matches the record.
	Success
)

// String returns the string representation of the result.
func (r Result) String() string {
	if r == Success {
		return "Success"
	}
	return "Failed"
}

// Hash creates and checks credential records.
type Hash interface {
	// Hash returns the stored representation of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the record previously returned by Hash.
	Verify(record, plaintext string) Result
}

const (
	// AlgorithmPBKDF2 selects the PBKDF2-HMAC-SHA256 hasher.
	AlgorithmPBKDF2 = "pbkdf2"
	// AlgorithmArgon2id selects the Argon2id hasher.
	AlgorithmArgon2id = "argon2id"
	// AlgorithmBcrypt selects the bcrypt hasher.
	AlgorithmBcrypt = "bcrypt"
)

// Options groups the settings used by NewFromAlgorithm.
type Options struct {
	PBKDF2Iterations int
	Argon2idPepper   string
	BcryptCost       int
	BcryptPepper     string
}

// NewFromAlgorithm builds a password hasher by algorithm name. An empty name
// selects PBKDF2.
func NewFromAlgorithm(name string, opts Options) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmPBKDF2:
		return NewPBKDF2(WithIterations(opts.PBKDF2Iterations)), nil
	case AlgorithmArgon2id:
		return NewArgon2id(opts.Argon2idPepper), nil
	case AlgorithmBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.BcryptPepper), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}
