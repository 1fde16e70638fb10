// Package secret generates opaque random tokens such as refresh tokens.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
)

// DefaultLength is the number of random bytes in a generated token.
const DefaultLength = 32

// TokenGenerator produces random opaque tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// Generator reads token bytes from a secure random source.
type Generator struct {
	length int
	random io.Reader
}

// New returns a Generator backed by crypto/rand. A non-positive length uses DefaultLength.
func New(length int) *Generator {
	return NewWithRandom(length, rand.Reader)
}

// NewWithRandom returns a Generator reading from r.
func NewWithRandom(length int, r io.Reader) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length, random: r}
}

// Generate returns base64(length random bytes). It fails with
// hash.ErrRandomSourceUnavailable rather than returning a predictable token.
func (g *Generator) Generate() (string, error) {
	if g.random == nil {
		return "", hash.ErrRandomSourceUnavailable
	}

	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("%w: %v", hash.ErrRandomSourceUnavailable, err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
