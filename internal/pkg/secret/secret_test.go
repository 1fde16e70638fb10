package secret

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	g := New(0)

	first, err := g.Generate()
	require.NoError(t, err)
	second, err := g.Generate()
	require.NoError(t, err)

	assert.Len(t, first, 44)
	assert.NotEqual(t, first, second)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultLength)
}

func TestGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	g := NewWithRandom(4, bytes.NewReader([]byte{0, 1, 2, 3}))

	token, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, "AAECAw==", token)
}

func TestGenerator_RandomSourceUnavailable(t *testing.T) {
	t.Parallel()

	_, err := NewWithRandom(8, bytes.NewReader([]byte{1})).Generate()
	assert.ErrorIs(t, err, hash.ErrRandomSourceUnavailable)

	_, err = NewWithRandom(8, nil).Generate()
	assert.ErrorIs(t, err, hash.ErrRandomSourceUnavailable)
}
