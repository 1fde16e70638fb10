package uid

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Generate(t *testing.T) {
	t.Parallel()

	gen, err := NewSnowflake()
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Go(func() {
			for range 500 {
				id := gen.Generate()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Len(t, seen, 4000)
}

func TestSnowflake_Ordered(t *testing.T) {
	t.Parallel()

	gen, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	a, b := gen.Generate(), gen.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)
}

func TestNewSnowflakeWithNode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewSnowflakeWithNode(4096)
	assert.Error(t, err)

	_, err = NewSnowflakeWithNode(-1)
	assert.Error(t, err)
}

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	var gen StringID = NewUUID()
	id := gen.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, gen.Generate())
}
