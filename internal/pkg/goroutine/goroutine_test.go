package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsAndCollectsErrors(t *testing.T) {
	t.Parallel()

	m := NewManager(4)
	errBoom := errors.New("boom")

	var ran atomic.Int32
	for i := range 4 {
		require.True(t, m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			if i == 0 {
				return errBoom
			}
			return nil
		}))
	}

	err := m.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int32(4), ran.Load())
}

func TestManager_LimitReached(t *testing.T) {
	t.Parallel()

	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, m.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_ClosedAfterWait(t *testing.T) {
	t.Parallel()

	m := NewManager(0)
	require.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_RecoversPanic(t *testing.T) {
	t.Parallel()

	m := NewManager(2)
	require.True(t, m.Go(context.Background(), func(context.Context) error {
		panic("kaboom")
	}))

	assert.NoError(t, m.Wait())
}

func TestManager_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(1)
	var ran atomic.Bool
	require.True(t, m.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	}))

	require.NoError(t, m.Wait())
	assert.False(t, ran.Load())
}

func TestManager_Nil(t *testing.T) {
	t.Parallel()

	var m *Manager
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
