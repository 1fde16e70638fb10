package goerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldErr map[string]string

func (f fieldErr) Error() string { return "fields" }
func (f fieldErr) Values() map[string]string { return f }

func TestNewServer(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	err := NewServer(cause)

	ge, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, TypeServer, ge.Type())
	assert.Equal(t, CodeInternal, ge.Code())
	assert.Equal(t, "db down", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestNewBusiness(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", NewBusiness("user not found", CodeNotFound))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))

	ge, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "user not found", ge.Msg())
	assert.Equal(t, TypeBusiness, ge.Type())
	assert.Contains(t, ge.String(), "code=ERROR_CODE_NOT_FOUND")
}

func TestNewInvalidInput(t *testing.T) {
	t.Parallel()

	t.Run("with field error", func(t *testing.T) {
		err := NewInvalidInput(fieldErr{"username": "username is required"})
		ge, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidInput, ge.Code())
		assert.Equal(t, map[string]string{"username": "username is required"}, ge.Fields())
	})

	t.Run("with key values", func(t *testing.T) {
		ge, ok := As(NewInvalidInput(nil, "id", "must be positive"))
		require.True(t, ok)
		assert.Equal(t, "must be positive", ge.Fields()["id"])
	})

	t.Run("odd key values", func(t *testing.T) {
		assert.True(t, HasCode(NewInvalidInput(nil, "id"), CodeInvalidFormat))
	})
}

func TestAs_NotGoerror(t *testing.T) {
	t.Parallel()

	ge, ok := As(errors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, ge)
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ERROR_CODE_TOO_MANY_REQUESTS", CodeTooManyRequest.String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
	assert.Equal(t, "ERROR_TYPE_VALIDATION", TypeValidation.String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(-1).String())
	assert.Equal(t, "ERROR_TYPE_BUSINESS", (&Error{errType: TypeBusiness}).Error())
}
