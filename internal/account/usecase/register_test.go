package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.Register(context.Background(), RegisterInput{
			Username: "  alice ",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		require.NoError(t, f.goroutine.Wait())

		assert.Equal(t, int64(101), out.User.ID)
		assert.Equal(t, "alice", out.User.Username)
		assert.Equal(t, entity.RoleUser, out.User.Role)
		assert.NotEmpty(t, out.RefreshToken)

		stored, ok := f.repo.get(out.User.ID)
		require.True(t, ok)
		assert.NotEqual(t, "correct-horse", stored.Password)
		assert.Equal(t, hash.Success, f.password.Verify(stored.Password, "correct-horse"))

		digest, err := testHMAC.Hash(out.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, digest, stored.RefreshTokenHash)
		assert.Equal(t, testNow.Add(defaultRefreshTokenTTL), stored.RefreshTokenExpiresAt)

		require.Len(t, f.messaging.registered, 1)
		assert.Equal(t, AccountRegisteredEvent{UserID: 101, Username: "alice", Role: entity.RoleUser}, f.messaging.registered[0])
	})

	t.Run("AdminRole", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.Register(context.Background(), RegisterInput{
			Username: "root",
			Password: "correct-horse",
			Role:     "ADMIN",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, out.User.Role)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		tests := []struct {
			name string
			in   RegisterInput
		}{
			{name: "ShortPassword", in: RegisterInput{Username: "alice", Password: "short"}},
			{name: "BadUsername", in: RegisterInput{Username: "a b", Password: "correct-horse"}},
			{name: "UnknownRole", in: RegisterInput{Username: "alice", Password: "correct-horse", Role: "owner"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				out, err := f.uc.Register(context.Background(), tt.in)

				assert.Nil(t, out)
				requireCode(t, err, goerror.CodeInvalidInput)
			})
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "alice", "correct-horse", entity.RoleUser)

		out, err := f.uc.Register(context.Background(), RegisterInput{Username: "alice", Password: "another-pass"})

		assert.Nil(t, out)
		requireCode(t, err, goerror.CodeConflict)
		assert.Equal(t, "user already exists", err.Error())
	})

	t.Run("RepoError", func(t *testing.T) {
		f := newFixture(t)
		f.repo.getErr = errBoom

		_, err := f.uc.Register(context.Background(), RegisterInput{Username: "alice", Password: "correct-horse"})

		requireCode(t, err, goerror.CodeInternal)
	})

	t.Run("RandomSourceUnavailable", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Secret = secret.NewWithRandom(secret.DefaultLength, failingReader{})
		})

		_, err := f.uc.Register(context.Background(), RegisterInput{Username: "alice", Password: "correct-horse"})

		requireCode(t, err, goerror.CodeInternal)
		require.ErrorIs(t, err, hash.ErrRandomSourceUnavailable)
		_, ok := f.repo.get(101)
		assert.False(t, ok)
	})
}
