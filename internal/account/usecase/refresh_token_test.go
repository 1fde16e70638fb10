package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_RefreshToken(t *testing.T) {
	login := func(t *testing.T, f *fixture) string {
		t.Helper()
		f.seedUser(t, 7, "alice", "correct-horse", entity.RoleUser)
		out, err := f.uc.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)
		return out.RefreshToken
	}

	t.Run("Rotates", func(t *testing.T) {
		f := newFixture(t)
		token := login(t, f)

		out, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: token})
		require.NoError(t, err)

		assert.Equal(t, int64(7), out.UserID)
		assert.NotEqual(t, token, out.RefreshToken)
		assert.Equal(t, testNow.Add(defaultRefreshTokenTTL), out.ExpiresAt)

		_, err = f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: token})
		requireCode(t, err, goerror.CodeUnauthorized)

		_, err = f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: out.RefreshToken})
		require.NoError(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "bm9wZQ=="})

		requireCode(t, err, goerror.CodeUnauthorized)
		assert.Equal(t, "invalid refresh token", err.Error())
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture(t)
		token := login(t, f)

		u, _ := f.repo.get(7)
		u.RefreshTokenExpiresAt = testNow.Add(-time.Second)
		f.repo.put(u)

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: token})

		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("Empty", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{})

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}
