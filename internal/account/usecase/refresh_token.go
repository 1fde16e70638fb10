package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshTokenOutput struct {
	UserID       int64
	RefreshToken string
	ExpiresAt    time.Time
}

var errInvalidRefreshToken = goerror.NewBusiness("invalid refresh token", goerror.CodeUnauthorized)

func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	oldDigest, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash old refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByRefreshToken(ctx, oldDigest)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user refresh token not found")
		return nil, errInvalidRefreshToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.clock.Now().Before(user.RefreshTokenExpiresAt) {
		slog.WarnContext(ctx, "user refresh token is expired", "user_id", user.ID)
		return nil, errInvalidRefreshToken
	}

	token, digest, expiresAt, err := s.newRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	err = s.repoDB.UpdateRefreshToken(ctx, entity.RefreshToken{
		UserID:       user.ID,
		Hash:         digest,
		PreviousHash: oldDigest,
		ExpiresAt:    expiresAt,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token already rotated", "user_id", user.ID)
		return nil, errInvalidRefreshToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RefreshTokenOutput{
		UserID:       user.ID,
		RefreshToken: token,
		ExpiresAt:    expiresAt,
	}, nil
}
