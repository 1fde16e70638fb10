package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
)

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	UserID       int64
	Username     string
	Role         entity.Role
	RefreshToken string
}

var errInvalidLogin = goerror.NewBusiness("invalid login attempt", goerror.CodeUnauthorized)

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	throttleKey := "login:" + strings.ToLower(in.Username)
	allowed, err := s.throttle.Allowed(ctx, throttleKey)
	if err != nil {
		slog.WarnContext(ctx, "failed to check login throttle, allowing attempt", "username", in.Username, "error", err)
		allowed = true
	}
	if !allowed {
		slog.WarnContext(ctx, "login attempts exceeded", "username", in.Username)
		s.countLogin(ctx, "throttled")
		return nil, goerror.NewBusiness("too many login attempts", goerror.CodeTooManyRequest)
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		s.password.Verify(s.dummyRecord, in.Password)
		s.recordLoginFailure(ctx, throttleKey)
		s.countLogin(ctx, "unknown_user")

		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return nil, errInvalidLogin
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.password.Verify(user.Password, in.Password) != hash.Success {
		s.recordLoginFailure(ctx, throttleKey)
		s.countLogin(ctx, "bad_password")

		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errInvalidLogin
	}

	if err := s.throttle.Reset(ctx, throttleKey); err != nil {
		slog.WarnContext(ctx, "failed to reset login throttle", "user_id", user.ID, "error", err)
	}

	token, digest, expiresAt, err := s.newRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repoDB.UpdateRefreshToken(ctx, entity.RefreshToken{
		UserID:    user.ID,
		Hash:      digest,
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.countLogin(ctx, "success")

	return &LoginOutput{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		RefreshToken: token,
	}, nil
}

func (s *Usecase) recordLoginFailure(ctx context.Context, key string) {
	if err := s.throttle.Fail(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to record login failure", "error", err)
	}
}
