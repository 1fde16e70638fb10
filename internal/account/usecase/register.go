package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type RegisterInput struct {
	Username string      `validate:"required,username"`
	Password string      `validate:"required,password"`
	Role     entity.Role `validate:"required,role"`
}

type RegisterOutput struct {
	User         entity.UserDTO
	RefreshToken string
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Role = entity.ParseRole(in.Role.String())

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if err == nil {
		slog.WarnContext(ctx, "user account already exists", "username", in.Username)
		return nil, goerror.NewBusiness("user already exists", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	record, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	token, digest, expiresAt, err := s.newRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	newUser := entity.NewUser{
		ID:                    s.uid.Generate(),
		Username:              in.Username,
		Password:              record,
		Role:                  in.Role,
		RefreshTokenHash:      digest,
		RefreshTokenExpiresAt: expiresAt,
	}

	err = s.repoDB.CreateUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "user account created concurrently", "username", in.Username)
		return nil, goerror.NewBusiness("user already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publishAsync(ctx, "account.registered", func(ctx context.Context) error {
		return s.repoMessaging.PublishAccountRegistered(ctx, AccountRegisteredEvent{
			UserID:   newUser.ID,
			Username: newUser.Username,
			Role:     newUser.Role,
		})
	})

	return &RegisterOutput{
		User:         entity.UserDTO{ID: newUser.ID, Username: newUser.Username, Role: newUser.Role},
		RefreshToken: token,
	}, nil
}
