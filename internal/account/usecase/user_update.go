package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type UserUpdateInput struct {
	ID       int64  `validate:"required,gt=0"`
	Username string `validate:"omitempty,username"`
	Password string `validate:"omitempty,password"`
}

func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) error {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	actor, err := s.authorize(ctx, authz.ObjUsers, authz.ActUpdate)
	if err != nil {
		return err
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", in.ID)
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	patch := entity.PatchUser{ID: user.ID}

	if in.Username != "" && in.Username != user.Username {
		_, err := s.repoDB.GetUserByUsername(ctx, in.Username)
		if err == nil {
			slog.WarnContext(ctx, "username already taken", "username", in.Username)
			return goerror.NewBusiness("user already exists", goerror.CodeConflict)
		}
		if !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
			return goerror.NewServer(err)
		}
		patch.Username = in.Username
	}

	if in.Password != "" {
		record, err := s.password.Hash(in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash new password", "user_id", user.ID, "error", err)
			return goerror.NewServer(err)
		}
		patch.Password = record
	}

	if patch.IsEmpty() {
		return nil
	}

	err = s.repoDB.UpdateUser(ctx, patch)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "username taken concurrently", "username", in.Username)
		return goerror.NewBusiness("user already exists", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user deleted concurrently", "user_id", user.ID)
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user", "user_id", user.ID, "by", actor.String(), "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
