package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type UserDeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) UserDelete(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	actor, err := s.authorize(ctx, authz.ObjUsers, authz.ActDelete)
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

	err = s.repoDB.DeleteUser(ctx, user.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete user", "user_id", user.ID, "by", actor.String(), "error", err)
		return goerror.NewServer(err)
	}

	s.publishAsync(ctx, "account.deleted", func(ctx context.Context) error {
		return s.repoMessaging.PublishAccountDeleted(ctx, AccountDeletedEvent{
			UserID:    user.ID,
			Username:  user.Username,
			DeletedBy: actor.UserID,
		})
	})

	return nil
}
