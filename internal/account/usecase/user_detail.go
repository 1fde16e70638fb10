package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type UserDetailInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) UserDetail(ctx context.Context, in UserDetailInput) (*entity.UserDTO, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.authorize(ctx, authz.ObjUsers, authz.ActDetail); err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", in.ID)
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	dto := user.DTO()
	return &dto, nil
}
