package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

type UserListInput struct {
	Page int32
	Size int32
}

type UserListOutput struct {
	Page  int32
	Size  int32
	Total int64
	Users []entity.UserDTO
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10 // default limit
	}
	in.Page = max(in.Page, 1)

	users, total, err := s.repoDB.ListUsers(ctx, entity.UserListFilter{
		Limit:  in.Size,
		Offset: int64(in.Page-1) * int64(in.Size),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  in.Page,
		Size:  in.Size,
		Total: total,
		Users: lo.Map(users, func(u entity.User, _ int) entity.UserDTO { return u.DTO() }),
	}, nil
}
