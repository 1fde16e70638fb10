package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/credkeep/internal/account/entity"
)

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO account_users (id, username, password, role, refresh_token_hash, refresh_token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID,
		in.Username,
		in.Password,
		in.Role.String(),
		pgtype.Text{String: in.RefreshTokenHash, Valid: in.RefreshTokenHash != ""},
		pgtype.Timestamptz{Time: in.RefreshTokenExpiresAt, Valid: !in.RefreshTokenExpiresAt.IsZero()},
	)
	return s.mapError(err)
}
