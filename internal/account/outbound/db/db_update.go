package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
)

func affected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

// UpdateUser overwrites the non-empty fields of in.
func (s *DB) UpdateUser(ctx context.Context, in entity.PatchUser) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE account_users SET
			username = COALESCE(NULLIF($2::text, ''), username),
			password = COALESCE(NULLIF($3::text, ''), password),
			updated_at = now()
		WHERE id = $1`,
		in.ID, in.Username, in.Password)
	if err != nil {
		return s.mapError(err)
	}

	return affected(tag)
}

// UpdateRefreshToken stores a new token digest. With PreviousHash set the row
// is only touched while it still holds that digest; otherwise ErrNotFound.
func (s *DB) UpdateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE account_users SET
			refresh_token_hash = $2,
			refresh_token_expires_at = $3,
			updated_at = now()
		WHERE id = $1 AND ($4::text = '' OR refresh_token_hash = $4::text)`,
		in.UserID, in.Hash, in.ExpiresAt, in.PreviousHash)
	if err != nil {
		return s.mapError(err)
	}

	return affected(tag)
}
