package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/credkeep/internal/account/entity"
)

const userColumns = `id, username, password, role, refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (entity.User, error) {
	var (
		u         entity.User
		role      string
		tokenHash pgtype.Text
		expiresAt pgtype.Timestamptz
	)

	if err := row.Scan(&u.ID, &u.Username, &u.Password, &role, &tokenHash, &expiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return entity.User{}, err
	}

	u.Role = entity.Role(role)
	u.RefreshTokenHash = tokenHash.String
	if expiresAt.Valid {
		u.RefreshTokenExpiresAt = expiresAt.Time
	}

	return u, nil
}

func (s *DB) getUser(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM account_users WHERE `+where, arg))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &u, nil
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, `username = $1`, username)
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, `id = $1`, id)
}

// GetUserByRefreshToken looks the account up by refresh token digest. Expiry is
// left to the caller.
func (s *DB) GetUserByRefreshToken(ctx context.Context, tokenHash string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByRefreshToken")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, `refresh_token_hash = $1`, tokenHash)
}

// ListUsers returns one page ordered by id and the total count, read from the
// same snapshot.
func (s *DB) ListUsers(ctx context.Context, filter entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListUsers")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	var total int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM account_users`).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := tx.Query(ctx,
		`SELECT `+userColumns+` FROM account_users ORDER BY id LIMIT $1 OFFSET $2`,
		filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
