package db

import "context"

// DeleteUser removes the account row together with its credential record.
func (s *DB) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM account_users WHERE id = $1`, id)
	if err != nil {
		return s.mapError(err)
	}

	return affected(tag)
}
