package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func sqlxSelect(ctx context.Context, s *Store, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.ext, dest, query, args...)
}

func sqlxGet(ctx context.Context, s *Store, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.ext, dest, query, args...)
}
