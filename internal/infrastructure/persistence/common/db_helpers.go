package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// GetOne выполняет запрос одной строки и превращает sql.ErrNoRows в notFoundErr.
func GetOne[T any](ctx context.Context, q sqlx.QueryerContext, notFoundErr error, query string, args ...any) (*T, error) {
	var row T
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка чтения из базы данных")
	}
	return &row, nil
}

// ExecAffected выполняет запрос и возвращает notFoundErr, если ни одна строка не изменилась.
func ExecAffected(ctx context.Context, e sqlx.ExecerContext, notFoundErr error, message, query string, args ...any) error {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return MapError(err, message)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат запроса")
	}
	if rows == 0 {
		return notFoundErr
	}
	return nil
}

// MapError превращает нарушение уникальности в CONFLICT, остальное - в DATABASE_ERROR.
func MapError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperror.Wrap(err, apperror.ErrCodeConflict, fmt.Sprintf("%s: запись уже существует", message))
		case "23503":
			return apperror.Wrap(err, apperror.ErrCodeNotFound, fmt.Sprintf("%s: связанная запись не найдена", message))
		case "23514":
			return apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("%s: нарушено ограничение", message))
		}
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}
