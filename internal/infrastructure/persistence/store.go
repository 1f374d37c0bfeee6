// Package persistence - реализация репозиториев на PostgreSQL через sqlx.
package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/persistence/common"
)

// Store работает либо с пулом соединений, либо с открытой транзакцией.
type Store struct {
	db   *sqlx.DB
	ext  sqlx.ExtContext
	inTx bool
}

var _ repository.Transactor = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, ext: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return common.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&Store{db: s.db, ext: tx, inTx: true})
	})
}

// forUpdate добавляет блокировку строки только внутри транзакции.
func (s *Store) forUpdate() string {
	if s.inTx {
		return " FOR UPDATE"
	}
	return ""
}

func (s *Store) Users() repository.UserRepository                 { return &UserRepository{s} }
func (s *Store) Problems() repository.ProblemRepository           { return &ProblemRepository{s} }
func (s *Store) Votes() repository.VoteRepository                 { return &VoteRepository{s} }
func (s *Store) Comments() repository.CommentRepository           { return &CommentRepository{s} }
func (s *Store) Completions() repository.TaskCompletionRepository { return &TaskCompletionRepository{s} }
func (s *Store) Complaints() repository.ComplaintRepository       { return &ComplaintRepository{s} }
func (s *Store) Orders() repository.OrderRepository               { return &OrderRepository{s} }
func (s *Store) Ledger() repository.LedgerRepository              { return &LedgerRepository{s} }
