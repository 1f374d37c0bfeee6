// Package memory - хранилище в памяти процесса с транзакциями на снимках.
// Используется в тестах сценариев вместо PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

type state struct {
	users       map[uuid.UUID]entity.User
	problems    map[uuid.UUID]entity.Problem
	votes       map[uuid.UUID]entity.Vote
	comments    map[uuid.UUID]entity.Comment
	completions map[uuid.UUID]entity.TaskCompletion
	complaints  map[uuid.UUID]entity.Complaint
	orders      map[uuid.UUID]entity.Order
	events      []entity.PointEvent
}

func newState() *state {
	return &state{
		users:       make(map[uuid.UUID]entity.User),
		problems:    make(map[uuid.UUID]entity.Problem),
		votes:       make(map[uuid.UUID]entity.Vote),
		comments:    make(map[uuid.UUID]entity.Comment),
		completions: make(map[uuid.UUID]entity.TaskCompletion),
		complaints:  make(map[uuid.UUID]entity.Complaint),
		orders:      make(map[uuid.UUID]entity.Order),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range s.problems {
		c.problems[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.completions {
		c.completions[k] = v
	}
	for k, v := range s.complaints {
		c.complaints[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.events = append([]entity.PointEvent(nil), s.events...)
	return c
}

// Store реализует repository.Transactor.
// Все операции сериализуются одним мьютексом; транзакция держит его до завершения.
type Store struct {
	root *Store
	mu   sync.Mutex
	st   *state
	inTx bool
}

var _ repository.Transactor = (*Store)(nil)

func NewStore() *Store {
	s := &Store{st: newState()}
	s.root = s
	return s
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.root.mu.Lock()
	return s.root.mu.Unlock
}

func (s *Store) data() *state {
	return s.root.st
}

// WithinTx выполняет fn под блокировкой и восстанавливает снимок при ошибке или панике.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	snapshot := s.root.st.clone()
	tx := &Store{root: s.root, inTx: true}

	defer func() {
		if p := recover(); p != nil {
			s.root.st = snapshot
			panic(p)
		}
		if err != nil {
			s.root.st = snapshot
		}
	}()

	return fn(tx)
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Problems() repository.ProblemRepository           { return &problemRepo{s} }
func (s *Store) Votes() repository.VoteRepository                 { return &voteRepo{s} }
func (s *Store) Comments() repository.CommentRepository           { return &commentRepo{s} }
func (s *Store) Completions() repository.TaskCompletionRepository { return &completionRepo{s} }
func (s *Store) Complaints() repository.ComplaintRepository       { return &complaintRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return &orderRepo{s} }
func (s *Store) Ledger() repository.LedgerRepository              { return &ledgerRepo{s} }

func copyUser(u entity.User) entity.User {
	u.Badges = append(entity.Badges{}, u.Badges...)
	return u
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func conflict(what string) error {
	return apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("нарушение уникальности: %s", what))
}

func sortByCreated[T any](items []T, created func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool { return created(items[i]) > created(items[j]) })
}
