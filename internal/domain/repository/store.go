package repository

import "context"

// Store даёт доступ ко всем репозиториям в рамках одного соединения или транзакции.
type Store interface {
	Users() UserRepository
	Problems() ProblemRepository
	Votes() VoteRepository
	Comments() CommentRepository
	Completions() TaskCompletionRepository
	Complaints() ComplaintRepository
	Orders() OrderRepository
	Ledger() LedgerRepository
}

// Transactor выполняет fn в одной транзакции: при ошибке или панике все изменения откатываются.
type Transactor interface {
	Store
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
