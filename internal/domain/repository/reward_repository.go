package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// LedgerRepository хранит журнал изменений баланса баллов.
type LedgerRepository interface {
	Append(ctx context.Context, event *entity.PointEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.PointEvent, error)
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
