package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FindByIDForUpdate блокирует строку пользователя до конца транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByReferralCode(ctx context.Context, code string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, int, error)
	TopByPoints(ctx context.Context, limit int) ([]*entity.User, error)
	TopByReports(ctx context.Context, limit int) ([]*entity.User, error)
	// RankByPoints возвращает место пользователя в порядке TopByPoints, начиная с 1.
	RankByPoints(ctx context.Context, id uuid.UUID) (int, error)
}
