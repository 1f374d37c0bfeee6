package reward

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/achievement"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/ledger"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type AdjustBalanceUseCase struct {
	store    repository.Transactor
	notifier usecase.Notifier
}

func NewAdjustBalanceUseCase(store repository.Transactor, notifier usecase.Notifier) *AdjustBalanceUseCase {
	return &AdjustBalanceUseCase{store: store, notifier: usecase.OrNop(notifier)}
}

// Execute начисляет или списывает баллы вручную. Баланс не может стать отрицательным.
func (uc *AdjustBalanceUseCase) Execute(ctx context.Context, adminID, userID uuid.UUID, delta int64) (*entity.User, error) {
	if delta == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма изменения не может быть нулевой")
	}

	var (
		user   *entity.User
		badges []entity.Badge
	)
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := usecase.RequireAdmin(ctx, tx.Users(), adminID); err != nil {
			return err
		}
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := ledger.Post(ctx, tx, user, delta, valueobject.ReasonAdminAdjustment, nil); err != nil {
			return err
		}
		now := time.Now()
		badges = achievement.Apply(user, now)
		user.UpdatedAt = now
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(userID, usecase.EventPointsChanged, map[string]int64{"delta": delta, "balance": user.Points})
	for _, b := range badges {
		uc.notifier.Notify(userID, usecase.EventBadgeEarned, b)
	}
	return user, nil
}

// BalanceView - кэшированный баланс, сумма по журналу и последние события.
type BalanceView struct {
	Points    int64
	LedgerSum int64
	Events    []*entity.PointEvent
}

type GetBalanceUseCase struct {
	store repository.Store
}

func NewGetBalanceUseCase(store repository.Store) *GetBalanceUseCase {
	return &GetBalanceUseCase{store: store}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID uuid.UUID, limit, offset int) (*BalanceView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	user, err := uc.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := ledger.Balance(ctx, uc.store, userID)
	if err != nil {
		return nil, err
	}
	events, err := uc.store.Ledger().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &BalanceView{Points: user.Points, LedgerSum: sum, Events: events}, nil
}
