// Package ledger проводит изменения баланса баллов через журнал событий.
//
// Баланс пользователя (users.points) - кэшированная сумма его событий.
// Post вызывается внутри транзакции вместе с изменением, ради которого начисляются баллы,
// и только меняет переданного пользователя в памяти: сохранить его должен вызывающий код.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// Post добавляет событие и применяет его к балансу пользователя.
func Post(ctx context.Context, store repository.Store, user *entity.User, delta int64, reason valueobject.PointReason, refID *uuid.UUID) (*entity.PointEvent, error) {
	if !reason.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректная причина начисления")
	}
	if reason == valueobject.ReasonShopOrder && delta >= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "заказ может только списывать баллы")
	}
	if delta == 0 {
		return nil, nil
	}
	if delta < 0 && reason.IsDebit() && user.Points+delta < 0 {
		return nil, apperror.ErrInsufficientBalance
	}

	event := entity.NewPointEvent(user.ID, delta, reason, refID)
	if err := store.Ledger().Append(ctx, event); err != nil {
		return nil, err
	}
	user.Points += delta
	return event, nil
}

// Balance пересчитывает баланс по журналу.
func Balance(ctx context.Context, store repository.Store, userID uuid.UUID) (int64, error) {
	return store.Ledger().SumByUser(ctx, userID)
}
