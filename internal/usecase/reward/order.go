// Package reward - магазин наград и операции с балансом баллов.
package reward

import (
	"context"
	"strings"
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

type PlaceOrderInput struct {
	UserID   uuid.UUID
	ItemID   int
	Quantity int
	Address  string
	Phone    string
	Size     string
	Comment  string
}

type PlaceOrderResult struct {
	Order     *entity.Order
	User      *entity.User
	NewBadges []entity.Badge
}

type PlaceOrderUseCase struct {
	store    repository.Transactor
	notifier usecase.Notifier
}

func NewPlaceOrderUseCase(store repository.Transactor, notifier usecase.Notifier) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{store: store, notifier: usecase.OrNop(notifier)}
}

// Execute списывает стоимость заказа с баланса. Если баллов не хватает,
// возвращается ErrInsufficientBalance и баланс не меняется.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	item, ok := entity.FindShopItem(input.ItemID)
	if !ok {
		return nil, apperror.ErrItemNotFound
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	order, err := entity.NewOrder(input.UserID, item, input.Quantity, input.Address, input.Phone)
	if err != nil {
		return nil, err
	}
	order.Size = optional(input.Size)
	order.Comment = optional(input.Comment)

	result := &PlaceOrderResult{Order: order}
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, input.UserID)
		if err != nil {
			return err
		}
		prior, err := tx.Orders().CountByUser(ctx, user.ID)
		if err != nil {
			return err
		}

		if _, err := ledger.Post(ctx, tx, user, -order.Total(), valueobject.ReasonShopOrder, &order.ID); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		now := time.Now()
		if badge, ok := achievement.ApplyFirstOrder(user, prior, now); ok {
			result.NewBadges = append(result.NewBadges, badge)
		}
		result.NewBadges = append(result.NewBadges, achievement.Apply(user, now)...)
		user.UpdatedAt = now
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		result.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range result.NewBadges {
		uc.notifier.Notify(input.UserID, usecase.EventBadgeEarned, b)
	}
	return result, nil
}

type UpdateOrderStatusUseCase struct {
	store    repository.Transactor
	notifier usecase.Notifier
}

func NewUpdateOrderStatusUseCase(store repository.Transactor, notifier usecase.Notifier) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{store: store, notifier: usecase.OrNop(notifier)}
}

// Execute меняет статус заказа. Отмена возвращает списанные баллы ровно один раз:
// из cancelled переходов нет.
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, orderID, adminID uuid.UUID, status string) (*entity.Order, error) {
	next, err := valueobject.NewOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *entity.Order
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := usecase.RequireAdmin(ctx, tx.Users(), adminID); err != nil {
			return err
		}
		order, err = tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.ChangeStatus(next); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		if next != valueobject.OrderStatusCancelled {
			return nil
		}
		buyer, err := tx.Users().FindByIDForUpdate(ctx, order.UserID)
		if err != nil {
			return err
		}
		if _, err := ledger.Post(ctx, tx, buyer, order.Total(), valueobject.ReasonOrderRefund, &order.ID); err != nil {
			return err
		}
		buyer.UpdatedAt = time.Now()
		return tx.Users().Update(ctx, buyer)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(order.UserID, usecase.EventOrderStatus, map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

type ListOrdersUseCase struct {
	store repository.Store
}

func NewListOrdersUseCase(store repository.Store) *ListOrdersUseCase {
	return &ListOrdersUseCase{store: store}
}

func (uc *ListOrdersUseCase) ByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	return uc.store.Orders().ListByUser(ctx, userID)
}

// All - список всех заказов для администратора.
func (uc *ListOrdersUseCase) All(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	if _, err := usecase.RequireAdmin(ctx, uc.store.Users(), adminID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.store.Orders().ListAll(ctx, limit, offset)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
