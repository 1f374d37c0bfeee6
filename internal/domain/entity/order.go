package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// ShopItem - позиция магазина наград.
type ShopItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// ShopCatalog - фиксированный набор товаров, по которому считается цена заказа.
var ShopCatalog = []ShopItem{
	{ID: 1, Name: "Футболка Экопульс", Price: 150},
	{ID: 2, Name: "Кружка с логотипом", Price: 80},
	{ID: 3, Name: "Эко-сумка", Price: 120},
	{ID: 4, Name: "Термос", Price: 200},
	{ID: 5, Name: "Блокнот волонтера", Price: 50},
	{ID: 6, Name: "Ручка из переработки", Price: 30},
}

// FindShopItem ищет товар по идентификатору.
func FindShopItem(id int) (ShopItem, bool) {
	for _, item := range ShopCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}

// MaxOrderQuantity - предел количества одного товара в заказе.
const MaxOrderQuantity = 10

// Order - заказ в магазине наград. Цена и название фиксируются на момент покупки.
type Order struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemID    int
	ItemName  string
	Price     int64
	Quantity  int
	Address   string
	Phone     string
	Size      *string
	Comment   *string
	Status    valueobject.OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(userID uuid.UUID, item ShopItem, quantity int, address, phone string) (*Order, error) {
	if quantity <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "количество должно быть положительным")
	}
	if quantity > MaxOrderQuantity {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("не больше %d штук в одном заказе", MaxOrderQuantity))
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "адрес доставки обязателен")
	}

	now := time.Now()
	return &Order{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Price:     item.Price,
		Quantity:  quantity,
		Address:   address,
		Phone:     strings.TrimSpace(phone),
		Status:    valueobject.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Total возвращает стоимость заказа в баллах.
func (o *Order) Total() int64 {
	return o.Price * int64(o.Quantity)
}

func (o *Order) ChangeStatus(newStatus valueobject.OrderStatus) error {
	if !o.Status.CanTransitionTo(newStatus) {
		return apperror.New(apperror.ErrCodeBadRequest, "недопустимый переход статуса заказа")
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now()
	return nil
}

// PointEvent - одно изменение баланса баллов. События только добавляются.
type PointEvent struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Delta     int64
	Reason    valueobject.PointReason
	RefID     *uuid.UUID
	CreatedAt time.Time
}

func NewPointEvent(userID uuid.UUID, delta int64, reason valueobject.PointReason, refID *uuid.UUID) *PointEvent {
	return &PointEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Delta:     delta,
		Reason:    reason,
		RefID:     refID,
		CreatedAt: time.Now(),
	}
}
