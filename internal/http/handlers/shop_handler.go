package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/reward"
	"github.com/ecopulse/ecopulse-backend/internal/validation"
)

// ShopHandler - магазин наград и баланс баллов.
type ShopHandler struct {
	place   *reward.PlaceOrderUseCase
	status  *reward.UpdateOrderStatusUseCase
	orders  *reward.ListOrdersUseCase
	balance *reward.GetBalanceUseCase
	adjust  *reward.AdjustBalanceUseCase
}

func NewShopHandler(
	place *reward.PlaceOrderUseCase,
	status *reward.UpdateOrderStatusUseCase,
	orders *reward.ListOrdersUseCase,
	balance *reward.GetBalanceUseCase,
	adjust *reward.AdjustBalanceUseCase,
) *ShopHandler {
	return &ShopHandler{place: place, status: status, orders: orders, balance: balance, adjust: adjust}
}

// Items обрабатывает GET /api/shop/items.
func (h *ShopHandler) Items(c *gin.Context) {
	response.Success(c, "", gin.H{"items": entity.ShopCatalog})
}

// PlaceOrder обрабатывает POST /api/shop/orders.
func (h *ShopHandler) PlaceOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PlaceOrderRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := validation.ValidateDelivery(req.Address, req.Phone); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
		return
	}

	result, err := h.place.Execute(c.Request.Context(), reward.PlaceOrderInput{
		UserID:   userID,
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Address:  req.Address,
		Phone:    req.Phone,
		Size:     req.Size,
		Comment:  req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "заказ оформлен", gin.H{
		"order":      dto.NewOrderResponse(result.Order),
		"balance":    result.User.Points,
		"new_badges": result.NewBadges,
	})
}

// MyOrders обрабатывает GET /api/shop/orders.
func (h *ShopHandler) MyOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.orders.ByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"orders": dto.NewOrderList(items)})
}

// AllOrders обрабатывает GET /api/admin/orders.
func (h *ShopHandler) AllOrders(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	items, err := h.orders.All(c.Request.Context(), adminID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"orders": dto.NewOrderList(items)})
}

// UpdateStatus обрабатывает PATCH /api/admin/orders/:id.
func (h *ShopHandler) UpdateStatus(c *gin.Context) {
	adminID, orderID, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.OrderStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.status.Execute(c.Request.Context(), orderID, adminID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "статус заказа обновлён", gin.H{"order": dto.NewOrderResponse(order)})
}

// Balance обрабатывает GET /api/balance: баланс и история начислений.
func (h *ShopHandler) Balance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	view, err := h.balance.Execute(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{
		"points": view.Points,
		"events": dto.NewPointEventList(view.Events),
	})
}

// AdjustBalance обрабатывает POST /api/admin/balance.
func (h *ShopHandler) AdjustBalance(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AdjustBalanceRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	targetID, err := parseUUID(req.UserID, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.adjust.Execute(c.Request.Context(), adminID, targetID, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "баланс обновлён", gin.H{"user_id": user.ID, "points": user.Points})
}
