package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/persistence/common"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

const orderColumns = `id, user_id, item_id, item_name, price, quantity, address, phone, size, comment, status,
	created_at, updated_at`

type orderRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ItemID    int       `db:"item_id"`
	ItemName  string    `db:"item_name"`
	Price     int64     `db:"price"`
	Quantity  int       `db:"quantity"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	Size      *string   `db:"size"`
	Comment   *string   `db:"comment"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *orderRow) toEntity() *entity.Order {
	return &entity.Order{
		ID:        r.ID,
		UserID:    r.UserID,
		ItemID:    r.ItemID,
		ItemName:  r.ItemName,
		Price:     r.Price,
		Quantity:  r.Quantity,
		Address:   r.Address,
		Phone:     r.Phone,
		Size:      r.Size,
		Comment:   r.Comment,
		Status:    valueobject.OrderStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.s.ext.ExecContext(ctx, `
		INSERT INTO shop_orders (id, user_id, item_id, item_name, price, quantity, address, phone, size, comment,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.UserID, o.ItemID, o.ItemName, o.Price, o.Quantity, o.Address, o.Phone, o.Size, o.Comment,
		string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return common.MapError(err, "не удалось создать заказ")
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	return common.ExecAffected(ctx, r.s.ext, apperror.ErrOrderNotFound, "не удалось обновить заказ",
		`UPDATE shop_orders SET status = $2, address = $3, phone = $4, updated_at = $5 WHERE id = $1`,
		o.ID, string(o.Status), o.Address, o.Phone, o.UpdatedAt)
}

func (r *OrderRepository) find(ctx context.Context, id uuid.UUID, lock string) (*entity.Order, error) {
	row, err := common.GetOne[orderRow](ctx, r.s.ext, apperror.ErrOrderNotFound,
		`SELECT `+orderColumns+` FROM shop_orders WHERE id = $1`+lock, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.find(ctx, id, "")
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.find(ctx, id, r.s.forUpdate())
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	var rows []orderRow
	if err := sqlxSelect(ctx, r.s, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заказы")
	}
	orders := make([]*entity.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].toEntity()
	}
	return orders, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM shop_orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM shop_orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *OrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := sqlxGet(ctx, r.s, &n, `SELECT COUNT(*) FROM shop_orders WHERE user_id = $1`, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заказы")
	}
	return n, nil
}

type pointEventRow struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	Delta     int64      `db:"delta"`
	Reason    string     `db:"reason"`
	RefID     *uuid.UUID `db:"ref_id"`
	CreatedAt time.Time  `db:"created_at"`
}

type LedgerRepository struct {
	s *Store
}

func (r *LedgerRepository) Append(ctx context.Context, e *entity.PointEvent) error {
	_, err := r.s.ext.ExecContext(ctx,
		`INSERT INTO point_events (id, user_id, delta, reason, ref_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.Delta, string(e.Reason), e.RefID, e.CreatedAt)
	if err != nil {
		return common.MapError(err, "не удалось записать начисление")
	}
	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.PointEvent, error) {
	var rows []pointEventRow
	if err := sqlxSelect(ctx, r.s, &rows, `
		SELECT id, user_id, delta, reason, ref_id, created_at
		FROM point_events WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить историю начислений")
	}
	events := make([]*entity.PointEvent, len(rows))
	for i, row := range rows {
		events[i] = &entity.PointEvent{
			ID:        row.ID,
			UserID:    row.UserID,
			Delta:     row.Delta,
			Reason:    valueobject.PointReason(row.Reason),
			RefID:     row.RefID,
			CreatedAt: row.CreatedAt,
		}
	}
	return events, nil
}

func (r *LedgerRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	if err := sqlxGet(ctx, r.s, &sum, `SELECT COALESCE(SUM(delta), 0) FROM point_events WHERE user_id = $1`, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать баланс")
	}
	return sum, nil
}
