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

const complaintColumns = `id, problem_id, user_id, reason, description, status, resolved_at, resolved_by,
	action_taken, admin_comment, created_at`

type complaintRow struct {
	ID           uuid.UUID  `db:"id"`
	ProblemID    *uuid.UUID `db:"problem_id"`
	UserID       uuid.UUID  `db:"user_id"`
	Reason       string     `db:"reason"`
	Description  string     `db:"description"`
	Status       string     `db:"status"`
	ResolvedAt   *time.Time `db:"resolved_at"`
	ResolvedBy   *uuid.UUID `db:"resolved_by"`
	ActionTaken  *string    `db:"action_taken"`
	AdminComment *string    `db:"admin_comment"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (r *complaintRow) toEntity() *entity.Complaint {
	c := &entity.Complaint{
		ID:           r.ID,
		ProblemID:    r.ProblemID,
		UserID:       r.UserID,
		Reason:       valueobject.ComplaintReason(r.Reason),
		Description:  r.Description,
		Status:       valueobject.ComplaintStatus(r.Status),
		ResolvedAt:   r.ResolvedAt,
		ResolvedBy:   r.ResolvedBy,
		AdminComment: r.AdminComment,
		CreatedAt:    r.CreatedAt,
	}
	if r.ActionTaken != nil {
		a := valueobject.ActionTaken(*r.ActionTaken)
		c.ActionTaken = &a
	}
	return c
}

type ComplaintRepository struct {
	s *Store
}

func (r *ComplaintRepository) Create(ctx context.Context, c *entity.Complaint) error {
	_, err := r.s.ext.ExecContext(ctx, `
		INSERT INTO complaints (id, problem_id, user_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.ProblemID, c.UserID, string(c.Reason), c.Description, string(c.Status), c.CreatedAt)
	if err != nil {
		return common.MapError(err, "не удалось сохранить жалобу")
	}
	return nil
}

func (r *ComplaintRepository) Update(ctx context.Context, c *entity.Complaint) error {
	var action *string
	if c.ActionTaken != nil {
		a := string(*c.ActionTaken)
		action = &a
	}
	return common.ExecAffected(ctx, r.s.ext, apperror.ErrComplaintNotFound, "не удалось обновить жалобу", `
		UPDATE complaints
		SET problem_id = $2, status = $3, resolved_at = $4, resolved_by = $5, action_taken = $6, admin_comment = $7
		WHERE id = $1`,
		c.ID, c.ProblemID, string(c.Status), c.ResolvedAt, c.ResolvedBy, action, c.AdminComment)
}

func (r *ComplaintRepository) find(ctx context.Context, id uuid.UUID, lock string) (*entity.Complaint, error) {
	row, err := common.GetOne[complaintRow](ctx, r.s.ext, apperror.ErrComplaintNotFound,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`+lock, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *ComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	return r.find(ctx, id, "")
}

func (r *ComplaintRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	return r.find(ctx, id, r.s.forUpdate())
}

func (r *ComplaintRepository) ListByStatus(ctx context.Context, status valueobject.ComplaintStatus, limit, offset int) ([]*entity.Complaint, error) {
	var rows []complaintRow
	if err := sqlxSelect(ctx, r.s, &rows,
		`SELECT `+complaintColumns+` FROM complaints WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобы")
	}
	complaints := make([]*entity.Complaint, len(rows))
	for i := range rows {
		complaints[i] = rows[i].toEntity()
	}
	return complaints, nil
}
