package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
)

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	Update(ctx context.Context, complaint *entity.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	ListByStatus(ctx context.Context, status valueobject.ComplaintStatus, limit, offset int) ([]*entity.Complaint, error)
}
