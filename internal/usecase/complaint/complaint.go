// Package complaint обрабатывает жалобы на контент.
package complaint

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type FileComplaintUseCase struct {
	store repository.Transactor
}

func NewFileComplaintUseCase(store repository.Transactor) *FileComplaintUseCase {
	return &FileComplaintUseCase{store: store}
}

func (uc *FileComplaintUseCase) Execute(ctx context.Context, problemID, reporterID uuid.UUID, reason, description string) (*entity.Complaint, error) {
	r, err := valueobject.NewComplaintReason(reason)
	if err != nil {
		return nil, err
	}

	complaint := entity.NewComplaint(problemID, reporterID, r, description)
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Problems().FindByID(ctx, problemID); err != nil {
			return err
		}
		return tx.Complaints().Create(ctx, complaint)
	})
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

type ResolveInput struct {
	ComplaintID   uuid.UUID
	AdminID       uuid.UUID
	Action        string
	DeleteProblem bool
	Comment       string
}

// ResolveResult описывает итог рассмотрения. Changed=false означает, что жалоба
// уже была закрыта и ничего не изменилось.
type ResolveResult struct {
	Complaint        *entity.Complaint
	DeletedProblemID *uuid.UUID
	Changed          bool
}

type ResolveComplaintUseCase struct {
	store repository.Transactor
}

func NewResolveComplaintUseCase(store repository.Transactor) *ResolveComplaintUseCase {
	return &ResolveComplaintUseCase{store: store}
}

func (uc *ResolveComplaintUseCase) Execute(ctx context.Context, input ResolveInput) (*ResolveResult, error) {
	action, err := valueobject.NewResolveAction(input.Action)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{}
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		admin, err := usecase.RequireAdmin(ctx, tx.Users(), input.AdminID)
		if err != nil {
			return err
		}

		complaint, err := tx.Complaints().FindByIDForUpdate(ctx, input.ComplaintID)
		if err != nil {
			return err
		}
		result.Complaint = complaint
		if complaint.Status.IsClosed() {
			return nil
		}

		problemID := complaint.ProblemID
		removeProblem := complaint.Resolve(admin.ID, action, input.DeleteProblem, input.Comment, time.Now())
		if removeProblem {
			// жалоба переживает каскадное удаление проблемы
			complaint.Detach()
		}
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}
		result.Changed = true

		if !removeProblem {
			return nil
		}
		if err := tx.Problems().Delete(ctx, *problemID); err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return err
		}
		result.DeletedProblemID = problemID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ListPendingUseCase struct {
	complaints repository.ComplaintRepository
}

func NewListPendingUseCase(complaints repository.ComplaintRepository) *ListPendingUseCase {
	return &ListPendingUseCase{complaints: complaints}
}

func (uc *ListPendingUseCase) Execute(ctx context.Context, limit, offset int) ([]*entity.Complaint, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.complaints.ListByStatus(ctx, valueobject.ComplaintStatusPending, limit, offset)
}
