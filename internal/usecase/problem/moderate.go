package problem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type RejectProblemUseCase struct {
	store    repository.Transactor
	notifier usecase.Notifier
}

func NewRejectProblemUseCase(store repository.Transactor, notifier usecase.Notifier) *RejectProblemUseCase {
	return &RejectProblemUseCase{store: store, notifier: usecase.OrNop(notifier)}
}

func (uc *RejectProblemUseCase) Execute(ctx context.Context, problemID, adminID uuid.UUID) (*entity.Problem, error) {
	var problem *entity.Problem
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := usecase.RequireAdmin(ctx, tx.Users(), adminID); err != nil {
			return err
		}
		var err error
		problem, err = tx.Problems().FindByIDForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		if err := problem.Reject(time.Now()); err != nil {
			return err
		}
		return tx.Problems().Update(ctx, problem)
	})
	if err != nil {
		return nil, err
	}

	flush(uc.notifier, []notification{statusNotification(problem, adminID)})
	return problem, nil
}

type DeleteProblemUseCase struct {
	store repository.Transactor
}

func NewDeleteProblemUseCase(store repository.Transactor) *DeleteProblemUseCase {
	return &DeleteProblemUseCase{store: store}
}

// Execute удаляет проблему со всеми голосами, комментариями, отчётом и жалобами.
// Возвращает удалённую проблему, чтобы вызывающий код мог убрать её фото.
func (uc *DeleteProblemUseCase) Execute(ctx context.Context, problemID, adminID uuid.UUID) (*entity.Problem, error) {
	var problem *entity.Problem
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := usecase.RequireAdmin(ctx, tx.Users(), adminID); err != nil {
			return err
		}
		var err error
		problem, err = tx.Problems().FindByIDForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		return tx.Problems().Delete(ctx, problemID)
	})
	if err != nil {
		return nil, err
	}
	return problem, nil
}
