package problem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type ClaimProblemUseCase struct {
	store    repository.Transactor
	notifier usecase.Notifier
}

func NewClaimProblemUseCase(store repository.Transactor, notifier usecase.Notifier) *ClaimProblemUseCase {
	return &ClaimProblemUseCase{store: store, notifier: usecase.OrNop(notifier)}
}

// Execute закрепляет проблему за actorID. Из двух одновременных попыток успешна ровно одна:
// назначение выполняется одним условным обновлением.
func (uc *ClaimProblemUseCase) Execute(ctx context.Context, problemID, actorID uuid.UUID) (*entity.Problem, error) {
	var problem *entity.Problem
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		now := time.Now()
		claimed, err := tx.Problems().TryClaim(ctx, problemID, actorID, now)
		if err != nil {
			return err
		}

		problem, err = tx.Problems().FindByID(ctx, problemID)
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}

		// выясняем точную причину отказа на копии
		if err := problem.Claim(actorID, now); err != nil {
			return err
		}
		return apperror.ErrAlreadyAssigned
	})
	if err != nil {
		return nil, err
	}

	if problem.UserID != actorID {
		flush(uc.notifier, []notification{statusNotification(problem, actorID)})
	}
	return problem, nil
}

type ReleaseProblemUseCase struct {
	store repository.Transactor
}

func NewReleaseProblemUseCase(store repository.Transactor) *ReleaseProblemUseCase {
	return &ReleaseProblemUseCase{store: store}
}

func (uc *ReleaseProblemUseCase) Execute(ctx context.Context, problemID, actorID uuid.UUID) (*entity.Problem, error) {
	var problem *entity.Problem
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		problem, err = tx.Problems().FindByIDForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		if err := problem.Release(actorID, time.Now()); err != nil {
			return err
		}
		return tx.Problems().Update(ctx, problem)
	})
	if err != nil {
		return nil, err
	}
	return problem, nil
}
