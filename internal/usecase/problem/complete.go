package problem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/achievement"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/ledger"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

// CompletionReport - фотоотчёт, прикладываемый при завершении.
type CompletionReport struct {
	BeforePhoto *string
	AfterPhoto  *string
	Description string
	Rating      *int
}

type CompleteResult struct {
	Problem       *entity.Problem
	Actor         *entity.User
	Completion    *entity.TaskCompletion
	PointsAwarded int64
	NewBadges     []entity.Badge
}

// CompleteProblemUseCase завершает задание. Завершить может исполнитель или администратор,
// одинаково для завершения с отчётом и без.
type CompleteProblemUseCase struct {
	store    repository.Transactor
	rewards  Rewards
	notifier usecase.Notifier
}

func NewCompleteProblemUseCase(store repository.Transactor, rewards Rewards, notifier usecase.Notifier) *CompleteProblemUseCase {
	return &CompleteProblemUseCase{store: store, rewards: rewards, notifier: usecase.OrNop(notifier)}
}

func (uc *CompleteProblemUseCase) Execute(ctx context.Context, problemID, actorID uuid.UUID) (*CompleteResult, error) {
	return uc.complete(ctx, problemID, actorID, nil)
}

// ExecuteWithReport завершает задание и сохраняет фотоотчёт в той же транзакции.
func (uc *CompleteProblemUseCase) ExecuteWithReport(ctx context.Context, problemID, actorID uuid.UUID, report CompletionReport) (*CompleteResult, error) {
	return uc.complete(ctx, problemID, actorID, &report)
}

func (uc *CompleteProblemUseCase) complete(ctx context.Context, problemID, actorID uuid.UUID, report *CompletionReport) (*CompleteResult, error) {
	result := &CompleteResult{}
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		problem, err := tx.Problems().FindByIDForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		actor, err := tx.Users().FindByIDForUpdate(ctx, actorID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := problem.Complete(actor, now); err != nil {
			return err
		}
		if err := tx.Problems().Update(ctx, problem); err != nil {
			return err
		}

		if report != nil {
			completion, err := entity.NewTaskCompletion(problem.ID, actor.ID, report.BeforePhoto, report.AfterPhoto, report.Description, report.Rating)
			if err != nil {
				return err
			}
			if err := tx.Completions().Create(ctx, completion); err != nil {
				return err
			}
			result.Completion = completion
			if completion.AfterPhoto != nil {
				actor.TotalPhotos++
			}
		}

		event, err := ledger.Post(ctx, tx, actor, problem.Reward, valueobject.ReasonProblemCompleted, &problem.ID)
		if err != nil {
			return err
		}
		if event != nil {
			result.PointsAwarded = event.Delta
		}

		actor.AddExperience(uc.rewards.CompleteExperience)
		actor.TotalCompleted++
		result.NewBadges = achievement.Apply(actor, now)
		actor.UpdatedAt = now
		if err := tx.Users().Update(ctx, actor); err != nil {
			return err
		}

		result.Problem = problem
		result.Actor = actor
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := badgeNotifications(actorID, result.NewBadges)
	if result.PointsAwarded != 0 {
		events = append(events, notification{
			userID: actorID,
			event:  usecase.EventPointsChanged,
			data:   map[string]int64{"delta": result.PointsAwarded, "balance": result.Actor.Points},
		})
	}
	if result.Problem.UserID != actorID {
		events = append(events, statusNotification(result.Problem, actorID))
	}
	flush(uc.notifier, events)
	return result, nil
}
