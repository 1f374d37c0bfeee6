// Package vote ведёт голоса пользователей за проблемы.
package vote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
)

// Status - текущий голос пользователя и итоговые счётчики проблемы.
type Status struct {
	ProblemID uuid.UUID
	UserVote  *valueobject.VoteType
	Likes     int
	Dislikes  int
}

type VoteUseCase struct {
	store repository.Transactor
}

func NewVoteUseCase(store repository.Transactor) *VoteUseCase {
	return &VoteUseCase{store: store}
}

// Execute переключает голос: новый голос добавляется, повтор того же снимает его,
// противоположный заменяет прежний.
func (uc *VoteUseCase) Execute(ctx context.Context, problemID, userID uuid.UUID, voteType string) (*Status, error) {
	next, err := valueobject.NewVoteType(voteType)
	if err != nil {
		return nil, err
	}

	var status *Status
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		problem, err := tx.Problems().FindByIDForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		voter, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		existing, err := tx.Votes().FindByProblemAndUser(ctx, problemID, userID)
		if err != nil {
			return err
		}

		var previous, current *valueobject.VoteType
		switch {
		case existing == nil:
			if err := tx.Votes().Create(ctx, entity.NewVote(problemID, userID, next)); err != nil {
				return err
			}
			current = &next
		case existing.Type == next:
			if err := tx.Votes().Delete(ctx, existing.ID); err != nil {
				return err
			}
			previous = &existing.Type
		default:
			old := existing.Type
			existing.Type = next
			if err := tx.Votes().Update(ctx, existing); err != nil {
				return err
			}
			previous, current = &old, &next
		}

		problem.ApplyVote(previous, current)
		problem.UpdatedAt = time.Now()
		if err := tx.Problems().Update(ctx, problem); err != nil {
			return err
		}

		if likeDelta := likeCount(current) - likeCount(previous); likeDelta != 0 {
			voter.TotalLikesGiven += likeDelta
			if voter.TotalLikesGiven < 0 {
				voter.TotalLikesGiven = 0
			}
			voter.UpdatedAt = time.Now()
			if err := tx.Users().Update(ctx, voter); err != nil {
				return err
			}
		}

		status = &Status{ProblemID: problemID, UserVote: current, Likes: problem.Likes, Dislikes: problem.Dislikes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func likeCount(t *valueobject.VoteType) int {
	if t != nil && *t == valueobject.VoteLike {
		return 1
	}
	return 0
}

type GetVoteStatusUseCase struct {
	store repository.Store
}

func NewGetVoteStatusUseCase(store repository.Store) *GetVoteStatusUseCase {
	return &GetVoteStatusUseCase{store: store}
}

func (uc *GetVoteStatusUseCase) Execute(ctx context.Context, problemID, userID uuid.UUID) (*Status, error) {
	problem, err := uc.store.Problems().FindByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	status := &Status{ProblemID: problemID, Likes: problem.Likes, Dislikes: problem.Dislikes}

	existing, err := uc.store.Votes().FindByProblemAndUser(ctx, problemID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		t := existing.Type
		status.UserVote = &t
	}
	return status, nil
}
