package problem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

type Scope string

const (
	// ScopeActive - всё, что ещё не завершено и не отклонено (лента карты).
	ScopeActive Scope = "active"
	// ScopeAvailable - свободные задания.
	ScopeAvailable Scope = "available"
	// ScopeMine - задания, взятые пользователем в работу.
	ScopeMine Scope = "mine"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type ListInput struct {
	Scope    Scope
	UserID   uuid.UUID
	Category string
	Limit    int
	Offset   int
}

type ListProblemsUseCase struct {
	problems repository.ProblemRepository
}

func NewListProblemsUseCase(problems repository.ProblemRepository) *ListProblemsUseCase {
	return &ListProblemsUseCase{problems: problems}
}

func (uc *ListProblemsUseCase) Execute(ctx context.Context, input ListInput) ([]*entity.Problem, error) {
	filter := repository.ProblemFilter{Limit: input.Limit, Offset: input.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if input.Category != "" {
		category, err := valueobject.NewProblemCategory(input.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = &category
	}

	switch input.Scope {
	case ScopeActive, "":
		filter.Statuses = []valueobject.ProblemStatus{valueobject.ProblemStatusReported, valueobject.ProblemStatusInProgress}
	case ScopeAvailable:
		filter.Statuses = []valueobject.ProblemStatus{valueobject.ProblemStatusReported}
		filter.Unassigned = true
	case ScopeMine:
		userID := input.UserID
		filter.Statuses = []valueobject.ProblemStatus{valueobject.ProblemStatusInProgress}
		filter.AssignedTo = &userID
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный фильтр списка")
	}

	return uc.problems.List(ctx, filter)
}

// ProblemDetails - проблема с комментариями и фотоотчётом.
type ProblemDetails struct {
	Problem    *entity.Problem
	Comments   []*entity.Comment
	Completion *entity.TaskCompletion
}

type GetProblemUseCase struct {
	store repository.Store
}

func NewGetProblemUseCase(store repository.Store) *GetProblemUseCase {
	return &GetProblemUseCase{store: store}
}

func (uc *GetProblemUseCase) Execute(ctx context.Context, problemID uuid.UUID) (*ProblemDetails, error) {
	problem, err := uc.store.Problems().FindByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	comments, err := uc.store.Comments().ListByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	completion, err := uc.store.Completions().FindByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	return &ProblemDetails{Problem: problem, Comments: comments, Completion: completion}, nil
}

type AddCommentUseCase struct {
	store repository.Transactor
}

func NewAddCommentUseCase(store repository.Transactor) *AddCommentUseCase {
	return &AddCommentUseCase{store: store}
}

func (uc *AddCommentUseCase) Execute(ctx context.Context, problemID, authorID uuid.UUID, text string) (*entity.Comment, error) {
	comment, err := entity.NewComment(problemID, authorID, text)
	if err != nil {
		return nil, err
	}

	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Problems().FindByID(ctx, problemID); err != nil {
			return err
		}
		author, err := tx.Users().FindByIDForUpdate(ctx, authorID)
		if err != nil {
			return err
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		author.TotalComments++
		author.UpdatedAt = time.Now()
		return tx.Users().Update(ctx, author)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
