package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
)

type ProblemFilter struct {
	Statuses   []valueobject.ProblemStatus
	Category   *valueobject.ProblemCategory
	AssignedTo *uuid.UUID
	Unassigned bool
	Limit      int
	Offset     int
}

// SeverityBuckets - число проблем по уровням серьёзности: critical >= 5, high = 4, medium = 3, low <= 2.
type SeverityBuckets struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// ProblemStats - сводка по всем проблемам. Active считает reported и in_progress.
type ProblemStats struct {
	Total      int
	Active     int
	Completed  int
	Rejected   int
	ByCategory map[valueobject.ProblemCategory]int
	BySeverity SeverityBuckets
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *entity.Problem) error
	Update(ctx context.Context, problem *entity.Problem) error
	// Delete удаляет проблему вместе с голосами, комментариями, отчётом и жалобами.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Problem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Problem, error)
	// TryClaim атомарно назначает исполнителя, только если проблема в статусе reported и свободна.
	TryClaim(ctx context.Context, id, userID uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context, filter ProblemFilter) ([]*entity.Problem, error)
	Stats(ctx context.Context) (*ProblemStats, error)
}

type VoteRepository interface {
	Create(ctx context.Context, vote *entity.Vote) error
	Update(ctx context.Context, vote *entity.Vote) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByProblemAndUser возвращает nil, nil если голоса нет.
	FindByProblemAndUser(ctx context.Context, problemID, userID uuid.UUID) (*entity.Vote, error)
	CountByType(ctx context.Context, problemID uuid.UUID, t valueobject.VoteType) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	ListByProblem(ctx context.Context, problemID uuid.UUID) ([]*entity.Comment, error)
}

type TaskCompletionRepository interface {
	Create(ctx context.Context, completion *entity.TaskCompletion) error
	// FindByProblem возвращает nil, nil если отчёта нет.
	FindByProblem(ctx context.Context, problemID uuid.UUID) (*entity.TaskCompletion, error)
}
