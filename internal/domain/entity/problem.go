package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

type Problem struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Photo       *string
	Lat         float64
	Lng         float64
	Category    valueobject.ProblemCategory
	Severity    valueobject.Severity
	Status      valueobject.ProblemStatus
	Reward      int64
	AssignedTo  *uuid.UUID
	AssignedAt  *time.Time
	CompletedBy *uuid.UUID
	Likes       int
	Dislikes    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func NewProblem(
	reporterID uuid.UUID,
	title, description string,
	location valueobject.Coordinates,
	category valueobject.ProblemCategory,
	severity valueobject.Severity,
	reward int64,
	photo *string,
) (*Problem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название проблемы обязательно")
	}
	if !category.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректная категория проблемы")
	}
	if severity < valueobject.MinSeverity || severity > valueobject.MaxSeverity {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректная серьёзность проблемы")
	}
	if reward < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "награда не может быть отрицательной")
	}

	now := time.Now()
	return &Problem{
		ID:          uuid.New(),
		UserID:      reporterID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Photo:       photo,
		Lat:         location.Lat,
		Lng:         location.Lng,
		Category:    category,
		Severity:    severity,
		Status:      valueobject.ProblemStatusReported,
		Reward:      reward,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Claim закрепляет свободное задание за исполнителем.
func (p *Problem) Claim(actorID uuid.UUID, now time.Time) error {
	if p.AssignedTo != nil {
		return apperror.ErrAlreadyAssigned
	}
	if p.Status != valueobject.ProblemStatusReported {
		return p.stateError()
	}
	p.AssignedTo = &actorID
	p.AssignedAt = &now
	p.Status = valueobject.ProblemStatusInProgress
	p.UpdatedAt = now
	return nil
}

// Release возвращает задание в общий пул.
func (p *Problem) Release(actorID uuid.UUID, now time.Time) error {
	if p.Status != valueobject.ProblemStatusInProgress || !p.IsAssignedTo(actorID) {
		return apperror.ErrNotAssignee
	}
	p.AssignedTo = nil
	p.AssignedAt = nil
	p.Status = valueobject.ProblemStatusReported
	p.UpdatedAt = now
	return nil
}

// Complete завершает задание: исполнитель или администратор.
func (p *Problem) Complete(actor *User, now time.Time) error {
	switch p.Status {
	case valueobject.ProblemStatusCompleted:
		return apperror.ErrAlreadyCompleted
	case valueobject.ProblemStatusRejected:
		return p.stateError()
	}
	if !p.IsAssignedTo(actor.ID) && !actor.IsAdmin {
		if p.AssignedTo != nil {
			return apperror.ErrNotAssignee
		}
		return apperror.New(apperror.ErrCodeForbidden, "завершить задание может только исполнитель или администратор")
	}

	p.Status = valueobject.ProblemStatusCompleted
	p.CompletedAt = &now
	p.CompletedBy = &actor.ID
	p.UpdatedAt = now
	return nil
}

// Reject отклоняет проблему (только администратор).
func (p *Problem) Reject(now time.Time) error {
	if !p.Status.CanTransitionTo(valueobject.ProblemStatusRejected) {
		return p.stateError()
	}
	p.Status = valueobject.ProblemStatusRejected
	p.AssignedTo = nil
	p.AssignedAt = nil
	p.UpdatedAt = now
	return nil
}

// ApplyVote пересчитывает счётчики при смене голоса пользователя.
// previous и next равны nil, если голоса нет.
func (p *Problem) ApplyVote(previous, next *valueobject.VoteType) {
	if previous != nil {
		p.adjust(*previous, -1)
	}
	if next != nil {
		p.adjust(*next, 1)
	}
}

func (p *Problem) adjust(t valueobject.VoteType, delta int) {
	switch t {
	case valueobject.VoteLike:
		p.Likes += delta
	case valueobject.VoteDislike:
		p.Dislikes += delta
	}
}

func (p *Problem) IsAssignedTo(userID uuid.UUID) bool {
	return p.AssignedTo != nil && *p.AssignedTo == userID
}

func (p *Problem) IsAvailable() bool {
	return p.Status == valueobject.ProblemStatusReported && p.AssignedTo == nil
}

func (p *Problem) stateError() error {
	return apperror.New(apperror.ErrCodeConflict, "операция недоступна в статусе "+string(p.Status))
}
