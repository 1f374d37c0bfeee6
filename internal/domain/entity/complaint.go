package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
)

type Complaint struct {
	ID           uuid.UUID
	ProblemID    *uuid.UUID
	UserID       uuid.UUID
	Reason       valueobject.ComplaintReason
	Description  string
	Status       valueobject.ComplaintStatus
	ResolvedAt   *time.Time
	ResolvedBy   *uuid.UUID
	ActionTaken  *valueobject.ActionTaken
	AdminComment *string
	CreatedAt    time.Time
}

func NewComplaint(problemID, userID uuid.UUID, reason valueobject.ComplaintReason, description string) *Complaint {
	return &Complaint{
		ID:          uuid.New(),
		ProblemID:   &problemID,
		UserID:      userID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		Status:      valueobject.ComplaintStatusPending,
		CreatedAt:   time.Now(),
	}
}

// Resolve закрывает жалобу и сообщает, нужно ли удалять проблему.
// Для уже закрытой жалобы ничего не меняет и возвращает false.
func (c *Complaint) Resolve(adminID uuid.UUID, action valueobject.ResolveAction, deleteProblem bool, comment string, now time.Time) bool {
	if c.Status.IsClosed() {
		return false
	}

	removeProblem := (deleteProblem || action == valueobject.ActionDeleteContent) && c.ProblemID != nil

	taken := valueobject.ActionTakenComplaintRejected
	switch {
	case removeProblem:
		taken = valueobject.ActionTakenProblemDeleted
	case action == valueobject.ActionDeleteContent:
		// проблема уже удалена ранее
		taken = valueobject.ActionTakenNone
	}

	c.Status = valueobject.ComplaintStatusResolved
	c.ResolvedAt = &now
	c.ResolvedBy = &adminID
	c.ActionTaken = &taken
	if comment = strings.TrimSpace(comment); comment != "" {
		c.AdminComment = &comment
	}
	return removeProblem
}

// Detach отвязывает жалобу от проблемы перед её удалением.
func (c *Complaint) Detach() {
	c.ProblemID = nil
}
