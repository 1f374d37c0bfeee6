package valueobject

import "github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"

type ComplaintReason string

const (
	ReasonSpam      ComplaintReason = "spam"
	ReasonFake      ComplaintReason = "fake"
	ReasonOffensive ComplaintReason = "offensive"
	ReasonDuplicate ComplaintReason = "duplicate"
	ReasonOther     ComplaintReason = "other"
)

func (r ComplaintReason) IsValid() bool {
	switch r {
	case ReasonSpam, ReasonFake, ReasonOffensive, ReasonDuplicate, ReasonOther:
		return true
	}
	return false
}

func NewComplaintReason(reason string) (ComplaintReason, error) {
	r := ComplaintReason(reason)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная причина жалобы")
	}
	return r, nil
}

// ResolveAction - решение администратора по жалобе.
type ResolveAction string

const (
	ActionDeleteContent   ResolveAction = "delete_content"
	ActionRejectComplaint ResolveAction = "reject_complaint"
)

func NewResolveAction(action string) (ResolveAction, error) {
	a := ResolveAction(action)
	if a != ActionDeleteContent && a != ActionRejectComplaint {
		return "", apperror.New(apperror.ErrCodeValidation, "действие должно быть delete_content или reject_complaint")
	}
	return a, nil
}

// ActionTaken фиксирует, что фактически было сделано при рассмотрении.
type ActionTaken string

const (
	ActionTakenProblemDeleted    ActionTaken = "problem_deleted"
	ActionTakenComplaintRejected ActionTaken = "complaint_rejected"
	ActionTakenNone              ActionTaken = "no_action"
)
