package valueobject

import "github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"

type ProblemStatus string

const (
	ProblemStatusReported   ProblemStatus = "reported"
	ProblemStatusInProgress ProblemStatus = "in_progress"
	ProblemStatusCompleted  ProblemStatus = "completed"
	ProblemStatusRejected   ProblemStatus = "rejected"
)

func (s ProblemStatus) IsValid() bool {
	switch s {
	case ProblemStatusReported, ProblemStatusInProgress, ProblemStatusCompleted, ProblemStatusRejected:
		return true
	}
	return false
}

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s ProblemStatus) IsTerminal() bool {
	return s == ProblemStatusCompleted || s == ProblemStatusRejected
}

func (s ProblemStatus) CanTransitionTo(newStatus ProblemStatus) bool {
	transitions := map[ProblemStatus][]ProblemStatus{
		ProblemStatusReported:   {ProblemStatusInProgress, ProblemStatusCompleted, ProblemStatusRejected},
		ProblemStatusInProgress: {ProblemStatusReported, ProblemStatusCompleted, ProblemStatusRejected},
		ProblemStatusCompleted:  {},
		ProblemStatusRejected:   {},
	}
	return containsStatus(transitions[s], newStatus)
}

func NewProblemStatus(status string) (ProblemStatus, error) {
	s := ProblemStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус проблемы")
	}
	return s, nil
}

type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "pending"
	ComplaintStatusResolved ComplaintStatus = "resolved"
	ComplaintStatusRejected ComplaintStatus = "rejected"
)

func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusResolved, ComplaintStatusRejected:
		return true
	}
	return false
}

// IsClosed сообщает, что жалоба уже рассмотрена.
func (s ComplaintStatus) IsClosed() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusRejected
}

func NewComplaintStatus(status string) (ComplaintStatus, error) {
	s := ComplaintStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус жалобы")
	}
	return s, nil
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заказа")
	}
	return s, nil
}

func containsStatus(list []ProblemStatus, s ProblemStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
