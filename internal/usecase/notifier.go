// Package usecase содержит общие для сценариев контракты.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// События, которые отправляются пользователям после успешной транзакции.
const (
	EventBadgeEarned   = "badge_earned"
	EventProblemStatus = "problem_status"
	EventPointsChanged = "points_changed"
	EventOrderStatus   = "order_status"
)

// Notifier доставляет события подключённым пользователям.
type Notifier interface {
	Notify(userID uuid.UUID, event string, data any)
}

// NopNotifier ничего не отправляет.
type NopNotifier struct{}

func (NopNotifier) Notify(uuid.UUID, string, any) {}

// OrNop подставляет NopNotifier вместо nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}

// RequireAdmin проверяет, что пользователь существует и является администратором.
func RequireAdmin(ctx context.Context, users repository.UserRepository, userID uuid.UUID) (*entity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return user, nil
}
