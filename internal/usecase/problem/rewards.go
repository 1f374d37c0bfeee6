// Package problem реализует жизненный цикл проблемы: создание, взятие в работу,
// завершение и модерацию.
package problem

import (
	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

// Rewards - начисления за действия с проблемами.
type Rewards struct {
	ReportReward       int64
	ReportExperience   int64
	CompleteExperience int64
}

func DefaultRewards() Rewards {
	return Rewards{
		ReportReward:       15,
		ReportExperience:   30,
		CompleteExperience: 50,
	}
}

// StatusEvent - полезная нагрузка события смены статуса проблемы.
type StatusEvent struct {
	ProblemID uuid.UUID `json:"problem_id"`
	Status    string    `json:"status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

type notification struct {
	userID uuid.UUID
	event  string
	data   any
}

func badgeNotifications(userID uuid.UUID, badges []entity.Badge) []notification {
	out := make([]notification, 0, len(badges))
	for _, b := range badges {
		out = append(out, notification{userID: userID, event: usecase.EventBadgeEarned, data: b})
	}
	return out
}

func statusNotification(p *entity.Problem, actorID uuid.UUID) notification {
	return notification{
		userID: p.UserID,
		event:  usecase.EventProblemStatus,
		data:   StatusEvent{ProblemID: p.ID, Status: string(p.Status), ActorID: actorID},
	}
}

func flush(n usecase.Notifier, list []notification) {
	for _, item := range list {
		n.Notify(item.userID, item.event, item.data)
	}
}
