package problem

import (
	"context"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
)

// AnalyticsTopUsers - сколько самых активных авторов попадает в сводку.
const AnalyticsTopUsers = 5

// Analytics - городская сводка по проблемам.
type Analytics struct {
	City        string
	Stats       *repository.ProblemStats
	ActiveUsers []*entity.User
}

type AnalyticsUseCase struct {
	problems repository.ProblemRepository
	users    repository.UserRepository
	city     string
}

func NewAnalyticsUseCase(problems repository.ProblemRepository, users repository.UserRepository, city string) *AnalyticsUseCase {
	return &AnalyticsUseCase{problems: problems, users: users, city: city}
}

func (uc *AnalyticsUseCase) Execute(ctx context.Context) (*Analytics, error) {
	stats, err := uc.problems.Stats(ctx)
	if err != nil {
		return nil, err
	}
	active, err := uc.users.TopByReports(ctx, AnalyticsTopUsers)
	if err != nil {
		return nil, err
	}
	return &Analytics{City: uc.city, Stats: stats, ActiveUsers: active}, nil
}
