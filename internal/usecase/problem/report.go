package problem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/achievement"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/ledger"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type ReportInput struct {
	ReporterID  uuid.UUID
	Title       string
	Description string
	Lat         float64
	Lng         float64
	Category    string
	Severity    int
	Photo       *string
}

type ReportResult struct {
	Problem       *entity.Problem
	Reporter      *entity.User
	PointsAwarded int64
	NewBadges     []entity.Badge
}

type ReportProblemUseCase struct {
	store    repository.Transactor
	rewards  Rewards
	notifier usecase.Notifier
}

func NewReportProblemUseCase(store repository.Transactor, rewards Rewards, notifier usecase.Notifier) *ReportProblemUseCase {
	return &ReportProblemUseCase{store: store, rewards: rewards, notifier: usecase.OrNop(notifier)}
}

// Execute сохраняет проблему и начисляет автору баллы и опыт за сообщение.
func (uc *ReportProblemUseCase) Execute(ctx context.Context, input ReportInput) (*ReportResult, error) {
	location, err := valueobject.NewCoordinates(input.Lat, input.Lng)
	if err != nil {
		return nil, err
	}
	category, err := valueobject.NewProblemCategory(input.Category)
	if err != nil {
		return nil, err
	}
	severity, err := valueobject.NewSeverity(input.Severity)
	if err != nil {
		return nil, err
	}

	problem, err := entity.NewProblem(
		input.ReporterID,
		input.Title,
		input.Description,
		location,
		category,
		severity,
		uc.rewards.ReportReward,
		input.Photo,
	)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{Problem: problem}
	err = uc.store.WithinTx(ctx, func(tx repository.Store) error {
		reporter, err := tx.Users().FindByIDForUpdate(ctx, input.ReporterID)
		if err != nil {
			return err
		}
		if err := tx.Problems().Create(ctx, problem); err != nil {
			return err
		}

		event, err := ledger.Post(ctx, tx, reporter, uc.rewards.ReportReward, valueobject.ReasonProblemReported, &problem.ID)
		if err != nil {
			return err
		}
		if event != nil {
			result.PointsAwarded = event.Delta
		}

		now := time.Now()
		reporter.AddExperience(uc.rewards.ReportExperience)
		reporter.TotalReports++
		reporter.TotalPointsAdded++
		if problem.Photo != nil && *problem.Photo != "" {
			reporter.TotalPhotos++
		}
		result.NewBadges = achievement.Apply(reporter, now)
		reporter.UpdatedAt = now

		if err := tx.Users().Update(ctx, reporter); err != nil {
			return err
		}
		result.Reporter = reporter
		return nil
	})
	if err != nil {
		return nil, err
	}

	flush(uc.notifier, badgeNotifications(input.ReporterID, result.NewBadges))
	return result, nil
}
