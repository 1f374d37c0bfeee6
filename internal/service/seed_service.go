package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/ledger"
	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// SeedAccount - учётная запись, создаваемая при первом запуске.
type SeedAccount struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
	Points   int64
}

// DefaultSeedAccounts - администратор и тестовый пользователь.
var DefaultSeedAccounts = []SeedAccount{
	{Username: "admin", Email: "admin@fm.ru", Password: "admin123", IsAdmin: true, Points: 1000},
	{Username: "user1", Email: "user@fm.ru", Password: "user123", Points: 100},
}

// SeedService создаёт стартовые данные: учётные записи и тестовую проблему.
type SeedService struct {
	store     repository.Transactor
	city      string
	centerLat float64
	centerLng float64

	problemReward int64
}

// NewSeedService создаёт сервис начальных данных.
func NewSeedService(store repository.Transactor, city string, centerLat, centerLng float64, problemReward int64) *SeedService {
	return &SeedService{store: store, city: city, centerLat: centerLat, centerLng: centerLng, problemReward: problemReward}
}

// SeedResult сообщает, что было создано.
type SeedResult struct {
	CreatedUsers  []string
	ProblemSeeded bool
}

// Seed идемпотентен: существующие учётные записи не трогает.
// Стартовый баланс проводится через журнал баллов, чтобы сумма событий совпадала с балансом.
func (s *SeedService) Seed(ctx context.Context, accounts []SeedAccount) (*SeedResult, error) {
	result := &SeedResult{}
	log := logger.WithComponent("seed")

	var owner *entity.User
	for _, acc := range accounts {
		user, created, err := s.ensureUser(ctx, acc)
		if err != nil {
			return nil, fmt.Errorf("seed service: %s: %w", acc.Username, err)
		}
		if owner == nil {
			owner = user
		}
		if created {
			result.CreatedUsers = append(result.CreatedUsers, acc.Username)
			log.WithField("username", acc.Username).Info("создана учётная запись")
		}
	}
	if owner == nil {
		return result, nil
	}

	seeded, err := s.ensureProblem(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("seed service: тестовая проблема: %w", err)
	}
	result.ProblemSeeded = seeded
	return result, nil
}

func (s *SeedService) ensureUser(ctx context.Context, acc SeedAccount) (*entity.User, bool, error) {
	existing, err := s.store.Users().FindByUsername(ctx, acc.Username)
	if err == nil {
		return existing, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	user, err := entity.NewUser(acc.Username, acc.Email, string(hash))
	if err != nil {
		return nil, false, err
	}
	user.IsAdmin = acc.IsAdmin
	user.City = s.city

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if _, err := ledger.Post(ctx, tx, user, acc.Points, valueobject.ReasonAdminAdjustment, nil); err != nil {
			return err
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *SeedService) ensureProblem(ctx context.Context, owner *entity.User) (bool, error) {
	existing, err := s.store.Problems().List(ctx, repository.ProblemFilter{Limit: 1})
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	location, err := valueobject.NewCoordinates(s.centerLat+0.002, s.centerLng+0.002)
	if err != nil {
		return false, err
	}
	problem, err := entity.NewProblem(
		owner.ID,
		"Тестовая проблема: Мусор",
		"Пример описания проблемы.",
		location,
		valueobject.CategoryPollution,
		valueobject.DefaultSeverity,
		s.problemReward,
		nil,
	)
	if err != nil {
		return false, err
	}
	if err := s.store.Problems().Create(ctx, problem); err != nil {
		return false, err
	}
	return true, nil
}
