// Package user - профиль, рейтинг и администрирование пользователей.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/cache"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

// RatingSize - сколько пользователей показывается в рейтинге.
const RatingSize = 50

type GetProfileUseCase struct {
	users repository.UserRepository
}

func NewGetProfileUseCase(users repository.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{users: users}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return uc.users.FindByID(ctx, userID)
}

// WithRank возвращает профиль и место пользователя по баллам.
func (uc *GetProfileUseCase) WithRank(ctx context.Context, userID uuid.UUID) (*entity.User, int, error) {
	u, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	rank, err := uc.users.RankByPoints(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return u, rank, nil
}

type UpdateProfileInput struct {
	City     *string
	Language *string
	Avatar   *string
}

var supportedLanguages = map[string]bool{"ru": true, "en": true}

type UpdateProfileUseCase struct {
	store repository.Transactor
}

func NewUpdateProfileUseCase(store repository.Transactor) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{store: store}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error) {
	if input.Language != nil && !supportedLanguages[*input.Language] {
		return nil, apperror.New(apperror.ErrCodeValidation, "неподдерживаемый язык")
	}

	var user *entity.User
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if input.City != nil {
			user.City = strings.TrimSpace(*input.City)
		}
		if input.Language != nil {
			user.Language = *input.Language
		}
		if input.Avatar != nil {
			user.Avatar = input.Avatar
		}
		user.UpdatedAt = time.Now()
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RatingEntry - строка рейтинга. Хранится в кэше, поэтому содержит только публичные поля.
type RatingEntry struct {
	Position int       `json:"position"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar,omitempty"`
	City     string    `json:"city"`
	Points   int64     `json:"points"`
	Level    int       `json:"level"`
	Badges   int       `json:"badges"`
}

// RatingLoader - источник рейтинга; позволяет подставить кэширующую обёртку.
type RatingLoader interface {
	Rating(ctx context.Context) ([]RatingEntry, error)
}

type RatingUseCase struct {
	users repository.UserRepository
}

func NewRatingUseCase(users repository.UserRepository) *RatingUseCase {
	return &RatingUseCase{users: users}
}

func (uc *RatingUseCase) Rating(ctx context.Context) ([]RatingEntry, error) {
	top, err := uc.users.TopByPoints(ctx, RatingSize)
	if err != nil {
		return nil, err
	}
	out := make([]RatingEntry, len(top))
	for i, u := range top {
		out[i] = RatingEntry{
			Position: i + 1,
			ID:       u.ID,
			Username: u.Username,
			Avatar:   u.Avatar,
			City:     u.City,
			Points:   u.Points,
			Level:    u.Level,
			Badges:   len(u.Badges),
		}
	}
	return out, nil
}

// CachedRating кэширует рейтинг на короткое время.
type CachedRating struct {
	next  RatingLoader
	cache cache.Cache
	ttl   time.Duration
}

const ratingCacheKey = "rating:top"

func NewCachedRating(next RatingLoader, c cache.Cache, ttl time.Duration) *CachedRating {
	return &CachedRating{next: next, cache: c, ttl: ttl}
}

func (r *CachedRating) Rating(ctx context.Context) ([]RatingEntry, error) {
	return cache.GetOrSet(ctx, r.cache, ratingCacheKey, r.ttl, r.next.Rating)
}

type ListUsersUseCase struct {
	users repository.UserRepository
}

func NewListUsersUseCase(users repository.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*entity.User, int, error) {
	if _, err := usecase.RequireAdmin(ctx, uc.users, adminID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.users.List(ctx, limit, offset)
}

// Role - переключаемый флаг пользователя.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

type ToggleRoleUseCase struct {
	store repository.Transactor
}

func NewToggleRoleUseCase(store repository.Transactor) *ToggleRoleUseCase {
	return &ToggleRoleUseCase{store: store}
}

// Execute инвертирует флаг роли. Администратор не может менять собственные права администратора.
func (uc *ToggleRoleUseCase) Execute(ctx context.Context, adminID, targetID uuid.UUID, role Role) (*entity.User, error) {
	if role != RoleAdmin && role != RoleWorker {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная роль")
	}
	if role == RoleAdmin && adminID == targetID {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя изменить свои права")
	}

	var target *entity.User
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := usecase.RequireAdmin(ctx, tx.Users(), adminID); err != nil {
			return err
		}
		var err error
		target, err = tx.Users().FindByIDForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		switch role {
		case RoleAdmin:
			target.IsAdmin = !target.IsAdmin
		case RoleWorker:
			target.IsWorker = !target.IsWorker
		}
		target.UpdatedAt = time.Now()
		return tx.Users().Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}
