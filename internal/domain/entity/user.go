package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// ExperiencePerLevel - сколько опыта нужно на один уровень.
const ExperiencePerLevel = 1000

const (
	RoleUser   = "user"
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHash   string
	Points         int64
	Experience     int64
	Level          int
	Badges         Badges
	IsAdmin        bool
	IsWorker       bool
	Avatar         *string
	City           string
	Language       string
	ReferralCode   string
	ReferredBy     *uuid.UUID
	ReferralPoints int64

	TotalReports     int
	TotalCompleted   int
	TotalPointsAdded int
	TotalLikesGiven  int
	TotalComments    int
	TotalPhotos      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "имя пользователя обязательно")
	}
	if passwordHash == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "пароль обязателен")
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Level:        1,
		Badges:       Badges{},
		Language:     "ru",
		ReferralCode: NewReferralCode(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewReferralCode генерирует короткий реферальный код.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Role возвращает роль для токена доступа.
func (u *User) Role() string {
	switch {
	case u.IsAdmin:
		return RoleAdmin
	case u.IsWorker:
		return RoleWorker
	default:
		return RoleUser
	}
}

// AddExperience начисляет опыт и пересчитывает уровень.
func (u *User) AddExperience(amount int64) {
	u.Experience += amount
	u.Level = LevelFor(u.Experience)
	u.UpdatedAt = time.Now()
}

// LevelFor вычисляет уровень по опыту.
func LevelFor(experience int64) int {
	if experience < 0 {
		return 1
	}
	return int(experience/ExperiencePerLevel) + 1
}

// AwardBadge добавляет бейдж, если его ещё нет.
func (u *User) AwardBadge(name, icon string, at time.Time) bool {
	if !u.Badges.Add(Badge{Name: name, Icon: icon, EarnedAt: at}) {
		return false
	}
	u.UpdatedAt = at
	return true
}

// Badge - запись о полученном достижении.
type Badge struct {
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	EarnedAt time.Time `json:"earned_at"`
}

// Badges - упорядоченный список бейджей без повторов по имени.
type Badges []Badge

func (b Badges) Has(name string) bool {
	for _, badge := range b {
		if badge.Name == name {
			return true
		}
	}
	return false
}

// Add дописывает бейдж в конец; возвращает false, если имя уже есть.
func (b *Badges) Add(badge Badge) bool {
	if b.Has(badge.Name) {
		return false
	}
	*b = append(*b, badge)
	return true
}

func (b Badges) Names() []string {
	names := make([]string, len(b))
	for i, badge := range b {
		names[i] = badge.Name
	}
	return names
}
