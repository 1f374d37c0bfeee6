package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecopulse/ecopulse-backend/internal/achievement"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/ledger"
	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
	"github.com/ecopulse/ecopulse-backend/internal/validation"
)

// DefaultReferralBonus - бонус пригласившему за регистрацию по его коду.
const DefaultReferralBonus int64 = 50

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	store         repository.Transactor
	tokenManager  *TokenManager
	notifier      usecase.Notifier
	referralBonus int64
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	City         string
	ReferralCode string
}

// LoginInput содержит данные для входа. Login - имя пользователя или email.
type LoginInput struct {
	Login    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *entity.User
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(store repository.Transactor, tokenManager *TokenManager, referralBonus int64, notifier usecase.Notifier) *AuthService {
	return &AuthService{
		store:         store,
		tokenManager:  tokenManager,
		notifier:      usecase.OrNop(notifier),
		referralBonus: referralBonus,
	}
}

// Register создаёт пользователя и начисляет бонус пригласившему.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCity(in.City); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user, err := entity.NewUser(in.Username, in.Email, string(passHash))
	if err != nil {
		return nil, err
	}
	if city := strings.TrimSpace(in.City); city != "" {
		user.City = city
	}

	var referrer *entity.User
	var referrerBadges []entity.Badge
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().FindByUsername(ctx, user.Username); err == nil {
			return apperror.New(apperror.ErrCodeConflict, "пользователь с таким именем уже существует")
		} else if !apperror.IsNotFound(err) {
			return err
		}
		if user.Email != "" {
			if _, err := tx.Users().FindByEmail(ctx, user.Email); err == nil {
				return apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
			} else if !apperror.IsNotFound(err) {
				return err
			}
		}

		code := strings.ToUpper(strings.TrimSpace(in.ReferralCode))
		if code != "" {
			found, err := tx.Users().FindByReferralCode(ctx, code)
			if apperror.IsNotFound(err) {
				return apperror.New(apperror.ErrCodeValidation, "неверный реферальный код")
			}
			if err != nil {
				return err
			}
			referrer, err = tx.Users().FindByIDForUpdate(ctx, found.ID)
			if err != nil {
				return err
			}
			user.ReferredBy = &referrer.ID
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if referrer == nil {
			return nil
		}

		if _, err := ledger.Post(ctx, tx, referrer, s.referralBonus, valueobject.ReasonReferralBonus, &user.ID); err != nil {
			return err
		}
		referrer.ReferralPoints += s.referralBonus
		referrerBadges = achievement.Apply(referrer, time.Now())
		return tx.Users().Update(ctx, referrer)
	})
	if err != nil {
		return nil, err
	}

	if referrer != nil {
		s.notifier.Notify(referrer.ID, usecase.EventPointsChanged, map[string]int64{"delta": s.referralBonus, "balance": referrer.Points})
		for _, b := range referrerBadges {
			s.notifier.Notify(referrer.ID, usecase.EventBadgeEarned, b)
		}
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.Users().FindByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.store.Users().FindByUsername(ctx, login)
	}
	if apperror.IsNotFound(err) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.WithComponent("auth").WithField("user_id", user.ID).Info("неудачная попытка входа")
		return nil, apperror.ErrInvalidCredentials
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "недействительный refresh токен")
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil, apperror.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Me возвращает текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.store.Users().FindByID(ctx, userID)
}
