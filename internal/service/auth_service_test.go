package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(userID uuid.UUID, event string, data any) {
	m.Called(userID, event, data)
}

func newTestAuth(t *testing.T, notifier usecase.Notifier) (*AuthService, *memory.Store, *TokenManager) {
	t.Helper()
	store := memory.NewStore()
	tokens := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewAuthService(store, tokens, DefaultReferralBonus, notifier), store, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, _, tokens := newTestAuth(t, nil)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "eco_user",
		Email:    "Eco@Mail.ru",
		Password: "secret123",
		City:     "Киселевск",
	})
	require.NoError(t, err)
	assert.Equal(t, "eco@mail.ru", res.User.Email)
	assert.Equal(t, "Киселевск", res.User.City)
	assert.Equal(t, 1, res.User.Level)
	assert.NotEmpty(t, res.User.ReferralCode)

	userID, role, err := tokens.ParseAccess(res.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)
	assert.Equal(t, entity.RoleUser, role)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuth(t, nil)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Password: "secret123"}},
		{"bad email", RegisterInput{Username: "eco_user", Email: "nope", Password: "secret123"}},
		{"weak password", RegisterInput{Username: "eco_user", Password: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuth(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "eco_user", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "ECO_USER", Password: "secret123"})
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
}

func TestAuthService_Register_ReferralBonus(t *testing.T) {
	notifier := &mockNotifier{}
	svc, store, _ := newTestAuth(t, notifier)
	ctx := context.Background()

	referrer, err := svc.Register(ctx, RegisterInput{Username: "inviter", Password: "secret123"})
	require.NoError(t, err)

	notifier.On("Notify", referrer.User.ID, usecase.EventPointsChanged, mock.Anything).Once()
	notifier.On("Notify", referrer.User.ID, usecase.EventBadgeEarned, mock.Anything).Maybe()

	invited, err := svc.Register(ctx, RegisterInput{
		Username:     "invited",
		Password:     "secret123",
		ReferralCode: " " + referrer.User.ReferralCode + " ",
	})
	require.NoError(t, err)
	require.NotNil(t, invited.User.ReferredBy)
	assert.Equal(t, referrer.User.ID, *invited.User.ReferredBy)

	updated, err := store.Users().FindByID(ctx, referrer.User.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultReferralBonus, updated.Points)
	assert.Equal(t, DefaultReferralBonus, updated.ReferralPoints)

	sum, err := store.Ledger().SumByUser(ctx, referrer.User.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Points, sum)

	notifier.AssertExpectations(t)
}

func TestAuthService_Register_UnknownReferralRollsBack(t *testing.T) {
	svc, store, _ := newTestAuth(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "invited", Password: "secret123", ReferralCode: "NOPE0000"})
	assert.True(t, apperror.IsValidation(err))

	_, err = store.Users().FindByUsername(ctx, "invited")
	assert.True(t, apperror.IsNotFound(err))
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuth(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Username: "eco_user", Email: "eco@mail.ru", Password: "secret123"})
	require.NoError(t, err)

	byName, err := svc.Login(ctx, LoginInput{Login: "eco_user", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, byName.User.ID)

	byEmail, err := svc.Login(ctx, LoginInput{Login: "ECO@mail.ru", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, byEmail.User.ID)

	_, err = svc.Login(ctx, LoginInput{Login: "eco_user", Password: "wrong123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Login: "ghost", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, _ := newTestAuth(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Username: "eco_user", Password: "secret123"})
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, reg.TokenPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	// access токен подписан другим секретом и не годится для обновления
	_, err = svc.Refresh(ctx, reg.TokenPair.AccessToken)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestTokenManager_RoleFollowsFlags(t *testing.T) {
	tokens := NewTokenManager("a", "r", time.Minute, time.Hour)

	admin := &entity.User{ID: uuid.New(), IsAdmin: true, IsWorker: true}
	pair, err := tokens.GeneratePair(admin)
	require.NoError(t, err)
	_, role, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, role)

	expired := NewTokenManager("a", "r", -time.Minute, time.Hour)
	pair, err = expired.GeneratePair(admin)
	require.NoError(t, err)
	_, _, err = tokens.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
