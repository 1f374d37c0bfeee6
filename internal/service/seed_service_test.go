package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
)

func TestSeedService_Idempotent(t *testing.T) {
	store := memory.NewStore()
	svc := NewSeedService(store, "Киселевск", 53.9925, 86.6669, 15)
	ctx := context.Background()

	first, err := svc.Seed(ctx, DefaultSeedAccounts)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user1"}, first.CreatedUsers)
	assert.True(t, first.ProblemSeeded)

	second, err := svc.Seed(ctx, DefaultSeedAccounts)
	require.NoError(t, err)
	assert.Empty(t, second.CreatedUsers)
	assert.False(t, second.ProblemSeeded)

	problems, err := store.Problems().List(ctx, repository.ProblemFilter{})
	require.NoError(t, err)
	assert.Len(t, problems, 1)
}

func TestSeedService_BalanceMatchesLedger(t *testing.T) {
	store := memory.NewStore()
	svc := NewSeedService(store, "Киселевск", 53.9925, 86.6669, 15)
	ctx := context.Background()

	_, err := svc.Seed(ctx, DefaultSeedAccounts)
	require.NoError(t, err)

	admin, err := store.Users().FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, int64(1000), admin.Points)
	assert.Equal(t, "Киселевск", admin.City)

	sum, err := store.Ledger().SumByUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Points, sum)

	auth := NewAuthService(store, NewTokenManager("a", "r", time.Minute, time.Minute), DefaultReferralBonus, nil)
	_, err = auth.Login(ctx, LoginInput{Login: "user1", Password: "user123"})
	assert.NoError(t, err)
}
