package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/cache"
	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/user"
)

func create(t *testing.T, store *memory.Store, name string, points int64, admin bool) *entity.User {
	t.Helper()
	u, err := entity.NewUser(name, name+"@eco.test", "hash")
	require.NoError(t, err)
	u.Points = points
	u.IsAdmin = admin
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestRating_OrderedByPoints(t *testing.T) {
	store := memory.NewStore()
	create(t, store, "low", 10, false)
	create(t, store, "high", 900, false)
	create(t, store, "mid", 300, false)

	top, err := user.NewRatingUseCase(store.Users()).Rating(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "high", top[0].Username)
	assert.Equal(t, "mid", top[1].Username)
	assert.Equal(t, "low", top[2].Username)
	assert.Equal(t, 1, top[0].Position)
	assert.Equal(t, int64(900), top[0].Points)
}

type countingLoader struct {
	calls int
	rows  []user.RatingEntry
}

func (l *countingLoader) Rating(context.Context) ([]user.RatingEntry, error) {
	l.calls++
	return l.rows, nil
}

func TestCachedRating_ServesFromCache(t *testing.T) {
	loader := &countingLoader{rows: []user.RatingEntry{{Position: 1, Username: "high", Points: 900}}}
	c := cache.NewMemoryCache(0)
	defer c.Close()

	cached := user.NewCachedRating(loader, c, time.Minute)
	ctx := context.Background()

	first, err := cached.Rating(ctx)
	require.NoError(t, err)
	second, err := cached.Rating(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.calls)
}

func TestToggleRole(t *testing.T) {
	store := memory.NewStore()
	admin := create(t, store, "admin", 0, true)
	target := create(t, store, "target", 0, false)
	uc := user.NewToggleRoleUseCase(store)
	ctx := context.Background()

	_, err := uc.Execute(ctx, admin.ID, admin.ID, user.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	_, err = uc.Execute(ctx, target.ID, admin.ID, user.RoleAdmin)
	assert.True(t, apperror.IsForbidden(err))

	updated, err := uc.Execute(ctx, admin.ID, target.ID, user.RoleWorker)
	require.NoError(t, err)
	assert.True(t, updated.IsWorker)
	assert.Equal(t, entity.RoleWorker, updated.Role())

	updated, err = uc.Execute(ctx, admin.ID, target.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	updated, err = uc.Execute(ctx, admin.ID, target.ID, user.RoleWorker)
	require.NoError(t, err)
	assert.False(t, updated.IsWorker)
}

func TestListUsers_AdminOnly(t *testing.T) {
	store := memory.NewStore()
	admin := create(t, store, "admin", 0, true)
	plain := create(t, store, "plain", 0, false)
	uc := user.NewListUsersUseCase(store.Users())

	_, _, err := uc.Execute(context.Background(), plain.ID, 10, 0)
	assert.True(t, apperror.IsForbidden(err))

	users, total, err := uc.Execute(context.Background(), admin.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, total)
}

func TestUpdateProfile(t *testing.T) {
	store := memory.NewStore()
	u := create(t, store, "alice", 0, false)
	uc := user.NewUpdateProfileUseCase(store)

	lang := "de"
	_, err := uc.Execute(context.Background(), u.ID, user.UpdateProfileInput{Language: &lang})
	assert.True(t, apperror.IsValidation(err))

	city, lang := " Киселевск ", "en"
	updated, err := uc.Execute(context.Background(), u.ID, user.UpdateProfileInput{City: &city, Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "Киселевск", updated.City)
	assert.Equal(t, "en", updated.Language)
}

func TestGetProfile_WithRank(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	first := create(t, store, "first", 500, false)
	tieEarlier := create(t, store, "tie-earlier", 200, false)
	tieLater := create(t, store, "tie-later", 200, false)
	last := create(t, store, "last", 0, false)
	tieLater.CreatedAt = tieEarlier.CreatedAt.Add(time.Second)
	require.NoError(t, store.Users().Update(ctx, tieLater))

	uc := user.NewGetProfileUseCase(store.Users())
	want := map[string]int{first.Username: 1, tieEarlier.Username: 2, tieLater.Username: 3, last.Username: 4}
	for _, u := range []*entity.User{first, tieEarlier, tieLater, last} {
		got, rank, err := uc.WithRank(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, want[u.Username], rank, u.Username)
	}

	// место совпадает с позицией в рейтинге
	top, err := user.NewRatingUseCase(store.Users()).Rating(ctx)
	require.NoError(t, err)
	for _, row := range top {
		assert.Equal(t, want[row.Username], row.Position)
	}

	_, _, err = uc.WithRank(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
