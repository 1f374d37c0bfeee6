package vote_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/vote"
)

func setup(t *testing.T, voters int) (*memory.Store, *entity.Problem, []*entity.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	users := make([]*entity.User, voters)
	for i := range users {
		u, err := entity.NewUser("voter-"+uuid.NewString()[:8], "", "hash")
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(ctx, u))
		users[i] = u
	}

	p, err := entity.NewProblem(users[0].ID, "Сломанная скамейка", "", valueobject.Coordinates{Lat: 53.99, Lng: 86.66},
		valueobject.CategoryDamage, valueobject.DefaultSeverity, 15, nil)
	require.NoError(t, err)
	require.NoError(t, store.Problems().Create(ctx, p))
	return store, p, users
}

func TestVote_ToggleSequence(t *testing.T) {
	store, p, users := setup(t, 1)
	d := users[0]
	uc := vote.NewVoteUseCase(store)
	ctx := context.Background()

	st, err := uc.Execute(ctx, p.ID, d.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Likes)
	require.NotNil(t, st.UserVote)
	assert.Equal(t, valueobject.VoteLike, *st.UserVote)

	st, err = uc.Execute(ctx, p.ID, d.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Likes)
	assert.Nil(t, st.UserVote)

	st, err = uc.Execute(ctx, p.ID, d.ID, "dislike")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Likes)
	assert.Equal(t, 1, st.Dislikes)

	st, err = uc.Execute(ctx, p.ID, d.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Likes)
	assert.Equal(t, 0, st.Dislikes)

	voter, err := store.Users().FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voter.TotalLikesGiven)
}

func TestVote_CountersMatchPersistedVotes(t *testing.T) {
	store, p, users := setup(t, 5)
	uc := vote.NewVoteUseCase(store)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	types := []string{"like", "dislike"}

	for i := 0; i < 200; i++ {
		u := users[rng.Intn(len(users))]
		_, err := uc.Execute(ctx, p.ID, u.ID, types[rng.Intn(2)])
		require.NoError(t, err)
	}

	stored, err := store.Problems().FindByID(ctx, p.ID)
	require.NoError(t, err)
	likes, err := store.Votes().CountByType(ctx, p.ID, valueobject.VoteLike)
	require.NoError(t, err)
	dislikes, err := store.Votes().CountByType(ctx, p.ID, valueobject.VoteDislike)
	require.NoError(t, err)

	assert.Equal(t, likes, stored.Likes)
	assert.Equal(t, dislikes, stored.Dislikes)
}

func TestVote_Errors(t *testing.T) {
	store, p, users := setup(t, 1)
	uc := vote.NewVoteUseCase(store)

	_, err := uc.Execute(context.Background(), p.ID, users[0].ID, "love")
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), uuid.New(), users[0].ID, "like")
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetVoteStatus(t *testing.T) {
	store, p, users := setup(t, 2)
	ctx := context.Background()

	_, err := vote.NewVoteUseCase(store).Execute(ctx, p.ID, users[0].ID, "dislike")
	require.NoError(t, err)

	uc := vote.NewGetVoteStatusUseCase(store)
	st, err := uc.Execute(ctx, p.ID, users[0].ID)
	require.NoError(t, err)
	require.NotNil(t, st.UserVote)
	assert.Equal(t, valueobject.VoteDislike, *st.UserVote)
	assert.Equal(t, 1, st.Dislikes)

	st, err = uc.Execute(ctx, p.ID, users[1].ID)
	require.NoError(t, err)
	assert.Nil(t, st.UserVote)
	assert.Equal(t, 1, st.Dislikes)
}
