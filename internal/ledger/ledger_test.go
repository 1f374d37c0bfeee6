package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

func TestPost(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u, err := entity.NewUser("walker", "walker@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, u))

	ev, err := Post(ctx, store, u, 100, valueobject.ReasonProblemCompleted, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 100, ev.Delta)
	assert.EqualValues(t, 100, u.Points)

	// нулевое изменение не пишется в журнал
	ev, err = Post(ctx, store, u, 0, valueobject.ReasonProblemCompleted, nil)
	require.NoError(t, err)
	assert.Nil(t, ev)

	_, err = Post(ctx, store, u, -150, valueobject.ReasonShopOrder, nil)
	assert.Equal(t, apperror.ErrCodeInsufficientBalance, apperror.CodeOf(err))
	assert.EqualValues(t, 100, u.Points)

	_, err = Post(ctx, store, u, -30, valueobject.ReasonShopOrder, &u.ID)
	require.NoError(t, err)

	// заказ не может начислять
	_, err = Post(ctx, store, u, 500, valueobject.ReasonShopOrder, nil)
	assert.True(t, apperror.IsValidation(err))
	assert.EqualValues(t, 70, u.Points)

	_, err = Post(ctx, store, u, 5, valueobject.PointReason("gift"), nil)
	assert.True(t, apperror.IsValidation(err))

	sum, err := Balance(ctx, store, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Points, sum)
	assert.EqualValues(t, 70, sum)
}
