package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(0)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sensors:1", reading{ID: "TEMP-MAIN", Value: 21.5}, time.Minute))

	var got reading
	found, err := c.Get(ctx, "sensors:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "TEMP-MAIN", got.ID)

	now = now.Add(2 * time.Minute)
	found, err = c.Get(ctx, "sensors:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	c.removeExpired()
	assert.Empty(t, c.entries)
}

func TestMemoryCache_InvalidateByPrefix(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "rating:top", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "sensors:a", 2, time.Minute))

	c.InvalidateByPrefix("rating:")

	var v int
	found, _ := c.Get(ctx, "rating:top", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "sensors:a", &v)
	assert.True(t, found)
}

func TestGetOrSet(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]reading, error) {
		calls++
		return []reading{{ID: "A", Value: 1}}, nil
	}

	first, err := GetOrSet(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrSet(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = GetOrSet(ctx, c, "broken", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	assert.Error(t, err)
	var v int
	found, _ := c.Get(ctx, "broken", &v)
	assert.False(t, found)
}
