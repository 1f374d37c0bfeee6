// Package cache - кэш с TTL: в памяти процесса или в Redis.
package cache

import (
	"context"
	"time"

	"github.com/ecopulse/ecopulse-backend/internal/logger"
)

// Cache хранит значения в JSON. Get возвращает false, если ключа нет или он истёк.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetOrSet читает значение из кэша или вычисляет его через fn и сохраняет.
// Ошибки самого кэша не мешают вернуть вычисленное значение.
func GetOrSet[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.WithComponent("cache").WithError(err).WithField("key", key).Warn("cache: ошибка чтения")
	}
	if found {
		return cached, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.WithComponent("cache").WithError(err).WithField("key", key).Warn("cache: ошибка записи")
	}
	return value, nil
}
