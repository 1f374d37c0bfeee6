package sensor

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ecopulse/ecopulse-backend/internal/cache"
	"github.com/ecopulse/ecopulse-backend/internal/logger"
)

// Source - источник живых показаний.
type Source interface {
	Fetch(ctx context.Context, lat, lng float64) ([]Reading, error)
}

// Provider кэширует живые показания по координатам и подменяет их
// случайными значениями при любой ошибке источника.
type Provider struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewProvider(source Source, c cache.Cache, ttl time.Duration) *Provider {
	return &Provider{
		source: source,
		cache:  c,
		ttl:    ttl,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *Provider) Readings(ctx context.Context, lat, lng float64) []Reading {
	key := fmt.Sprintf("sensors:%.3f:%.3f", lat, lng)
	readings, err := cache.GetOrSet(ctx, p.cache, key, p.ttl, func(ctx context.Context) ([]Reading, error) {
		return p.source.Fetch(ctx, lat, lng)
	})
	if err == nil {
		return readings
	}

	logger.WithComponent("sensor").WithError(err).Warn("sensor: источник недоступен, отдаём тестовые данные")
	return p.mock(lat, lng)
}

// mock генерирует пять датчиков: чётные - температура 15..30, нечётные - влажность 40..80.
func (p *Provider) mock(lat, lng float64) []Reading {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	readings := make([]Reading, 0, 5)
	for i := 1; i <= 5; i++ {
		r := Reading{SensorID: fmt.Sprintf("SENS-%03d", i), Timestamp: now}
		if i%2 == 0 {
			r.SensorType = TypeTemperature
			r.Value = round1(15 + p.rng.Float64()*15)
		} else {
			r.SensorType = TypeSoilMoisture
			r.Value = round1(40 + p.rng.Float64()*40)
		}
		r.Lat = lat + (p.rng.Float64()*0.04 - 0.02)
		r.Lng = lng + (p.rng.Float64()*0.04 - 0.02)
		readings = append(readings, r)
	}
	return readings
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
