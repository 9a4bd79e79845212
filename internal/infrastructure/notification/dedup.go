package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// markerTTL keeps fire markers alive comfortably past the day boundary; the
// key embeds the date, so expiry only reclaims memory.
const markerTTL = 24 * time.Hour

// FireGuard decides whether a campaign may fire on a given day
type FireGuard interface {
	FirstFireToday(ctx context.Context, campaignID string, today time.Time) bool
}

// RedisFireGuard deduplicates campaign firings across replicas with a
// per-campaign per-day SETNX marker. It fails open: if Redis is down the
// campaign fires anyway, since a duplicate reminder beats a missed one.
type RedisFireGuard struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFireGuard creates a new RedisFireGuard
func NewRedisFireGuard(client *redis.Client, logger *zap.Logger) *RedisFireGuard {
	return &RedisFireGuard{client: client, logger: logger}
}

// FirstFireToday returns true if this caller claimed today's firing
func (g *RedisFireGuard) FirstFireToday(ctx context.Context, campaignID string, today time.Time) bool {
	key := fmt.Sprintf("campaign:fired:%s:%s", campaignID, today.Format("2006-01-02"))

	claimed, err := g.client.SetNX(ctx, key, 1, markerTTL).Result()
	if err != nil {
		g.logger.Warn("Fire guard unavailable, firing anyway",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return true
	}
	return claimed
}

// AlwaysFireGuard fires every time. Used when Redis is not configured, e.g.
// single-replica development setups.
type AlwaysFireGuard struct{}

// FirstFireToday always returns true
func (AlwaysFireGuard) FirstFireToday(context.Context, string, time.Time) bool {
	return true
}
