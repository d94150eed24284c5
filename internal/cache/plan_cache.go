package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/domain"
)

const planKeyPrefix = "portal:service-plan:"

// PlanCache is a read-through cache for service plans kept in Redis.
// Cache failures are logged and treated as misses.
type PlanCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlanCache returns a cache; a nil client disables caching.
func NewPlanCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *PlanCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanCache{client: client, ttl: ttl, logger: logger}
}

// Get returns a cached plan.
func (c *PlanCache) Get(ctx context.Context, id string) (*domain.ServicePlan, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, planKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("plan cache get", zap.String("plan_id", id), zap.Error(err))
		}
		return nil, false
	}
	var plan domain.ServicePlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		c.logger.Warn("plan cache decode", zap.String("plan_id", id), zap.Error(err))
		return nil, false
	}
	return &plan, true
}

// Set stores plan for the configured TTL.
func (c *PlanCache) Set(ctx context.Context, plan *domain.ServicePlan) {
	if c == nil || c.client == nil || plan == nil {
		return
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		c.logger.Warn("plan cache encode", zap.String("plan_id", plan.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, planKey(plan.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("plan cache set", zap.String("plan_id", plan.ID), zap.Error(err))
	}
}

// Invalidate drops a cached plan after it changes.
func (c *PlanCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, planKey(id)).Err(); err != nil {
		c.logger.Warn("plan cache invalidate", zap.String("plan_id", id), zap.Error(err))
	}
}

func planKey(id string) string {
	return planKeyPrefix + id
}
