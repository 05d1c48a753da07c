package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalyticsCache stores computed aggregation snapshots in Redis so dashboard
// loads don't rescan every collection on each hit. Aggregations stay
// read-time; the cache is a TTL'd snapshot, never incrementally maintained.
type AnalyticsCache interface {
	GetOverview(ctx context.Context, out interface{}) (bool, error)
	SetOverview(ctx context.Context, snapshot interface{}) error
	GetAssessmentSummary(ctx context.Context, assessmentID string, out interface{}) (bool, error)
	SetAssessmentSummary(ctx context.Context, assessmentID string, snapshot interface{}) error
	Invalidate(ctx context.Context, assessmentID string) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache with the given snapshot TTL.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &analyticsCache{client: client, ttl: ttl}
}

func (c *analyticsCache) overviewKey() string {
	return "analytics:overview"
}

func (c *analyticsCache) assessmentKey(assessmentID string) string {
	return fmt.Sprintf("analytics:assessment:%s", assessmentID)
}

func (c *analyticsCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *analyticsCache) set(ctx context.Context, key string, snapshot interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *analyticsCache) GetOverview(ctx context.Context, out interface{}) (bool, error) {
	return c.get(ctx, c.overviewKey(), out)
}

func (c *analyticsCache) SetOverview(ctx context.Context, snapshot interface{}) error {
	return c.set(ctx, c.overviewKey(), snapshot)
}

func (c *analyticsCache) GetAssessmentSummary(ctx context.Context, assessmentID string, out interface{}) (bool, error) {
	return c.get(ctx, c.assessmentKey(assessmentID), out)
}

func (c *analyticsCache) SetAssessmentSummary(ctx context.Context, assessmentID string, snapshot interface{}) error {
	return c.set(ctx, c.assessmentKey(assessmentID), snapshot)
}

func (c *analyticsCache) Invalidate(ctx context.Context, assessmentID string) error {
	return c.client.Del(ctx, c.overviewKey(), c.assessmentKey(assessmentID)).Err()
}
