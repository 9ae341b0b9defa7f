package assessment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
)

const scoreCacheKeyPrefix = "risk:customer:"

// ScoreCache answers "what is this customer's latest risk" without a store
// round trip. Entity scoring fans out one lookup per associate, so the cache
// sits in front of the assessment store; the store stays the source of truth
// and every miss or cache error falls through to it.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache wraps a redis client. Returns nil when the client is nil
// (Redis not configured); a nil *ScoreCache is safe to use and always misses.
func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	if client == nil {
		return nil
	}
	return &ScoreCache{client: client, ttl: ttl}
}

type cachedScore struct {
	Score int    `json:"score"`
	Band  string `json:"band"`
}

// Get returns the cached risk and whether it was present. Errors degrade to a
// miss: the caller re-reads the store either way.
func (c *ScoreCache) Get(ctx context.Context, customerID id.CustomerID) (scoring.AssociateRisk, bool) {
	if c == nil {
		return scoring.AssociateRisk{}, false
	}
	raw, err := c.client.Get(ctx, scoreCacheKeyPrefix+customerID.String()).Bytes()
	if err != nil {
		// redis.Nil and transport errors both read as a miss.
		return scoring.AssociateRisk{}, false
	}
	var cached cachedScore
	if err := json.Unmarshal(raw, &cached); err != nil {
		return scoring.AssociateRisk{}, false
	}
	return scoring.AssociateRisk{
		Score: cached.Score,
		Band:  scoring.Category(cached.Band),
	}, true
}

// Set stores the latest risk for a customer. Best-effort: cache write
// failures are invisible to callers.
func (c *ScoreCache) Set(ctx context.Context, customerID id.CustomerID, risk scoring.AssociateRisk) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(cachedScore{Score: risk.Score, Band: string(risk.Band)})
	if err != nil {
		return
	}
	c.client.Set(ctx, scoreCacheKeyPrefix+customerID.String(), raw, c.ttl)
}
