package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const latestBusKeyPrefix = "bus:location:latest:"

// cacheTTL bounds staleness if a bus stops reporting.
const cacheTTL = 5 * time.Minute

// Cache keeps the latest bus position in Redis for cheap live-tracking
// reads. All operations are best effort.
type Cache struct {
	client *redis.Client
}

// NewCache wraps a Redis client. A nil client disables caching.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) SetLatestBus(ctx context.Context, loc BusLocation) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, latestBusKeyPrefix+loc.BusID, payload, cacheTTL).Err()
}

// LatestBus returns the cached position and whether the cache held one.
func (c *Cache) LatestBus(ctx context.Context, busID string) (BusLocation, bool) {
	if c == nil || c.client == nil {
		return BusLocation{}, false
	}
	raw, err := c.client.Get(ctx, latestBusKeyPrefix+busID).Bytes()
	if err != nil {
		return BusLocation{}, false
	}
	var loc BusLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return BusLocation{}, false
	}
	return loc, true
}
