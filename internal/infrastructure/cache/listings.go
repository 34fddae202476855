// Package cache holds the Redis-backed listings cache. The cache is a read
// optimization for the list endpoint only; every write path invalidates it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"swapshop-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const listKey = "listings:all"
const listTTL = time.Minute

// ListingCache caches the full listings collection. A nil client (Redis not
// configured) degrades to a pass-through: every read misses, writes no-op.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

// GetAll returns the cached collection and whether it was present. Redis
// errors count as misses.
func (c *ListingCache) GetAll(ctx context.Context) ([]domain.Listing, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("cache: listings read failed")
		}
		return nil, false
	}
	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false
	}
	return listings, true
}

// SetAll stores the collection with a short TTL.
func (c *ListingCache) SetAll(ctx context.Context, listings []domain.Listing) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey, data, listTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("cache: listings write failed")
	}
}

// Invalidate drops the cached collection after any listing mutation.
func (c *ListingCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		log.Warn().Err(err).Msg("cache: listings invalidate failed")
	}
}
