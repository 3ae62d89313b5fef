package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Market text never changes once created, so the TTL exists only to bound
// memory, not to refresh content.
const defaultMetadataTTL = 24 * time.Hour

// MetadataCache implements domain.MetadataCache on Redis with JSON-serialized
// metadata values.
//
// Key schema:
//
//	meta:{assetID} - string value containing JSON
type MetadataCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMetadataCache creates a MetadataCache backed by the given Client. A
// non-positive ttl falls back to the default.
func NewMetadataCache(c *Client, ttl time.Duration) *MetadataCache {
	if ttl <= 0 {
		ttl = defaultMetadataTTL
	}
	return &MetadataCache{rdb: c.Underlying(), ttl: ttl}
}

func metadataKey(assetID string) string { return "meta:" + assetID }

// Get retrieves cached metadata by asset id.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MetadataCache) Get(ctx context.Context, assetID string) (domain.MarketMetadata, error) {
	data, err := mc.rdb.Get(ctx, metadataKey(assetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketMetadata{}, domain.ErrNotFound
		}
		return domain.MarketMetadata{}, fmt.Errorf("redis: get metadata %s: %w", assetID, err)
	}

	var md domain.MarketMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return domain.MarketMetadata{}, fmt.Errorf("redis: unmarshal metadata %s: %w", assetID, err)
	}
	return md, nil
}

// Set stores metadata for assetID with the cache TTL.
func (mc *MetadataCache) Set(ctx context.Context, assetID string, md domain.MarketMetadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("redis: marshal metadata %s: %w", assetID, err)
	}
	if err := mc.rdb.Set(ctx, metadataKey(assetID), data, mc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set metadata %s: %w", assetID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MetadataCache = (*MetadataCache)(nil)
