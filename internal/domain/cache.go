package domain

import "context"

// MetadataCache is a bounded read-through cache for market metadata keyed by
// outcome-token asset id. Implementations: in-process LRU and Redis.
type MetadataCache interface {
	// Get returns the cached metadata for assetID. It returns ErrNotFound
	// when the entry is absent (including after eviction).
	Get(ctx context.Context, assetID string) (MarketMetadata, error)

	// Set stores metadata for assetID, evicting older entries as needed to
	// honor the implementation's capacity bound.
	Set(ctx context.Context, assetID string, md MarketMetadata) error
}
