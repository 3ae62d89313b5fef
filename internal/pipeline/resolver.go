package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// MarketLookup resolves market metadata from the Gamma API.
type MarketLookup interface {
	GetMarketByToken(ctx context.Context, assetID string) (domain.MarketMetadata, error)
}

// MetadataResolver is a read-through cache in front of the external metadata
// lookup. Lookup failures degrade to sentinel metadata and are never cached,
// so the next occurrence of the same asset id retries the lookup.
type MetadataResolver struct {
	lookup MarketLookup
	cache  domain.MetadataCache
	logger *slog.Logger
}

// NewMetadataResolver creates a MetadataResolver.
func NewMetadataResolver(lookup MarketLookup, cache domain.MetadataCache, logger *slog.Logger) *MetadataResolver {
	return &MetadataResolver{
		lookup: lookup,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns metadata for the given asset id. It never fails: on any
// cache or lookup problem the caller gets the "Unknown Market" sentinel, so
// metadata unavailability cannot block trade recording.
func (r *MetadataResolver) Resolve(ctx context.Context, assetID string) domain.MarketMetadata {
	md, err := r.cache.Get(ctx, assetID)
	if err == nil {
		return md
	}
	if !errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("resolver: cache read failed",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}

	md, err = r.lookup.GetMarketByToken(ctx, assetID)
	if err != nil {
		r.logger.Warn("resolver: metadata lookup failed",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
		return domain.UnknownMarket(assetID)
	}

	if err := r.cache.Set(ctx, assetID, md); err != nil {
		r.logger.Warn("resolver: cache write failed",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}
	return md
}
