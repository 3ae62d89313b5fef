package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/polymirror/internal/cache/lru"
	"github.com/alanyoungcy/polymirror/internal/domain"
)

type fakeLookup struct {
	md    domain.MarketMetadata
	err   error
	calls int
}

func (f *fakeLookup) GetMarketByToken(_ context.Context, assetID string) (domain.MarketMetadata, error) {
	f.calls++
	if f.err != nil {
		return domain.MarketMetadata{}, f.err
	}
	md := f.md
	md.AssetID = assetID
	return md, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolverCachesSuccessfulLookups(t *testing.T) {
	lookup := &fakeLookup{md: domain.MarketMetadata{Question: "Will it rain?", Outcome: "Yes"}}
	r := NewMetadataResolver(lookup, lru.New(10), discardLogger())

	ctx := context.Background()
	first := r.Resolve(ctx, "77")
	if first.Question != "Will it rain?" || first.Outcome != "Yes" {
		t.Fatalf("Resolve() = %+v, want lookup result", first)
	}

	second := r.Resolve(ctx, "77")
	if second != first {
		t.Errorf("second Resolve() = %+v, want cached %+v", second, first)
	}
	if lookup.calls != 1 {
		t.Errorf("lookup calls = %d, want 1 (second hit served from cache)", lookup.calls)
	}
}

func TestResolverFailureReturnsSentinelAndIsNotCached(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("gamma down")}
	cache := lru.New(10)
	r := NewMetadataResolver(lookup, cache, discardLogger())

	ctx := context.Background()
	got := r.Resolve(ctx, "42")
	if want := domain.UnknownMarket("42"); got != want {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}
	if _, err := cache.Get(ctx, "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("sentinel metadata was cached; failures must stay uncached")
	}

	// The lookup recovers; the next resolve must retry and succeed.
	lookup.err = nil
	lookup.md = domain.MarketMetadata{Question: "Will it rain?", Outcome: "No"}
	got = r.Resolve(ctx, "42")
	if got.Question != "Will it rain?" {
		t.Errorf("Resolve() after recovery = %+v, want fresh lookup result", got)
	}
	if lookup.calls != 2 {
		t.Errorf("lookup calls = %d, want 2", lookup.calls)
	}
}
