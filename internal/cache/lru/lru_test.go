package lru

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

func md(id string) domain.MarketMetadata {
	return domain.MarketMetadata{AssetID: id, Question: "q-" + id, Outcome: "Yes"}
}

func TestCacheGetSet(t *testing.T) {
	c := New(4)
	ctx := context.Background()

	if _, err := c.Get(ctx, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() on empty cache error = %v, want ErrNotFound", err)
	}

	if err := c.Set(ctx, "1", md("1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != md("1") {
		t.Errorf("Get() = %+v, want %+v", got, md("1"))
	}

	// Overwrite keeps a single entry.
	updated := md("1")
	updated.Outcome = "No"
	if err := c.Set(ctx, "1", updated); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.Get(ctx, "1"); got.Outcome != "No" {
		t.Errorf("Get() after overwrite = %+v, want Outcome No", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id := fmt.Sprint(i)
		if err := c.Set(ctx, id, md(id)); err != nil {
			t.Fatalf("Set(%s) error = %v", id, err)
		}
	}

	// Touch "1" so "2" becomes the eviction candidate.
	if _, err := c.Get(ctx, "1"); err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}

	if err := c.Set(ctx, "4", md("4")); err != nil {
		t.Fatalf("Set(4) error = %v", err)
	}

	if _, err := c.Get(ctx, "2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(2) error = %v, want ErrNotFound (evicted)", err)
	}
	for _, id := range []string{"1", "3", "4"} {
		if _, err := c.Get(ctx, id); err != nil {
			t.Errorf("Get(%s) error = %v, want hit", id, err)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
