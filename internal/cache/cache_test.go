package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryHitMiss(t *testing.T) {
	c := NewMemory(10, time.Hour, nil)
	ctx := context.Background()

	if _, ok := c.Get(ctx, 1, 2); ok {
		t.Fatal("hit on empty cache")
	}

	c.Set(ctx, 1, 2, "ciao")
	got, ok := c.Get(ctx, 1, 2)
	if !ok || got != "ciao" {
		t.Fatalf("Get = (%q, %v), want (ciao, true)", got, ok)
	}

	// Different shop for the same user is a different key.
	if _, ok := c.Get(ctx, 1, 3); ok {
		t.Error("hit for a different shop")
	}
}

func TestMemoryWriteOnce(t *testing.T) {
	c := NewMemory(10, time.Hour, nil)
	ctx := context.Background()

	c.Set(ctx, 1, 2, "prima")
	c.Set(ctx, 1, 2, "seconda")

	got, _ := c.Get(ctx, 1, 2)
	if got != "prima" {
		t.Errorf("Get = %q, want the original text", got)
	}
}

func TestMemoryRejectsEmptyText(t *testing.T) {
	c := NewMemory(10, time.Hour, nil)
	ctx := context.Background()

	c.Set(ctx, 1, 2, "")
	if _, ok := c.Get(ctx, 1, 2); ok {
		t.Error("empty text was cached")
	}
}

func TestMemoryCapacityEviction(t *testing.T) {
	evicted := 0
	c := NewMemory(2, time.Hour, func() { evicted++ })
	ctx := context.Background()

	c.Set(ctx, 1, 1, "a")
	c.Set(ctx, 1, 2, "b")
	c.Get(ctx, 1, 1) // refresh recency: 1:1 is now the most recent
	c.Set(ctx, 1, 3, "c")

	if _, ok := c.Get(ctx, 1, 2); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get(ctx, 1, 1); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get(ctx, 1, 3); !ok {
		t.Error("newest entry was evicted")
	}
	if evicted != 1 {
		t.Errorf("eviction callbacks = %d, want 1", evicted)
	}
	if c.Evictions() != 1 {
		t.Errorf("Evictions() = %d, want 1", c.Evictions())
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(10, 10*time.Millisecond, nil)
	ctx := context.Background()

	c.Set(ctx, 1, 2, "ciao")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(ctx, 1, 2); ok {
		t.Error("expired entry still served")
	}
}

func TestMemorySetReplacesExpiredEntry(t *testing.T) {
	c := NewMemory(10, 10*time.Millisecond, nil)
	ctx := context.Background()

	c.Set(ctx, 1, 2, "vecchio")
	time.Sleep(25 * time.Millisecond)

	c.Set(ctx, 1, 2, "nuovo")
	got, ok := c.Get(ctx, 1, 2)
	if !ok {
		t.Fatal("miss after re-set of an expired key")
	}
	if got != "nuovo" {
		t.Errorf("Get = %q, want the fresh text", got)
	}
}

func TestMemoryStats(t *testing.T) {
	c := NewMemory(5, time.Hour, nil)
	ctx := context.Background()
	c.Set(ctx, 1, 1, "a")
	c.Set(ctx, 1, 2, "b")

	stats := c.Stats()
	if stats["total_keys"] != 2 {
		t.Errorf("total_keys = %v, want 2", stats["total_keys"])
	}
	if stats["capacity"] != 5 {
		t.Errorf("capacity = %v, want 5", stats["capacity"])
	}
}

// fakeShared is an in-memory stand-in for the Redis layer.
type fakeShared struct {
	data map[string]string
	sets int
}

func (f *fakeShared) Get(_ context.Context, userID, shopID int) (string, bool) {
	v, ok := f.data[Key(userID, shopID)]
	return v, ok
}

func (f *fakeShared) Set(_ context.Context, userID, shopID int, text string) {
	f.sets++
	if _, ok := f.data[Key(userID, shopID)]; !ok {
		f.data[Key(userID, shopID)] = text
	}
}

func (f *fakeShared) Stats() map[string]any {
	return map[string]any{"backend": "fake"}
}

func TestLayeredReadThroughAndBackfill(t *testing.T) {
	local := NewMemory(10, time.Hour, nil)
	shared := &fakeShared{data: map[string]string{Key(1, 2): "dal layer condiviso"}}
	c := NewLayered(local, shared)
	ctx := context.Background()

	got, ok := c.Get(ctx, 1, 2)
	if !ok || got != "dal layer condiviso" {
		t.Fatalf("Get = (%q, %v), want shared-layer hit", got, ok)
	}

	// The hit must be backfilled into the local layer.
	if localGot, ok := local.Get(ctx, 1, 2); !ok || localGot != got {
		t.Error("shared hit not backfilled locally")
	}
}

func TestLayeredWritesBothLayers(t *testing.T) {
	local := NewMemory(10, time.Hour, nil)
	shared := &fakeShared{data: map[string]string{}}
	c := NewLayered(local, shared)
	ctx := context.Background()

	c.Set(ctx, 3, 4, "ovunque")
	if _, ok := local.Get(ctx, 3, 4); !ok {
		t.Error("not written locally")
	}
	if _, ok := shared.Get(ctx, 3, 4); !ok {
		t.Error("not written to shared layer")
	}
}

func TestLayeredWithoutSharedLayer(t *testing.T) {
	local := NewMemory(10, time.Hour, nil)
	c := NewLayered(local, nil)
	ctx := context.Background()

	c.Set(ctx, 1, 2, "solo locale")
	got, ok := c.Get(ctx, 1, 2)
	if !ok || got != "solo locale" {
		t.Errorf("Get = (%q, %v), want local hit", got, ok)
	}
	if _, ok := c.Get(ctx, 9, 9); ok {
		t.Error("phantom hit with nil shared layer")
	}
}
