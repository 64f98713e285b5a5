package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"emitscan/internal/types"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultCache, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	c := New(filepath.Join(t.TempDir(), "scan_cache.json"), ttl)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func sampleResults() []types.AnalysisResult {
	return []types.AnalysisResult{
		{
			Ticker:         "BBCA.JK",
			DisplayName:    "PT Bank Example Tbk",
			Price:          9150,
			Status:         types.StatusWhaleAccumulation,
			Trend:          types.TrendUp,
			VolumeRatio:    2.9,
			SentimentScore: 80,
			Impact:         types.ImpactHigh,
		},
		{Ticker: "TLKM.JK", Status: types.StatusHold, Trend: types.TrendSideways},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 300*time.Second)

	produced := *clock
	if err := c.Save(ctx, sampleResults(), produced); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entry, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected a cache hit immediately after save")
	}
	if len(entry.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(entry.Results))
	}
	if entry.Results[0].Ticker != "BBCA.JK" || entry.Results[0].Status != types.StatusWhaleAccumulation {
		t.Errorf("Round trip altered first result: %+v", entry.Results[0])
	}
	if !entry.ProducedAt.Equal(produced) {
		t.Errorf("Expected produced_at %v, got %v", produced, entry.ProducedAt)
	}
}

func TestLoadExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 300*time.Second)

	if err := c.Save(ctx, sampleResults(), *clock); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	*clock = clock.Add(301 * time.Second)
	entry, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Error("Expected a miss past TTL")
	}
	if _, err := os.Stat(c.path); !os.IsNotExist(err) {
		t.Error("Expected the expired file to be deleted")
	}
}

func TestTouchKeepsEntryAlive(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 300*time.Second)

	if err := c.Save(ctx, sampleResults(), *clock); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Heartbeat at t+200s pushes expiry out to t+500s.
	*clock = clock.Add(200 * time.Second)
	if err := c.Touch(ctx); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	*clock = clock.Add(250 * time.Second)
	entry, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected the touched entry to still be alive")
	}
	if len(entry.Results) != 2 {
		t.Errorf("Touch must not alter results, got %d", len(entry.Results))
	}
}

func TestTouchMissingFile(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 300*time.Second)
	if err := c.Touch(ctx); err != nil {
		t.Errorf("Expected touch on a missing file to be a no-op, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 300*time.Second)

	if err := os.WriteFile(c.path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	entry, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Error("Expected a miss for a corrupt file")
	}
	if _, err := os.Stat(c.path); !os.IsNotExist(err) {
		t.Error("Expected the corrupt file to be deleted")
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 300*time.Second)

	if err := os.WriteFile(c.path, []byte(`{"version":99,"results":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	entry, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Error("Expected a miss for an unknown version")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 300*time.Second)

	if err := c.Save(ctx, sampleResults(), *clock); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entry, _ := c.Load(ctx)
	if entry != nil {
		t.Error("Expected a miss after clear")
	}
	if err := c.Clear(ctx); err != nil {
		t.Errorf("Expected clearing an absent cache to succeed, got %v", err)
	}
}
