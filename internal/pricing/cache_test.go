package pricing

import (
	"context"
	"testing"
	"time"

	"solana-wallet-pnl/internal/pricing/stub"
)

func TestMinuteBucket(t *testing.T) {
	cases := []struct {
		tsMs, want int64
	}{
		{0, 0},
		{59_999, 0},
		{60_000, 60_000},
		{1700000030000, 1699999980000},
	}
	for _, c := range cases {
		if got := MinuteBucket(c.tsMs); got != c.want {
			t.Errorf("MinuteBucket(%d) = %d, want %d", c.tsMs, got, c.want)
		}
	}
}

func TestCache_SpotTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewCache()
	c.now = func() time.Time { return now }

	c.SetSpot("bonk", 1.5)

	if price, ok := c.Spot("bonk"); !ok || price != 1.5 {
		t.Errorf("expected fresh hit 1.5, got %f ok=%v", price, ok)
	}

	now = now.Add(DefaultSpotTTL)
	if _, ok := c.Spot("bonk"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestCache_HistoricalCachesZero(t *testing.T) {
	c := NewCache()

	if _, ok := c.Historical("bonk", 60_000); ok {
		t.Error("expected miss on empty cache")
	}

	// A zero price is a valid cached outcome: unpriceable mints are not
	// re-queried for the same bucket.
	c.SetHistorical("bonk", 60_000, 0)
	if price, ok := c.Historical("bonk", 60_000); !ok || price != 0 {
		t.Errorf("expected cached zero, got %f ok=%v", price, ok)
	}
}

func TestCachedOracle_HistoricalSharesBucket(t *testing.T) {
	inner := stub.NewOracle()
	inner.HistoricalPrices["bonk"] = 3.0
	o := NewCachedOracle(inner, NewCache())
	ctx := context.Background()

	// Two instants in the same minute share one lookup.
	if p := o.Historical(ctx, "bonk", 1700000001000); p != 3.0 {
		t.Errorf("expected 3.0, got %f", p)
	}
	if p := o.Historical(ctx, "bonk", 1700000002000); p != 3.0 {
		t.Errorf("expected 3.0, got %f", p)
	}
	if calls := inner.HistoricalCalls("bonk"); calls != 1 {
		t.Errorf("expected 1 inner lookup, got %d", calls)
	}

	// A different minute triggers a new lookup.
	o.Historical(ctx, "bonk", 1700000061000)
	if calls := inner.HistoricalCalls("bonk"); calls != 2 {
		t.Errorf("expected 2 inner lookups, got %d", calls)
	}
}

func TestCachedOracle_Spot(t *testing.T) {
	inner := stub.NewOracle()
	inner.SpotPrices["bonk"] = 0.75
	o := NewCachedOracle(inner, NewCache())
	ctx := context.Background()

	o.Spot(ctx, "bonk")
	o.Spot(ctx, "bonk")

	if calls := inner.SpotCalls("bonk"); calls != 1 {
		t.Errorf("expected 1 inner spot call, got %d", calls)
	}
}
