package pricing

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// Resolver produces one USD price per distinct mint for a swap event or a
// live holdings snapshot. Stable mints are pinned at exactly 1.0 and never
// hit the oracle; every other mint costs at most one oracle call per
// resolution pass.
type Resolver struct {
	stable   StableSet
	oracle   Oracle
	recorder storage.PricePointStore // optional
}

// ResolverOption configures Resolver.
type ResolverOption func(*Resolver)

// WithRecorder makes the resolver persist every fresh oracle observation.
// Recording is best-effort: storage failures are logged, never surfaced.
func WithRecorder(store storage.PricePointStore) ResolverOption {
	return func(r *Resolver) {
		r.recorder = store
	}
}

// NewResolver creates a resolver over the stable set and oracle.
func NewResolver(stable StableSet, oracle Oracle, opts ...ResolverOption) *Resolver {
	r := &Resolver{stable: stable, oracle: oracle}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveEvent returns the USD price for each distinct mint in the event,
// valued at the event's instant. One historical lookup per non-stable mint.
func (r *Resolver) ResolveEvent(ctx context.Context, ev *domain.SwapEvent) map[string]float64 {
	prices := make(map[string]float64)
	var observed []*domain.PricePoint

	for _, d := range ev.Deltas {
		if _, done := prices[d.Mint]; done {
			continue
		}
		if r.stable.Contains(d.Mint) {
			prices[d.Mint] = 1.0
			continue
		}
		price := r.oracle.Historical(ctx, d.Mint, ev.Timestamp)
		prices[d.Mint] = price
		observed = append(observed, &domain.PricePoint{
			Mint:     d.Mint,
			BucketMs: MinuteBucket(ev.Timestamp),
			Price:    price,
			Source:   domain.PriceSourceHistorical,
		})
	}

	r.record(ctx, observed)
	return prices
}

// ResolveSpot returns current USD prices for a list of mints.
func (r *Resolver) ResolveSpot(ctx context.Context, mints []string) map[string]float64 {
	prices := make(map[string]float64, len(mints))
	var observed []*domain.PricePoint
	now := nowMs()

	for _, mint := range mints {
		if _, done := prices[mint]; done {
			continue
		}
		if r.stable.Contains(mint) {
			prices[mint] = 1.0
			continue
		}
		price := r.oracle.Spot(ctx, mint)
		prices[mint] = price
		observed = append(observed, &domain.PricePoint{
			Mint:     mint,
			BucketMs: MinuteBucket(now),
			Price:    price,
			Source:   domain.PriceSourceSpot,
		})
	}

	r.record(ctx, observed)
	return prices
}

// record persists oracle observations when a recorder is configured.
func (r *Resolver) record(ctx context.Context, points []*domain.PricePoint) {
	if r.recorder == nil || len(points) == 0 {
		return
	}
	if err := r.recorder.InsertBulk(ctx, points); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		log.Printf("pricing: record %d price points: %v", len(points), err)
	}
}
