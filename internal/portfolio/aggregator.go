package portfolio

import (
	"context"
	"errors"
	"log"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/extract"
	"solana-wallet-pnl/internal/helius"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/storage"
)

// Crawl depth defaults.
const (
	DefaultHistoryPages = 5
	DefaultAssetPages   = 10
)

// ChainSource is the slice of the Helius client the aggregator needs.
type ChainSource interface {
	FetchAllTransactions(ctx context.Context, address string, limit, maxPages int) ([]helius.Transaction, error)
	FetchAllAssets(ctx context.Context, address string, pageSize, maxPages int) ([]helius.Asset, error)
	GetNativeBalance(ctx context.Context, address string) uint64
}

// Aggregator runs the full per-wallet pipeline: crawl history, extract swap
// events, replay them through the ledger, snapshot live holdings and emit a
// report.
type Aggregator struct {
	source    ChainSource
	extractor *extract.Extractor
	resolver  *pricing.Resolver
	builder   *Builder
	legStore  storage.SwapLegStore // optional

	historyPages int
	assetPages   int
	topN         int
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithHistoryPages bounds the transaction history crawl.
func WithHistoryPages(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.historyPages = n
	}
}

// WithAssetPages bounds the holdings crawl.
func WithAssetPages(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.assetPages = n
	}
}

// WithTopN sets how many positions a report lists.
func WithTopN(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.topN = n
	}
}

// WithLegStore makes the aggregator persist extracted swap legs.
// Persistence is best-effort: duplicates from a re-crawl are ignored and
// other failures are logged, never surfaced.
func WithLegStore(store storage.SwapLegStore) AggregatorOption {
	return func(a *Aggregator) {
		a.legStore = store
	}
}

// NewAggregator creates an aggregator over the chain source and resolver.
func NewAggregator(source ChainSource, extractor *extract.Extractor, resolver *pricing.Resolver, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		source:       source,
		extractor:    extractor,
		resolver:     resolver,
		historyPages: DefaultHistoryPages,
		assetPages:   DefaultAssetPages,
		topN:         DefaultTopN,
	}
	a.builder = NewBuilder(resolver)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Events crawls a wallet's history and extracts its swap events in the
// order the crawl returned them.
func (a *Aggregator) Events(ctx context.Context, wallet string) ([]*domain.SwapEvent, error) {
	txs, err := a.source.FetchAllTransactions(ctx, wallet, helius.DefaultTxPageLimit, a.historyPages)
	if err != nil {
		return nil, err
	}
	events := a.extractor.ExtractSwapEvents(txs, wallet)
	a.persistLegs(ctx, events)
	return events, nil
}

// Report builds the full wallet report: replayed PnL plus a live snapshot
// of holdings valued at spot.
func (a *Aggregator) Report(ctx context.Context, wallet string) (*domain.WalletReport, error) {
	events, err := a.Events(ctx, wallet)
	if err != nil {
		return nil, err
	}
	basis := a.builder.BuildLedger(ctx, events)

	assets, err := a.source.FetchAllAssets(ctx, wallet, helius.DefaultAssetPageLimit, a.assetPages)
	if err != nil {
		return nil, err
	}
	holdings := HoldingsFromAssets(assets)
	holdings = EnsureNativeSOL(holdings, a.source.GetNativeBalance(ctx, wallet))

	mints := make([]string, 0, len(holdings))
	for _, h := range holdings {
		mints = append(mints, h.Mint)
	}
	spot := a.resolver.ResolveSpot(ctx, mints)

	return BuildReport(wallet, basis, holdings, spot, a.topN), nil
}

func (a *Aggregator) persistLegs(ctx context.Context, events []*domain.SwapEvent) {
	if a.legStore == nil {
		return
	}
	var legs []*domain.SwapLeg
	for _, ev := range events {
		legs = append(legs, ev.Legs()...)
	}
	if len(legs) == 0 {
		return
	}
	if err := a.legStore.InsertBulk(ctx, legs); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		log.Printf("portfolio: persist %d swap legs: %v", len(legs), err)
	}
}
