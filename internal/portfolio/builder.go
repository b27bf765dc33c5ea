// Package portfolio orchestrates per-wallet PnL reconstruction: transaction
// history is turned into swap events, replayed through a FIFO cost-basis
// ledger, and reported against a live holdings and price snapshot.
package portfolio

import (
	"context"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/pricing"
)

// Builder replays swap events into a cost-basis ledger.
type Builder struct {
	resolver *pricing.Resolver
}

// NewBuilder creates a builder over the valuation resolver.
func NewBuilder(resolver *pricing.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// BuildLedger processes a wallet's swap events, in order, into a fresh
// ledger. Each event leaves the ledger consistent, so a caller may abandon
// processing between events without corrupting state.
func (b *Builder) BuildLedger(ctx context.Context, events []*domain.SwapEvent) *ledger.CostBasis {
	basis := ledger.New()
	for _, ev := range events {
		b.applyEvent(ctx, basis, ev)
	}
	return basis
}

// applyEvent applies one swap event to the ledger. The order matters:
// inputs are sold first (realizing PnL on what is given up), then the
// inputs' USD value is distributed across the outputs as their cost basis.
func (b *Builder) applyEvent(ctx context.Context, basis *ledger.CostBasis, ev *domain.SwapEvent) {
	var inputs, outputs []domain.TokenDelta
	for _, d := range ev.Deltas {
		switch {
		case d.Amount < 0:
			inputs = append(inputs, d)
		case d.Amount > 0:
			outputs = append(outputs, d)
		}
	}

	rawPrices := b.resolver.ResolveEvent(ctx, ev)
	prices := make(map[string]decimal.Decimal, len(rawPrices))
	for mint, p := range rawPrices {
		prices[mint] = decimal.NewFromFloat(p)
	}

	totalInUSD := decimal.Zero
	for _, d := range inputs {
		qty := decimal.NewFromFloat(d.Quantity()).Abs()
		totalInUSD = totalInUSD.Add(qty.Mul(prices[d.Mint]))
	}

	totalOutUSD := decimal.Zero
	for _, d := range outputs {
		qty := decimal.NewFromFloat(d.Quantity())
		totalOutUSD = totalOutUSD.Add(qty.Mul(prices[d.Mint]))
	}

	// Sells first: realize PnL on the input legs at their resolved price.
	for _, d := range inputs {
		qty := decimal.NewFromFloat(d.Quantity()).Abs()
		basis.Sell(d.Mint, qty, prices[d.Mint])
	}

	// Outputs acquire the inputs' USD value as cost, split proportionally
	// to each leg's own USD share. With no matched spend (airdrop, fee-only
	// inflow) outputs get no cost basis at all.
	if totalInUSD.GreaterThan(decimal.Zero) && len(outputs) > 0 {
		denom := totalOutUSD
		if denom.IsZero() {
			denom = decimal.NewFromInt(1)
		}
		for _, d := range outputs {
			qty := decimal.NewFromFloat(d.Quantity())
			legUSD := qty.Mul(prices[d.Mint]).Mul(totalInUSD).Div(denom)
			basis.Buy(d.Mint, qty, legUSD)
		}
	}
}
