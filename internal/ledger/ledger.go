// Package ledger implements FIFO cost-basis accounting for token inventory.
//
// A CostBasis instance tracks acquisition lots per mint and a running
// realized-PnL total. It is price-agnostic: callers feed it already-priced
// buy and sell events, and it never performs I/O.
//
// All quantities and USD amounts use shopspring/decimal, never float64 for
// money. Lots whose remaining quantity falls to the dust threshold are
// evicted so partial sells cannot accumulate residue.
package ledger

import "github.com/shopspring/decimal"

// dustEpsilon is the quantity below which a lot is considered empty.
// Expressed in asset-native human units (1e-12).
var dustEpsilon = decimal.New(1, -12)

// Lot is a not-yet-fully-sold acquisition tranche of one mint.
// Quantity is strictly positive while the lot is queued; CostUSD shrinks
// proportionally with quantity so the per-unit cost stays constant across
// partial sells.
type Lot struct {
	Quantity decimal.Decimal
	CostUSD  decimal.Decimal
}

// CostBasis owns per-mint FIFO lot queues and the realized PnL total.
// One instance per wallet per run; it is not safe for concurrent use.
type CostBasis struct {
	lots     map[string][]*Lot // mint -> lots, oldest first
	realized decimal.Decimal
}

// New creates an empty cost-basis ledger.
func New() *CostBasis {
	return &CostBasis{
		lots:     make(map[string][]*Lot),
		realized: decimal.Zero,
	}
}

// Buy appends a new lot to the mint's queue.
// Non-positive quantity or negative cost is a silent no-op: upstream feeds
// are noisy and a bad record must not poison the ledger.
func (b *CostBasis) Buy(mint string, qty, costUSD decimal.Decimal) {
	if qty.LessThanOrEqual(decimal.Zero) || costUSD.IsNegative() {
		return
	}
	b.lots[mint] = append(b.lots[mint], &Lot{Quantity: qty, CostUSD: costUSD})
}

// Sell matches qty against the mint's lot queue oldest-first and returns the
// realized PnL for this sale (proceeds minus matched cost). The returned
// amount is also added to the running realized total.
//
// Selling more than the available inventory is not an error: the sale is
// clipped to what is held and the excess is dropped.
func (b *CostBasis) Sell(mint string, qty, priceUSD decimal.Decimal) decimal.Decimal {
	if qty.LessThanOrEqual(decimal.Zero) || priceUSD.IsNegative() {
		return decimal.Zero
	}

	queue := b.lots[mint]
	remaining := qty
	realized := decimal.Zero

	for remaining.GreaterThan(dustEpsilon) && len(queue) > 0 {
		lot := queue[0]

		take := remaining
		if lot.Quantity.LessThan(take) {
			take = lot.Quantity
		}

		// Cost of the consumed slice, proportional to the lot's fixed
		// per-unit cost.
		costPart := lot.CostUSD.Mul(take).Div(lot.Quantity)
		proceedsPart := priceUSD.Mul(take)
		realized = realized.Add(proceedsPart.Sub(costPart))

		lot.Quantity = lot.Quantity.Sub(take)
		lot.CostUSD = lot.CostUSD.Sub(costPart)
		remaining = remaining.Sub(take)

		if lot.Quantity.LessThanOrEqual(dustEpsilon) {
			queue = queue[1:]
		}
	}

	b.lots[mint] = queue
	b.realized = b.realized.Add(realized)
	return realized
}

// Realized returns the cumulative realized PnL across all sells.
func (b *CostBasis) Realized() decimal.Decimal {
	return b.realized
}

// Unrealized holds the paper PnL of outstanding lots at a price snapshot.
type Unrealized struct {
	Total  decimal.Decimal
	ByMint map[string]decimal.Decimal
}

// UnrealizedAt values all outstanding lots against the supplied price
// snapshot. Mints absent from the snapshot are priced at zero. Pure read.
func (b *CostBasis) UnrealizedAt(prices map[string]decimal.Decimal) Unrealized {
	u := Unrealized{
		Total:  decimal.Zero,
		ByMint: make(map[string]decimal.Decimal),
	}
	for mint, queue := range b.lots {
		price := prices[mint] // zero value is decimal zero
		mintPnL := decimal.Zero
		for _, lot := range queue {
			mintPnL = mintPnL.Add(price.Mul(lot.Quantity).Sub(lot.CostUSD))
		}
		u.ByMint[mint] = mintPnL
		u.Total = u.Total.Add(mintPnL)
	}
	return u
}

// Lots returns a copy of the mint's outstanding lots, oldest first.
func (b *CostBasis) Lots(mint string) []Lot {
	queue := b.lots[mint]
	out := make([]Lot, len(queue))
	for i, lot := range queue {
		out[i] = *lot
	}
	return out
}
