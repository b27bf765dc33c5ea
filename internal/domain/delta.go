package domain

import "math"

// WSOL is the Wrapped SOL mint address. Native SOL balances are reported
// under this mint so they participate in valuation like any SPL token.
const WSOL = "So11111111111111111111111111111111111111112"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// TokenDelta is a signed balance change for one mint within one transaction.
// Amount is in the token's smallest unit; negative means the token left the
// wallet (swap input), positive means it entered (swap output).
type TokenDelta struct {
	Mint     string
	Amount   float64
	Decimals int32
}

// Quantity returns the human-unit quantity (Amount scaled by Decimals).
func (d TokenDelta) Quantity() float64 {
	return d.Amount / math.Pow10(int(d.Decimals))
}

// SwapEvent groups all token deltas observed in one transaction for a wallet.
// A transaction that yields no deltas produces no SwapEvent at all.
type SwapEvent struct {
	Wallet      string
	TxSignature string
	Timestamp   int64 // Unix timestamp in milliseconds
	Deltas      []TokenDelta
}

// SwapLeg is one flattened delta row for persistence and export.
// Corresponds to swap_legs table in PostgreSQL.
type SwapLeg struct {
	Wallet      string
	Mint        string
	TxSignature string
	LegIndex    int   // index of the delta within the transaction
	Timestamp   int64 // Unix timestamp in milliseconds
	Amount      float64
	Decimals    int32
}

// Quantity returns the human-unit quantity of the leg.
func (l SwapLeg) Quantity() float64 {
	return l.Amount / math.Pow10(int(l.Decimals))
}

// Legs flattens the event's deltas into persistable rows.
func (e *SwapEvent) Legs() []*SwapLeg {
	legs := make([]*SwapLeg, 0, len(e.Deltas))
	for i, d := range e.Deltas {
		legs = append(legs, &SwapLeg{
			Wallet:      e.Wallet,
			Mint:        d.Mint,
			TxSignature: e.TxSignature,
			LegIndex:    i,
			Timestamp:   e.Timestamp,
			Amount:      d.Amount,
			Decimals:    d.Decimals,
		})
	}
	return legs
}
