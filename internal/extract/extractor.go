// Package extract derives per-wallet token deltas from raw Helius
// transaction records. Heterogeneous record shapes are handled by an
// ordered list of extraction strategies: the first strategy that yields
// any deltas wins for that transaction, with no merging across strategies.
package extract

import (
	"strconv"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/helius"
)

// Strategy extracts token deltas from one transaction for a wallet.
// A nil or empty result means the strategy does not apply.
type Strategy interface {
	// Extract returns the wallet's signed deltas for the transaction.
	Extract(tx *helius.Transaction, wallet string) []domain.TokenDelta

	// Name returns the strategy identifier.
	Name() string
}

// Extractor runs extraction strategies in registration order.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an extractor with the default strategies registered:
// structured swap annotations first, generic transfer scan as fallback.
func NewExtractor() *Extractor {
	e := &Extractor{}
	e.Register(&SwapAnnotationStrategy{})
	e.Register(&TokenTransferStrategy{})
	return e
}

// Register appends a strategy. Order of registration is order of priority.
func (e *Extractor) Register(s Strategy) {
	e.strategies = append(e.strategies, s)
}

// ExtractEvent turns one transaction into a swap event, or nil when no
// strategy yields a delta.
func (e *Extractor) ExtractEvent(tx *helius.Transaction, wallet string) *domain.SwapEvent {
	if tx == nil {
		return nil
	}
	for _, s := range e.strategies {
		deltas := s.Extract(tx, wallet)
		if len(deltas) == 0 {
			continue
		}
		return &domain.SwapEvent{
			Wallet:      wallet,
			TxSignature: tx.Signature,
			Timestamp:   txTimestampMs(tx),
			Deltas:      deltas,
		}
	}
	return nil
}

// ExtractSwapEvents maps a transaction history into swap events, preserving
// input order. Transactions without extractable deltas are dropped.
func (e *Extractor) ExtractSwapEvents(txs []helius.Transaction, wallet string) []*domain.SwapEvent {
	var events []*domain.SwapEvent
	for i := range txs {
		if ev := e.ExtractEvent(&txs[i], wallet); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

// txTimestampMs resolves the transaction instant in milliseconds, preferring
// the enhanced timestamp field and falling back to blockTime.
func txTimestampMs(tx *helius.Transaction) int64 {
	ts := tx.Timestamp
	if ts == 0 {
		ts = tx.BlockTime
	}
	return ts * 1000
}

// SwapAnnotationStrategy reads the structured events.swap annotation:
// every input token yields a negated delta, every output token a positive
// one. Raw smallest-unit amounts are preferred; the normalized display
// amount is the fallback when no raw descriptor resolves.
type SwapAnnotationStrategy struct{}

// Name returns the strategy identifier.
func (s *SwapAnnotationStrategy) Name() string { return "swap_annotation" }

// Extract implements Strategy.
func (s *SwapAnnotationStrategy) Extract(tx *helius.Transaction, wallet string) []domain.TokenDelta {
	if tx.Events == nil || len(tx.Events.Swap) == 0 {
		return nil
	}

	var deltas []domain.TokenDelta
	for _, ev := range tx.Events.Swap {
		for _, in := range ev.TokenInputs {
			if d, ok := swapTokenDelta(in); ok {
				d.Amount = -d.Amount
				deltas = append(deltas, d)
			}
		}
		for _, out := range ev.TokenOutputs {
			if d, ok := swapTokenDelta(out); ok {
				deltas = append(deltas, d)
			}
		}
	}
	return deltas
}

// swapTokenDelta maps one annotation leg to an unsigned delta.
// Legs without a mint are skipped.
func swapTokenDelta(leg helius.SwapToken) (domain.TokenDelta, bool) {
	if leg.Mint == "" {
		return domain.TokenDelta{}, false
	}

	amount := leg.TokenAmount
	decimals := leg.Decimals
	if leg.RawTokenAmount != nil {
		if raw, err := strconv.ParseFloat(leg.RawTokenAmount.TokenAmount, 64); err == nil {
			amount = raw
		}
		decimals = leg.RawTokenAmount.Decimals
	}

	return domain.TokenDelta{Mint: leg.Mint, Amount: amount, Decimals: decimals}, true
}

// TokenTransferStrategy scans the flat tokenTransfers list and attributes
// direction by comparing the transfer endpoints with the wallet address.
// Transfers touching neither endpoint, or missing a mint or amount, are
// skipped.
type TokenTransferStrategy struct{}

// Name returns the strategy identifier.
func (s *TokenTransferStrategy) Name() string { return "token_transfer" }

// Extract implements Strategy.
func (s *TokenTransferStrategy) Extract(tx *helius.Transaction, wallet string) []domain.TokenDelta {
	var deltas []domain.TokenDelta
	for _, tr := range tx.TokenTransfers {
		recv := tr.ToUserAccount == wallet
		send := tr.FromUserAccount == wallet
		if !recv && !send {
			continue
		}

		mint := tr.Mint
		if mint == "" {
			mint = tr.TokenAddress
		}
		amount := tr.TokenAmount
		if amount == 0 {
			amount = tr.Amount
		}
		if mint == "" || amount == 0 {
			continue
		}

		if send {
			amount = -amount
		}
		deltas = append(deltas, domain.TokenDelta{Mint: mint, Amount: amount, Decimals: tr.Decimals})
	}
	return deltas
}
