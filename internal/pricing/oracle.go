// Package pricing resolves USD prices for token mints: a stable-asset
// shortcut, a Birdeye-backed oracle, an explicit in-memory cache, and the
// per-swap-event valuation resolver.
package pricing

import "context"

// Oracle looks up USD prices for a mint. Both methods are total: a failed
// or unavailable lookup resolves to 0, never an error. Ledger state must
// never see a fault from a price collaborator.
type Oracle interface {
	// Spot returns the current USD price for the mint, or 0.
	Spot(ctx context.Context, mint string) float64

	// Historical returns the USD price closest at or before the instant
	// (Unix milliseconds), or 0.
	Historical(ctx context.Context, mint string, tsMs int64) float64
}

// StableSet is the fixed set of mints pegged to 1 USD and therefore exempt
// from oracle lookups.
type StableSet map[string]struct{}

// Mainnet stable mints used by default.
const (
	USDTMint = "Es9vMFrzaCERD4bYvfhijAbF4dVQVwQ851qw9YJz8F7"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// NewStableSet builds a stable set from mint addresses.
func NewStableSet(mints ...string) StableSet {
	s := make(StableSet, len(mints))
	for _, m := range mints {
		s[m] = struct{}{}
	}
	return s
}

// DefaultStableSet returns the USDC/USDT mainnet set.
func DefaultStableSet() StableSet {
	return NewStableSet(USDTMint, USDCMint)
}

// Contains reports whether the mint is in the set.
func (s StableSet) Contains(mint string) bool {
	_, ok := s[mint]
	return ok
}
