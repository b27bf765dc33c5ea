package portfolio

import (
	"math"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/helius"
)

// HoldingsFromAssets converts a wallet's fungible assets into holdings,
// skipping entries without a mint or with a zero balance.
func HoldingsFromAssets(assets []helius.Asset) []domain.Holding {
	var out []domain.Holding
	for _, a := range assets {
		if a.ID == "" || a.TokenInfo == nil || a.TokenInfo.Balance == 0 {
			continue
		}
		qty := a.TokenInfo.Balance / math.Pow10(int(a.TokenInfo.Decimals))
		if qty == 0 {
			continue
		}
		out = append(out, domain.Holding{
			Mint:     a.ID,
			Quantity: qty,
			Decimals: a.TokenInfo.Decimals,
		})
	}
	return out
}

// EnsureNativeSOL folds the native lamport balance into the holdings under
// the wrapped SOL mint. A token account already holding wrapped SOL wins;
// the native balance is only added when no such holding exists.
func EnsureNativeSOL(holdings []domain.Holding, lamports uint64) []domain.Holding {
	if lamports == 0 {
		return holdings
	}
	for _, h := range holdings {
		if h.Mint == domain.WSOL {
			return holdings
		}
	}
	return append(holdings, domain.Holding{
		Mint:     domain.WSOL,
		Quantity: float64(lamports) / domain.LamportsPerSOL,
		Decimals: 9,
	})
}
