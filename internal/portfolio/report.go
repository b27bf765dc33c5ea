package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
)

// DefaultTopN is the number of positions listed in a wallet report.
const DefaultTopN = 5

// BuildReport assembles the per-wallet summary from the replayed ledger,
// the live holdings snapshot, and the resolved spot prices. Holdings whose
// price could not be resolved still count toward positions with a zero
// value and are listed under MissingPriceMints.
func BuildReport(wallet string, basis *ledger.CostBasis, holdings []domain.Holding, spotPrices map[string]float64, topN int) *domain.WalletReport {
	if topN <= 0 {
		topN = DefaultTopN
	}

	report := &domain.WalletReport{
		Wallet:         wallet,
		RealizedPnLUSD: basis.Realized().InexactFloat64(),
	}

	decPrices := make(map[string]decimal.Decimal, len(spotPrices))
	for mint, p := range spotPrices {
		decPrices[mint] = decimal.NewFromFloat(p)
	}
	report.UnrealizedPnLUSD = basis.UnrealizedAt(decPrices).Total.InexactFloat64()

	positions := make([]domain.Position, 0, len(holdings))
	missing := make(map[string]struct{})
	for _, h := range holdings {
		price := spotPrices[h.Mint]
		if price == 0 {
			missing[h.Mint] = struct{}{}
		}
		value := h.Quantity * price
		report.CurrentValueUSD += value
		positions = append(positions, domain.Position{
			Mint:     h.Mint,
			Quantity: h.Quantity,
			ValueUSD: value,
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].ValueUSD != positions[j].ValueUSD {
			return positions[i].ValueUSD > positions[j].ValueUSD
		}
		return positions[i].Mint < positions[j].Mint
	})
	if len(positions) > topN {
		positions = positions[:topN]
	}
	report.Positions = positions

	for mint := range missing {
		report.MissingPriceMints = append(report.MissingPriceMints, mint)
	}
	sort.Strings(report.MissingPriceMints)

	return report
}
