// Package reporting renders wallet reports and swap leg exports.
package reporting

import (
	"fmt"
	"strings"

	"solana-wallet-pnl/internal/domain"
)

// maxMissingPriceMints bounds how many unpriced mints the text report names.
const maxMissingPriceMints = 3

// RenderText renders one wallet report as a human-readable block.
func RenderText(r *domain.WalletReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Wallet %s\n", r.Wallet))
	sb.WriteString(fmt.Sprintf("  Current value:   $%.2f\n", r.CurrentValueUSD))
	sb.WriteString(fmt.Sprintf("  Realized PnL:    $%.2f\n", r.RealizedPnLUSD))
	sb.WriteString(fmt.Sprintf("  Unrealized PnL:  $%.2f\n", r.UnrealizedPnLUSD))

	if len(r.Positions) > 0 {
		sb.WriteString("  Top positions:\n")
		for _, p := range r.Positions {
			sb.WriteString(fmt.Sprintf("    %-44s %16.6f  $%.2f\n", p.Mint, p.Quantity, p.ValueUSD))
		}
	}

	if len(r.MissingPriceMints) > 0 {
		shown := r.MissingPriceMints
		more := 0
		if len(shown) > maxMissingPriceMints {
			more = len(shown) - maxMissingPriceMints
			shown = shown[:maxMissingPriceMints]
		}
		sb.WriteString(fmt.Sprintf("  Note: no price for %s", strings.Join(shown, ", ")))
		if more > 0 {
			sb.WriteString(fmt.Sprintf(" and %d more", more))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
