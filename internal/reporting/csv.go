package reporting

import (
	"fmt"
	"strings"

	"solana-wallet-pnl/internal/domain"
)

// RenderLegsCSV renders swap legs as a CSV string. Amounts are emitted both
// raw (smallest units) and scaled to human quantity.
func RenderLegsCSV(legs []*domain.SwapLeg) string {
	var sb strings.Builder

	sb.WriteString("wallet,mint,tx_signature,leg_index,timestamp,amount,decimals,quantity\n")

	for _, l := range legs {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%.0f,%d,%.9f\n",
			l.Wallet,
			l.Mint,
			l.TxSignature,
			l.LegIndex,
			l.Timestamp,
			l.Amount,
			l.Decimals,
			l.Quantity(),
		))
	}

	return sb.String()
}
