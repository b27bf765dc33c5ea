package domain

// Holding is one entry of a wallet's live balance snapshot.
type Holding struct {
	Mint     string
	Quantity float64 // human units
	Decimals int32
}

// Position is one line of the ranked position list in a wallet report.
type Position struct {
	Mint     string
	Quantity float64
	ValueUSD float64
}

// WalletReport is the per-wallet portfolio summary.
type WalletReport struct {
	Wallet            string
	CurrentValueUSD   float64
	RealizedPnLUSD    float64
	UnrealizedPnLUSD  float64
	Positions         []Position // ranked descending by ValueUSD
	MissingPriceMints []string   // held mints with no resolvable live price
}
