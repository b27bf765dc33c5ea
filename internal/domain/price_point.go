package domain

// PricePoint is one resolved USD price observation for a mint.
// Corresponds to price_points table in ClickHouse.
type PricePoint struct {
	Mint     string
	BucketMs int64 // minute bucket, Unix milliseconds
	Price    float64
	Source   string // "spot" | "historical"
}

// Price point source constants.
const (
	PriceSourceSpot       = "spot"
	PriceSourceHistorical = "historical"
)
