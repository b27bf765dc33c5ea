// Package stub provides an in-memory Oracle for tests and offline runs.
package stub

import (
	"context"
	"sync"
)

// Oracle serves prices from static maps and counts lookups.
type Oracle struct {
	mu sync.Mutex

	// SpotPrices maps mint -> current price.
	SpotPrices map[string]float64
	// HistoricalPrices maps mint -> price returned for any instant.
	HistoricalPrices map[string]float64

	spotCalls       map[string]int
	historicalCalls map[string]int
}

// NewOracle creates an empty stub oracle.
func NewOracle() *Oracle {
	return &Oracle{
		SpotPrices:       make(map[string]float64),
		HistoricalPrices: make(map[string]float64),
		spotCalls:        make(map[string]int),
		historicalCalls:  make(map[string]int),
	}
}

// Spot implements pricing.Oracle.
func (o *Oracle) Spot(_ context.Context, mint string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spotCalls[mint]++
	return o.SpotPrices[mint]
}

// Historical implements pricing.Oracle.
func (o *Oracle) Historical(_ context.Context, mint string, _ int64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.historicalCalls[mint]++
	return o.HistoricalPrices[mint]
}

// SpotCalls returns how many spot lookups were made for the mint.
func (o *Oracle) SpotCalls(mint string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.spotCalls[mint]
}

// HistoricalCalls returns how many historical lookups were made for the mint.
func (o *Oracle) HistoricalCalls(mint string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.historicalCalls[mint]
}
