package storage

import (
	"context"

	"solana-wallet-pnl/internal/domain"
)

// SwapLegStore provides access to swap_legs storage.
type SwapLegStore interface {
	// Insert adds a new leg. Returns ErrDuplicateKey if
	// (wallet, tx_signature, leg_index) exists.
	Insert(ctx context.Context, l *domain.SwapLeg) error

	// InsertBulk adds multiple legs atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, legs []*domain.SwapLeg) error

	// GetByWallet retrieves all legs for a wallet, ordered by timestamp ASC,
	// then tx_signature, then leg_index.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.SwapLeg, error)
}

// PricePointStore provides access to price_points storage.
type PricePointStore interface {
	// InsertBulk adds multiple points. Returns ErrDuplicateKey if any
	// (mint, bucket_ms, source) exists.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByMint retrieves all points for a mint, ordered by bucket ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.PricePoint, error)
}
