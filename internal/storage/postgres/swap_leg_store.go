package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// SwapLegStore implements storage.SwapLegStore using PostgreSQL.
type SwapLegStore struct {
	pool *Pool
}

// NewSwapLegStore creates a new SwapLegStore.
func NewSwapLegStore(pool *Pool) *SwapLegStore {
	return &SwapLegStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapLegStore = (*SwapLegStore)(nil)

const insertLegQuery = `
	INSERT INTO swap_legs (
		wallet, mint, tx_signature, leg_index, timestamp, amount, decimals
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a new leg. Returns ErrDuplicateKey if (wallet, tx_signature, leg_index) exists.
func (s *SwapLegStore) Insert(ctx context.Context, l *domain.SwapLeg) error {
	if l == nil || l.Wallet == "" || l.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertLegQuery,
		l.Wallet,
		l.Mint,
		l.TxSignature,
		l.LegIndex,
		l.Timestamp,
		l.Amount,
		l.Decimals,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap leg: %w", err)
	}
	return nil
}

// InsertBulk adds multiple legs atomically. Fails entire batch on any duplicate.
func (s *SwapLegStore) InsertBulk(ctx context.Context, legs []*domain.SwapLeg) error {
	if len(legs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, l := range legs {
		if l == nil || l.Wallet == "" || l.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertLegQuery,
			l.Wallet,
			l.Mint,
			l.TxSignature,
			l.LegIndex,
			l.Timestamp,
			l.Amount,
			l.Decimals,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert swap leg in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByWallet retrieves all legs for a wallet, ordered by timestamp ASC,
// then tx_signature, then leg_index.
func (s *SwapLegStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.SwapLeg, error) {
	query := `
		SELECT wallet, mint, tx_signature, leg_index, timestamp, amount, decimals
		FROM swap_legs
		WHERE wallet = $1
		ORDER BY timestamp ASC, tx_signature ASC, leg_index ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get swap legs by wallet: %w", err)
	}
	defer rows.Close()

	return scanSwapLegs(rows)
}

// scanSwapLegs scans multiple rows into a slice of SwapLeg.
func scanSwapLegs(rows pgx.Rows) ([]*domain.SwapLeg, error) {
	var legs []*domain.SwapLeg

	for rows.Next() {
		var l domain.SwapLeg

		err := rows.Scan(
			&l.Wallet,
			&l.Mint,
			&l.TxSignature,
			&l.LegIndex,
			&l.Timestamp,
			&l.Amount,
			&l.Decimals,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap leg row: %w", err)
		}

		legs = append(legs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap leg rows: %w", err)
	}

	return legs, nil
}
