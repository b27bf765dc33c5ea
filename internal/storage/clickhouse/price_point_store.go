package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on any duplicate
// (mint, bucket_ms, source). MergeTree does not enforce uniqueness, so
// duplicates are checked explicitly before the batch is sent.
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		mint     string
		bucketMs int64
		source   string
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Mint, p.BucketMs, p.Source}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.Mint, p.BucketMs, p.Source)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (
			mint, bucket_ms, price, source
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Mint, p.BucketMs, p.Price, p.Source); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all points for a mint, ordered by bucket ASC.
func (s *PricePointStore) GetByMint(ctx context.Context, mint string) ([]*domain.PricePoint, error) {
	query := `
		SELECT mint, bucket_ms, price, source
		FROM price_points
		WHERE mint = ?
		ORDER BY bucket_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Mint, &p.BucketMs, &p.Price, &p.Source); err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}

// exists checks if a point with the given key exists.
func (s *PricePointStore) exists(ctx context.Context, mint string, bucketMs int64, source string) (bool, error) {
	query := `
		SELECT count(*) FROM price_points
		WHERE mint = ? AND bucket_ms = ? AND source = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, mint, bucketMs, source).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
