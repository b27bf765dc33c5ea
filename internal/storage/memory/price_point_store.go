package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]*domain.PricePoint),
	}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// pointKey generates a unique key for a price point.
func pointKey(mint string, bucketMs int64, source string) string {
	return fmt.Sprintf("%s|%d|%s", mint, bucketMs, source)
}

// InsertBulk adds multiple points. Fails entire batch on any duplicate.
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		key := pointKey(p.Mint, p.BucketMs, p.Source)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		copy := *p
		s.data[pointKey(p.Mint, p.BucketMs, p.Source)] = &copy
	}
	return nil
}

// GetByMint retrieves all points for a mint, ordered by bucket ASC.
func (s *PricePointStore) GetByMint(_ context.Context, mint string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.PricePoint
	for _, p := range s.data {
		if p.Mint != mint {
			continue
		}
		copy := *p
		out = append(out, &copy)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].BucketMs < out[j].BucketMs
	})

	return out, nil
}
