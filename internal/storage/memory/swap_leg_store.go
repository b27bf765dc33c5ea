package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// SwapLegStore is an in-memory implementation of storage.SwapLegStore.
type SwapLegStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SwapLeg // keyed by composite key
}

// NewSwapLegStore creates a new in-memory swap leg store.
func NewSwapLegStore() *SwapLegStore {
	return &SwapLegStore{
		data: make(map[string]*domain.SwapLeg),
	}
}

// Compile-time interface check.
var _ storage.SwapLegStore = (*SwapLegStore)(nil)

// legKey generates a unique key for a leg.
func legKey(wallet, txSignature string, legIndex int) string {
	return fmt.Sprintf("%s|%s|%d", wallet, txSignature, legIndex)
}

// Insert adds a new leg. Returns ErrDuplicateKey if exists.
func (s *SwapLegStore) Insert(_ context.Context, leg *domain.SwapLeg) error {
	if leg == nil || leg.Wallet == "" || leg.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	key := legKey(leg.Wallet, leg.TxSignature, leg.LegIndex)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *leg
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple legs atomically. Fails entire batch on any duplicate.
func (s *SwapLegStore) InsertBulk(_ context.Context, legs []*domain.SwapLeg) error {
	if len(legs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(legs))

	for _, leg := range legs {
		if leg == nil || leg.Wallet == "" || leg.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		key := legKey(leg.Wallet, leg.TxSignature, leg.LegIndex)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, leg := range legs {
		copy := *leg
		s.data[legKey(leg.Wallet, leg.TxSignature, leg.LegIndex)] = &copy
	}
	return nil
}

// GetByWallet retrieves all legs for a wallet, ordered by timestamp ASC,
// then tx_signature, then leg_index.
func (s *SwapLegStore) GetByWallet(_ context.Context, wallet string) ([]*domain.SwapLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.SwapLeg
	for _, leg := range s.data {
		if leg.Wallet != wallet {
			continue
		}
		copy := *leg
		out = append(out, &copy)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		if out[i].TxSignature != out[j].TxSignature {
			return out[i].TxSignature < out[j].TxSignature
		}
		return out[i].LegIndex < out[j].LegIndex
	})

	return out, nil
}
