// Package balance persists free and reserved balances keyed by (asset,
// account).
package balance

import (
	"context"
	"sync"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

type key struct {
	asset   domain.AssetID
	account domain.AccountID
}

// InMemory implements the balance store over a map. A missing record reads
// as zero; records are created implicitly on first write.
type InMemory struct {
	mu      sync.RWMutex
	records map[key]models.BalanceRecord
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[key]models.BalanceRecord)}
}

// Get retrieves the balance record, zero-valued if absent.
func (s *InMemory) Get(_ context.Context, asset domain.AssetID, account domain.AccountID) (models.BalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[key{asset, account}], nil
}

// SetFree overwrites the free balance.
func (s *InMemory) SetFree(_ context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{asset, account}
	record := s.records[k]
	record.Free = amount
	s.records[k] = record
	return nil
}

// SetReserved overwrites the reserved balance.
func (s *InMemory) SetReserved(_ context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{asset, account}
	record := s.records[k]
	record.Reserved = amount
	s.records[k] = record
	return nil
}
