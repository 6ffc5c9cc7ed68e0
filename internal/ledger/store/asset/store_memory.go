// Package asset persists the per-asset registry records and the
// auto-assignment counter.
package asset

import (
	"context"
	"sync"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
)

// InMemory implements the asset store over a map. Used by unit tests and
// single-process development; production uses PostgresStore.
type InMemory struct {
	mu     sync.RWMutex
	assets map[domain.AssetID]models.Asset
	nextID domain.AssetID
}

// NewInMemory creates an empty store with the counter at nextID.
func NewInMemory(nextID domain.AssetID) *InMemory {
	return &InMemory{
		assets: make(map[domain.AssetID]models.Asset),
		nextID: nextID,
	}
}

// Get retrieves one asset record.
func (s *InMemory) Get(_ context.Context, id domain.AssetID) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return models.Asset{}, sentinel.ErrNotFound
	}
	return asset, nil
}

// Put creates or replaces an asset record.
func (s *InMemory) Put(_ context.Context, asset models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.ID] = asset
	return nil
}

// Exists reports whether an asset record is present.
func (s *InMemory) Exists(_ context.Context, id domain.AssetID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assets[id]
	return ok, nil
}

// NextID returns the auto-assignment counter.
func (s *InMemory) NextID(_ context.Context) (domain.AssetID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

// SetNextID overwrites the auto-assignment counter.
func (s *InMemory) SetNextID(_ context.Context, id domain.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
	return nil
}
