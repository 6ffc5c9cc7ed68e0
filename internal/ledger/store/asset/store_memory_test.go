package asset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
)

type AssetStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *AssetStoreSuite) SetupTest() {
	s.store = NewInMemory(1000)
	s.ctx = context.Background()
}

func TestAssetStoreSuite(t *testing.T) {
	suite.Run(t, new(AssetStoreSuite))
}

// TestRecords verifies asset records round-trip through the store.
func (s *AssetStoreSuite) TestRecords() {
	s.Run("puts and gets an asset", func() {
		asset := models.Asset{
			ID:            42,
			TotalIssuance: 500,
			Permissions:   models.VersionedPermissions(models.PermissionSet{}),
		}
		s.Require().NoError(s.store.Put(s.ctx, asset))

		found, err := s.store.Get(s.ctx, 42)
		s.Require().NoError(err)
		s.Equal(domain.Balance(500), found.TotalIssuance)
	})

	s.Run("returns ErrNotFound for unknown asset", func() {
		_, err := s.store.Get(s.ctx, 999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("put replaces an existing record", func() {
		asset := models.Asset{ID: 7, TotalIssuance: 100}
		s.Require().NoError(s.store.Put(s.ctx, asset))

		asset.TotalIssuance = 250
		s.Require().NoError(s.store.Put(s.ctx, asset))

		found, err := s.store.Get(s.ctx, 7)
		s.Require().NoError(err)
		s.Equal(domain.Balance(250), found.TotalIssuance)
	})

	s.Run("exists reflects presence", func() {
		ok, err := s.store.Exists(s.ctx, 7)
		s.Require().NoError(err)
		s.True(ok)

		ok, err = s.store.Exists(s.ctx, 12345)
		s.Require().NoError(err)
		s.False(ok)
	})
}

// TestCounter verifies the auto-assignment counter starts at the configured
// value and persists overwrites.
func (s *AssetStoreSuite) TestCounter() {
	s.Run("starts at the configured value", func() {
		next, err := s.store.NextID(s.ctx)
		s.Require().NoError(err)
		s.Equal(domain.AssetID(1000), next)
	})

	s.Run("persists overwrites", func() {
		s.Require().NoError(s.store.SetNextID(s.ctx, 1001))

		next, err := s.store.NextID(s.ctx)
		s.Require().NoError(err)
		s.Equal(domain.AssetID(1001), next)
	})
}
