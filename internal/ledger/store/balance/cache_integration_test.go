//go:build integration

package balance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/store/balance"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/testutil/containers"
)

type BalanceCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *balance.InMemory
	cache *balance.Cache
}

func TestBalanceCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(BalanceCacheSuite))
}

func (s *BalanceCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *BalanceCacheSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))
	s.inner = balance.NewInMemory()
	s.cache = balance.NewCache(s.inner, s.redis.Client, balance.WithCacheTTL(time.Minute))
}

// TestReadThrough verifies a read populates the cache and subsequent reads
// are served from it.
func (s *BalanceCacheSuite) TestReadThrough() {
	ctx := context.Background()

	s.Require().NoError(s.inner.SetFree(ctx, 1, 100, 70))

	record, err := s.cache.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(70), record.Free)

	// Mutate the inner store behind the cache's back: the cached record
	// must still be served until invalidation.
	s.Require().NoError(s.inner.SetFree(ctx, 1, 100, 5))

	record, err = s.cache.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(70), record.Free)
}

// TestWriteInvalidates verifies writes through the cache evict the stale
// record.
func (s *BalanceCacheSuite) TestWriteInvalidates() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetFree(ctx, 2, 100, 40))

	record, err := s.cache.Get(ctx, 2, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(40), record.Free)

	s.Require().NoError(s.cache.SetFree(ctx, 2, 100, 90))

	record, err = s.cache.Get(ctx, 2, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(90), record.Free)

	s.Require().NoError(s.cache.SetReserved(ctx, 2, 100, 15))

	record, err = s.cache.Get(ctx, 2, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(90), record.Free)
	s.Equal(domain.Balance(15), record.Reserved)
}
