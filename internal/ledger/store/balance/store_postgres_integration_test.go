//go:build integration

package balance_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/store/balance"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/testutil/containers"
)

type PostgresBalanceStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *balance.PostgresStore
}

func TestPostgresBalanceStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresBalanceStoreSuite))
}

func (s *PostgresBalanceStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = balance.NewPostgres(s.postgres.DB)
}

func (s *PostgresBalanceStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "ledger_balances")
	s.Require().NoError(err)
}

// TestZeroDefault verifies a missing row reads as the zero record.
func (s *PostgresBalanceStoreSuite) TestZeroDefault() {
	ctx := context.Background()

	record, err := s.store.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(0), record.Free)
	s.Equal(domain.Balance(0), record.Reserved)
}

// TestPartialWrites verifies each setter touches only its own column.
func (s *PostgresBalanceStoreSuite) TestPartialWrites() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetFree(ctx, 1, 100, 70))
	s.Require().NoError(s.store.SetReserved(ctx, 1, 100, 30))

	record, err := s.store.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(70), record.Free)
	s.Equal(domain.Balance(30), record.Reserved)

	// Overwriting free must not disturb reserved, and vice versa.
	s.Require().NoError(s.store.SetFree(ctx, 1, 100, 10))

	record, err = s.store.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(10), record.Free)
	s.Equal(domain.Balance(30), record.Reserved)
}

// TestHighBitRoundTrip verifies balances at or above 1<<63 survive the
// BIGINT two's-complement encoding.
func (s *PostgresBalanceStoreSuite) TestHighBitRoundTrip() {
	ctx := context.Background()

	max := domain.Balance(math.MaxUint64)
	high := domain.Balance(1) << 63

	s.Require().NoError(s.store.SetFree(ctx, 1, 100, max))
	s.Require().NoError(s.store.SetReserved(ctx, 1, 100, high))

	record, err := s.store.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(max, record.Free)
	s.Equal(high, record.Reserved)
}

// TestKeyIsolation verifies rows are keyed by (asset, account).
func (s *PostgresBalanceStoreSuite) TestKeyIsolation() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetFree(ctx, 1, 100, 50))
	s.Require().NoError(s.store.SetFree(ctx, 2, 100, 60))
	s.Require().NoError(s.store.SetFree(ctx, 1, 200, 70))

	record, err := s.store.Get(ctx, 1, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(50), record.Free)

	record, err = s.store.Get(ctx, 2, 100)
	s.Require().NoError(err)
	s.Equal(domain.Balance(60), record.Free)

	record, err = s.store.Get(ctx, 1, 200)
	s.Require().NoError(err)
	s.Equal(domain.Balance(70), record.Free)
}
