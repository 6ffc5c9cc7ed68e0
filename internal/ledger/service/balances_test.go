package service_test

import (
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// TestTransfer verifies the free-balance transfer preconditions and
// movement.
func (s *ServiceSuite) TestTransfer() {
	s.Run("moves amount between accounts without touching issuance", func() {
		id := s.mustCreate(1, 100)

		s.Require().NoError(s.svc.Transfer(s.ctx, id, 1, 2, 40))

		s.Equal(domain.Balance(60), s.free(id, 1))
		s.Equal(domain.Balance(40), s.free(id, 2))
		s.Equal(domain.Balance(100), s.issuance(id))
	})

	s.Run("rejects a zero amount", func() {
		id := s.mustCreate(1, 100)

		err := s.svc.Transfer(s.ctx, id, 1, 2, 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeZeroAmount))
	})

	s.Run("rejects an uncovered amount and leaves balances unchanged", func() {
		id := s.mustCreate(1, 100)

		err := s.svc.Transfer(s.ctx, id, 1, 2, 101)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Equal(domain.Balance(100), s.free(id, 1))
		s.Equal(domain.Balance(0), s.free(id, 2))
	})

	s.Run("self-transfer is a no-op but still checks the balance", func() {
		id := s.mustCreate(1, 100)

		s.Require().NoError(s.svc.Transfer(s.ctx, id, 1, 1, 80))
		s.Equal(domain.Balance(100), s.free(id, 1))

		err := s.svc.Transfer(s.ctx, id, 1, 1, 101)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})

	s.Run("emits only when funds actually move", func() {
		id := s.mustCreate(1, 100)
		s.recorder.Reset()

		s.Require().NoError(s.svc.Transfer(s.ctx, id, 1, 1, 10))
		s.Empty(s.recorder.OfType(events.TypeTransferred))

		s.Require().NoError(s.svc.Transfer(s.ctx, id, 1, 2, 10))
		transferred := s.recorder.OfType(events.TypeTransferred)
		s.Require().Len(transferred, 1)
		s.Equal(domain.AccountID(1), transferred[0].From)
		s.Equal(domain.AccountID(2), transferred[0].To)
		s.Equal(domain.Balance(10), transferred[0].Amount)
	})
}

// TestReserve verifies reservation moves funds out of the free balance
// all-or-nothing.
func (s *ServiceSuite) TestReserve() {
	s.Run("moves the amount into reserved", func() {
		id := s.mustCreate(0, 100)

		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 70))

		s.Equal(domain.Balance(30), s.free(id, 0))
		s.Equal(domain.Balance(70), s.reserved(id, 0))

		total, err := s.svc.TotalBalance(s.ctx, id, 0)
		s.Require().NoError(err)
		s.Equal(domain.Balance(100), total)
	})

	s.Run("rejects an uncovered amount with no partial reservation", func() {
		id := s.mustCreate(0, 100)

		err := s.svc.Reserve(s.ctx, id, 0, 120)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Equal(domain.Balance(100), s.free(id, 0))
		s.Equal(domain.Balance(0), s.reserved(id, 0))
	})
}

// TestUnreserve verifies the never-failing release of reserved funds.
func (s *ServiceSuite) TestUnreserve() {
	s.Run("returns the unsatisfied remainder", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 100))

		shortfall, err := s.svc.Unreserve(s.ctx, id, 0, 120)
		s.Require().NoError(err)
		s.Equal(domain.Balance(20), shortfall)
		s.Equal(domain.Balance(100), s.free(id, 0))
		s.Equal(domain.Balance(0), s.reserved(id, 0))
	})

	s.Run("covered amount returns zero", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 60))

		shortfall, err := s.svc.Unreserve(s.ctx, id, 0, 40)
		s.Require().NoError(err)
		s.Equal(domain.Balance(0), shortfall)
		s.Equal(domain.Balance(80), s.free(id, 0))
		s.Equal(domain.Balance(20), s.reserved(id, 0))
	})
}

// TestSlash verifies the free-then-reserved removal order and shortfall
// reporting.
func (s *ServiceSuite) TestSlash() {
	s.Run("fully covered by free returns nil", func() {
		id := s.mustCreate(0, 100)

		shortfall, err := s.svc.Slash(s.ctx, id, 0, 80)
		s.Require().NoError(err)
		s.Nil(shortfall)
		s.Equal(domain.Balance(20), s.free(id, 0))
	})

	s.Run("spills into reserved when free is insufficient", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 60))

		// free 40, reserved 60: slash 70 takes all free and 30 reserved.
		shortfall, err := s.svc.Slash(s.ctx, id, 0, 70)
		s.Require().NoError(err)
		s.Nil(shortfall)
		s.Equal(domain.Balance(0), s.free(id, 0))
		s.Equal(domain.Balance(30), s.reserved(id, 0))
	})

	s.Run("reports the shortfall when both run out", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 60))

		shortfall, err := s.svc.Slash(s.ctx, id, 0, 130)
		s.Require().NoError(err)
		s.Require().NotNil(shortfall)
		s.Equal(domain.Balance(30), *shortfall)
		s.Equal(domain.Balance(0), s.free(id, 0))
		s.Equal(domain.Balance(0), s.reserved(id, 0))
	})
}

// TestSlashReserved verifies the reserved-only variant.
func (s *ServiceSuite) TestSlashReserved() {
	s.Run("never touches the free balance", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 60))

		shortfall, err := s.svc.SlashReserved(s.ctx, id, 0, 40)
		s.Require().NoError(err)
		s.Nil(shortfall)
		s.Equal(domain.Balance(40), s.free(id, 0))
		s.Equal(domain.Balance(20), s.reserved(id, 0))
	})

	s.Run("reports the shortfall past the reserved balance", func() {
		id := s.mustCreate(0, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 0, 60))

		shortfall, err := s.svc.SlashReserved(s.ctx, id, 0, 90)
		s.Require().NoError(err)
		s.Require().NotNil(shortfall)
		s.Equal(domain.Balance(30), *shortfall)
		s.Equal(domain.Balance(40), s.free(id, 0))
		s.Equal(domain.Balance(0), s.reserved(id, 0))
	})
}

// TestRepatriateReserved verifies reserved funds land in the beneficiary's
// free balance.
func (s *ServiceSuite) TestRepatriateReserved() {
	s.Run("moves up to the reserved amount", func() {
		id := s.mustCreate(1, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 1, 60))

		shortfall, err := s.svc.RepatriateReserved(s.ctx, id, 1, 2, 40)
		s.Require().NoError(err)
		s.Equal(domain.Balance(0), shortfall)
		s.Equal(domain.Balance(20), s.reserved(id, 1))
		s.Equal(domain.Balance(40), s.free(id, 2))
	})

	s.Run("returns the unsatisfied remainder", func() {
		id := s.mustCreate(1, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 1, 60))

		shortfall, err := s.svc.RepatriateReserved(s.ctx, id, 1, 2, 90)
		s.Require().NoError(err)
		s.Equal(domain.Balance(30), shortfall)
		s.Equal(domain.Balance(0), s.reserved(id, 1))
		s.Equal(domain.Balance(60), s.free(id, 2))
	})

	s.Run("repatriating to the same account restores free balance", func() {
		id := s.mustCreate(1, 100)
		s.Require().NoError(s.svc.Reserve(s.ctx, id, 1, 60))

		shortfall, err := s.svc.RepatriateReserved(s.ctx, id, 1, 1, 60)
		s.Require().NoError(err)
		s.Equal(domain.Balance(0), shortfall)
		s.Equal(domain.Balance(100), s.free(id, 1))
		s.Equal(domain.Balance(0), s.reserved(id, 1))
	})
}

// TestSetBalances verifies the unconditional admin primitives.
func (s *ServiceSuite) TestSetBalances() {
	id := s.mustCreate(1, 100)

	s.Require().NoError(s.svc.SetFreeBalance(s.ctx, id, 2, 55))
	s.Require().NoError(s.svc.SetReservedBalance(s.ctx, id, 2, 45))

	s.Equal(domain.Balance(55), s.free(id, 2))
	s.Equal(domain.Balance(45), s.reserved(id, 2))

	// Issuance is deliberately untouched.
	s.Equal(domain.Balance(100), s.issuance(id))
}

// TestConservation runs a mixed sequence against one asset and checks the
// global invariant: issuance equals initial plus mints minus burns, and
// the sum of all account balances equals issuance whenever no imbalance is
// pending.
func (s *ServiceSuite) TestConservation() {
	id := s.mustCreate(1, 100)

	s.Require().NoError(s.svc.Mint(s.ctx, 1, id, 2, 500))
	s.Require().NoError(s.svc.Transfer(s.ctx, id, 2, 3, 120))
	s.Require().NoError(s.svc.Reserve(s.ctx, id, 3, 50))
	s.Require().NoError(s.svc.Burn(s.ctx, 1, id, 2, 300))
	_, err := s.svc.Unreserve(s.ctx, id, 3, 10)
	s.Require().NoError(err)
	_, err = s.svc.RepatriateReserved(s.ctx, id, 3, 1, 20)
	s.Require().NoError(err)

	s.Equal(domain.Balance(100+500-300), s.issuance(id))

	var sum domain.Balance
	for _, account := range []domain.AccountID{1, 2, 3} {
		total, err := s.svc.TotalBalance(s.ctx, id, account)
		s.Require().NoError(err)
		sum += total
	}
	s.Equal(s.issuance(id), sum)
}
