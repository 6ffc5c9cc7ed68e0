package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/arith"
)

// Transfer moves amount from origin's free balance to to's free balance.
// The amount must be nonzero and covered by origin's free balance. A
// self-transfer passes the same checks but moves nothing and emits nothing.
func (s *Service) Transfer(ctx context.Context, asset domain.AssetID, origin, to domain.AccountID, amount domain.Balance) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Transfer", trace.WithAttributes(
		attribute.Int64("ledger.asset_id", int64(asset)),
	))
	defer span.End()

	moved := false
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		if amount == 0 {
			return dErrors.New(dErrors.CodeZeroAmount, "cannot transfer a zero amount")
		}
		from, err := s.balances.Get(ctx, asset, origin)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load origin balance")
		}
		if from.Free < amount {
			return dErrors.New(dErrors.CodeInsufficientBalance, "balance too low to send amount")
		}
		if origin == to {
			return nil
		}
		dest, err := s.balances.Get(ctx, asset, to)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load destination balance")
		}
		if err := s.balances.SetFree(ctx, asset, origin, from.Free-amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit origin")
		}
		if err := s.balances.SetFree(ctx, asset, to, arith.SaturatingAdd(dest.Free, amount)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit destination")
		}
		moved = true
		return nil
	})
	if err != nil {
		return s.reject(err)
	}

	if moved {
		if s.metrics != nil {
			s.metrics.Transfers.Inc()
		}
		s.emit(ctx, events.Transferred(asset, origin, to, amount))
	}
	return nil
}

// SetFreeBalance unconditionally overwrites the free balance. Admin and
// test primitive: total issuance is not adjusted, invariant upkeep is the
// caller's responsibility.
func (s *Service) SetFreeBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		return s.balances.SetFree(ctx, asset, account, amount)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set free balance")
	}
	return nil
}

// SetReservedBalance unconditionally overwrites the reserved balance. Same
// caveats as SetFreeBalance.
func (s *Service) SetReservedBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		return s.balances.SetReserved(ctx, asset, account, amount)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set reserved balance")
	}
	return nil
}

// Reserve moves amount from who's free balance to their reserved balance.
// There is no partial reservation: the whole amount must be covered.
func (s *Service) Reserve(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) error {
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, who)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		if record.Free < amount {
			return dErrors.New(dErrors.CodeInsufficientBalance, "balance too low to reserve amount")
		}
		if err := s.balances.SetFree(ctx, asset, who, record.Free-amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit free balance")
		}
		if err := s.balances.SetReserved(ctx, asset, who, arith.SaturatingAdd(record.Reserved, amount)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit reserved balance")
		}
		return nil
	})
	if err != nil {
		return s.reject(err)
	}
	return nil
}

// Unreserve moves min(amount, reserved) back to the free balance and
// returns the unsatisfied remainder. It never fails on a shortfall.
func (s *Service) Unreserve(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) (domain.Balance, error) {
	var shortfall domain.Balance
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, who)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		moved := arith.Min(amount, record.Reserved)
		shortfall = amount - moved
		if moved == 0 {
			return nil
		}
		if err := s.balances.SetReserved(ctx, asset, who, record.Reserved-moved); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit reserved balance")
		}
		if err := s.balances.SetFree(ctx, asset, who, arith.SaturatingAdd(record.Free, moved)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit free balance")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shortfall, nil
}

// Slash removes up to amount from who, taking from the free balance first
// and then from the reserved balance. The returned pointer is nil when the
// full amount was removed, otherwise it holds the shortfall. Total issuance
// is deliberately untouched: this primitive tracks removal from
// circulation, issuance bookkeeping stays with the caller.
func (s *Service) Slash(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) (*domain.Balance, error) {
	var shortfall *domain.Balance
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, who)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}

		fromFree := arith.Min(amount, record.Free)
		if err := s.balances.SetFree(ctx, asset, who, record.Free-fromFree); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit free balance")
		}
		remaining := amount - fromFree
		if remaining == 0 {
			return nil
		}

		fromReserved := arith.Min(remaining, record.Reserved)
		if err := s.balances.SetReserved(ctx, asset, who, record.Reserved-fromReserved); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit reserved balance")
		}
		if remaining > fromReserved {
			left := remaining - fromReserved
			shortfall = &left
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if shortfall != nil {
		s.logger.DebugContext(ctx, "slash fell short",
			slog.String("asset_id", asset.String()),
			slog.String("account", who.String()),
			slog.Uint64("shortfall", uint64(*shortfall)),
		)
	}
	return shortfall, nil
}

// SlashReserved removes up to amount from who's reserved balance only.
// Shortfall semantics match Slash.
func (s *Service) SlashReserved(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) (*domain.Balance, error) {
	var shortfall *domain.Balance
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, who)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		removed := arith.Min(amount, record.Reserved)
		if err := s.balances.SetReserved(ctx, asset, who, record.Reserved-removed); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit reserved balance")
		}
		if amount > removed {
			left := amount - removed
			shortfall = &left
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shortfall, nil
}

// RepatriateReserved moves min(amount, slashed.reserved) from slashed's
// reserved balance into beneficiary's free balance and returns the
// unsatisfied remainder. It never fails on a shortfall.
func (s *Service) RepatriateReserved(ctx context.Context, asset domain.AssetID, slashed, beneficiary domain.AccountID, amount domain.Balance) (domain.Balance, error) {
	var shortfall domain.Balance
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		source, err := s.balances.Get(ctx, asset, slashed)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load slashed balance")
		}
		moved := arith.Min(amount, source.Reserved)
		shortfall = amount - moved
		if moved == 0 {
			return nil
		}
		if err := s.balances.SetReserved(ctx, asset, slashed, source.Reserved-moved); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit reserved balance")
		}
		dest, err := s.balances.Get(ctx, asset, beneficiary)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load beneficiary balance")
		}
		if err := s.balances.SetFree(ctx, asset, beneficiary, arith.SaturatingAdd(dest.Free, moved)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit beneficiary")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shortfall, nil
}
