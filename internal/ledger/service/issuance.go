package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/imbalance"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/arith"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
)

// Mint issues new supply: credits to's free balance and increases the
// asset's total issuance by the same amount. The caller must hold the Mint
// capability. The issuance side travels through an Imbalance so the
// bookkeeping path is the same one imbalance-producing flows use.
func (s *Service) Mint(ctx context.Context, caller domain.AccountID, asset domain.AssetID, to domain.AccountID, amount domain.Balance) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Mint", trace.WithAttributes(
		attribute.Int64("ledger.asset_id", int64(asset)),
	))
	defer span.End()

	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		allowed, err := s.CheckPermission(ctx, asset, caller, models.PermissionMint)
		if err != nil {
			return err
		}
		if !allowed {
			return dErrors.New(dErrors.CodeNoMintPermission, "caller cannot mint this asset")
		}
		record, err := s.balances.Get(ctx, asset, to)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		if err := s.balances.SetFree(ctx, asset, to, arith.SaturatingAdd(record.Free, amount)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit minted amount")
		}
		return imbalance.NewPositive(s, amount, asset).Drop(ctx)
	})
	if err != nil {
		return s.reject(err)
	}

	s.logger.InfoContext(ctx, "supply minted",
		slog.String("asset_id", asset.String()),
		slog.String("to", to.String()),
		slog.Uint64("amount", uint64(amount)),
	)
	if s.metrics != nil {
		s.metrics.Mints.Inc()
	}
	s.emit(ctx, events.Minted(asset, to, amount))
	return nil
}

// Burn destroys supply: debits from's free balance (clamping at zero, the
// low-level primitives never fail on a shortfall) and decreases the asset's
// total issuance by amount. The caller must hold the Burn capability.
func (s *Service) Burn(ctx context.Context, caller domain.AccountID, asset domain.AssetID, from domain.AccountID, amount domain.Balance) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Burn", trace.WithAttributes(
		attribute.Int64("ledger.asset_id", int64(asset)),
	))
	defer span.End()

	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		allowed, err := s.CheckPermission(ctx, asset, caller, models.PermissionBurn)
		if err != nil {
			return err
		}
		if !allowed {
			return dErrors.New(dErrors.CodeNoBurnPermission, "caller cannot burn this asset")
		}
		record, err := s.balances.Get(ctx, asset, from)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		if err := s.balances.SetFree(ctx, asset, from, arith.SaturatingSub(record.Free, amount)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit burned amount")
		}
		return imbalance.NewNegative(s, amount, asset).Drop(ctx)
	})
	if err != nil {
		return s.reject(err)
	}

	s.logger.InfoContext(ctx, "supply burned",
		slog.String("asset_id", asset.String()),
		slog.String("from", from.String()),
		slog.Uint64("amount", uint64(amount)),
	)
	if s.metrics != nil {
		s.metrics.Burns.Inc()
	}
	s.emit(ctx, events.Burned(asset, from, amount))
	return nil
}

// DepositCreating credits an account's free balance and hands back the
// matching pending issuance increase. The caller owns the Imbalance and
// must settle it: drop it to reconcile, or offset it against an opposite
// one first.
func (s *Service) DepositCreating(ctx context.Context, asset domain.AssetID, to domain.AccountID, amount domain.Balance) (*imbalance.Imbalance, error) {
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, to)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		return s.balances.SetFree(ctx, asset, to, arith.SaturatingAdd(record.Free, amount))
	})
	if err != nil {
		return nil, err
	}
	return s.NewPositiveImbalance(amount, asset), nil
}

// Withdraw debits an account's free balance and hands back the matching
// pending issuance decrease. Fails with InsufficientBalance rather than
// clamping, so the returned Imbalance always matches the amount removed.
func (s *Service) Withdraw(ctx context.Context, asset domain.AssetID, from domain.AccountID, amount domain.Balance) (*imbalance.Imbalance, error) {
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.balances.Get(ctx, asset, from)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
		}
		if record.Free < amount {
			return dErrors.New(dErrors.CodeInsufficientBalance, "balance too low to withdraw amount")
		}
		return s.balances.SetFree(ctx, asset, from, record.Free-amount)
	})
	if err != nil {
		return nil, s.reject(err)
	}
	return s.NewNegativeImbalance(amount, asset), nil
}

// NewPositiveImbalance creates a pending issuance increase bound to this
// ledger's reconciler.
func (s *Service) NewPositiveImbalance(amount domain.Balance, asset domain.AssetID) *imbalance.Imbalance {
	return imbalance.NewPositive(s, amount, asset)
}

// NewNegativeImbalance creates a pending issuance decrease bound to this
// ledger's reconciler.
func (s *Service) NewNegativeImbalance(amount domain.Balance, asset domain.AssetID) *imbalance.Imbalance {
	return imbalance.NewNegative(s, amount, asset)
}

// IncreaseIssuance adds amount to an asset's total issuance, saturating at
// the maximum. Part of the imbalance.Reconciler contract; a record for an
// unknown asset is not created.
func (s *Service) IncreaseIssuance(ctx context.Context, asset domain.AssetID, amount domain.Balance) error {
	return s.adjustIssuance(ctx, asset, amount, false)
}

// DecreaseIssuance removes amount from an asset's total issuance, clamping
// at zero. Part of the imbalance.Reconciler contract.
func (s *Service) DecreaseIssuance(ctx context.Context, asset domain.AssetID, amount domain.Balance) error {
	return s.adjustIssuance(ctx, asset, amount, true)
}

func (s *Service) adjustIssuance(ctx context.Context, asset domain.AssetID, amount domain.Balance, negative bool) error {
	record, err := s.assets.Get(ctx, asset)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Settling against an unregistered asset (including the unset
		// sentinel id) has nothing to reconcile into.
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	if negative {
		record.TotalIssuance = arith.SaturatingSub(record.TotalIssuance, amount)
	} else {
		record.TotalIssuance = arith.SaturatingAdd(record.TotalIssuance, amount)
	}
	if err := s.assets.Put(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store issuance")
	}
	return nil
}
