package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// Create registers an asset under the next auto-assigned id and credits the
// caller's account with the initial issuance.
func (s *Service) Create(ctx context.Context, caller domain.AccountID, opts models.AssetOptions) (domain.AssetID, error) {
	return s.CreateAsset(ctx, nil, &caller, opts)
}

// CreateReserved registers an asset under a caller-chosen id below the
// reserved threshold. The initial issuance is credited to the system
// default account.
func (s *Service) CreateReserved(ctx context.Context, id domain.AssetID, opts models.AssetOptions) error {
	_, err := s.CreateAsset(ctx, &id, nil, opts)
	return err
}

// CreateAsset is the shared creation routine behind Create and
// CreateReserved. A nil requestedID takes the auto-assignment path; a nil
// owner credits the system default account. On success the asset record is
// written, the owner's free balance is credited with the initial issuance,
// and only the auto path advances the counter.
func (s *Service) CreateAsset(ctx context.Context, requestedID *domain.AssetID, owner *domain.AccountID, opts models.AssetOptions) (domain.AssetID, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreateAsset")
	defer span.End()

	target := domain.DefaultAccountID
	if owner != nil {
		target = *owner
	}

	var assetID domain.AssetID
	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		var err error
		if requestedID != nil {
			assetID = *requestedID
			err = s.claimReservedID(ctx, assetID)
		} else {
			assetID, err = s.allocateNextID(ctx)
		}
		if err != nil {
			return err
		}

		record := models.Asset{
			ID:            assetID,
			TotalIssuance: opts.InitialIssuance,
			Permissions:   models.VersionedPermissions(opts.Permissions),
		}
		if err := s.assets.Put(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store asset")
		}
		if err := s.balances.SetFree(ctx, assetID, target, opts.InitialIssuance); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit initial issuance")
		}
		return nil
	})
	if err != nil {
		return 0, s.reject(err)
	}

	span.SetAttributes(attribute.Int64("ledger.asset_id", int64(assetID)))
	s.logger.InfoContext(ctx, "asset created",
		slog.String("asset_id", assetID.String()),
		slog.String("owner", target.String()),
		slog.Uint64("initial_issuance", uint64(opts.InitialIssuance)),
	)
	if s.metrics != nil {
		s.metrics.AssetsCreated.Inc()
	}
	s.emit(ctx, events.AssetCreated(assetID, target, opts.InitialIssuance))
	return assetID, nil
}

// claimReservedID validates a caller-chosen id: it must sit below the
// reserved threshold and must not already exist.
func (s *Service) claimReservedID(ctx context.Context, id domain.AssetID) error {
	if id >= s.cfg.ReservedThreshold {
		return dErrors.New(dErrors.CodeIdUnavailable, "asset id is outside the reserved range")
	}
	taken, err := s.assets.Exists(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check asset id")
	}
	if taken {
		return dErrors.New(dErrors.CodeIdAlreadyTaken, "asset id already taken")
	}
	return nil
}

// allocateNextID takes the counter value and advances it by one. The
// counter never wraps: allocation fails once it reaches the maximum id.
func (s *Service) allocateNextID(ctx context.Context) (domain.AssetID, error) {
	next, err := s.assets.NextID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read asset id counter")
	}
	if next == domain.MaxAssetID {
		return 0, dErrors.New(dErrors.CodeNoIdAvailable, "no asset ids left to assign")
	}
	if err := s.assets.SetNextID(ctx, next+1); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance asset id counter")
	}
	return next, nil
}

// UpdatePermission replaces an asset's permission set. Only the current
// Update capability holder may call it, including to grant capabilities to
// themself.
func (s *Service) UpdatePermission(ctx context.Context, caller domain.AccountID, asset domain.AssetID, newSet models.PermissionSet) error {
	ctx, span := s.tracer.Start(ctx, "ledger.UpdatePermission", trace.WithAttributes(
		attribute.Int64("ledger.asset_id", int64(asset)),
	))
	defer span.End()

	err := s.atomic.Atomically(ctx, func(ctx context.Context) error {
		record, err := s.GetAsset(ctx, asset)
		if err != nil {
			return err
		}
		if !record.Permissions.Latest().Update.Is(caller) {
			return dErrors.New(dErrors.CodeNoUpdatePermission, "caller cannot update permissions for this asset")
		}
		record.Permissions = models.VersionedPermissions(newSet)
		if err := s.assets.Put(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store permissions")
		}
		return nil
	})
	if err != nil {
		return s.reject(err)
	}

	s.logger.InfoContext(ctx, "asset permissions updated",
		slog.String("asset_id", asset.String()),
		slog.String("caller", caller.String()),
	)
	s.emit(ctx, events.PermissionUpdated(asset, newSet))
	return nil
}
