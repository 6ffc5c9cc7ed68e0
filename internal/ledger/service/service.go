// Package service implements the ledger engine: asset registration, balance
// mutation primitives, permission checks, and issuance reconciliation.
// Authorization happens above this layer; every entry point takes the
// already-authenticated caller as an explicit parameter.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/metrics"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/ports"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
)

// Config carries the process-wide ledger constants, fixed at startup.
type Config struct {
	// StakingAssetID and SpendingAssetID are well-known reserved assets
	// used by other subsystems (fees, bonding).
	StakingAssetID  domain.AssetID
	SpendingAssetID domain.AssetID

	// ReservedThreshold splits the id space: caller-chosen ids live below
	// it, the auto-assignment counter starts at it.
	ReservedThreshold domain.AssetID
}

// Service orchestrates the ledger stores. All mutations run inside the
// Atomic boundary: preconditions are validated first and no write lands on
// any error path.
type Service struct {
	cfg      Config
	assets   ports.AssetStore
	balances ports.BalanceStore
	atomic   ports.Atomic

	logger    *slog.Logger
	publisher ports.EventPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(cfg Config, assets ports.AssetStore, balances ports.BalanceStore, atomic ports.Atomic, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		assets:   assets,
		balances: balances,
		atomic:   atomic,
		logger:   slog.Default(),
		tracer:   otel.Tracer("ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StakingAssetID returns the well-known staking asset id.
func (s *Service) StakingAssetID() domain.AssetID { return s.cfg.StakingAssetID }

// SpendingAssetID returns the well-known spending asset id.
func (s *Service) SpendingAssetID() domain.AssetID { return s.cfg.SpendingAssetID }

// ReservedThreshold returns the boundary below which ids are caller-chosen.
func (s *Service) ReservedThreshold() domain.AssetID { return s.cfg.ReservedThreshold }

// GetAsset retrieves the registry record for one asset.
func (s *Service) GetAsset(ctx context.Context, asset domain.AssetID) (models.Asset, error) {
	record, err := s.assets.Get(ctx, asset)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Asset{}, dErrors.New(dErrors.CodeNotFound, "asset not found")
	}
	if err != nil {
		return models.Asset{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return record, nil
}

// FreeBalance returns the spendable balance, zero if no record exists.
func (s *Service) FreeBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID) (domain.Balance, error) {
	record, err := s.balances.Get(ctx, asset, account)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	return record.Free, nil
}

// ReservedBalance returns the reserved balance, zero if no record exists.
func (s *Service) ReservedBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID) (domain.Balance, error) {
	record, err := s.balances.Get(ctx, asset, account)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	return record.Reserved, nil
}

// TotalBalance returns free plus reserved, computed with saturating
// addition. Derived, never stored.
func (s *Service) TotalBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID) (domain.Balance, error) {
	record, err := s.balances.Get(ctx, asset, account)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	return record.Total(), nil
}

// TotalIssuance returns the asset's total issuance, zero for an unknown
// asset.
func (s *Service) TotalIssuance(ctx context.Context, asset domain.AssetID) (domain.Balance, error) {
	record, err := s.assets.Get(ctx, asset)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return record.TotalIssuance, nil
}

// CheckPermission reports whether account holds the given capability on
// asset. Unknown assets grant nothing.
func (s *Service) CheckPermission(ctx context.Context, asset domain.AssetID, account domain.AccountID, action models.PermissionType) (bool, error) {
	record, err := s.assets.Get(ctx, asset)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return record.Permissions.Latest().Owner(action).Is(account), nil
}

// emit publishes a ledger notification. Publishing is best-effort: the
// ledger mutation has already committed, so a failed emit is logged and
// swallowed.
func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit ledger event",
			slog.String("event_type", string(event.Type)),
			slog.String("asset_id", event.AssetID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// reject counts a precondition failure and returns the error unchanged.
func (s *Service) reject(err error) error {
	if s.metrics != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
	}
	return err
}
