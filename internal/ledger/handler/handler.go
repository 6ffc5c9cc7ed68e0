// Package handler translates the ledger HTTP API into engine calls. It
// resolves the authenticated principal, decodes bodies, and maps coded
// errors to responses; every ledger rule lives below it in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/httputil"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

// Service defines the ledger operations the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, caller domain.AccountID, opts models.AssetOptions) (domain.AssetID, error)
	CreateReserved(ctx context.Context, id domain.AssetID, opts models.AssetOptions) error
	GetAsset(ctx context.Context, asset domain.AssetID) (models.Asset, error)
	FreeBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID) (domain.Balance, error)
	ReservedBalance(ctx context.Context, asset domain.AssetID, account domain.AccountID) (domain.Balance, error)
	Transfer(ctx context.Context, asset domain.AssetID, origin, to domain.AccountID, amount domain.Balance) error
	Mint(ctx context.Context, caller domain.AccountID, asset domain.AssetID, to domain.AccountID, amount domain.Balance) error
	Burn(ctx context.Context, caller domain.AccountID, asset domain.AssetID, from domain.AccountID, amount domain.Balance) error
	Reserve(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) error
	Unreserve(ctx context.Context, asset domain.AssetID, who domain.AccountID, amount domain.Balance) (domain.Balance, error)
	UpdatePermission(ctx context.Context, caller domain.AccountID, asset domain.AssetID, newSet models.PermissionSet) error
}

// Handler wires ledger endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/assets", h.HandleCreate)
	r.Post("/assets/reserved", h.HandleCreateReserved)
	r.Get("/assets/{assetID}", h.HandleGetAsset)
	r.Get("/assets/{assetID}/balances/{accountID}", h.HandleGetBalance)
	r.Post("/assets/{assetID}/transfer", h.HandleTransfer)
	r.Post("/assets/{assetID}/mint", h.HandleMint)
	r.Post("/assets/{assetID}/burn", h.HandleBurn)
	r.Post("/assets/{assetID}/reserve", h.HandleReserve)
	r.Post("/assets/{assetID}/unreserve", h.HandleUnreserve)
	r.Put("/assets/{assetID}/permissions", h.HandleUpdatePermissions)
}

// caller resolves the authenticated principal and requires it to be a
// concrete account.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	principal, ok := requestcontext.Caller(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return 0, false
	}
	if principal.Root {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "operation requires an account caller"))
		return 0, false
	}
	return principal.Account, true
}

// requireRoot resolves the authenticated principal and requires root.
func (h *Handler) requireRoot(w http.ResponseWriter, r *http.Request) bool {
	principal, ok := requestcontext.Caller(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return false
	}
	if !principal.Root {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "operation requires the root caller"))
		return false
	}
	return true
}

// assetParam parses the {assetID} path segment.
func (h *Handler) assetParam(w http.ResponseWriter, r *http.Request) (domain.AssetID, bool) {
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// HandleCreate handles POST /assets: register an asset under the next
// auto-assigned id, crediting the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateAssetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	assetID, err := h.service.Create(ctx, caller, req.Options())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreateAssetResponse{AssetID: uint32(assetID)})
}

// HandleCreateReserved handles POST /assets/reserved: register an asset
// under a chosen id below the reserved threshold. Root only.
func (h *Handler) HandleCreateReserved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.requireRoot(w, r) {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateReservedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	assetID := domain.AssetID(req.AssetID)
	if err := h.service.CreateReserved(ctx, assetID, req.Options()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreateAssetResponse{AssetID: req.AssetID})
}

// HandleGetAsset handles GET /assets/{assetID}.
func (h *Handler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	record, err := h.service.GetAsset(r.Context(), assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAsset(record))
}

// HandleGetBalance handles GET /assets/{assetID}/balances/{accountID}.
// Unknown pairs read as zero, matching the ledger's implicit records.
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	accountID, err := domain.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	free, err := h.service.FreeBalance(ctx, assetID, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reserved, err := h.service.ReservedBalance(ctx, assetID, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record := models.BalanceRecord{Free: free, Reserved: reserved}
	httputil.WriteJSON(w, http.StatusOK, FromBalance(assetID, accountID, record))
}

// HandleTransfer handles POST /assets/{assetID}/transfer: move funds from
// the caller's free balance.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.Transfer(ctx, assetID, caller, domain.AccountID(req.To), domain.Balance(req.Amount))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMint handles POST /assets/{assetID}/mint.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.Mint(ctx, caller, assetID, domain.AccountID(req.To), domain.Balance(req.Amount))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBurn handles POST /assets/{assetID}/burn.
func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BurnRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.Burn(ctx, caller, assetID, domain.AccountID(req.From), domain.Balance(req.Amount))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReserve handles POST /assets/{assetID}/reserve: set aside part of
// the caller's own free balance.
func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReserveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Reserve(ctx, assetID, caller, domain.Balance(req.Amount)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnreserve handles POST /assets/{assetID}/unreserve. The shortfall
// in the response mirrors the engine's never-failing contract.
func (h *Handler) HandleUnreserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UnreserveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	shortfall, err := h.service.Unreserve(ctx, assetID, caller, domain.Balance(req.Amount))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UnreserveResponse{Shortfall: uint64(shortfall)})
}

// HandleUpdatePermissions handles PUT /assets/{assetID}/permissions.
func (h *Handler) HandleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdatePermissionsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.UpdatePermission(ctx, caller, assetID, req.Permissions.ToSet()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
