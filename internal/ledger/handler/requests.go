package handler

import (
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// PermissionsRequest maps capability slots to account ids. A null slot
// means nobody holds that capability.
type PermissionsRequest struct {
	Update *uint64 `json:"update"`
	Mint   *uint64 `json:"mint"`
	Burn   *uint64 `json:"burn"`
}

// ToSet converts the request body into the domain permission set.
func (p PermissionsRequest) ToSet() models.PermissionSet {
	var set models.PermissionSet
	if p.Update != nil {
		set.Update = models.AddressOwner(domain.AccountID(*p.Update))
	}
	if p.Mint != nil {
		set.Mint = models.AddressOwner(domain.AccountID(*p.Mint))
	}
	if p.Burn != nil {
		set.Burn = models.AddressOwner(domain.AccountID(*p.Burn))
	}
	return set
}

// CreateAssetRequest is the body for POST /assets.
type CreateAssetRequest struct {
	InitialIssuance uint64             `json:"initial_issuance"`
	Permissions     PermissionsRequest `json:"permissions"`
}

// Options converts the request into creation options.
func (r *CreateAssetRequest) Options() models.AssetOptions {
	return models.AssetOptions{
		InitialIssuance: domain.Balance(r.InitialIssuance),
		Permissions:     r.Permissions.ToSet(),
	}
}

// CreateReservedRequest is the body for POST /assets/reserved.
type CreateReservedRequest struct {
	AssetID         uint32             `json:"asset_id"`
	InitialIssuance uint64             `json:"initial_issuance"`
	Permissions     PermissionsRequest `json:"permissions"`
}

// Options converts the request into creation options.
func (r *CreateReservedRequest) Options() models.AssetOptions {
	return models.AssetOptions{
		InitialIssuance: domain.Balance(r.InitialIssuance),
		Permissions:     r.Permissions.ToSet(),
	}
}

// TransferRequest is the body for POST /assets/{assetID}/transfer.
type TransferRequest struct {
	To     uint64 `json:"to"`
	Amount uint64 `json:"amount"`
}

// Validate rejects a zero amount before the request reaches the ledger.
// The engine enforces the same precondition; failing here keeps the
// rejection out of the atomic path.
func (r *TransferRequest) Validate() error {
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "amount must be nonzero")
	}
	return nil
}

// MintRequest is the body for POST /assets/{assetID}/mint.
type MintRequest struct {
	To     uint64 `json:"to"`
	Amount uint64 `json:"amount"`
}

// BurnRequest is the body for POST /assets/{assetID}/burn.
type BurnRequest struct {
	From   uint64 `json:"from"`
	Amount uint64 `json:"amount"`
}

// ReserveRequest is the body for POST /assets/{assetID}/reserve.
type ReserveRequest struct {
	Amount uint64 `json:"amount"`
}

// UnreserveRequest is the body for POST /assets/{assetID}/unreserve.
type UnreserveRequest struct {
	Amount uint64 `json:"amount"`
}

// UpdatePermissionsRequest is the body for PUT /assets/{assetID}/permissions.
type UpdatePermissionsRequest struct {
	Permissions PermissionsRequest `json:"permissions"`
}
