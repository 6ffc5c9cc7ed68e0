package handler

import (
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// PermissionsResponse mirrors PermissionsRequest: a null slot means the
// capability has no holder.
type PermissionsResponse struct {
	Update *uint64 `json:"update"`
	Mint   *uint64 `json:"mint"`
	Burn   *uint64 `json:"burn"`
}

func permissionsFromSet(set models.PermissionSet) PermissionsResponse {
	var resp PermissionsResponse
	if set.Update.Set {
		v := uint64(set.Update.Account)
		resp.Update = &v
	}
	if set.Mint.Set {
		v := uint64(set.Mint.Account)
		resp.Mint = &v
	}
	if set.Burn.Set {
		v := uint64(set.Burn.Account)
		resp.Burn = &v
	}
	return resp
}

// CreateAssetResponse is the response for both creation endpoints.
type CreateAssetResponse struct {
	AssetID uint32 `json:"asset_id"`
}

// AssetResponse is the response for GET /assets/{assetID}.
type AssetResponse struct {
	AssetID       uint32              `json:"asset_id"`
	TotalIssuance uint64              `json:"total_issuance"`
	Permissions   PermissionsResponse `json:"permissions"`
}

// FromAsset converts a registry record into its HTTP shape.
func FromAsset(asset models.Asset) AssetResponse {
	return AssetResponse{
		AssetID:       uint32(asset.ID),
		TotalIssuance: uint64(asset.TotalIssuance),
		Permissions:   permissionsFromSet(asset.Permissions.Latest()),
	}
}

// BalanceResponse is the response for GET /assets/{assetID}/balances/{accountID}.
type BalanceResponse struct {
	AssetID   uint32 `json:"asset_id"`
	AccountID uint64 `json:"account_id"`
	Free      uint64 `json:"free"`
	Reserved  uint64 `json:"reserved"`
	Total     uint64 `json:"total"`
}

// FromBalance converts a balance record into its HTTP shape.
func FromBalance(asset domain.AssetID, account domain.AccountID, record models.BalanceRecord) BalanceResponse {
	return BalanceResponse{
		AssetID:   uint32(asset),
		AccountID: uint64(account),
		Free:      uint64(record.Free),
		Reserved:  uint64(record.Reserved),
		Total:     uint64(record.Total()),
	}
}

// UnreserveResponse reports how much of the requested amount could not be
// released.
type UnreserveResponse struct {
	Shortfall uint64 `json:"shortfall"`
}
