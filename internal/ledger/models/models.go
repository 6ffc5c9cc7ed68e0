// Package models defines the ledger's persistent record types: assets,
// per-account balance records, and the permission model gating privileged
// mutations.
package models

import (
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/arith"
)

// PermissionType names a privileged capability on an asset.
type PermissionType string

const (
	PermissionMint   PermissionType = "mint"
	PermissionBurn   PermissionType = "burn"
	PermissionUpdate PermissionType = "update"
)

// Owner names the holder of a capability, or nobody. The zero value is
// "no owner", which denies the capability to everyone.
type Owner struct {
	Account domain.AccountID `json:"account"`
	Set     bool             `json:"set"`
}

// NoOwner denies the capability to everyone.
func NoOwner() Owner { return Owner{} }

// AddressOwner grants the capability to a single account.
func AddressOwner(account domain.AccountID) Owner {
	return Owner{Account: account, Set: true}
}

// Is reports whether the capability is held by the given account.
func (o Owner) Is(account domain.AccountID) bool {
	return o.Set && o.Account == account
}

// PermissionSet holds the three capability slots of an asset.
type PermissionSet struct {
	Update Owner `json:"update"`
	Mint   Owner `json:"mint"`
	Burn   Owner `json:"burn"`
}

// SinglePermissionSet grants all three capabilities to one account.
func SinglePermissionSet(account domain.AccountID) PermissionSet {
	owner := AddressOwner(account)
	return PermissionSet{Update: owner, Mint: owner, Burn: owner}
}

// Owner returns the capability slot for the given permission type.
func (p PermissionSet) Owner(t PermissionType) Owner {
	switch t {
	case PermissionMint:
		return p.Mint
	case PermissionBurn:
		return p.Burn
	case PermissionUpdate:
		return p.Update
	default:
		return NoOwner()
	}
}

// AssetOptions is the creation-time parameter bundle. It is applied once
// and not persisted as such.
type AssetOptions struct {
	InitialIssuance domain.Balance
	Permissions     PermissionSet
}

// Asset is the per-asset registry record. Permissions are stored in their
// versioned encoding; read through Latest().
type Asset struct {
	ID            domain.AssetID
	TotalIssuance domain.Balance
	Permissions   PermissionVersions
}

// BalanceRecord holds the free and reserved balances of one (asset,
// account) pair. Records are created implicitly on first write; a missing
// record reads as zero.
type BalanceRecord struct {
	Free     domain.Balance
	Reserved domain.Balance
}

// Total is the derived full balance. Computed with saturating addition;
// it is never stored.
func (b BalanceRecord) Total() domain.Balance {
	return arith.SaturatingAdd(b.Free, b.Reserved)
}
