// Package domain defines the typed identifiers shared by every ledger
// component. Keeping them distinct types stops an account id from being
// passed where an asset id is expected; the compiler enforces it.
package domain

import (
	"strconv"

	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
)

// AssetID identifies a fungible asset class. IDs below the configured
// reserved threshold are chosen explicitly by privileged callers; IDs at or
// above it are allocated from the monotonic counter.
type AssetID uint32

// AccountID identifies a balance holder. The zero value is the system
// default account, which owns reserved assets created without an explicit
// owner.
type AccountID uint64

// Balance is an unsigned asset amount. All balance arithmetic is saturating
// or checked; Balance never goes negative.
type Balance uint64

// DefaultAccountID owns reserved assets when no owner is given.
const DefaultAccountID AccountID = 0

// MaxAssetID is the exhaustion guard for the auto-assignment counter.
const MaxAssetID AssetID = ^AssetID(0)

// ParseAssetID parses a decimal asset id as received at a trust boundary.
func ParseAssetID(s string) (AssetID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "asset id is required")
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "asset id must be an unsigned integer")
	}
	return AssetID(v), nil
}

// ParseAccountID parses a decimal account id.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "account id must be an unsigned integer")
	}
	return AccountID(v), nil
}

func (a AssetID) String() string   { return strconv.FormatUint(uint64(a), 10) }
func (a AccountID) String() string { return strconv.FormatUint(uint64(a), 10) }
