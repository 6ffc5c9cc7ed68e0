// Package events defines the structured notifications the ledger emits and
// the publishers that carry them. The engine treats publishers as fire-and-
// forget sinks; how an event is logged or broadcast is the collaborator's
// concern.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// Type discriminates ledger notifications.
type Type string

const (
	TypeAssetCreated      Type = "asset_created"
	TypeTransferred       Type = "transferred"
	TypePermissionUpdated Type = "permission_updated"
	TypeMinted            Type = "minted"
	TypeBurned            Type = "burned"
)

// Event is one ledger notification. From/To/Amount are populated per type:
// Minted uses To, Burned uses From, Transferred uses both, AssetCreated
// uses To as the credited owner.
type Event struct {
	ID        uuid.UUID             `json:"id"`
	Type      Type                  `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	AssetID   domain.AssetID        `json:"asset_id"`
	From      domain.AccountID      `json:"from,omitempty"`
	To        domain.AccountID      `json:"to,omitempty"`
	Amount    domain.Balance        `json:"amount,omitempty"`
	Perms     *models.PermissionSet `json:"permissions,omitempty"`
}

func newEvent(t Type, asset domain.AssetID) Event {
	return Event{ID: uuid.New(), Type: t, Timestamp: time.Now().UTC(), AssetID: asset}
}

// AssetCreated notes a new asset credited to owner.
func AssetCreated(asset domain.AssetID, owner domain.AccountID, issuance domain.Balance) Event {
	e := newEvent(TypeAssetCreated, asset)
	e.To = owner
	e.Amount = issuance
	return e
}

// Transferred notes a free-balance transfer.
func Transferred(asset domain.AssetID, from, to domain.AccountID, amount domain.Balance) Event {
	e := newEvent(TypeTransferred, asset)
	e.From = from
	e.To = to
	e.Amount = amount
	return e
}

// PermissionUpdated notes a replaced permission set.
func PermissionUpdated(asset domain.AssetID, set models.PermissionSet) Event {
	e := newEvent(TypePermissionUpdated, asset)
	e.Perms = &set
	return e
}

// Minted notes newly issued supply credited to an account.
func Minted(asset domain.AssetID, to domain.AccountID, amount domain.Balance) Event {
	e := newEvent(TypeMinted, asset)
	e.To = to
	e.Amount = amount
	return e
}

// Burned notes destroyed supply debited from an account.
func Burned(asset domain.AssetID, from domain.AccountID, amount domain.Balance) Event {
	e := newEvent(TypeBurned, asset)
	e.From = from
	e.Amount = amount
	return e
}
