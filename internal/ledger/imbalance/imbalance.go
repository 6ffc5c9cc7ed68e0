// Package imbalance implements the linear value type that makes issuance
// changes explicit. An Imbalance is a pending, not-yet-reconciled change to
// one asset's total issuance: positive for newly created supply, negative
// for destroyed supply. Every Imbalance must be consumed exactly once —
// merged into another, offset against the opposite polarity, or Dropped,
// which reconciles its amount into the asset's total issuance.
//
// Go has no guaranteed destructors, so consumption is explicit: whoever
// creates an Imbalance owns it until Drop. Outstanding() counts live
// unreconciled values; tests assert it returns to zero.
package imbalance

import (
	"context"
	"sync/atomic"

	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/arith"
)

// Sign is the polarity of an Imbalance's effect on total issuance.
type Sign int8

const (
	Positive Sign = 1
	Negative Sign = -1
)

// Reconciler applies a settled imbalance to an asset's total issuance.
// The ledger service implements this against its asset store.
type Reconciler interface {
	IncreaseIssuance(ctx context.Context, asset domain.AssetID, amount domain.Balance) error
	DecreaseIssuance(ctx context.Context, asset domain.AssetID, amount domain.Balance) error
}

// unsetAssetID is the wildcard sentinel: a zero imbalance carries it and
// adopts its peer's asset id on merge/subsume/offset.
const unsetAssetID domain.AssetID = 0

var (
	outstanding atomic.Int64
	strictMode  atomic.Bool
)

// Outstanding returns the number of live, unreconciled imbalances. The
// leak check for tests: it must be zero whenever no operation is mid-flight.
func Outstanding() int64 { return outstanding.Load() }

// SetStrict toggles the cross-asset contract check. Strict mode panics on
// a merge/subsume/offset between different asset ids, catching programmer
// error in development and tests. Lenient mode (the default) leaves both
// operands untouched so each still reconciles on Drop — a mismatch can
// never silently destroy supply.
func SetStrict(on bool) { strictMode.Store(on) }

// Imbalance is a pending issuance change for one asset. The zero amount
// with the unset asset id acts as an identity element for merge.
type Imbalance struct {
	sign    Sign
	amount  domain.Balance
	assetID domain.AssetID
	rec     Reconciler
	settled bool
}

// NewPositive creates a pending issuance increase.
func NewPositive(rec Reconciler, amount domain.Balance, asset domain.AssetID) *Imbalance {
	return newImbalance(Positive, rec, amount, asset)
}

// NewNegative creates a pending issuance decrease.
func NewNegative(rec Reconciler, amount domain.Balance, asset domain.AssetID) *Imbalance {
	return newImbalance(Negative, rec, amount, asset)
}

// ZeroPositive is the positive identity element: amount 0, asset unset.
func ZeroPositive(rec Reconciler) *Imbalance {
	return newImbalance(Positive, rec, 0, unsetAssetID)
}

// ZeroNegative is the negative identity element.
func ZeroNegative(rec Reconciler) *Imbalance {
	return newImbalance(Negative, rec, 0, unsetAssetID)
}

func newImbalance(sign Sign, rec Reconciler, amount domain.Balance, asset domain.AssetID) *Imbalance {
	outstanding.Add(1)
	return &Imbalance{sign: sign, amount: amount, assetID: asset, rec: rec}
}

// Sign returns the polarity.
func (i *Imbalance) Sign() Sign { return i.sign }

// Peek reads the pending amount without consuming the imbalance.
func (i *Imbalance) Peek() domain.Balance { return i.amount }

// AssetID returns the asset this imbalance belongs to (0 when unset).
func (i *Imbalance) AssetID() domain.AssetID { return i.assetID }

// compatible reports whether two imbalances may combine: either side may
// carry the unset sentinel, otherwise the ids must match.
func (i *Imbalance) compatible(other *Imbalance) bool {
	return i.assetID == unsetAssetID || other.assetID == unsetAssetID || i.assetID == other.assetID
}

// consume retires an imbalance without reconciliation; its value has been
// absorbed into another, or cancelled exactly.
func consume(x *Imbalance) {
	if !x.settled {
		x.settled = true
		outstanding.Add(-1)
	}
}

// Merge combines a same-polarity imbalance into the receiver and returns
// the receiver. If either side carries the unset sentinel the result adopts
// the other's asset id. Mismatched asset ids panic in strict mode; in
// lenient mode the receiver is returned unchanged and other stays live.
// Merging opposite polarities is always a programming error.
func (i *Imbalance) Merge(other *Imbalance) *Imbalance {
	i.Subsume(other)
	return i
}

// Subsume is Merge without the return value.
func (i *Imbalance) Subsume(other *Imbalance) {
	if other == nil {
		return
	}
	if i.sign != other.sign {
		panic("imbalance: cannot merge opposite polarities, use Offset")
	}
	if !i.compatible(other) {
		if strictMode.Load() {
			panic("imbalance: asset id mismatch")
		}
		return
	}

	if i.assetID == unsetAssetID {
		i.assetID = other.assetID
	}
	i.amount = arith.SaturatingAdd(i.amount, other.amount)
	consume(other)
}

// Offset cancels the receiver against an opposite-polarity imbalance and
// returns the single residual: the polarity of whichever side had the
// larger amount, carrying |a-b|. An exact cancel yields a zero positive
// residual. Mismatched asset ids panic in strict mode; in lenient mode the
// receiver is returned unchanged and other stays live.
func (i *Imbalance) Offset(other *Imbalance) (*Imbalance, error) {
	if other == nil {
		return i, nil
	}
	if i.sign == other.sign {
		panic("imbalance: offset requires opposite polarities, use Merge")
	}
	if !i.compatible(other) {
		if strictMode.Load() {
			panic("imbalance: asset id mismatch")
		}
		return i, nil
	}

	asset := i.assetID
	if asset == unsetAssetID {
		asset = other.assetID
	}

	switch {
	case i.amount > other.amount:
		i.amount -= other.amount
		i.assetID = asset
		consume(other)
		return i, nil
	case other.amount > i.amount:
		other.amount -= i.amount
		other.assetID = asset
		consume(i)
		return other, nil
	default:
		// Exact cancel: zero residual, positive by convention.
		consume(other)
		if i.sign == Positive {
			i.amount = 0
			i.assetID = asset
			return i, nil
		}
		consume(i)
		return NewPositive(i.rec, 0, asset), nil
	}
}

// Drop settles the imbalance, reconciling its amount into the asset's
// total issuance: positive increases it, negative decreases it. Dropping
// an already-settled imbalance is a no-op, so the reconciliation happens
// exactly once.
func (i *Imbalance) Drop(ctx context.Context) error {
	if i.settled {
		return nil
	}
	i.settled = true
	outstanding.Add(-1)

	if i.amount == 0 || i.rec == nil {
		return nil
	}
	if i.sign == Positive {
		return i.rec.IncreaseIssuance(ctx, i.assetID, i.amount)
	}
	return i.rec.DecreaseIssuance(ctx, i.assetID, i.amount)
}
