// Package swaption prices European swaptions under a one-factor
// Hull-White model using Jamshidian decomposition, with a Gauss-Hermite
// quadrature fallback when the decomposition's uniqueness condition
// cannot be established.
//
// All pricing quantities are batched: one value per independent
// scenario, computed elementwise across the batch. Times are year
// fractions from the deal base date.
package swaption

import (
	"errors"
	"reflect"
	"time"

	"github.com/meenmo/hwlib/batch"
	"github.com/meenmo/hwlib/utils"
)

var (
	// ErrNilCurve is returned when a required curve handle is nil.
	ErrNilCurve = errors.New("nil curve handle")
	// ErrNilModel is returned when the model parameter source is nil.
	ErrNilModel = errors.New("nil model parameters")
	// ErrNilSchedule is returned when the swap schedule is nil or empty.
	ErrNilSchedule = errors.New("nil or empty schedule")
	// ErrNonVanilla is returned at registration for swaption structures
	// the pricer does not support (compounding, multiple resets per
	// period, mismatched leg currencies).
	ErrNonVanilla = errors.New("non-vanilla swaption structure")
	// ErrMissingFixing is returned when a started floating period must
	// be valued but no fixing is available for its reset date.
	ErrMissingFixing = errors.New("missing rate fixing")
)

// CurveHandle produces batched discount or forward factors for a
// payment at payTime observed at valuationTime.
type CurveHandle interface {
	Get(valuationTime, payTime float64) batch.Vector
}

// ModelParameters is the Hull-White parameter source: B is the
// mean-reversion loading, Zeta the integrated factor variance. Both are
// pure functions of (valuationTime, horizonTime) returning one value
// per scenario.
type ModelParameters interface {
	B(valuationTime, horizonTime float64) batch.Vector
	Zeta(valuationTime, horizonTime float64) batch.Vector
}

// FXHandle produces a batched currency conversion factor at a
// valuation time, applied to final PVs only.
type FXHandle interface {
	Get(valuationTime float64) batch.Vector
}

// FixingFeed supplies historical rate fixings for floating periods
// whose reset date lies before the valuation date.
type FixingFeed interface {
	// RateAt returns the batched simple rate fixed at fixingTime, and
	// whether a fixing exists for that time.
	RateAt(fixingTime float64) (batch.Vector, bool)
}

// ResultsSink receives one batched PV per valuation date, in
// increasing date order, followed by a terminal Complete call.
type ResultsSink interface {
	Append(date time.Time, pv batch.Vector) error
	Complete() error
}

// CashSink receives batched realized-cash amounts when cash collection
// is enabled.
type CashSink interface {
	Collect(date time.Time, cash batch.Vector) error
}

// Position distinguishes payer and receiver swaptions.
type Position string

const (
	// Payer holds the right to pay fixed and receive floating.
	Payer Position = "PAYER"
	// Receiver holds the right to receive fixed and pay floating.
	Receiver Position = "RECEIVER"
)

// paySign is +1 for payer, -1 for receiver.
func (p Position) paySign() float64 {
	if p == Payer {
		return 1
	}
	return -1
}

// Settlement distinguishes physical and cash settlement.
type Settlement string

const (
	SettlePhysical Settlement = "PHYSICAL"
	SettleCash     Settlement = "CASH"
)

// Side distinguishes bought and sold options.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// GridPoint is one valuation date with its model time.
type GridPoint struct {
	Date time.Time
	Time float64
}

// Swaption is the static deal parameter set for one European swaption.
type Swaption struct {
	Schedule *SwapSchedule

	ExpiryDate time.Time
	ExpiryTime float64

	// Settlement date/time; for physical settlement these equal expiry.
	SettlementDate time.Time
	SettlementTime float64

	Settlement Settlement
	Position   Position
	Side       Side

	// SwapRateOverride, when non-nil, substitutes a batched rate vector
	// for the schedule's static fixed rates (re-bootstrapping
	// workflows). One value per scenario.
	SwapRateOverride batch.Vector
}

// ModelTime converts a date to a model time: the ACT/365F year
// fraction from the base date.
func ModelTime(base, d time.Time) float64 {
	return utils.YearFraction(base, d, "ACT/365F")
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
