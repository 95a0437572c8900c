package swaption

import (
	"fmt"

	"github.com/meenmo/hwlib/batch"
)

// UnderlyingLegs values the swap's fixed and floating legs directly
// off the schedule, for valuation on or after the option expiry.
// Payments at exactly the valuation time count as realized cash, not
// PV.
type UnderlyingLegs struct {
	sched    *SwapSchedule
	discount CurveHandle
	forecast CurveHandle
	fixings  FixingFeed // may be nil when no period has started
	override batch.Vector
}

// NewUnderlyingLegs wires the leg valuer. fixings may be nil if no
// valuation will occur inside a started floating period.
func NewUnderlyingLegs(sched *SwapSchedule, discount, forecast CurveHandle, fixings FixingFeed, rateOverride batch.Vector) (*UnderlyingLegs, error) {
	if sched == nil || len(sched.Dates) == 0 {
		return nil, fmt.Errorf("NewUnderlyingLegs: %w", ErrNilSchedule)
	}
	if isNilInterface(discount) || isNilInterface(forecast) {
		return nil, fmt.Errorf("NewUnderlyingLegs: %w", ErrNilCurve)
	}
	return &UnderlyingLegs{
		sched:    sched,
		discount: discount,
		forecast: forecast,
		fixings:  fixings,
		override: rateOverride,
	}, nil
}

// fixedCoupon returns the batched fixed coupon amount for one schedule date.
func (u *UnderlyingLegs) fixedCoupon(d ScheduleDate, m int) batch.Vector {
	amount := batch.New(m)
	if d.FixedWeight == 0 {
		return amount
	}
	if u.override != nil {
		amount.AddScaled(d.FixedWeight, u.override)
	} else {
		amount.AddConst(d.FixedWeight * d.FixedRate)
	}
	return amount
}

// floatCoupon returns the batched floating coupon amount for one
// period, given the valuation time (which decides forward vs fixing).
func (u *UnderlyingLegs) floatCoupon(p FloatPeriod, valuationTime float64) (batch.Vector, error) {
	if p.StartTime >= valuationTime {
		// Unstarted period: simple forward off the forecast curve.
		start := u.forecast.Get(valuationTime, p.StartTime)
		end := u.forecast.Get(valuationTime, p.EndTime)
		amount := start.Clone()
		amount.Div(end)
		amount.AddConst(-1)
		amount.Scale(p.Notional * p.WeightRatio)
		return amount, nil
	}
	if u.fixings == nil {
		return nil, fmt.Errorf("floatCoupon: period starting at t=%.6f already reset: %w", p.StartTime, ErrMissingFixing)
	}
	rate, ok := u.fixings.RateAt(p.StartTime)
	if !ok {
		return nil, fmt.Errorf("floatCoupon: no fixing at t=%.6f: %w", p.StartTime, ErrMissingFixing)
	}
	amount := rate.Clone()
	amount.Scale(p.Notional * p.AccrualYF)
	return amount, nil
}

// FixedLegPV returns the PV at valuationTime of fixed coupons paying
// strictly after it.
func (u *UnderlyingLegs) FixedLegPV(valuationTime float64, scenarios int) batch.Vector {
	pv := batch.New(scenarios)
	for _, d := range u.sched.Dates {
		if d.Time <= valuationTime || d.FixedWeight == 0 {
			continue
		}
		amount := u.fixedCoupon(d, scenarios)
		amount.Mul(u.discount.Get(valuationTime, d.Time))
		pv.Add(amount)
	}
	return pv
}

// FloatLegPV returns the PV at valuationTime of floating coupons
// paying strictly after it.
func (u *UnderlyingLegs) FloatLegPV(valuationTime float64, scenarios int) (batch.Vector, error) {
	pv := batch.New(scenarios)
	for _, p := range u.sched.FloatPeriods {
		if p.PayTime <= valuationTime {
			continue
		}
		amount, err := u.floatCoupon(p, valuationTime)
		if err != nil {
			return nil, fmt.Errorf("FloatLegPV: %w", err)
		}
		amount.Mul(u.discount.Get(valuationTime, p.PayTime))
		pv.Add(amount)
	}
	return pv, nil
}

// FixedLegCash returns the fixed coupons paying exactly at valuationTime.
func (u *UnderlyingLegs) FixedLegCash(valuationTime float64, scenarios int) batch.Vector {
	cash := batch.New(scenarios)
	for _, d := range u.sched.Dates {
		if d.Time == valuationTime && d.FixedWeight != 0 {
			cash.Add(u.fixedCoupon(d, scenarios))
		}
	}
	return cash
}

// FloatLegCash returns the floating coupons paying exactly at valuationTime.
func (u *UnderlyingLegs) FloatLegCash(valuationTime float64, scenarios int) (batch.Vector, error) {
	cash := batch.New(scenarios)
	for _, p := range u.sched.FloatPeriods {
		if p.PayTime != valuationTime {
			continue
		}
		amount, err := u.floatCoupon(p, valuationTime)
		if err != nil {
			return nil, fmt.Errorf("FloatLegCash: %w", err)
		}
		cash.Add(amount)
	}
	return cash, nil
}
