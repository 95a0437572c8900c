package swaption

import (
	"fmt"
	"math"

	"github.com/meenmo/hwlib/batch"
)

// Quantities holds the per-date batched pricing arrays derived from a
// swap schedule at one before-expiry valuation time. They depend on
// the valuation time and are recomputed at every date, never cached.
type Quantities struct {
	// Coupon, StdDev, Coeff and Discount are co-indexed 1:1 with the
	// schedule dates; each element is one batched value per scenario.
	Coupon   []batch.Vector
	StdDev   []batch.Vector
	Coeff    []batch.Vector
	Discount []batch.Vector

	// DiscountExpiry is the discount factor to the option expiry.
	DiscountExpiry batch.Vector

	// Scenarios is the batch size.
	Scenarios int
}

// BuildQuantities derives the per-date pricing arrays for one
// valuation time before expiry.
//
// For every schedule date i:
//
//	coupon[i]   = fixedWeight*rate + floatWeight - ratio terms at reset starts
//	stdDev[i]   = (B(t, s_i) - B(t, expiry)) * sqrt(Zeta(t, expiry))
//	coeff[i]    = DF(s_i)/DF(expiry) * exp(-stdDev[i]^2/2)
//	discount[i] = DF(s_i)
//
// where the ratio term at a floating period's reset start is
// DF(pay)*FW(start) / (DF(start)*FW(end)) scaled by the period's
// accrual/rate ratio and notional, with FW the forecast-curve factor.
// Curve lookups shared between contiguous periods are fetched once.
//
// rateOverride, when non-nil, substitutes for the schedule's static
// fixed rates (one value per scenario).
func BuildQuantities(sched *SwapSchedule, discount, forecast CurveHandle, model ModelParameters, valuationTime, expiryTime float64, rateOverride batch.Vector) (*Quantities, error) {
	if sched == nil || len(sched.Dates) == 0 {
		return nil, fmt.Errorf("BuildQuantities: %w", ErrNilSchedule)
	}
	if isNilInterface(discount) || isNilInterface(forecast) {
		return nil, fmt.Errorf("BuildQuantities: %w", ErrNilCurve)
	}
	if isNilInterface(model) {
		return nil, fmt.Errorf("BuildQuantities: %w", ErrNilModel)
	}

	bExpiry := model.B(valuationTime, expiryTime)
	sqrtZeta := model.Zeta(valuationTime, expiryTime)
	sqrtZeta.Sqrt()
	dfExpiry := discount.Get(valuationTime, expiryTime)

	m := len(dfExpiry)
	if len(bExpiry) != m || len(sqrtZeta) != m {
		return nil, fmt.Errorf("BuildQuantities: model batch %d does not match curve batch %d", len(bExpiry), m)
	}
	if rateOverride != nil && len(rateOverride) != m {
		return nil, fmt.Errorf("BuildQuantities: rate override batch %d does not match curve batch %d", len(rateOverride), m)
	}

	n := len(sched.Dates)
	q := &Quantities{
		Coupon:         make([]batch.Vector, n),
		StdDev:         make([]batch.Vector, n),
		Coeff:          make([]batch.Vector, n),
		Discount:       make([]batch.Vector, n),
		DiscountExpiry: dfExpiry,
		Scenarios:      m,
	}

	// Curve factors carried over from the previous floating period,
	// reused when its end/pay dates coincide with the next start.
	lastEndTime := math.NaN()
	lastPayTime := math.NaN()
	var lastForecastEnd, lastPayDiscount batch.Vector

	k := 0
	for i, d := range sched.Dates {
		coupon := batch.New(m)
		if d.FixedWeight != 0 {
			if rateOverride != nil {
				coupon.AddScaled(d.FixedWeight, rateOverride)
			} else {
				coupon.AddConst(d.FixedWeight * d.FixedRate)
			}
		}
		coupon.AddConst(d.FloatWeight)

		if k < len(sched.FloatPeriods) && sched.FloatPeriods[k].StartIndex == i {
			p := sched.FloatPeriods[k]

			var discountStart, forecastStart batch.Vector
			if p.StartTime == lastPayTime {
				discountStart = lastPayDiscount
			} else {
				discountStart = discount.Get(valuationTime, p.StartTime)
			}
			if p.StartTime == lastEndTime {
				forecastStart = lastForecastEnd
			} else {
				forecastStart = forecast.Get(valuationTime, p.StartTime)
			}
			forecastEnd := forecast.Get(valuationTime, p.EndTime)
			payDiscount := discount.Get(valuationTime, p.PayTime)

			ratio := payDiscount.Clone()
			ratio.Mul(forecastStart)
			ratio.Div(discountStart)
			ratio.Div(forecastEnd)
			coupon.AddScaled(-p.WeightRatio*p.Notional, ratio)

			q.Discount[p.PayIndex] = payDiscount

			lastEndTime, lastForecastEnd = p.EndTime, forecastEnd
			lastPayTime, lastPayDiscount = p.PayTime, payDiscount
			k++
		}
		q.Coupon[i] = coupon

		stdDev := model.B(valuationTime, d.Time)
		stdDev.Sub(bExpiry)
		stdDev.Mul(sqrtZeta)
		q.StdDev[i] = stdDev

		if q.Discount[i] == nil {
			q.Discount[i] = discount.Get(valuationTime, d.Time)
		}

		// coeff = DF(s_i)/DF(expiry) * exp(-stdDev^2/2), overflow-safe.
		ratio := q.Discount[i].Clone()
		ratio.Div(dfExpiry)
		exponent := stdDev.Clone()
		exponent.Mul(stdDev)
		exponent.Scale(-0.5)
		coeff := batch.New(m)
		batch.ExpMul(coeff, exponent, ratio)
		q.Coeff[i] = coeff
	}

	return q, nil
}
