package swaption

import (
	"github.com/meenmo/hwlib/batch"
)

// PriceAnalytic computes the Jamshidian-decomposition value of the
// swaption: for every schedule date a zero-bond option is priced with
// the Black formula, using
//
//	forward = DF(expiry) * coeff[i] * exp(-stdDev[i]*yStar)
//	strike  = discount[i]
//	vol     = stdDev[i]
//
// and the coupon-weighted sum is returned. Payer swaptions price
// calls, receivers puts.
//
// The result is meaningful only in lanes classified unique by
// ClassifyUnique; consumers must merge with the quadrature value using
// that mask.
func PriceAnalytic(q *Quantities, yStar batch.Vector, position Position) batch.Vector {
	m := q.Scenarios
	n := len(q.Coupon)
	call := position == Payer

	pv := batch.New(m)
	exponent := batch.New(m)
	forward := batch.New(m)

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			exponent[j] = -q.StdDev[i][j] * yStar[j]
		}
		batch.ExpMul(forward, exponent, q.Coeff[i])
		forward.Mul(q.DiscountExpiry)

		option := BlackFormula(call, forward, q.Discount[i], q.StdDev[i])
		option.Mul(q.Coupon[i])
		pv.Add(option)
	}
	return pv
}
