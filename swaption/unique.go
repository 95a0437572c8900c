package swaption

import (
	"math"

	"github.com/meenmo/hwlib/batch"
)

// negativeCouponTol is the relative tolerance below which a coupon is
// counted as negative by the uniqueness test. It is scaled by the
// largest absolute coupon in the lane so that rounding noise in
// exactly-cancelling floating coupons is not mistaken for a sign
// change.
const negativeCouponTol = 1e-12

// ClassifyUnique applies a conservative sufficient condition for yStar
// being the only root of F: it never reports 1 for cashflow sets that
// provably admit multiple roots, but may report 0 for some single-root
// sets (triggering an unnecessary quadrature).
//
// The running sum is seeded with the first date's term
// coupon[0]*coeff[0]*exp(-stdDev[0]*yStar); the remaining dates are
// visited in reverse order, each adding max(0, term) once a negative
// coupon has been seen at or after it. A scenario is classified unique
// (1) when the final sum is <= 0.
func ClassifyUnique(q *Quantities, yStar batch.Vector) batch.Vector {
	m := q.Scenarios
	n := len(q.Coupon)

	scale := batch.New(m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if a := math.Abs(q.Coupon[i][j]); a > scale[j] {
				scale[j] = a
			}
		}
	}

	exponent := batch.New(m)
	term := batch.New(m)

	sum := batch.New(m)
	for j := 0; j < m; j++ {
		exponent[j] = -q.StdDev[0][j] * yStar[j]
	}
	batch.ExpMul(sum, exponent, q.Coupon[0])
	sum.Mul(q.Coeff[0])

	seenNegative := batch.New(m)
	negMask := batch.New(m)
	for i := n - 1; i >= 1; i-- {
		cc := q.Coupon[i].Clone()
		cc.Mul(q.Coeff[i])
		for j := 0; j < m; j++ {
			exponent[j] = -q.StdDev[i][j] * yStar[j]
		}
		batch.ExpMul(term, exponent, cc)

		for j := 0; j < m; j++ {
			if q.Coupon[i][j] < -negativeCouponTol*scale[j] {
				negMask[j] = 1
			} else {
				negMask[j] = 0
			}
		}
		seenNegative.Or(negMask)

		for j := 0; j < m; j++ {
			if seenNegative[j] != 0 && term[j] > 0 {
				sum[j] += term[j]
			}
		}
	}

	isUnique := batch.New(m)
	for j := 0; j < m; j++ {
		if sum[j] <= 0 {
			isUnique[j] = 1
		}
	}
	return isUnique
}
