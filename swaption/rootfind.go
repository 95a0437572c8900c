package swaption

import (
	"math"

	"github.com/meenmo/hwlib/batch"
)

// maxNewtonIterations bounds the exercise-boundary solve.
const maxNewtonIterations = 10

// derivativeFloor freezes a scenario lane whose objective derivative
// has collapsed: the lane takes a zero step instead of producing a
// non-finite iterate.
const derivativeFloor = 1e-300

// SolveExerciseBoundary solves, per scenario, for the critical factor
// value yStar with
//
//	F(y) = sum_i coupon[i]*coeff[i]*exp(-stdDev[i]*y) = 0
//
// using Newton-Raphson from the first-order initial guess
// sum(coupon*coeff) / sum(coupon*coeff*stdDev), with at most
// maxNewtonIterations steps and early termination once the largest
// absolute step across the batch is exactly zero.
func SolveExerciseBoundary(q *Quantities) batch.Vector {
	m := q.Scenarios
	n := len(q.Coupon)

	// coupon*coeff and coupon*coeff*stdDev per date, reused each step.
	cc := make([]batch.Vector, n)
	ccSD := make([]batch.Vector, n)
	for i := 0; i < n; i++ {
		cc[i] = q.Coupon[i].Clone()
		cc[i].Mul(q.Coeff[i])
		ccSD[i] = cc[i].Clone()
		ccSD[i].Mul(q.StdDev[i])
	}

	numer := batch.New(m)
	denom := batch.New(m)
	for i := 0; i < n; i++ {
		numer.Add(cc[i])
		denom.Add(ccSD[i])
	}
	y := batch.New(m)
	for j := 0; j < m; j++ {
		if math.Abs(denom[j]) >= derivativeFloor {
			y[j] = numer[j] / denom[j]
		}
	}

	value := batch.New(m)
	derivative := batch.New(m)
	exponent := batch.New(m)
	term := batch.New(m)

	for iter := 0; iter < maxNewtonIterations; iter++ {
		value.Fill(0)
		derivative.Fill(0)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				exponent[j] = -q.StdDev[i][j] * y[j]
			}
			batch.ExpMul(term, exponent, cc[i])
			value.Add(term)
			batch.ExpMul(term, exponent, ccSD[i])
			derivative.Sub(term)
		}

		maxStep := 0.0
		for j := 0; j < m; j++ {
			if math.Abs(derivative[j]) < derivativeFloor {
				continue
			}
			step := value[j] / derivative[j]
			y[j] -= step
			if s := math.Abs(step); s > maxStep {
				maxStep = s
			}
		}
		if maxStep == 0 {
			break
		}
	}
	return y
}
