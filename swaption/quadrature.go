package swaption

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/hwlib/batch"
)

// hermitePoints is the fixed order of the fallback quadrature.
const hermitePoints = 30

// HermiteRule holds Gauss-Hermite nodes and weights for integration
// against exp(-x^2). It is constructed once per valuation run and
// reused across dates.
type HermiteRule struct {
	nodes   []float64
	weights []float64
}

// NewHermiteRule builds the fixed 30-point rule.
func NewHermiteRule() *HermiteRule {
	r := &HermiteRule{
		nodes:   make([]float64, hermitePoints),
		weights: make([]float64, hermitePoints),
	}
	quad.Hermite{}.FixedLocations(r.nodes, r.weights, math.Inf(-1), math.Inf(1))
	return r
}

// PriceQuadrature approximates the swaption value by integrating the
// exercise payoff over the single standard-normal driving factor y:
//
//	payoff(y) = max(-paySign * sum_i coupon[i]*coeff[i]*exp(stdDev[i]*y), 0)
//
// discounted to today with the expiry discount factor. The result is
// defined for every lane but is selected by the orchestrator only
// where the uniqueness classification failed.
func PriceQuadrature(q *Quantities, rule *HermiteRule, position Position) batch.Vector {
	m := q.Scenarios
	n := len(q.Coupon)
	sign := position.paySign()

	cc := make([]batch.Vector, n)
	for i := 0; i < n; i++ {
		cc[i] = q.Coupon[i].Clone()
		cc[i].Mul(q.Coeff[i])
	}

	pv := batch.New(m)
	sum := batch.New(m)
	exponent := batch.New(m)
	term := batch.New(m)

	for k := 0; k < hermitePoints; k++ {
		// Substitute y = sqrt(2)*x to turn the exp(-x^2) weight into a
		// standard-normal expectation.
		y := math.Sqrt2 * rule.nodes[k]
		sum.Fill(0)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				exponent[j] = q.StdDev[i][j] * y
			}
			batch.ExpMul(term, exponent, cc[i])
			sum.Add(term)
		}
		w := rule.weights[k]
		for j := 0; j < m; j++ {
			if p := -sign * sum[j]; p > 0 {
				pv[j] += w * p
			}
		}
	}

	pv.Scale(1 / math.Sqrt(math.Pi))
	pv.Mul(q.DiscountExpiry)
	return pv
}
