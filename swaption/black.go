package swaption

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/hwlib/batch"
)

// vol floor below which the Black formula degenerates to intrinsic.
const blackVolTol = 1e-12

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// blackLane evaluates the Black formula for one lane with forward f,
// discounted strike k and total volatility sd (sigma*sqrt(T) already
// combined). call selects call/put.
func blackLane(call bool, f, k, sd float64) float64 {
	if sd < blackVolTol || f <= 0 || k <= 0 {
		// Degenerate: intrinsic value.
		if call {
			return math.Max(f-k, 0)
		}
		return math.Max(k-f, 0)
	}
	d1 := math.Log(f/k)/sd + 0.5*sd
	d2 := d1 - sd
	if call {
		return f*normCDF(d1) - k*normCDF(d2)
	}
	return k*normCDF(-d2) - f*normCDF(-d1)
}

// BlackFormula evaluates the Black formula elementwise across a batch
// of forwards, discounted strikes and total volatilities.
func BlackFormula(call bool, forward, strike, stdDev batch.Vector) batch.Vector {
	out := batch.New(len(forward))
	for j := range out {
		out[j] = blackLane(call, forward[j], strike[j], stdDev[j])
	}
	return out
}
