// Package scenario generates batched market scenarios for valuation
// runs: per-scenario zero-rate shift rows that feed curve.NewShifted.
package scenario

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// CorrelatedZeroShifts draws scenarios rows of correlated zero-rate
// shifts, one column per curve pillar. vols are per-pillar shift
// standard deviations in decimal (0.0010 == 10bp); corr is the pillar
// correlation matrix.
func CorrelatedZeroShifts(scenarios int, vols []float64, corr mat.Symmetric, src rand.Source) ([][]float64, error) {
	p := len(vols)
	if scenarios <= 0 {
		return nil, fmt.Errorf("CorrelatedZeroShifts: scenarios must be positive, got %d", scenarios)
	}
	if p == 0 || corr.SymmetricDim() != p {
		return nil, fmt.Errorf("CorrelatedZeroShifts: corr dimension %d does not match %d vols", corr.SymmetricDim(), p)
	}

	cov := mat.NewSymDense(p, nil)
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			cov.SetSym(j, k, vols[j]*vols[k]*corr.At(j, k))
		}
	}

	mu := make([]float64, p)
	d, ok := distmv.NewNormal(mu, cov, src)
	if !ok {
		return nil, fmt.Errorf("CorrelatedZeroShifts: covariance matrix is not positive definite")
	}

	shifts := make([][]float64, scenarios)
	for i := range shifts {
		shifts[i] = d.Rand(nil)
	}
	return shifts, nil
}

// ParallelZeroShifts draws scenarios single-pillar shift rows (a flat
// parallel move of the whole curve per scenario) with the given
// standard deviation in decimal.
func ParallelZeroShifts(scenarios int, vol float64, src rand.Source) ([][]float64, error) {
	if scenarios <= 0 {
		return nil, fmt.Errorf("ParallelZeroShifts: scenarios must be positive, got %d", scenarios)
	}
	if vol < 0 {
		return nil, fmt.Errorf("ParallelZeroShifts: negative vol %g", vol)
	}
	d := distuv.Normal{Mu: 0, Sigma: vol, Src: src}
	shifts := make([][]float64, scenarios)
	for i := range shifts {
		shifts[i] = []float64{d.Rand()}
	}
	return shifts, nil
}
