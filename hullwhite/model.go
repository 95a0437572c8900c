package hullwhite

import (
	"fmt"
	"math"

	"github.com/meenmo/hwlib/batch"
)

// Parameters is the model parameter source consumed by the swaption
// pricer. Both functions are pure in (valuationTime, horizonTime),
// with times measured as year fractions from the deal base date, and
// return one value per scenario.
//
// The parameterization follows the LGM form of the one-factor
// Hull-White model: bond volatilities enter pricing as
// (B(t,s) - B(t,T)) * sqrt(Zeta(t,T)).
type Parameters interface {
	// B returns the mean-reversion loading at horizonTime seen from
	// valuationTime.
	B(valuationTime, horizonTime float64) batch.Vector
	// Zeta returns the integrated factor variance accumulated between
	// valuationTime and horizonTime.
	Zeta(valuationTime, horizonTime float64) batch.Vector
}

// flatMeanReversion is the threshold below which the a -> 0 (Ho-Lee)
// closed forms are used instead of dividing by a.
const flatMeanReversion = 1e-10

// ConstantModel is a Hull-White parameter set with per-scenario
// constant mean reversion and volatility.
//
// B(t,T)    = (exp(-a*t) - exp(-a*T)) / a
// Zeta(t,T) = sigma^2 * (exp(2*a*T) - exp(2*a*t)) / (2*a)
//
// so that (B(t,s) - B(t,T)) * sqrt(Zeta(t,T)) reproduces the standard
// Hull-White zero-bond volatility
// sigma/a * (1 - exp(-a*(s-T))) * sqrt((1 - exp(-2*a*(T-t))) / (2*a)).
type ConstantModel struct {
	meanReversion batch.Vector
	sigma         batch.Vector
}

// NewConstantModel builds a model with the same mean reversion and
// volatility in every scenario lane.
func NewConstantModel(scenarios int, meanReversion, sigma float64) (*ConstantModel, error) {
	if scenarios <= 0 {
		return nil, fmt.Errorf("NewConstantModel: scenarios must be positive, got %d", scenarios)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("NewConstantModel: negative sigma %g", sigma)
	}
	return &ConstantModel{
		meanReversion: batch.Full(scenarios, meanReversion),
		sigma:         batch.Full(scenarios, sigma),
	}, nil
}

// NewScenarioModel builds a model with per-scenario mean reversion and
// volatility, e.g. from a calibration batch.
func NewScenarioModel(meanReversion, sigma batch.Vector) (*ConstantModel, error) {
	if len(meanReversion) == 0 || len(meanReversion) != len(sigma) {
		return nil, fmt.Errorf("NewScenarioModel: parameter batch size mismatch (a=%d, sigma=%d)", len(meanReversion), len(sigma))
	}
	for i, s := range sigma {
		if s < 0 {
			return nil, fmt.Errorf("NewScenarioModel: negative sigma %g in scenario %d", s, i)
		}
	}
	return &ConstantModel{
		meanReversion: meanReversion.Clone(),
		sigma:         sigma.Clone(),
	}, nil
}

// Scenarios returns the batch size of the parameter set.
func (m *ConstantModel) Scenarios() int {
	return len(m.meanReversion)
}

// B returns the mean-reversion loading at horizonTime seen from valuationTime.
func (m *ConstantModel) B(valuationTime, horizonTime float64) batch.Vector {
	out := batch.New(len(m.meanReversion))
	for i, a := range m.meanReversion {
		if math.Abs(a) < flatMeanReversion {
			out[i] = horizonTime - valuationTime
			continue
		}
		out[i] = (math.Exp(-a*valuationTime) - math.Exp(-a*horizonTime)) / a
	}
	return out
}

// Zeta returns the integrated factor variance between valuationTime and horizonTime.
func (m *ConstantModel) Zeta(valuationTime, horizonTime float64) batch.Vector {
	out := batch.New(len(m.meanReversion))
	for i, a := range m.meanReversion {
		s2 := m.sigma[i] * m.sigma[i]
		if math.Abs(a) < flatMeanReversion {
			out[i] = s2 * (horizonTime - valuationTime)
			continue
		}
		out[i] = s2 * (math.Exp(2*a*horizonTime) - math.Exp(2*a*valuationTime)) / (2 * a)
	}
	return out
}
