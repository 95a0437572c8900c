// Package curve provides batched discount/forecast curve handles for
// the swaption pricer. A handle returns one factor per scenario for a
// payment at payTime observed at valuationTime, with times measured as
// year fractions from the curve base date.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/meenmo/hwlib/batch"
)

// Handle produces batched discount (or forward) factors.
type Handle interface {
	Get(valuationTime, payTime float64) batch.Vector
}

// Flat is a flat continuously-compounded curve replicated across a
// scenario batch.
type Flat struct {
	scenarios int
	rate      float64
}

// NewFlat builds a flat curve at the given continuously-compounded rate.
func NewFlat(scenarios int, rate float64) (*Flat, error) {
	if scenarios <= 0 {
		return nil, fmt.Errorf("NewFlat: scenarios must be positive, got %d", scenarios)
	}
	return &Flat{scenarios: scenarios, rate: rate}, nil
}

// Get returns exp(-rate*(payTime-valuationTime)) in every lane.
func (c *Flat) Get(valuationTime, payTime float64) batch.Vector {
	return batch.Full(c.scenarios, math.Exp(-c.rate*(payTime-valuationTime)))
}

// Pillar is a discount curve defined by discount factors at sorted
// pillar times, log-linearly interpolated (flat-forward) between
// pillars and flat-extrapolated beyond them. The same factors are
// replicated across the scenario batch.
type Pillar struct {
	scenarios int
	times     []float64
	dfs       []float64
}

// NewPillar builds a pillar curve from times (year fractions from the
// base date, strictly increasing, first pillar at or after zero) and
// their discount factors.
func NewPillar(scenarios int, times, dfs []float64) (*Pillar, error) {
	if scenarios <= 0 {
		return nil, fmt.Errorf("NewPillar: scenarios must be positive, got %d", scenarios)
	}
	if len(times) < 2 || len(times) != len(dfs) {
		return nil, fmt.Errorf("NewPillar: need >= 2 co-indexed pillars, got %d times, %d dfs", len(times), len(dfs))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("NewPillar: pillar times not strictly increasing at index %d", i)
		}
	}
	for i, df := range dfs {
		if df <= 0 {
			return nil, fmt.Errorf("NewPillar: non-positive discount factor %g at pillar %d", df, i)
		}
	}
	c := &Pillar{
		scenarios: scenarios,
		times:     append([]float64(nil), times...),
		dfs:       append([]float64(nil), dfs...),
	}
	return c, nil
}

// df interpolates the base-date discount factor at time t.
func (c *Pillar) df(t float64) float64 {
	n := len(c.times)
	i := sort.SearchFloat64s(c.times, t)
	if i < n && c.times[i] == t {
		return c.dfs[i]
	}
	// Flat extrapolation of the boundary forward rate.
	switch {
	case i == 0:
		i = 1
	case i == n:
		i = n - 1
	}
	t1, t2 := c.times[i-1], c.times[i]
	df1, df2 := c.dfs[i-1], c.dfs[i]
	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forwardRate*(t-t1))
}

// Get returns the forward discount factor DF(payTime)/DF(valuationTime)
// replicated across the batch.
func (c *Pillar) Get(valuationTime, payTime float64) batch.Vector {
	return batch.Full(c.scenarios, c.df(payTime)/c.df(valuationTime))
}

// Shifted wraps a base handle and applies per-scenario zero-rate
// shifts: lane i of Get(t,T) is multiplied by exp(z_i(t)*t - z_i(T)*T),
// where z_i is linearly interpolated between shift pillars and flat
// beyond them. Shifts are in decimal (0.0010 == 10bp).
type Shifted struct {
	base    Handle
	pillars []float64
	shifts  [][]float64 // [scenario][pillar]
}

// NewShifted builds a shifted handle. shifts must hold one row per
// scenario, co-indexed with pillars.
func NewShifted(base Handle, pillars []float64, shifts [][]float64) (*Shifted, error) {
	if base == nil {
		return nil, fmt.Errorf("NewShifted: nil base handle")
	}
	if len(pillars) == 0 || len(shifts) == 0 {
		return nil, fmt.Errorf("NewShifted: empty pillars or shifts")
	}
	for i := 1; i < len(pillars); i++ {
		if pillars[i] <= pillars[i-1] {
			return nil, fmt.Errorf("NewShifted: pillar times not strictly increasing at index %d", i)
		}
	}
	for s, row := range shifts {
		if len(row) != len(pillars) {
			return nil, fmt.Errorf("NewShifted: scenario %d has %d shifts, want %d", s, len(row), len(pillars))
		}
	}
	return &Shifted{base: base, pillars: pillars, shifts: shifts}, nil
}

// zero interpolates the zero-rate shift for one scenario at time t.
func (c *Shifted) zero(scenario int, t float64) float64 {
	row := c.shifts[scenario]
	n := len(c.pillars)
	i := sort.SearchFloat64s(c.pillars, t)
	switch {
	case i == 0:
		return row[0]
	case i == n:
		return row[n-1]
	case c.pillars[i] == t:
		return row[i]
	}
	w := (t - c.pillars[i-1]) / (c.pillars[i] - c.pillars[i-1])
	return row[i-1] + w*(row[i]-row[i-1])
}

// Get returns the base factors with the scenario shifts applied.
func (c *Shifted) Get(valuationTime, payTime float64) batch.Vector {
	out := c.base.Get(valuationTime, payTime)
	if len(out) != len(c.shifts) {
		// Base batch size must match the shift batch; a mismatch is a
		// wiring defect, surfaced loudly rather than silently resized.
		panic(fmt.Sprintf("curve.Shifted: base batch %d != shift batch %d", len(out), len(c.shifts)))
	}
	for i := range out {
		out[i] *= math.Exp(c.zero(i, valuationTime)*valuationTime - c.zero(i, payTime)*payTime)
	}
	return out
}
