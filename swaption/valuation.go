package swaption

import (
	"fmt"

	"github.com/meenmo/hwlib/batch"
)

// ValuerParams wires a swaption deal to its market data and sinks.
type ValuerParams struct {
	Swaption *Swaption

	Discount CurveHandle
	Forecast CurveHandle
	Model    ModelParameters

	// Fixings supplies reset rates for floating periods already
	// started at a valuation date; optional when the grid never lands
	// inside a started period.
	Fixings FixingFeed

	// FX, when non-nil, converts each final PV batch.
	FX FXHandle

	Results ResultsSink
	// Cash, when non-nil, enables realized-cash collection.
	Cash CashSink
}

// Valuer walks a valuation date grid for one swaption deal. It is a
// two-state machine: before the option expiry each date is priced via
// Jamshidian decomposition (with quadrature fallback); on and after
// expiry the underlying legs are valued directly with
// exercise/settlement bookkeeping frozen at the first date on or after
// expiry. A Valuer serves a single run; state is never shared across
// deals or runs.
type Valuer struct {
	p         ValuerParams
	legs      *UnderlyingLegs
	scenarios int

	// rule is built lazily on the first quadrature fallback and reused
	// for the rest of the run.
	rule *HermiteRule

	// Frozen at the first valuation date on or after expiry.
	frozen     bool
	exercised  batch.Vector // physical settlement: 0/1 per scenario
	settleCash batch.Vector // cash settlement: settlement amount per scenario
}

// NewValuer validates the wiring and builds a run-scoped valuer.
func NewValuer(p ValuerParams) (*Valuer, error) {
	if p.Swaption == nil {
		return nil, fmt.Errorf("NewValuer: nil swaption")
	}
	if err := p.Swaption.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("NewValuer: %w", err)
	}
	if isNilInterface(p.Discount) || isNilInterface(p.Forecast) {
		return nil, fmt.Errorf("NewValuer: %w", ErrNilCurve)
	}
	if isNilInterface(p.Model) {
		return nil, fmt.Errorf("NewValuer: %w", ErrNilModel)
	}
	if isNilInterface(p.Results) {
		return nil, fmt.Errorf("NewValuer: nil results sink")
	}
	if s := p.Swaption; s.SettlementTime < s.ExpiryTime {
		return nil, fmt.Errorf("NewValuer: settlement t=%.6f before expiry t=%.6f", s.SettlementTime, s.ExpiryTime)
	}

	// Probe the batch size once; curve handles are pure functions.
	scenarios := len(p.Discount.Get(0, 0))
	if scenarios == 0 {
		return nil, fmt.Errorf("NewValuer: discount handle returned an empty batch")
	}
	if o := p.Swaption.SwapRateOverride; o != nil && len(o) != scenarios {
		return nil, fmt.Errorf("NewValuer: rate override batch %d does not match curve batch %d", len(o), scenarios)
	}

	legs, err := NewUnderlyingLegs(p.Swaption.Schedule, p.Discount, p.Forecast, p.Fixings, p.Swaption.SwapRateOverride)
	if err != nil {
		return nil, fmt.Errorf("NewValuer: %w", err)
	}
	return &Valuer{p: p, legs: legs, scenarios: scenarios}, nil
}

// Run walks the grid in order, appending one PV batch per date to the
// results sink and realized cash to the cash sink when enabled, then
// completes the results sink.
func (v *Valuer) Run(grid []GridPoint) error {
	for i := 1; i < len(grid); i++ {
		if grid[i].Time <= grid[i-1].Time {
			return fmt.Errorf("Run: grid times not strictly increasing at index %d", i)
		}
	}

	deal := v.p.Swaption
	for _, g := range grid {
		var (
			pv   batch.Vector
			cash batch.Vector
			err  error
		)
		if g.Time < deal.ExpiryTime {
			pv, err = v.valueBeforeExpiry(g.Time)
		} else {
			pv, cash, err = v.valueOnOrAfterExpiry(g.Time)
		}
		if err != nil {
			return fmt.Errorf("Run: date %s: %w", g.Date.Format("2006-01-02"), err)
		}

		if deal.Side == Sell {
			pv.Scale(-1)
			if cash != nil {
				cash.Scale(-1)
			}
		}
		if v.p.FX != nil {
			pv.Mul(v.p.FX.Get(g.Time))
		}

		if err := v.p.Results.Append(g.Date, pv); err != nil {
			return fmt.Errorf("Run: date %s: %w", g.Date.Format("2006-01-02"), err)
		}
		if cash != nil && v.p.Cash != nil {
			if err := v.p.Cash.Collect(g.Date, cash); err != nil {
				return fmt.Errorf("Run: date %s: %w", g.Date.Format("2006-01-02"), err)
			}
		}
	}
	return v.p.Results.Complete()
}

// valueBeforeExpiry prices the option at a date before expiry,
// merging the analytic and quadrature values per scenario.
func (v *Valuer) valueBeforeExpiry(t float64) (batch.Vector, error) {
	deal := v.p.Swaption
	q, err := BuildQuantities(deal.Schedule, v.p.Discount, v.p.Forecast, v.p.Model, t, deal.ExpiryTime, deal.SwapRateOverride)
	if err != nil {
		return nil, err
	}

	yStar := SolveExerciseBoundary(q)
	isUnique := ClassifyUnique(q, yStar)

	anyUnique, anyFallback := false, false
	for _, u := range isUnique {
		if u != 0 {
			anyUnique = true
		} else {
			anyFallback = true
		}
	}

	var pv batch.Vector
	if anyUnique {
		pv = PriceAnalytic(q, yStar, deal.Position)
	}
	if anyFallback {
		if v.rule == nil {
			v.rule = NewHermiteRule()
		}
		numeric := PriceQuadrature(q, v.rule, deal.Position)
		if pv == nil {
			pv = numeric
		} else {
			batch.Select(pv, isUnique, pv, numeric)
		}
	}

	if deal.Settlement == SettleCash {
		// Time-value adjustment for the settlement delay.
		adjust := v.p.Discount.Get(t, deal.SettlementTime)
		adjust.Div(v.p.Discount.Get(t, deal.ExpiryTime))
		pv.Mul(adjust)
	}
	return pv, nil
}

// valueOnOrAfterExpiry values the underlying legs directly, freezing
// the exercise indicator (physical) or settlement cash (cash) at the
// first date on or after expiry and reusing it afterwards.
func (v *Valuer) valueOnOrAfterExpiry(t float64) (pv, cash batch.Vector, err error) {
	deal := v.p.Swaption
	sign := deal.Position.paySign()

	// A frozen cash-settled deal no longer depends on the underlying
	// legs (or their fixings).
	var swapPV batch.Vector
	if deal.Settlement != SettleCash || !v.frozen {
		fixedPV := v.legs.FixedLegPV(t, v.scenarios)
		floatPV, err := v.legs.FloatLegPV(t, v.scenarios)
		if err != nil {
			return nil, nil, err
		}
		swapPV = floatPV.Clone()
		swapPV.Sub(fixedPV)
		swapPV.Scale(sign)
	}

	if !v.frozen {
		switch deal.Settlement {
		case SettleCash:
			v.settleCash = batch.New(v.scenarios)
			for j, s := range swapPV {
				if s > 0 {
					v.settleCash[j] = s
				}
			}
		default:
			// Exercised where the swap has positive value: -swapPV < 0.
			loss := swapPV.Clone()
			loss.Scale(-1)
			v.exercised = batch.New(v.scenarios)
			batch.MaskLess(v.exercised, loss, 0)
		}
		v.frozen = true
	}

	if deal.Settlement == SettleCash {
		switch {
		case t > deal.SettlementTime:
			pv = batch.New(v.scenarios)
		case t == deal.SettlementTime:
			pv = v.settleCash.Clone()
			cash = v.settleCash.Clone()
		default:
			pv = v.p.Discount.Get(t, deal.SettlementTime)
			pv.Mul(v.settleCash)
		}
		return pv, cash, nil
	}

	// Physical settlement: the frozen indicator gates the underlying.
	pv = swapPV.Clone()
	pv.Mul(v.exercised)

	if v.p.Cash != nil {
		fixedCash := v.legs.FixedLegCash(t, v.scenarios)
		floatCash, err := v.legs.FloatLegCash(t, v.scenarios)
		if err != nil {
			return nil, nil, err
		}
		cash = floatCash.Clone()
		cash.Sub(fixedCash)
		cash.Scale(sign)
		cash.Mul(v.exercised)
	}
	return pv, cash, nil
}
