package swaption_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/hwlib/batch"
	"github.com/meenmo/hwlib/calendar"
	"github.com/meenmo/hwlib/curve"
	"github.com/meenmo/hwlib/hullwhite"
	"github.com/meenmo/hwlib/swaption"
)

// testBase anchors model time: t=0 is 2025-01-15, the option expires
// one year later on the swap's effective date.
var (
	testBase      = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	testEffective = testBase.AddDate(1, 0, 0)
)

func testTerms(fixedRate float64, tenorYears int) swaption.SwapTerms {
	return swaption.SwapTerms{
		Notional:      10_000_000,
		FixedRate:     fixedRate,
		EffectiveDate: testEffective,
		MaturityDate:  testEffective.AddDate(tenorYears, 0, 0),
		Fixed: swaption.LegTerms{
			FrequencyMonths: 12,
			DayCount:        "30E/360",
			Calendar:        calendar.WEEKEND,
			Currency:        "EUR",
		},
		Float: swaption.LegTerms{
			FrequencyMonths: 6,
			DayCount:        "ACT/360",
			Calendar:        calendar.WEEKEND,
			Currency:        "EUR",
		},
		BaseDate: testBase,
	}
}

func testSchedule(t *testing.T, fixedRate float64, tenorYears int) *swaption.SwapSchedule {
	t.Helper()
	sched, err := swaption.BuildSchedule(testTerms(fixedRate, tenorYears))
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	return sched
}

func testExpiryTime() float64 {
	return swaption.ModelTime(testBase, testEffective)
}

// testQuantities builds the pricing arrays for a payer/receiver setup
// on a flat single curve at t=0.
func testQuantities(t *testing.T, fixedRate, zeroRate, a, sigma float64, scenarios int) (*swaption.Quantities, *swaption.SwapSchedule, *curve.Flat) {
	t.Helper()
	sched := testSchedule(t, fixedRate, 5)
	c, err := curve.NewFlat(scenarios, zeroRate)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	model, err := hullwhite.NewConstantModel(scenarios, a, sigma)
	if err != nil {
		t.Fatalf("NewConstantModel: %v", err)
	}
	q, err := swaption.BuildQuantities(sched, c, c, model, 0, testExpiryTime(), nil)
	if err != nil {
		t.Fatalf("BuildQuantities: %v", err)
	}
	return q, sched, c
}

// payoffExpectation integrates lane 0 of the expiry payoff against the
// standard normal density with a dense trapezoid rule, as an
// implementation-independent price reference.
func payoffExpectation(q *swaption.Quantities, paySign float64) float64 {
	const (
		lo    = -10.0
		hi    = 10.0
		steps = 200000
	)
	h := (hi - lo) / steps
	total := 0.0
	for s := 0; s <= steps; s++ {
		y := lo + float64(s)*h
		sum := 0.0
		for i := range q.Coupon {
			sum += q.Coupon[i][0] * q.Coeff[i][0] * math.Exp(q.StdDev[i][0]*y)
		}
		f := math.Max(-paySign*sum, 0) * math.Exp(-0.5*y*y) / math.Sqrt(2*math.Pi)
		if s == 0 || s == steps {
			f *= 0.5
		}
		total += f
	}
	return total * h * q.DiscountExpiry[0]
}

// handQuantities assembles a Quantities value directly from coupon,
// coeff and stdDev lanes for a single scenario.
func handQuantities(coupons, coeffs, stdDevs []float64) *swaption.Quantities {
	n := len(coupons)
	q := &swaption.Quantities{
		Coupon:         make([]batch.Vector, n),
		StdDev:         make([]batch.Vector, n),
		Coeff:          make([]batch.Vector, n),
		Discount:       make([]batch.Vector, n),
		DiscountExpiry: batch.Vector{1},
		Scenarios:      1,
	}
	for i := 0; i < n; i++ {
		q.Coupon[i] = batch.Vector{coupons[i]}
		q.Coeff[i] = batch.Vector{coeffs[i]}
		q.StdDev[i] = batch.Vector{stdDevs[i]}
		q.Discount[i] = batch.Vector{coeffs[i] * math.Exp(0.5*stdDevs[i]*stdDevs[i])}
	}
	return q
}

func relDiff(a, b float64) float64 {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return 0
	}
	return math.Abs(a-b) / scale
}
