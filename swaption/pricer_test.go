package swaption_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/hwlib/curve"
	"github.com/meenmo/hwlib/hullwhite"
	"github.com/meenmo/hwlib/swaption"
	"github.com/meenmo/hwlib/utils"
)

// The analytic decomposition must agree with a dense independent
// integration of the expiry payoff, payer and receiver, at the money.
func TestAnalyticMatchesIndependentIntegration(t *testing.T) {
	t.Parallel()

	q, _, _ := testQuantities(t, 0.03, 0.03, 0.03, 0.01, 1)
	y := swaption.SolveExerciseBoundary(q)
	if u := swaption.ClassifyUnique(q, y); u[0] != 1 {
		t.Fatal("vanilla setup classified non-unique")
	}

	for _, pos := range []swaption.Position{swaption.Payer, swaption.Receiver} {
		got := swaption.PriceAnalytic(q, y, pos)[0]
		want := payoffExpectation(q, positionSign(pos))
		if relDiff(got, want) > 1e-6 {
			t.Fatalf("%s: analytic %g vs reference %g (rel %g)", pos, got, want, relDiff(got, want))
		}
	}
}

// The 30-point Gauss-Hermite fallback carries a kink through the
// quadrature; at the money, where the kink sits at the densest nodes,
// the rule is only good to a couple of percent, tightening sharply as
// the kink moves into the tails.
func TestQuadratureMatchesIndependentIntegration(t *testing.T) {
	t.Parallel()

	q, _, _ := testQuantities(t, 0.03, 0.03, 0.03, 0.01, 1)
	rule := swaption.NewHermiteRule()

	for _, pos := range []swaption.Position{swaption.Payer, swaption.Receiver} {
		got := swaption.PriceQuadrature(q, rule, pos)[0]
		want := payoffExpectation(q, positionSign(pos))
		if relDiff(got, want) > 2e-2 {
			t.Fatalf("%s: quadrature %g vs reference %g (rel %g)", pos, got, want, relDiff(got, want))
		}
	}
}

// Away from the money the exercise kink sits in a thin tail and both
// pricers agree tightly.
func TestAnalyticQuadratureAgreeAwayFromMoney(t *testing.T) {
	t.Parallel()

	// Deep in-the-money payer: 1% strike against a 3% curve.
	q, _, _ := testQuantities(t, 0.01, 0.03, 0.03, 0.01, 1)
	y := swaption.SolveExerciseBoundary(q)
	if u := swaption.ClassifyUnique(q, y); u[0] != 1 {
		t.Fatal("deep ITM setup classified non-unique")
	}

	analytic := swaption.PriceAnalytic(q, y, swaption.Payer)[0]
	numeric := swaption.PriceQuadrature(q, swaption.NewHermiteRule(), swaption.Payer)[0]
	if relDiff(analytic, numeric) > 1e-3 {
		t.Fatalf("analytic %g vs quadrature %g (rel %g)", analytic, numeric, relDiff(analytic, numeric))
	}
}

// Payer minus receiver equals the forward swap value (float minus
// fixed) for both pricers.
func TestPayerReceiverParity(t *testing.T) {
	t.Parallel()

	q, _, _ := testQuantities(t, 0.03, 0.025, 0.03, 0.01, 1)
	y := swaption.SolveExerciseBoundary(q)

	swapPV := 0.0
	for i := range q.Coupon {
		swapPV += q.Coupon[i][0] * q.Discount[i][0]
	}
	want := -swapPV // float minus fixed

	payer := swaption.PriceAnalytic(q, y, swaption.Payer)[0]
	receiver := swaption.PriceAnalytic(q, y, swaption.Receiver)[0]
	if relDiff(payer-receiver, want) > 1e-9 {
		t.Fatalf("analytic parity: %g vs %g", payer-receiver, want)
	}

	rule := swaption.NewHermiteRule()
	payerQ := swaption.PriceQuadrature(q, rule, swaption.Payer)[0]
	receiverQ := swaption.PriceQuadrature(q, rule, swaption.Receiver)[0]
	if relDiff(payerQ-receiverQ, want) > 1e-9 {
		t.Fatalf("quadrature parity: %g vs %g", payerQ-receiverQ, want)
	}
}

// A one-period schedule is a zero-bond option: the engine must
// reproduce an independently coded Black caplet/floorlet value.
func TestSinglePeriodCapletFloorlet(t *testing.T) {
	t.Parallel()

	const (
		notional  = 10_000_000.0
		fixedRate = 0.03
		zeroRate  = 0.028
		a         = 0.03
		sigma     = 0.01
	)

	terms := testTerms(fixedRate, 1)
	terms.MaturityDate = testEffective.AddDate(0, 6, 0)
	terms.Fixed.FrequencyMonths = 6
	terms.Fixed.DayCount = "ACT/360"
	sched, err := swaption.BuildSchedule(terms)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(sched.Dates) != 2 || len(sched.FloatPeriods) != 1 {
		t.Fatalf("degenerate schedule: %d dates, %d periods", len(sched.Dates), len(sched.FloatPeriods))
	}

	c, err := curve.NewFlat(1, zeroRate)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	model, err := hullwhite.NewConstantModel(1, a, sigma)
	if err != nil {
		t.Fatalf("NewConstantModel: %v", err)
	}
	q, err := swaption.BuildQuantities(sched, c, c, model, 0, testExpiryTime(), nil)
	if err != nil {
		t.Fatalf("BuildQuantities: %v", err)
	}
	y := swaption.SolveExerciseBoundary(q)

	// Independent reference: the one-period payer swaption is
	// N*(1+R*alpha) zero-bond puts struck at 1/(1+R*alpha).
	t0, t1 := sched.Dates[0].Time, sched.Dates[1].Time
	alpha := utils.YearFraction(sched.Dates[0].Date, sched.Dates[1].Date, "ACT/360")
	df0 := math.Exp(-zeroRate * t0)
	df1 := math.Exp(-zeroRate * t1)
	strike := 1 / (1 + fixedRate*alpha)

	bondVol := model.B(0, t1)
	bondVol.Sub(model.B(0, t0))
	zeta := model.Zeta(0, t0)
	sp := bondVol[0] * math.Sqrt(zeta[0])

	d1 := math.Log(df1/(df0*strike))/sp + 0.5*sp
	d2 := d1 - sp
	phi := distuv.UnitNormal.CDF
	put := strike*df0*phi(-d2) - df1*phi(-d1)
	call := df1*phi(d1) - strike*df0*phi(d2)
	wantCaplet := notional * (1 + fixedRate*alpha) * put
	wantFloorlet := notional * (1 + fixedRate*alpha) * call

	if got := swaption.PriceAnalytic(q, y, swaption.Payer)[0]; relDiff(got, wantCaplet) > 1e-9 {
		t.Fatalf("caplet: got %g, want %g (rel %g)", got, wantCaplet, relDiff(got, wantCaplet))
	}
	if got := swaption.PriceAnalytic(q, y, swaption.Receiver)[0]; relDiff(got, wantFloorlet) > 1e-9 {
		t.Fatalf("floorlet: got %g, want %g (rel %g)", got, wantFloorlet, relDiff(got, wantFloorlet))
	}
}

func positionSign(p swaption.Position) float64 {
	if p == swaption.Payer {
		return 1
	}
	return -1
}
