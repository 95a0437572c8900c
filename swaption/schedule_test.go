package swaption_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/hwlib/swaption"
)

func TestBuildScheduleVanilla(t *testing.T) {
	t.Parallel()

	sched := testSchedule(t, 0.03, 2)

	// Annual fixed vs semiannual float over 2Y: 5 distinct dates
	// (effective, 3 intermediate, maturity), 4 floating periods.
	if len(sched.Dates) != 5 {
		t.Fatalf("dates: got %d, want 5", len(sched.Dates))
	}
	if len(sched.FloatPeriods) != 4 {
		t.Fatalf("float periods: got %d, want 4", len(sched.FloatPeriods))
	}

	// First date is the effective date with no payments attached.
	if d := sched.Dates[0]; d.FixedWeight != 0 || d.FloatWeight != 0 {
		t.Fatalf("effective date carries weights: %+v", d)
	}

	// First fixed coupon: one 30E/360 year on the notional.
	if w := sched.Dates[2].FixedWeight; math.Abs(w-10_000_000) > 1e-3 {
		t.Fatalf("first fixed weight: got %g, want 1e7", w)
	}
	if r := sched.Dates[2].FixedRate; r != 0.03 {
		t.Fatalf("fixed rate: got %g, want 0.03", r)
	}

	// Floating periods tile the swap without gaps.
	for k := 1; k < len(sched.FloatPeriods); k++ {
		prev, cur := sched.FloatPeriods[k-1], sched.FloatPeriods[k]
		if cur.StartIndex != prev.PayIndex {
			t.Fatalf("period %d does not start at previous pay date", k)
		}
		if cur.WeightRatio != 1 {
			t.Fatalf("period %d weight ratio: got %g, want 1", k, cur.WeightRatio)
		}
	}

	if err := sched.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuildScheduleRejectsNonVanilla(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*swaption.SwapTerms)
	}{
		{"currency mismatch", func(s *swaption.SwapTerms) { s.Float.Currency = "USD" }},
		{"compounding", func(s *swaption.SwapTerms) { s.Float.Compounding = "DAILY" }},
		{"multiple resets", func(s *swaption.SwapTerms) { s.Float.ResetFrequencyMonths = 3 }},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			terms := testTerms(0.03, 2)
			c.mutate(&terms)
			_, err := swaption.BuildSchedule(terms)
			if !errors.Is(err, swaption.ErrNonVanilla) {
				t.Fatalf("got %v, want ErrNonVanilla", err)
			}
		})
	}
}

func TestBuildScheduleRejectsBadTerms(t *testing.T) {
	t.Parallel()

	terms := testTerms(0.03, 2)
	terms.Notional = 0
	if _, err := swaption.BuildSchedule(terms); err == nil {
		t.Fatal("zero notional accepted")
	}

	terms = testTerms(0.03, 2)
	terms.MaturityDate = terms.EffectiveDate
	if _, err := swaption.BuildSchedule(terms); err == nil {
		t.Fatal("zero-length swap accepted")
	}

	terms = testTerms(0.03, 2)
	terms.Fixed.FrequencyMonths = 0
	if _, err := swaption.BuildSchedule(terms); err == nil {
		t.Fatal("zero fixed frequency accepted")
	}
}

func TestValidateStructuralChecks(t *testing.T) {
	t.Parallel()

	var nilSched *swaption.SwapSchedule
	if err := nilSched.Validate(); !errors.Is(err, swaption.ErrNilSchedule) {
		t.Fatalf("nil schedule: got %v, want ErrNilSchedule", err)
	}

	sched := testSchedule(t, 0.03, 2)
	sched.Dates[1].Time = sched.Dates[0].Time
	if err := sched.Validate(); !errors.Is(err, swaption.ErrNonVanilla) {
		t.Fatalf("duplicate time: got %v, want ErrNonVanilla", err)
	}

	sched = testSchedule(t, 0.03, 2)
	sched.FloatPeriods[0].PayIndex = 99
	if err := sched.Validate(); !errors.Is(err, swaption.ErrNonVanilla) {
		t.Fatalf("bad index: got %v, want ErrNonVanilla", err)
	}
}
