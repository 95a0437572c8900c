package curve_test

import (
	"math"
	"testing"

	"github.com/meenmo/hwlib/curve"
)

func TestFlatForwardFactor(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlat(3, 0.03)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	got := c.Get(0.5, 1.5)
	want := math.Exp(-0.03)
	for j, g := range got {
		if math.Abs(g-want) > 1e-15 {
			t.Fatalf("lane %d: got %g, want %g", j, g, want)
		}
	}
}

func TestPillarInterpolation(t *testing.T) {
	t.Parallel()

	c, err := curve.NewPillar(1, []float64{0, 1, 2}, []float64{1, 0.97, 0.93})
	if err != nil {
		t.Fatalf("NewPillar: %v", err)
	}

	// Exact at a pillar.
	if got := c.Get(0, 2)[0]; math.Abs(got-0.93) > 1e-15 {
		t.Fatalf("pillar hit: got %g, want 0.93", got)
	}
	// Log-linear between pillars.
	if got, want := c.Get(0, 1.5)[0], math.Sqrt(0.97*0.93); math.Abs(got-want) > 1e-14 {
		t.Fatalf("midpoint: got %g, want %g", got, want)
	}
	// Forward factor between two dates.
	if got, want := c.Get(1, 2)[0], 0.93/0.97; math.Abs(got-want) > 1e-14 {
		t.Fatalf("forward factor: got %g, want %g", got, want)
	}
	// Flat-forward extrapolation beyond the last pillar.
	if got, want := c.Get(0, 3)[0], 0.93*0.93/0.97; math.Abs(got-want) > 1e-14 {
		t.Fatalf("extrapolation: got %g, want %g", got, want)
	}
}

func TestPillarValidation(t *testing.T) {
	t.Parallel()

	if _, err := curve.NewPillar(1, []float64{1}, []float64{0.97}); err == nil {
		t.Fatal("single pillar accepted")
	}
	if _, err := curve.NewPillar(1, []float64{2, 1}, []float64{0.97, 0.93}); err == nil {
		t.Fatal("unsorted pillars accepted")
	}
	if _, err := curve.NewPillar(1, []float64{1, 2}, []float64{0.97, -0.93}); err == nil {
		t.Fatal("negative discount factor accepted")
	}
	if _, err := curve.NewPillar(0, []float64{1, 2}, []float64{0.97, 0.93}); err == nil {
		t.Fatal("zero scenarios accepted")
	}
}

func TestShiftedParallelShift(t *testing.T) {
	t.Parallel()

	base, err := curve.NewFlat(2, 0.03)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	c, err := curve.NewShifted(base, []float64{1}, [][]float64{{0.001}, {-0.001}})
	if err != nil {
		t.Fatalf("NewShifted: %v", err)
	}

	got := c.Get(0, 2)
	up := math.Exp(-0.06) * math.Exp(-0.001*2)
	down := math.Exp(-0.06) * math.Exp(0.001*2)
	if math.Abs(got[0]-up) > 1e-15 {
		t.Fatalf("shifted up: got %g, want %g", got[0], up)
	}
	if math.Abs(got[1]-down) > 1e-15 {
		t.Fatalf("shifted down: got %g, want %g", got[1], down)
	}
}

func TestShiftedBatchMismatchPanics(t *testing.T) {
	t.Parallel()

	base, err := curve.NewFlat(1, 0.03)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	c, err := curve.NewShifted(base, []float64{1}, [][]float64{{0.001}, {0.002}})
	if err != nil {
		t.Fatalf("NewShifted: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("batch mismatch did not panic")
		}
	}()
	c.Get(0, 1)
}
