package batch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a batched scenario array: one value per independent
// scenario or Monte-Carlo path, with arithmetic applied elementwise
// across the batch. All binary operations require equal lengths.
type Vector []float64

// expClamp bounds exponents passed to math.Exp so that extreme inputs
// produce large-but-finite values instead of +Inf. Exponents below
// -expClamp underflow to exactly zero.
const expClamp = 708.0

// New returns a zero-initialized vector of n scenarios.
func New(n int) Vector {
	return make(Vector, n)
}

// Full returns a vector of n scenarios, each set to v.
func Full(n int, v float64) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Fill sets every scenario of v to x.
func (v Vector) Fill(x float64) {
	for i := range v {
		v[i] = x
	}
}

// Add sets v += o elementwise.
func (v Vector) Add(o Vector) {
	floats.Add(v, o)
}

// Sub sets v -= o elementwise.
func (v Vector) Sub(o Vector) {
	floats.Sub(v, o)
}

// Mul sets v *= o elementwise.
func (v Vector) Mul(o Vector) {
	floats.Mul(v, o)
}

// Div sets v /= o elementwise.
func (v Vector) Div(o Vector) {
	floats.Div(v, o)
}

// Scale sets v *= c.
func (v Vector) Scale(c float64) {
	floats.Scale(c, v)
}

// AddConst sets v += c.
func (v Vector) AddConst(c float64) {
	floats.AddConst(c, v)
}

// AddScaled sets v += c*o elementwise.
func (v Vector) AddScaled(c float64, o Vector) {
	floats.AddScaled(v, c, o)
}

// Sqrt sets v = sqrt(v) elementwise.
func (v Vector) Sqrt() {
	for i := range v {
		v[i] = math.Sqrt(v[i])
	}
}

// MaxAbs returns the largest absolute value across the batch.
// It is zero for an empty vector.
func (v Vector) MaxAbs() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

// ExpMul sets dst[i] = v[i] * exp(x[i]) with the exponent clamped to
// avoid infinities: exponents above +708 are capped (preserving the
// sign of v), exponents below -708 yield exactly zero.
func ExpMul(dst, x, v Vector) {
	for i := range dst {
		e := x[i]
		switch {
		case e < -expClamp:
			dst[i] = 0
		case e > expClamp:
			dst[i] = v[i] * math.Exp(expClamp)
		default:
			dst[i] = v[i] * math.Exp(e)
		}
	}
}

// Select sets dst[i] = a[i] where mask[i] != 0, else b[i].
func Select(dst, mask, a, b Vector) {
	for i := range dst {
		if mask[i] != 0 {
			dst[i] = a[i]
		} else {
			dst[i] = b[i]
		}
	}
}

// MaskLess sets dst[i] = 1 where v[i] < c, else 0.
func MaskLess(dst, v Vector, c float64) {
	for i := range dst {
		if v[i] < c {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// Or sets dst[i] = 1 where dst[i] != 0 or m[i] != 0.
func (v Vector) Or(m Vector) {
	for i := range v {
		if v[i] != 0 || m[i] != 0 {
			v[i] = 1
		}
	}
}
