package diff

import (
	"fmt"
	"math"

	"github.com/calcforge/autodiff/internal/accurate"
)

// UnivariateDerivative1 is the order-1, single-parameter representation:
// one value and one first derivative, held in plain fields. It trades the
// generality of DerivativeStructure for zero table lookups and zero slice
// allocation per operation. Instances are immutable.
type UnivariateDerivative1 struct {
	f0 float64
	f1 float64
}

// NewUD1 builds an instance from a value and its first derivative.
func NewUD1(f0, f1 float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: f0, f1: f1}
}

// NewUD1Variable returns the free variable at the given value: its first
// derivative is one.
func NewUD1Variable(value float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: value, f1: 1}
}

// NewUD1FromStructure converts a one-parameter, order-1
// DerivativeStructure. It returns ErrDimensionMismatch for any other shape.
func NewUD1FromStructure(ds *DerivativeStructure) (UnivariateDerivative1, error) {
	if ds.FreeParameters() != 1 || ds.Order() != 1 {
		return UnivariateDerivative1{}, fmt.Errorf("%w: %d parameters order %d, want 1 parameter order 1",
			ErrDimensionMismatch, ds.FreeParameters(), ds.Order())
	}
	d1, err := ds.PartialDerivative(1)
	if err != nil {
		return UnivariateDerivative1{}, err
	}
	return UnivariateDerivative1{f0: ds.Value(), f1: d1}, nil
}

// ToDerivativeStructure converts to the general representation, one free
// parameter and order 1.
func (u UnivariateDerivative1) ToDerivativeStructure() (*DerivativeStructure, error) {
	factory, err := NewFactory(1, 1)
	if err != nil {
		return nil, err
	}
	return factory.Build(u.f0, u.f1)
}

// Value returns the function value.
func (u UnivariateDerivative1) Value() float64 { return u.f0 }

// Real is an alias for Value, matching the contract interface.
func (u UnivariateDerivative1) Real() float64 { return u.f0 }

// FirstDerivative returns the first derivative.
func (u UnivariateDerivative1) FirstDerivative() float64 { return u.f1 }

// Order returns 1.
func (u UnivariateDerivative1) Order() int { return 1 }

// FreeParameters returns 1.
func (u UnivariateDerivative1) FreeParameters() int { return 1 }

// Derivative returns the n-th derivative, n in [0, 1].
func (u UnivariateDerivative1) Derivative(n int) (float64, error) {
	switch n {
	case 0:
		return u.f0, nil
	case 1:
		return u.f1, nil
	default:
		return 0, fmt.Errorf("%w: derivation order %d", ErrDerivationOrderNotAllowed, n)
	}
}

// PartialDerivative returns the derivative for the given derivation orders;
// a single order in [0, 1] is expected.
func (u UnivariateDerivative1) PartialDerivative(orders ...int) (float64, error) {
	if len(orders) != 1 {
		return 0, fmt.Errorf("%w: %d orders for 1 parameter", ErrDimensionMismatch, len(orders))
	}
	return u.Derivative(orders[0])
}

// NewInstance returns a constant.
func (u UnivariateDerivative1) NewInstance(value float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: value}
}

// AddScalar returns u + a.
func (u UnivariateDerivative1) AddScalar(a float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: u.f0 + a, f1: u.f1}
}

// Add returns u + a.
func (u UnivariateDerivative1) Add(a UnivariateDerivative1) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: u.f0 + a.f0, f1: u.f1 + a.f1}
}

// SubtractScalar returns u - a.
func (u UnivariateDerivative1) SubtractScalar(a float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: u.f0 - a, f1: u.f1}
}

// Subtract returns u - a.
func (u UnivariateDerivative1) Subtract(a UnivariateDerivative1) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: u.f0 - a.f0, f1: u.f1 - a.f1}
}

// Negate returns -u.
func (u UnivariateDerivative1) Negate() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: -u.f0, f1: -u.f1}
}

// MultiplyScalar returns u * a.
func (u UnivariateDerivative1) MultiplyScalar(a float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: u.f0 * a, f1: u.f1 * a}
}

// Multiply returns u * a, the first derivative through a compensated
// product rule.
func (u UnivariateDerivative1) Multiply(a UnivariateDerivative1) UnivariateDerivative1 {
	return UnivariateDerivative1{
		f0: u.f0 * a.f0,
		f1: accurate.LinearCombination2(u.f1, a.f0, u.f0, a.f1),
	}
}

// DivideScalar returns u / a.
func (u UnivariateDerivative1) DivideScalar(a float64) UnivariateDerivative1 {
	inv1 := 1.0 / a
	return UnivariateDerivative1{f0: u.f0 * inv1, f1: u.f1 * inv1}
}

// Divide returns u / a.
func (u UnivariateDerivative1) Divide(a UnivariateDerivative1) UnivariateDerivative1 {
	inv1 := 1.0 / a.f0
	inv2 := inv1 * inv1
	return UnivariateDerivative1{
		f0: u.f0 * inv1,
		f1: accurate.LinearCombination2(u.f1, a.f0, -u.f0, a.f1) * inv2,
	}
}

// RemainderScalar returns the IEEE remainder of u by a; the derivative is
// that of u.
func (u UnivariateDerivative1) RemainderScalar(a float64) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: math.Remainder(u.f0, a), f1: u.f1}
}

// Remainder returns the IEEE remainder of u by a. The derivative follows
// u - k*a for the integer quotient k.
func (u UnivariateDerivative1) Remainder(a UnivariateDerivative1) UnivariateDerivative1 {
	rem := math.Remainder(u.f0, a.f0)
	k := math.Round((u.f0 - rem) / a.f0)
	return UnivariateDerivative1{f0: rem, f1: u.f1 - k*a.f1}
}

// Abs returns the absolute value. -0.0 counts as negative.
func (u UnivariateDerivative1) Abs() UnivariateDerivative1 {
	if math.Signbit(u.f0) {
		return u.Negate()
	}
	return u
}

// Ceil returns the ceiling of the value as a constant.
func (u UnivariateDerivative1) Ceil() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: math.Ceil(u.f0)}
}

// Floor returns the floor of the value as a constant.
func (u UnivariateDerivative1) Floor() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: math.Floor(u.f0)}
}

// Rint returns the value rounded to the nearest integer (ties to even) as a
// constant.
func (u UnivariateDerivative1) Rint() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: math.RoundToEven(u.f0)}
}

// Sign returns the signum of the value as a constant.
func (u UnivariateDerivative1) Sign() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: signum(u.f0)}
}

// CopySign returns u with the sign of the reference value.
func (u UnivariateDerivative1) CopySign(sign UnivariateDerivative1) UnivariateDerivative1 {
	return u.CopySignScalar(sign.f0)
}

// CopySignScalar returns u with the sign of the reference value, comparing
// raw bit patterns so that -0.0 counts as negative.
func (u UnivariateDerivative1) CopySignScalar(sign float64) UnivariateDerivative1 {
	if math.Signbit(u.f0) == math.Signbit(sign) {
		return u
	}
	return u.Negate()
}

// Exponent returns the unbiased binary exponent of the value.
func (u UnivariateDerivative1) Exponent() int { return exponent(u.f0) }

// Scalb multiplies both components by 2**n exactly.
func (u UnivariateDerivative1) Scalb(n int) UnivariateDerivative1 {
	return UnivariateDerivative1{f0: math.Ldexp(u.f0, n), f1: math.Ldexp(u.f1, n)}
}

// Ulp returns the unit in the last place of the value as a constant.
func (u UnivariateDerivative1) Ulp() UnivariateDerivative1 {
	return UnivariateDerivative1{f0: ulp(u.f0)}
}

// Hypot returns sqrt(u^2+y^2) avoiding intermediate overflow and underflow.
func (u UnivariateDerivative1) Hypot(y UnivariateDerivative1) UnivariateDerivative1 {
	return Hypot(u, y)
}

// Compose applies a univariate outer function given by its value and first
// derivative at the instance's value. It panics with ErrDimensionMismatch
// unless len(f) == 2.
func (u UnivariateDerivative1) Compose(f ...float64) UnivariateDerivative1 {
	if len(f) != 2 {
		panic(fmt.Errorf("%w: %d outer coefficients for order 1", ErrDimensionMismatch, len(f)))
	}
	return UnivariateDerivative1{f0: f[0], f1: f[1] * u.f1}
}

// Reciprocal returns 1/u.
func (u UnivariateDerivative1) Reciprocal() UnivariateDerivative1 {
	inv1 := 1.0 / u.f0
	return UnivariateDerivative1{f0: inv1, f1: -u.f1 * inv1 * inv1}
}

// Sqrt returns the square root.
func (u UnivariateDerivative1) Sqrt() UnivariateDerivative1 {
	s := math.Sqrt(u.f0)
	return u.Compose(s, 1/(2*s))
}

// Cbrt returns the cube root.
func (u UnivariateDerivative1) Cbrt() UnivariateDerivative1 {
	c := math.Cbrt(u.f0)
	return u.Compose(c, 1/(3*c*c))
}

// RootN returns the n-th root.
func (u UnivariateDerivative1) RootN(n int) UnivariateDerivative1 {
	switch n {
	case 2:
		return u.Sqrt()
	case 3:
		return u.Cbrt()
	default:
		r := math.Pow(u.f0, 1.0/float64(n))
		return u.Compose(r, 1/(float64(n)*math.Pow(r, float64(n-1))))
	}
}

// Pow returns u**p.
func (u UnivariateDerivative1) Pow(p float64) UnivariateDerivative1 {
	if p == 0 {
		return u.NewInstance(1)
	}
	f0Pm1 := math.Pow(u.f0, p-1)
	return u.Compose(f0Pm1*u.f0, p*f0Pm1)
}

// PowInt returns u**n for an integer exponent.
func (u UnivariateDerivative1) PowInt(n int) UnivariateDerivative1 {
	if n == 0 {
		return u.NewInstance(1)
	}
	f0Nm1 := math.Pow(u.f0, float64(n-1))
	return u.Compose(f0Nm1*u.f0, float64(n)*f0Nm1)
}

// UD1PowBase returns a**x for a plain scalar base.
func UD1PowBase(a float64, x UnivariateDerivative1) UnivariateDerivative1 {
	if a == 0 {
		return UnivariateDerivative1{}
	}
	aX := math.Pow(a, x.f0)
	return UnivariateDerivative1{f0: aX, f1: math.Log(a) * aX * x.f1}
}

// Exp returns the exponential.
func (u UnivariateDerivative1) Exp() UnivariateDerivative1 {
	e := math.Exp(u.f0)
	return u.Compose(e, e)
}

// Expm1 returns exp(u)-1.
func (u UnivariateDerivative1) Expm1() UnivariateDerivative1 {
	return u.Compose(math.Expm1(u.f0), math.Exp(u.f0))
}

// Log returns the natural logarithm.
func (u UnivariateDerivative1) Log() UnivariateDerivative1 {
	return u.Compose(math.Log(u.f0), 1/u.f0)
}

// Log1p returns log(1+u).
func (u UnivariateDerivative1) Log1p() UnivariateDerivative1 {
	return u.Compose(math.Log1p(u.f0), 1/(1+u.f0))
}

// Log10 returns the base-10 logarithm.
func (u UnivariateDerivative1) Log10() UnivariateDerivative1 {
	return u.Compose(math.Log10(u.f0), 1/(u.f0*math.Ln10))
}

// Sin returns the sine.
func (u UnivariateDerivative1) Sin() UnivariateDerivative1 {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(sin, cos)
}

// Cos returns the cosine.
func (u UnivariateDerivative1) Cos() UnivariateDerivative1 {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(cos, -sin)
}

// SinCos returns the sine and cosine together.
func (u UnivariateDerivative1) SinCos() (UnivariateDerivative1, UnivariateDerivative1) {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(sin, cos), u.Compose(cos, -sin)
}

// Tan returns the tangent.
func (u UnivariateDerivative1) Tan() UnivariateDerivative1 {
	t := math.Tan(u.f0)
	return u.Compose(t, 1+t*t)
}

// Asin returns the arc sine.
func (u UnivariateDerivative1) Asin() UnivariateDerivative1 {
	return u.Compose(math.Asin(u.f0), 1/math.Sqrt(1-u.f0*u.f0))
}

// Acos returns the arc cosine.
func (u UnivariateDerivative1) Acos() UnivariateDerivative1 {
	return u.Compose(math.Acos(u.f0), -1/math.Sqrt(1-u.f0*u.f0))
}

// Atan returns the arc tangent.
func (u UnivariateDerivative1) Atan() UnivariateDerivative1 {
	return u.Compose(math.Atan(u.f0), 1/(1+u.f0*u.f0))
}

// Atan2 returns the two-argument arc tangent atan2(u, x), with u as the
// ordinate.
func (u UnivariateDerivative1) Atan2(x UnivariateDerivative1) UnivariateDerivative1 {
	inv := 1.0 / (u.f0*u.f0 + x.f0*x.f0)
	return UnivariateDerivative1{
		f0: math.Atan2(u.f0, x.f0),
		f1: accurate.LinearCombination2(x.f0, u.f1, -x.f1, u.f0) * inv,
	}
}

// Sinh returns the hyperbolic sine.
func (u UnivariateDerivative1) Sinh() UnivariateDerivative1 {
	return u.Compose(math.Sinh(u.f0), math.Cosh(u.f0))
}

// Cosh returns the hyperbolic cosine.
func (u UnivariateDerivative1) Cosh() UnivariateDerivative1 {
	return u.Compose(math.Cosh(u.f0), math.Sinh(u.f0))
}

// SinhCosh returns the hyperbolic sine and cosine together.
func (u UnivariateDerivative1) SinhCosh() (UnivariateDerivative1, UnivariateDerivative1) {
	sinh := math.Sinh(u.f0)
	cosh := math.Cosh(u.f0)
	return u.Compose(sinh, cosh), u.Compose(cosh, sinh)
}

// Tanh returns the hyperbolic tangent.
func (u UnivariateDerivative1) Tanh() UnivariateDerivative1 {
	t := math.Tanh(u.f0)
	return u.Compose(t, 1-t*t)
}

// Asinh returns the inverse hyperbolic sine.
func (u UnivariateDerivative1) Asinh() UnivariateDerivative1 {
	return u.Compose(math.Asinh(u.f0), 1/math.Sqrt(u.f0*u.f0+1))
}

// Acosh returns the inverse hyperbolic cosine.
func (u UnivariateDerivative1) Acosh() UnivariateDerivative1 {
	return u.Compose(math.Acosh(u.f0), 1/math.Sqrt(u.f0*u.f0-1))
}

// Atanh returns the inverse hyperbolic tangent.
func (u UnivariateDerivative1) Atanh() UnivariateDerivative1 {
	return u.Compose(math.Atanh(u.f0), 1/(1-u.f0*u.f0))
}

// ToDegrees converts from radians to degrees.
func (u UnivariateDerivative1) ToDegrees() UnivariateDerivative1 {
	return u.MultiplyScalar(180 / math.Pi)
}

// ToRadians converts from degrees to radians.
func (u UnivariateDerivative1) ToRadians() UnivariateDerivative1 {
	return u.MultiplyScalar(math.Pi / 180)
}

// Taylor evaluates the first-order Taylor expansion at the given offset.
func (u UnivariateDerivative1) Taylor(delta ...float64) (float64, error) {
	if len(delta) != 1 {
		return 0, fmt.Errorf("%w: %d offsets for 1 parameter", ErrDimensionMismatch, len(delta))
	}
	return u.f0 + delta[0]*u.f1, nil
}

// Equal reports componentwise equality, NaN comparing equal to NaN.
func (u UnivariateDerivative1) Equal(other UnivariateDerivative1) bool {
	return floatEqual(u.f0, other.f0) && floatEqual(u.f1, other.f1)
}

// String formats the value and the first derivative.
func (u UnivariateDerivative1) String() string {
	return fmt.Sprintf("UD1{value=%g, d1=%g}", u.f0, u.f1)
}

// UD1Dot returns the sum of products a[i]*b[i], both components evaluated
// with compensated summation, the derivative over the interleaved
// product-rule expansion. It returns an error for empty or unequal-length
// inputs.
func UD1Dot(a, b []UnivariateDerivative1) (UnivariateDerivative1, error) {
	if len(a) == 0 || len(a) != len(b) {
		return UnivariateDerivative1{}, fmt.Errorf("%w: %d and %d operands",
			ErrDimensionMismatch, len(a), len(b))
	}

	n := len(a)
	a0 := make([]float64, n)
	b0 := make([]float64, n)
	a1 := make([]float64, 2*n)
	b1 := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a0[i] = a[i].f0
		b0[i] = b[i].f0
		a1[2*i] = a[i].f0
		a1[2*i+1] = a[i].f1
		b1[2*i] = b[i].f1
		b1[2*i+1] = b[i].f0
	}

	return UnivariateDerivative1{
		f0: accurate.LinearCombination(a0, b0),
		f1: accurate.LinearCombination(a1, b1),
	}, nil
}

// UD1ScaledSum returns the sum of w[i]*b[i] for scalar weights, both
// components evaluated with compensated summation.
func UD1ScaledSum(w []float64, b []UnivariateDerivative1) (UnivariateDerivative1, error) {
	if len(w) == 0 || len(w) != len(b) {
		return UnivariateDerivative1{}, fmt.Errorf("%w: %d weights and %d operands",
			ErrDimensionMismatch, len(w), len(b))
	}

	n := len(b)
	b0 := make([]float64, n)
	b1 := make([]float64, n)
	for i := 0; i < n; i++ {
		b0[i] = b[i].f0
		b1[i] = b[i].f1
	}

	return UnivariateDerivative1{
		f0: accurate.LinearCombination(w, b0),
		f1: accurate.LinearCombination(w, b1),
	}, nil
}

// floatEqual compares two coefficients, NaN comparing equal to NaN.
func floatEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
