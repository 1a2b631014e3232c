package diff

import (
	"fmt"
	"math"

	"github.com/calcforge/autodiff/internal/accurate"
)

// UnivariateDerivative2 is the order-2, single-parameter representation:
// one value, a first and a second derivative, held in plain fields.
// Instances are immutable.
type UnivariateDerivative2 struct {
	f0 float64
	f1 float64
	f2 float64
}

// NewUD2 builds an instance from a value and its first two derivatives.
func NewUD2(f0, f1, f2 float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: f0, f1: f1, f2: f2}
}

// NewUD2Variable returns the free variable at the given value: its first
// derivative is one, its second zero.
func NewUD2Variable(value float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: value, f1: 1}
}

// NewUD2FromStructure converts a one-parameter, order-2
// DerivativeStructure. It returns ErrDimensionMismatch for any other shape.
func NewUD2FromStructure(ds *DerivativeStructure) (UnivariateDerivative2, error) {
	if ds.FreeParameters() != 1 || ds.Order() != 2 {
		return UnivariateDerivative2{}, fmt.Errorf("%w: %d parameters order %d, want 1 parameter order 2",
			ErrDimensionMismatch, ds.FreeParameters(), ds.Order())
	}
	d1, err := ds.PartialDerivative(1)
	if err != nil {
		return UnivariateDerivative2{}, err
	}
	d2, err := ds.PartialDerivative(2)
	if err != nil {
		return UnivariateDerivative2{}, err
	}
	return UnivariateDerivative2{f0: ds.Value(), f1: d1, f2: d2}, nil
}

// ToDerivativeStructure converts to the general representation, one free
// parameter and order 2.
func (u UnivariateDerivative2) ToDerivativeStructure() (*DerivativeStructure, error) {
	factory, err := NewFactory(1, 2)
	if err != nil {
		return nil, err
	}
	return factory.Build(u.f0, u.f1, u.f2)
}

// Value returns the function value.
func (u UnivariateDerivative2) Value() float64 { return u.f0 }

// Real is an alias for Value, matching the contract interface.
func (u UnivariateDerivative2) Real() float64 { return u.f0 }

// FirstDerivative returns the first derivative.
func (u UnivariateDerivative2) FirstDerivative() float64 { return u.f1 }

// SecondDerivative returns the second derivative.
func (u UnivariateDerivative2) SecondDerivative() float64 { return u.f2 }

// Order returns 2.
func (u UnivariateDerivative2) Order() int { return 2 }

// FreeParameters returns 1.
func (u UnivariateDerivative2) FreeParameters() int { return 1 }

// Derivative returns the n-th derivative, n in [0, 2].
func (u UnivariateDerivative2) Derivative(n int) (float64, error) {
	switch n {
	case 0:
		return u.f0, nil
	case 1:
		return u.f1, nil
	case 2:
		return u.f2, nil
	default:
		return 0, fmt.Errorf("%w: derivation order %d", ErrDerivationOrderNotAllowed, n)
	}
}

// PartialDerivative returns the derivative for the given derivation orders;
// a single order in [0, 2] is expected.
func (u UnivariateDerivative2) PartialDerivative(orders ...int) (float64, error) {
	if len(orders) != 1 {
		return 0, fmt.Errorf("%w: %d orders for 1 parameter", ErrDimensionMismatch, len(orders))
	}
	return u.Derivative(orders[0])
}

// NewInstance returns a constant.
func (u UnivariateDerivative2) NewInstance(value float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: value}
}

// AddScalar returns u + a.
func (u UnivariateDerivative2) AddScalar(a float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: u.f0 + a, f1: u.f1, f2: u.f2}
}

// Add returns u + a.
func (u UnivariateDerivative2) Add(a UnivariateDerivative2) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: u.f0 + a.f0, f1: u.f1 + a.f1, f2: u.f2 + a.f2}
}

// SubtractScalar returns u - a.
func (u UnivariateDerivative2) SubtractScalar(a float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: u.f0 - a, f1: u.f1, f2: u.f2}
}

// Subtract returns u - a.
func (u UnivariateDerivative2) Subtract(a UnivariateDerivative2) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: u.f0 - a.f0, f1: u.f1 - a.f1, f2: u.f2 - a.f2}
}

// Negate returns -u.
func (u UnivariateDerivative2) Negate() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: -u.f0, f1: -u.f1, f2: -u.f2}
}

// MultiplyScalar returns u * a.
func (u UnivariateDerivative2) MultiplyScalar(a float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: u.f0 * a, f1: u.f1 * a, f2: u.f2 * a}
}

// Multiply returns u * a, the derivatives through compensated product
// rules (Leibniz for the second derivative).
func (u UnivariateDerivative2) Multiply(a UnivariateDerivative2) UnivariateDerivative2 {
	return UnivariateDerivative2{
		f0: u.f0 * a.f0,
		f1: accurate.LinearCombination2(u.f1, a.f0, u.f0, a.f1),
		f2: accurate.LinearCombination3(u.f2, a.f0, 2*u.f1, a.f1, u.f0, a.f2),
	}
}

// DivideScalar returns u / a.
func (u UnivariateDerivative2) DivideScalar(a float64) UnivariateDerivative2 {
	inv1 := 1.0 / a
	return UnivariateDerivative2{f0: u.f0 * inv1, f1: u.f1 * inv1, f2: u.f2 * inv1}
}

// Divide returns u / a.
func (u UnivariateDerivative2) Divide(a UnivariateDerivative2) UnivariateDerivative2 {
	inv1 := 1.0 / a.f0
	inv2 := inv1 * inv1
	inv3 := inv1 * inv2
	return UnivariateDerivative2{
		f0: u.f0 * inv1,
		f1: accurate.LinearCombination2(u.f1, a.f0, -u.f0, a.f1) * inv2,
		f2: accurate.LinearCombination4(u.f2, a.f0*a.f0,
			-2*u.f1, a.f0*a.f1,
			2*u.f0, a.f1*a.f1,
			-u.f0, a.f0*a.f2) * inv3,
	}
}

// RemainderScalar returns the IEEE remainder of u by a; the derivatives are
// those of u.
func (u UnivariateDerivative2) RemainderScalar(a float64) UnivariateDerivative2 {
	return UnivariateDerivative2{f0: math.Remainder(u.f0, a), f1: u.f1, f2: u.f2}
}

// Remainder returns the IEEE remainder of u by a. The derivatives follow
// u - k*a for the integer quotient k.
func (u UnivariateDerivative2) Remainder(a UnivariateDerivative2) UnivariateDerivative2 {
	rem := math.Remainder(u.f0, a.f0)
	k := math.Round((u.f0 - rem) / a.f0)
	return UnivariateDerivative2{f0: rem, f1: u.f1 - k*a.f1, f2: u.f2 - k*a.f2}
}

// Abs returns the absolute value. -0.0 counts as negative.
func (u UnivariateDerivative2) Abs() UnivariateDerivative2 {
	if math.Signbit(u.f0) {
		return u.Negate()
	}
	return u
}

// Ceil returns the ceiling of the value as a constant.
func (u UnivariateDerivative2) Ceil() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: math.Ceil(u.f0)}
}

// Floor returns the floor of the value as a constant.
func (u UnivariateDerivative2) Floor() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: math.Floor(u.f0)}
}

// Rint returns the value rounded to the nearest integer (ties to even) as a
// constant.
func (u UnivariateDerivative2) Rint() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: math.RoundToEven(u.f0)}
}

// Sign returns the signum of the value as a constant.
func (u UnivariateDerivative2) Sign() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: signum(u.f0)}
}

// CopySign returns u with the sign of the reference value.
func (u UnivariateDerivative2) CopySign(sign UnivariateDerivative2) UnivariateDerivative2 {
	return u.CopySignScalar(sign.f0)
}

// CopySignScalar returns u with the sign of the reference value, comparing
// raw bit patterns so that -0.0 counts as negative.
func (u UnivariateDerivative2) CopySignScalar(sign float64) UnivariateDerivative2 {
	if math.Signbit(u.f0) == math.Signbit(sign) {
		return u
	}
	return u.Negate()
}

// Exponent returns the unbiased binary exponent of the value.
func (u UnivariateDerivative2) Exponent() int { return exponent(u.f0) }

// Scalb multiplies all components by 2**n exactly.
func (u UnivariateDerivative2) Scalb(n int) UnivariateDerivative2 {
	return UnivariateDerivative2{
		f0: math.Ldexp(u.f0, n),
		f1: math.Ldexp(u.f1, n),
		f2: math.Ldexp(u.f2, n),
	}
}

// Ulp returns the unit in the last place of the value as a constant.
func (u UnivariateDerivative2) Ulp() UnivariateDerivative2 {
	return UnivariateDerivative2{f0: ulp(u.f0)}
}

// Hypot returns sqrt(u^2+y^2) avoiding intermediate overflow and underflow.
func (u UnivariateDerivative2) Hypot(y UnivariateDerivative2) UnivariateDerivative2 {
	return Hypot(u, y)
}

// Compose applies a univariate outer function given by its value and first
// two derivatives at the instance's value. It panics with
// ErrDimensionMismatch unless len(f) == 3.
func (u UnivariateDerivative2) Compose(f ...float64) UnivariateDerivative2 {
	if len(f) != 3 {
		panic(fmt.Errorf("%w: %d outer coefficients for order 2", ErrDimensionMismatch, len(f)))
	}
	return UnivariateDerivative2{
		f0: f[0],
		f1: f[1] * u.f1,
		f2: accurate.LinearCombination2(f[1], u.f2, f[2], u.f1*u.f1),
	}
}

// Reciprocal returns 1/u.
func (u UnivariateDerivative2) Reciprocal() UnivariateDerivative2 {
	inv1 := 1.0 / u.f0
	inv2 := inv1 * inv1
	inv3 := inv1 * inv2
	return UnivariateDerivative2{
		f0: inv1,
		f1: -u.f1 * inv2,
		f2: accurate.LinearCombination2(2*u.f1, u.f1, -u.f0, u.f2) * inv3,
	}
}

// Sqrt returns the square root.
func (u UnivariateDerivative2) Sqrt() UnivariateDerivative2 {
	s0 := math.Sqrt(u.f0)
	s0twice := 2 * s0
	s1 := u.f1 / s0twice
	s2 := (u.f2 - 2*s1*s1) / s0twice
	return UnivariateDerivative2{f0: s0, f1: s1, f2: s2}
}

// Cbrt returns the cube root.
func (u UnivariateDerivative2) Cbrt() UnivariateDerivative2 {
	c := math.Cbrt(u.f0)
	c2 := c * c
	return u.Compose(c, 1/(3*c2), -1/(4.5*c2*u.f0))
}

// RootN returns the n-th root.
func (u UnivariateDerivative2) RootN(n int) UnivariateDerivative2 {
	switch n {
	case 2:
		return u.Sqrt()
	case 3:
		return u.Cbrt()
	default:
		r := math.Pow(u.f0, 1.0/float64(n))
		z := float64(n) * math.Pow(r, float64(n-1))
		return u.Compose(r, 1/z, float64(1-n)/(z*z*r))
	}
}

// Pow returns u**p.
func (u UnivariateDerivative2) Pow(p float64) UnivariateDerivative2 {
	if p == 0 {
		return u.NewInstance(1)
	}
	f0Pm2 := math.Pow(u.f0, p-2)
	f0Pm1 := f0Pm2 * u.f0
	f0P := f0Pm1 * u.f0
	return u.Compose(f0P, p*f0Pm1, p*(p-1)*f0Pm2)
}

// PowInt returns u**n for an integer exponent.
func (u UnivariateDerivative2) PowInt(n int) UnivariateDerivative2 {
	if n == 0 {
		return u.NewInstance(1)
	}
	f0Nm2 := math.Pow(u.f0, float64(n-2))
	f0Nm1 := f0Nm2 * u.f0
	f0N := f0Nm1 * u.f0
	return u.Compose(f0N, float64(n)*f0Nm1, float64(n*(n-1))*f0Nm2)
}

// UD2PowBase returns a**x for a plain scalar base.
func UD2PowBase(a float64, x UnivariateDerivative2) UnivariateDerivative2 {
	if a == 0 {
		return UnivariateDerivative2{}
	}
	aX := math.Pow(a, x.f0)
	lnA := math.Log(a)
	aXlnA := aX * lnA
	return UnivariateDerivative2{
		f0: aX,
		f1: aXlnA * x.f1,
		f2: aXlnA * (x.f1*x.f1*lnA + x.f2),
	}
}

// Exp returns the exponential.
func (u UnivariateDerivative2) Exp() UnivariateDerivative2 {
	e := math.Exp(u.f0)
	return u.Compose(e, e, e)
}

// Expm1 returns exp(u)-1.
func (u UnivariateDerivative2) Expm1() UnivariateDerivative2 {
	e := math.Exp(u.f0)
	return u.Compose(math.Expm1(u.f0), e, e)
}

// Log returns the natural logarithm.
func (u UnivariateDerivative2) Log() UnivariateDerivative2 {
	inv := 1 / u.f0
	return u.Compose(math.Log(u.f0), inv, -inv*inv)
}

// Log1p returns log(1+u).
func (u UnivariateDerivative2) Log1p() UnivariateDerivative2 {
	inv := 1 / (1 + u.f0)
	return u.Compose(math.Log1p(u.f0), inv, -inv*inv)
}

// Log10 returns the base-10 logarithm.
func (u UnivariateDerivative2) Log10() UnivariateDerivative2 {
	invF0 := 1 / u.f0
	inv := invF0 / math.Ln10
	return u.Compose(math.Log10(u.f0), inv, -inv*invF0)
}

// Sin returns the sine.
func (u UnivariateDerivative2) Sin() UnivariateDerivative2 {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(sin, cos, -sin)
}

// Cos returns the cosine.
func (u UnivariateDerivative2) Cos() UnivariateDerivative2 {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(cos, -sin, -cos)
}

// SinCos returns the sine and cosine together.
func (u UnivariateDerivative2) SinCos() (UnivariateDerivative2, UnivariateDerivative2) {
	sin, cos := math.Sincos(u.f0)
	return u.Compose(sin, cos, -sin), u.Compose(cos, -sin, -cos)
}

// Tan returns the tangent.
func (u UnivariateDerivative2) Tan() UnivariateDerivative2 {
	tan := math.Tan(u.f0)
	sec2 := 1 + tan*tan
	return u.Compose(tan, sec2, 2*sec2*tan)
}

// Asin returns the arc sine.
func (u UnivariateDerivative2) Asin() UnivariateDerivative2 {
	inv := 1.0 / (1 - u.f0*u.f0)
	s := math.Sqrt(inv)
	return u.Compose(math.Asin(u.f0), s, s*u.f0*inv)
}

// Acos returns the arc cosine.
func (u UnivariateDerivative2) Acos() UnivariateDerivative2 {
	inv := 1.0 / (1 - u.f0*u.f0)
	mS := -math.Sqrt(inv)
	return u.Compose(math.Acos(u.f0), mS, mS*u.f0*inv)
}

// Atan returns the arc tangent.
func (u UnivariateDerivative2) Atan() UnivariateDerivative2 {
	inv := 1 / (1 + u.f0*u.f0)
	return u.Compose(math.Atan(u.f0), inv, -2*u.f0*inv*inv)
}

// Atan2 returns the two-argument arc tangent atan2(u, x), with u as the
// ordinate.
func (u UnivariateDerivative2) Atan2(x UnivariateDerivative2) UnivariateDerivative2 {
	x2 := x.f0 * x.f0
	f02 := u.f0 + u.f0
	inv := 1.0 / (u.f0*u.f0 + x2)
	atan0 := math.Atan2(u.f0, x.f0)
	atan1 := accurate.LinearCombination2(x.f0, u.f1, -x.f1, u.f0) * inv
	c := accurate.LinearCombination4(u.f2, x2,
		-2*u.f1, x.f0*x.f1,
		f02, x.f1*x.f1,
		-u.f0, x.f0*x.f2) * inv
	return UnivariateDerivative2{f0: atan0, f1: atan1, f2: (c - f02*atan1*atan1) / x.f0}
}

// Sinh returns the hyperbolic sine.
func (u UnivariateDerivative2) Sinh() UnivariateDerivative2 {
	c := math.Cosh(u.f0)
	s := math.Sinh(u.f0)
	return u.Compose(s, c, s)
}

// Cosh returns the hyperbolic cosine.
func (u UnivariateDerivative2) Cosh() UnivariateDerivative2 {
	c := math.Cosh(u.f0)
	s := math.Sinh(u.f0)
	return u.Compose(c, s, c)
}

// SinhCosh returns the hyperbolic sine and cosine together.
func (u UnivariateDerivative2) SinhCosh() (UnivariateDerivative2, UnivariateDerivative2) {
	sinh := math.Sinh(u.f0)
	cosh := math.Cosh(u.f0)
	return u.Compose(sinh, cosh, sinh), u.Compose(cosh, sinh, cosh)
}

// Tanh returns the hyperbolic tangent.
func (u UnivariateDerivative2) Tanh() UnivariateDerivative2 {
	tanh := math.Tanh(u.f0)
	sech2 := 1 - tanh*tanh
	return u.Compose(tanh, sech2, -2*sech2*tanh)
}

// Asinh returns the inverse hyperbolic sine.
func (u UnivariateDerivative2) Asinh() UnivariateDerivative2 {
	inv := 1 / (u.f0*u.f0 + 1)
	s := math.Sqrt(inv)
	return u.Compose(math.Asinh(u.f0), s, -u.f0*s*inv)
}

// Acosh returns the inverse hyperbolic cosine.
func (u UnivariateDerivative2) Acosh() UnivariateDerivative2 {
	inv := 1 / (u.f0*u.f0 - 1)
	s := math.Sqrt(inv)
	return u.Compose(math.Acosh(u.f0), s, -u.f0*s*inv)
}

// Atanh returns the inverse hyperbolic tangent.
func (u UnivariateDerivative2) Atanh() UnivariateDerivative2 {
	inv := 1 / (1 - u.f0*u.f0)
	return u.Compose(math.Atanh(u.f0), inv, 2*u.f0*inv*inv)
}

// ToDegrees converts from radians to degrees.
func (u UnivariateDerivative2) ToDegrees() UnivariateDerivative2 {
	return u.MultiplyScalar(180 / math.Pi)
}

// ToRadians converts from degrees to radians.
func (u UnivariateDerivative2) ToRadians() UnivariateDerivative2 {
	return u.MultiplyScalar(math.Pi / 180)
}

// Taylor evaluates the second-order Taylor expansion at the given offset.
func (u UnivariateDerivative2) Taylor(delta ...float64) (float64, error) {
	if len(delta) != 1 {
		return 0, fmt.Errorf("%w: %d offsets for 1 parameter", ErrDimensionMismatch, len(delta))
	}
	return u.f0 + delta[0]*(u.f1+0.5*delta[0]*u.f2), nil
}

// Equal reports componentwise equality, NaN comparing equal to NaN.
func (u UnivariateDerivative2) Equal(other UnivariateDerivative2) bool {
	return floatEqual(u.f0, other.f0) && floatEqual(u.f1, other.f1) && floatEqual(u.f2, other.f2)
}

// String formats the value and the derivatives.
func (u UnivariateDerivative2) String() string {
	return fmt.Sprintf("UD2{value=%g, d1=%g, d2=%g}", u.f0, u.f1, u.f2)
}

// UD2Dot returns the sum of products a[i]*b[i], each component evaluated
// with compensated summation over the interleaved Leibniz expansion. It
// returns an error for empty or unequal-length inputs.
func UD2Dot(a, b []UnivariateDerivative2) (UnivariateDerivative2, error) {
	if len(a) == 0 || len(a) != len(b) {
		return UnivariateDerivative2{}, fmt.Errorf("%w: %d and %d operands",
			ErrDimensionMismatch, len(a), len(b))
	}

	n := len(a)
	a0 := make([]float64, n)
	b0 := make([]float64, n)
	a1 := make([]float64, 2*n)
	b1 := make([]float64, 2*n)
	a2 := make([]float64, 3*n)
	b2 := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		ai, bi := a[i], b[i]
		a0[i] = ai.f0
		b0[i] = bi.f0
		a1[2*i] = ai.f0
		a1[2*i+1] = ai.f1
		b1[2*i] = bi.f1
		b1[2*i+1] = bi.f0
		a2[3*i] = ai.f0
		a2[3*i+1] = ai.f1 + ai.f1
		a2[3*i+2] = ai.f2
		b2[3*i] = bi.f2
		b2[3*i+1] = bi.f1
		b2[3*i+2] = bi.f0
	}

	return UnivariateDerivative2{
		f0: accurate.LinearCombination(a0, b0),
		f1: accurate.LinearCombination(a1, b1),
		f2: accurate.LinearCombination(a2, b2),
	}, nil
}

// UD2ScaledSum returns the sum of w[i]*b[i] for scalar weights, each
// component evaluated with compensated summation.
func UD2ScaledSum(w []float64, b []UnivariateDerivative2) (UnivariateDerivative2, error) {
	if len(w) == 0 || len(w) != len(b) {
		return UnivariateDerivative2{}, fmt.Errorf("%w: %d weights and %d operands",
			ErrDimensionMismatch, len(w), len(b))
	}

	n := len(b)
	b0 := make([]float64, n)
	b1 := make([]float64, n)
	b2 := make([]float64, n)
	for i := 0; i < n; i++ {
		b0[i] = b[i].f0
		b1[i] = b[i].f1
		b2[i] = b[i].f2
	}

	return UnivariateDerivative2{
		f0: accurate.LinearCombination(w, b0),
		f1: accurate.LinearCombination(w, b1),
		f2: accurate.LinearCombination(w, b2),
	}, nil
}
