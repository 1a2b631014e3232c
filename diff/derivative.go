package diff

import "math"

// Derivative is the capability contract shared by every value-with-
// derivatives representation in this package. It is a self-referential
// constraint: differentiable functions written once against it run
// unchanged on DerivativeStructure, Gradient, UnivariateDerivative1 and
// UnivariateDerivative2, each yielding its own derivatives.
//
//	func logistic[T diff.Derivative[T]](x T) T {
//		return x.Negate().Exp().AddScalar(1).Reciprocal()
//	}
type Derivative[T any] interface {
	Element[T]

	// Order returns the maximum derivation order.
	Order() int
	// FreeParameters returns the number of free parameters.
	FreeParameters() int
	// PartialDerivative returns the raw partial derivative for the given
	// derivation orders, one per free parameter.
	PartialDerivative(orders ...int) (float64, error)
	// Compose applies a univariate outer function given by its value and
	// first Order() derivatives at the instance's value.
	Compose(f ...float64) T
	// Taylor evaluates the Taylor expansion at the given parameter
	// offsets.
	Taylor(delta ...float64) (float64, error)
}

// Element is the shape-free part of the contract: everything a field
// element needs so that the field-valued representations can nest it as
// their coefficient type. Every Derivative implementation is also an
// Element, so derivatives nest inside field-valued derivatives.
type Element[T any] interface {
	// Real returns the value as a plain float64.
	Real() float64
	// Value returns the value (alias of Real).
	Value() float64
	// NewInstance returns a constant of the same shape.
	NewInstance(value float64) T

	Add(a T) T
	AddScalar(a float64) T
	Subtract(a T) T
	SubtractScalar(a float64) T
	Negate() T
	Multiply(a T) T
	MultiplyScalar(a float64) T
	Divide(a T) T
	DivideScalar(a float64) T
	Remainder(a T) T
	RemainderScalar(a float64) T

	Abs() T
	Ceil() T
	Floor() T
	Rint() T
	Sign() T
	CopySign(sign T) T
	CopySignScalar(sign float64) T
	Exponent() int
	Scalb(n int) T
	Ulp() T
	Hypot(y T) T

	Reciprocal() T
	Sqrt() T
	Cbrt() T
	RootN(n int) T
	Pow(p float64) T
	PowInt(n int) T
	Exp() T
	Expm1() T
	Log() T
	Log1p() T
	Log10() T
	Sin() T
	Cos() T
	SinCos() (sin, cos T)
	Tan() T
	Asin() T
	Acos() T
	Atan() T
	Atan2(x T) T
	Sinh() T
	Cosh() T
	SinhCosh() (sinh, cosh T)
	Tanh() T
	Asinh() T
	Acosh() T
	Atanh() T
	ToDegrees() T
	ToRadians() T
}

// Univariate is the contract of single-variable representations, which
// expose their derivatives directly by order.
type Univariate[T any] interface {
	Derivative[T]
	// Derivative returns the n-th derivative; n may run from 0 (the
	// value) to Order().
	Derivative(n int) (float64, error)
}

// Derivative1 is satisfied by representations carrying at least a first
// derivative in a dedicated slot.
type Derivative1[T any] interface {
	Derivative[T]
	FirstDerivative() float64
}

// Derivative2 is satisfied by representations carrying dedicated first and
// second derivative slots.
type Derivative2[T any] interface {
	Derivative1[T]
	SecondDerivative() float64
}

// Func is a differentiable scalar function written against the contract,
// usable with any representation.
type Func[T Derivative[T]] func(x T) T

var (
	_ Derivative[*DerivativeStructure]   = (*DerivativeStructure)(nil)
	_ Derivative[*Gradient]              = (*Gradient)(nil)
	_ Univariate[UnivariateDerivative1]  = UnivariateDerivative1{}
	_ Univariate[UnivariateDerivative2]  = UnivariateDerivative2{}
	_ Derivative1[UnivariateDerivative1] = UnivariateDerivative1{}
	_ Derivative2[UnivariateDerivative2] = UnivariateDerivative2{}
	_ Element[Real64]                    = Real64(0)
)

// The helpers below implement derived identities once for all
// representations, in terms of the primitive capability set.

// Hypot returns sqrt(x^2+y^2) avoiding intermediate overflow and
// underflow.
//
// If either operand is infinite the result is +Inf, even when the other is
// NaN; otherwise a NaN operand yields NaN. When the binary exponents of the
// operands differ by more than 27 the smaller one is negligible at double
// precision, so the result is exactly the absolute value of the larger.
// Otherwise both operands are rescaled by a common power of two near their
// mean exponent, squared and summed in the safe range, and scaled back.
func Hypot[T Derivative[T]](x, y T) T {
	switch {
	case math.IsInf(x.Real(), 0) || math.IsInf(y.Real(), 0):
		return x.NewInstance(math.Inf(1))
	case math.IsNaN(x.Real()) || math.IsNaN(y.Real()):
		return x.NewInstance(math.NaN())
	}

	expX := x.Exponent()
	expY := y.Exponent()
	if expX > expY+27 {
		// y is negligible with respect to x
		return x.Abs()
	}
	if expY > expX+27 {
		// x is negligible with respect to y
		return y.Abs()
	}

	// intermediate scale avoiding both overflow and underflow
	middleExp := (expX + expY) / 2

	scaledX := x.Scalb(-middleExp)
	scaledY := y.Scalb(-middleExp)

	scaledH := scaledX.Multiply(scaledX).Add(scaledY.Multiply(scaledY)).Sqrt()

	return scaledH.Scalb(middleExp)
}

// Pow returns x**y for two differentiable operands, via exp(y*log(x)).
func Pow[T Derivative[T]](x, y T) T {
	return x.Log().Multiply(y).Exp()
}

// signum returns the sign of x as -1, 0 or 1, keeping the sign of zero and
// propagating NaN.
func signum(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return x
	case math.Signbit(x):
		return -1
	}
	return 1
}

// exponent returns the unbiased IEEE 754 binary exponent of x: -1023 for
// zeros and subnormals, 1024 for infinities and NaN.
func exponent(x float64) int {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return 1024
	case math.Abs(x) < 0x1p-1022:
		return -1023
	}
	_, e := math.Frexp(x)
	return e - 1
}

// ulp returns the unit in the last place of x.
func ulp(x float64) float64 {
	x = math.Abs(x)
	if math.IsInf(x, 0) {
		return math.Inf(1)
	}
	next := math.Nextafter(x, math.Inf(1))
	if math.IsInf(next, 0) {
		// largest finite value: use the step below instead
		return x - math.Nextafter(x, 0)
	}
	return next - x
}
