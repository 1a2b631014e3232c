package diff

import (
	"fmt"
	"math"

	"github.com/calcforge/autodiff/internal/accurate"
)

// Gradient is the order-1 representation for several free parameters: one
// function value and one first partial derivative per parameter. It stores
// no compiler tables, every operation is a closed-form chain rule, so it is
// much lighter than the equivalent DerivativeStructure. Instances are
// immutable.
type Gradient struct {
	value float64
	grad  []float64
}

// NewGradient builds a gradient from a value and its first partial
// derivatives, one per free parameter.
func NewGradient(value float64, gradient ...float64) *Gradient {
	g := &Gradient{value: value, grad: make([]float64, len(gradient))}
	copy(g.grad, gradient)
	return g
}

// NewGradientConstant returns a constant: all partial derivatives are zero.
func NewGradientConstant(freeParameters int, value float64) *Gradient {
	return &Gradient{value: value, grad: make([]float64, freeParameters)}
}

// NewGradientVariable returns the free variable of the given index: its own
// partial derivative is one.
func NewGradientVariable(freeParameters, index int, value float64) (*Gradient, error) {
	if index < 0 || index >= freeParameters {
		return nil, fmt.Errorf("%w: variable index %d not in [0, %d)",
			ErrOutOfRange, index, freeParameters)
	}
	g := NewGradientConstant(freeParameters, value)
	g.grad[index] = 1.0
	return g, nil
}

// NewGradientFromStructure converts an order-1 DerivativeStructure. It
// returns ErrDimensionMismatch when the structure's order is not 1.
func NewGradientFromStructure(ds *DerivativeStructure) (*Gradient, error) {
	if ds.Order() != 1 {
		return nil, fmt.Errorf("%w: order %d structure, want order 1",
			ErrDimensionMismatch, ds.Order())
	}
	n := ds.FreeParameters()
	g := &Gradient{value: ds.Value(), grad: make([]float64, n)}
	orders := make([]int, n)
	for i := 0; i < n; i++ {
		orders[i] = 1
		d, err := ds.PartialDerivative(orders...)
		if err != nil {
			return nil, err
		}
		g.grad[i] = d
		orders[i] = 0
	}
	return g, nil
}

// ToDerivativeStructure converts to the general representation, order 1.
func (g *Gradient) ToDerivativeStructure() (*DerivativeStructure, error) {
	factory, err := NewFactory(len(g.grad), 1)
	if err != nil {
		return nil, err
	}
	derivatives := make([]float64, 1+len(g.grad))
	derivatives[0] = g.value
	copy(derivatives[1:], g.grad)
	return factory.Build(derivatives...)
}

// Value returns the function value.
func (g *Gradient) Value() float64 { return g.value }

// Real is an alias for Value, matching the contract interface.
func (g *Gradient) Real() float64 { return g.value }

// Order returns 1.
func (g *Gradient) Order() int { return 1 }

// FreeParameters returns the number of free parameters.
func (g *Gradient) FreeParameters() int { return len(g.grad) }

// Gradient returns a copy of the first partial derivatives, one per free
// parameter.
func (g *Gradient) Gradient() []float64 {
	out := make([]float64, len(g.grad))
	copy(out, g.grad)
	return out
}

// Partial returns the first partial derivative with respect to parameter n.
func (g *Gradient) Partial(n int) (float64, error) {
	if n < 0 || n >= len(g.grad) {
		return 0, fmt.Errorf("%w: parameter %d not in [0, %d)", ErrOutOfRange, n, len(g.grad))
	}
	return g.grad[n], nil
}

// PartialDerivative returns the raw partial derivative for the given
// derivation orders, one per free parameter. Only order 0 (the value) and a
// single order 1 are representable.
func (g *Gradient) PartialDerivative(orders ...int) (float64, error) {
	if len(orders) != len(g.grad) {
		return 0, fmt.Errorf("%w: %d orders for %d parameters",
			ErrDimensionMismatch, len(orders), len(g.grad))
	}
	selected := -1
	for i, o := range orders {
		switch {
		case o == 0:
			continue
		case o == 1 && selected < 0:
			selected = i
		default:
			return 0, fmt.Errorf("%w: derivation orders %v exceed order 1",
				ErrDerivationOrderNotAllowed, orders)
		}
	}
	if selected < 0 {
		return g.value, nil
	}
	return g.grad[selected], nil
}

// NewInstance returns a constant of the same shape.
func (g *Gradient) NewInstance(value float64) *Gradient {
	return NewGradientConstant(len(g.grad), value)
}

// newLike returns a fresh gradient of the same shape with the given value.
func (g *Gradient) newLike(value float64) *Gradient {
	return &Gradient{value: value, grad: make([]float64, len(g.grad))}
}

// checkCompatibility panics when a has a different number of free
// parameters.
func (g *Gradient) checkCompatibility(a *Gradient) {
	if len(g.grad) != len(a.grad) {
		panic(fmt.Errorf("%w: %d and %d free parameters",
			ErrDimensionMismatch, len(g.grad), len(a.grad)))
	}
}

// AddScalar returns g + a.
func (g *Gradient) AddScalar(a float64) *Gradient {
	out := g.newLike(g.value + a)
	copy(out.grad, g.grad)
	return out
}

// Add returns g + a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *Gradient) Add(a *Gradient) *Gradient {
	g.checkCompatibility(a)
	out := g.newLike(g.value + a.value)
	for i := range out.grad {
		out.grad[i] = g.grad[i] + a.grad[i]
	}
	return out
}

// SubtractScalar returns g - a.
func (g *Gradient) SubtractScalar(a float64) *Gradient {
	return g.AddScalar(-a)
}

// Subtract returns g - a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *Gradient) Subtract(a *Gradient) *Gradient {
	g.checkCompatibility(a)
	out := g.newLike(g.value - a.value)
	for i := range out.grad {
		out.grad[i] = g.grad[i] - a.grad[i]
	}
	return out
}

// Negate returns -g.
func (g *Gradient) Negate() *Gradient {
	out := g.newLike(-g.value)
	for i := range out.grad {
		out.grad[i] = -g.grad[i]
	}
	return out
}

// MultiplyScalar returns g * a.
func (g *Gradient) MultiplyScalar(a float64) *Gradient {
	out := g.newLike(g.value * a)
	for i := range out.grad {
		out.grad[i] = g.grad[i] * a
	}
	return out
}

// Multiply returns g * a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *Gradient) Multiply(a *Gradient) *Gradient {
	g.checkCompatibility(a)
	out := g.newLike(g.value * a.value)
	for i := range out.grad {
		out.grad[i] = g.grad[i]*a.value + g.value*a.grad[i]
	}
	return out
}

// DivideScalar returns g / a.
func (g *Gradient) DivideScalar(a float64) *Gradient {
	return g.MultiplyScalar(1.0 / a)
}

// Divide returns g / a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *Gradient) Divide(a *Gradient) *Gradient {
	g.checkCompatibility(a)
	inv1 := 1.0 / a.value
	inv2 := inv1 * inv1
	out := g.newLike(g.value * inv1)
	for i := range out.grad {
		out.grad[i] = (g.grad[i]*a.value - g.value*a.grad[i]) * inv2
	}
	return out
}

// RemainderScalar returns the IEEE remainder of g by a; the derivatives are
// those of g.
func (g *Gradient) RemainderScalar(a float64) *Gradient {
	out := g.newLike(math.Remainder(g.value, a))
	copy(out.grad, g.grad)
	return out
}

// Remainder returns the IEEE remainder of g by a. The derivatives follow
// g - k*a for the integer quotient k. It panics with ErrDimensionMismatch
// when shapes differ.
func (g *Gradient) Remainder(a *Gradient) *Gradient {
	g.checkCompatibility(a)
	rem := math.Remainder(g.value, a.value)
	k := math.Round((g.value - rem) / a.value)
	out := g.newLike(rem)
	for i := range out.grad {
		out.grad[i] = g.grad[i] - k*a.grad[i]
	}
	return out
}

// Abs returns the absolute value. The sign is decided on the raw bit
// pattern so that -0.0 counts as negative.
func (g *Gradient) Abs() *Gradient {
	if math.Signbit(g.value) {
		return g.Negate()
	}
	return g
}

// Ceil returns the ceiling of the value as a constant.
func (g *Gradient) Ceil() *Gradient {
	return g.NewInstance(math.Ceil(g.value))
}

// Floor returns the floor of the value as a constant.
func (g *Gradient) Floor() *Gradient {
	return g.NewInstance(math.Floor(g.value))
}

// Rint returns the value rounded to the nearest integer (ties to even) as a
// constant.
func (g *Gradient) Rint() *Gradient {
	return g.NewInstance(math.RoundToEven(g.value))
}

// Sign returns the signum of the value as a constant.
func (g *Gradient) Sign() *Gradient {
	return g.NewInstance(signum(g.value))
}

// CopySign returns g with the sign of the reference value, comparing raw
// bit patterns so that -0.0 counts as negative.
func (g *Gradient) CopySign(sign *Gradient) *Gradient {
	return g.CopySignScalar(sign.value)
}

// CopySignScalar returns g with the sign of the reference value.
func (g *Gradient) CopySignScalar(sign float64) *Gradient {
	if math.Signbit(g.value) == math.Signbit(sign) {
		return g
	}
	return g.Negate()
}

// Exponent returns the unbiased binary exponent of the value.
func (g *Gradient) Exponent() int { return exponent(g.value) }

// Scalb multiplies the whole gradient by 2**n exactly.
func (g *Gradient) Scalb(n int) *Gradient {
	out := g.newLike(math.Ldexp(g.value, n))
	for i := range out.grad {
		out.grad[i] = math.Ldexp(g.grad[i], n)
	}
	return out
}

// Ulp returns the unit in the last place of the value as a constant.
func (g *Gradient) Ulp() *Gradient {
	return g.NewInstance(ulp(g.value))
}

// Hypot returns sqrt(g^2+y^2) avoiding intermediate overflow and underflow.
// It panics with ErrDimensionMismatch when shapes differ.
func (g *Gradient) Hypot(y *Gradient) *Gradient {
	g.checkCompatibility(y)
	return Hypot(g, y)
}

// Compose applies a univariate outer function given by its value and first
// derivative at the instance's value: f[0]=h(v), f[1]=h'(v). It panics with
// ErrDimensionMismatch unless len(f) == 2.
func (g *Gradient) Compose(f ...float64) *Gradient {
	if len(f) != 2 {
		panic(fmt.Errorf("%w: %d outer coefficients for order 1",
			ErrDimensionMismatch, len(f)))
	}
	out := g.newLike(f[0])
	for i := range out.grad {
		out.grad[i] = f[1] * g.grad[i]
	}
	return out
}

// Reciprocal returns 1/g.
func (g *Gradient) Reciprocal() *Gradient {
	inv1 := 1.0 / g.value
	mInv2 := -inv1 * inv1
	out := g.newLike(inv1)
	for i := range out.grad {
		out.grad[i] = mInv2 * g.grad[i]
	}
	return out
}

// Sqrt returns the square root.
func (g *Gradient) Sqrt() *Gradient {
	s := math.Sqrt(g.value)
	return g.Compose(s, 1/(2*s))
}

// Cbrt returns the cube root.
func (g *Gradient) Cbrt() *Gradient {
	c := math.Cbrt(g.value)
	return g.Compose(c, 1/(3*c*c))
}

// RootN returns the n-th root.
func (g *Gradient) RootN(n int) *Gradient {
	switch n {
	case 2:
		return g.Sqrt()
	case 3:
		return g.Cbrt()
	default:
		r := math.Pow(g.value, 1.0/float64(n))
		return g.Compose(r, 1/(float64(n)*math.Pow(r, float64(n-1))))
	}
}

// Pow returns g**p.
func (g *Gradient) Pow(p float64) *Gradient {
	if p == 0 {
		return g.NewInstance(1)
	}
	valuePm1 := math.Pow(g.value, p-1)
	return g.Compose(valuePm1*g.value, p*valuePm1)
}

// PowInt returns g**n for an integer exponent.
func (g *Gradient) PowInt(n int) *Gradient {
	if n == 0 {
		return g.NewInstance(1)
	}
	valueNm1 := math.Pow(g.value, float64(n-1))
	return g.Compose(valueNm1*g.value, float64(n)*valueNm1)
}

// GradientPowBase returns a**x for a plain scalar base.
func GradientPowBase(a float64, x *Gradient) *Gradient {
	if a == 0 {
		return x.NewInstance(0)
	}
	aX := math.Pow(a, x.value)
	aXlnA := aX * math.Log(a)
	out := x.newLike(aX)
	for i := range out.grad {
		out.grad[i] = aXlnA * x.grad[i]
	}
	return out
}

// Exp returns the exponential.
func (g *Gradient) Exp() *Gradient {
	e := math.Exp(g.value)
	return g.Compose(e, e)
}

// Expm1 returns exp(g)-1.
func (g *Gradient) Expm1() *Gradient {
	return g.Compose(math.Expm1(g.value), math.Exp(g.value))
}

// Log returns the natural logarithm.
func (g *Gradient) Log() *Gradient {
	return g.Compose(math.Log(g.value), 1/g.value)
}

// Log1p returns log(1+g).
func (g *Gradient) Log1p() *Gradient {
	return g.Compose(math.Log1p(g.value), 1/(1+g.value))
}

// Log10 returns the base-10 logarithm.
func (g *Gradient) Log10() *Gradient {
	return g.Compose(math.Log10(g.value), 1/(g.value*math.Ln10))
}

// Sin returns the sine.
func (g *Gradient) Sin() *Gradient {
	sin, cos := math.Sincos(g.value)
	return g.Compose(sin, cos)
}

// Cos returns the cosine.
func (g *Gradient) Cos() *Gradient {
	sin, cos := math.Sincos(g.value)
	return g.Compose(cos, -sin)
}

// SinCos returns the sine and cosine together, sharing the scalar
// evaluation.
func (g *Gradient) SinCos() (*Gradient, *Gradient) {
	sin, cos := math.Sincos(g.value)
	return g.Compose(sin, cos), g.Compose(cos, -sin)
}

// Tan returns the tangent.
func (g *Gradient) Tan() *Gradient {
	t := math.Tan(g.value)
	return g.Compose(t, 1+t*t)
}

// Asin returns the arc sine.
func (g *Gradient) Asin() *Gradient {
	return g.Compose(math.Asin(g.value), 1/math.Sqrt(1-g.value*g.value))
}

// Acos returns the arc cosine.
func (g *Gradient) Acos() *Gradient {
	return g.Compose(math.Acos(g.value), -1/math.Sqrt(1-g.value*g.value))
}

// Atan returns the arc tangent.
func (g *Gradient) Atan() *Gradient {
	return g.Compose(math.Atan(g.value), 1/(1+g.value*g.value))
}

// Atan2 returns the two-argument arc tangent atan2(g, x), with g as the
// ordinate. It panics with ErrDimensionMismatch when shapes differ.
func (g *Gradient) Atan2(x *Gradient) *Gradient {
	g.checkCompatibility(x)
	inv := 1.0 / (g.value*g.value + x.value*x.value)
	out := g.newLike(math.Atan2(g.value, x.value))
	for i := range out.grad {
		out.grad[i] = (x.value*g.grad[i] - x.grad[i]*g.value) * inv
	}
	return out
}

// Sinh returns the hyperbolic sine.
func (g *Gradient) Sinh() *Gradient {
	return g.Compose(math.Sinh(g.value), math.Cosh(g.value))
}

// Cosh returns the hyperbolic cosine.
func (g *Gradient) Cosh() *Gradient {
	return g.Compose(math.Cosh(g.value), math.Sinh(g.value))
}

// SinhCosh returns the hyperbolic sine and cosine together.
func (g *Gradient) SinhCosh() (*Gradient, *Gradient) {
	sinh := math.Sinh(g.value)
	cosh := math.Cosh(g.value)
	return g.Compose(sinh, cosh), g.Compose(cosh, sinh)
}

// Tanh returns the hyperbolic tangent.
func (g *Gradient) Tanh() *Gradient {
	t := math.Tanh(g.value)
	return g.Compose(t, 1-t*t)
}

// Asinh returns the inverse hyperbolic sine.
func (g *Gradient) Asinh() *Gradient {
	return g.Compose(math.Asinh(g.value), 1/math.Sqrt(g.value*g.value+1))
}

// Acosh returns the inverse hyperbolic cosine.
func (g *Gradient) Acosh() *Gradient {
	return g.Compose(math.Acosh(g.value), 1/math.Sqrt(g.value*g.value-1))
}

// Atanh returns the inverse hyperbolic tangent.
func (g *Gradient) Atanh() *Gradient {
	return g.Compose(math.Atanh(g.value), 1/(1-g.value*g.value))
}

// ToDegrees converts from radians to degrees.
func (g *Gradient) ToDegrees() *Gradient {
	return g.MultiplyScalar(180 / math.Pi)
}

// ToRadians converts from degrees to radians.
func (g *Gradient) ToRadians() *Gradient {
	return g.MultiplyScalar(math.Pi / 180)
}

// Taylor evaluates the first-order Taylor expansion at the given parameter
// offsets: value + sum of delta[i]*grad[i].
func (g *Gradient) Taylor(delta ...float64) (float64, error) {
	if len(delta) != len(g.grad) {
		return 0, fmt.Errorf("%w: %d offsets for %d parameters",
			ErrDimensionMismatch, len(delta), len(g.grad))
	}
	value := g.value
	for i, d := range delta {
		value += d * g.grad[i]
	}
	return value, nil
}

// Equal reports structural equality: same shape and identical coefficients
// (NaN coefficients compare equal to NaN).
func (g *Gradient) Equal(other *Gradient) bool {
	if len(g.grad) != len(other.grad) {
		return false
	}
	if g.value != other.value && !(math.IsNaN(g.value) && math.IsNaN(other.value)) {
		return false
	}
	for i := range g.grad {
		a, b := g.grad[i], other.grad[i]
		if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
			return false
		}
	}
	return true
}

// String formats the value and the partial derivatives.
func (g *Gradient) String() string {
	return fmt.Sprintf("Gradient{value=%g, grad=%v}", g.value, g.grad)
}

// GradientDot returns the sum of products a[i]*b[i]. The value and each
// partial derivative are evaluated with compensated summation, the partials
// over the interleaved product-rule expansion a[i]*b[i]' + a[i]'*b[i]. It
// panics with ErrDimensionMismatch when shapes differ, and returns an error
// for empty or unequal-length inputs.
func GradientDot(a, b []*Gradient) (*Gradient, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d operands", ErrDimensionMismatch, len(a), len(b))
	}

	n := len(a)
	a0 := make([]float64, n)
	b0 := make([]float64, n)
	a1 := make([]float64, 2*n)
	b1 := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a[0].checkCompatibility(a[i])
		a[0].checkCompatibility(b[i])
		a0[i] = a[i].value
		b0[i] = b[i].value
		a1[2*i] = a[i].value
		b1[2*i+1] = b[i].value
	}

	out := a[0].NewInstance(accurate.LinearCombination(a0, b0))
	for k := range out.grad {
		for i := 0; i < n; i++ {
			a1[2*i+1] = a[i].grad[k]
			b1[2*i] = b[i].grad[k]
		}
		out.grad[k] = accurate.LinearCombination(a1, b1)
	}
	return out, nil
}

// GradientScaledSum returns the sum of w[i]*b[i] for scalar weights, every
// component evaluated with compensated summation.
func GradientScaledSum(w []float64, b []*Gradient) (*Gradient, error) {
	if len(w) == 0 || len(w) != len(b) {
		return nil, fmt.Errorf("%w: %d weights and %d operands", ErrDimensionMismatch, len(w), len(b))
	}

	n := len(b)
	b0 := make([]float64, n)
	b1 := make([]float64, n)
	for i := 0; i < n; i++ {
		b[0].checkCompatibility(b[i])
		b0[i] = b[i].value
	}

	out := b[0].NewInstance(accurate.LinearCombination(w, b0))
	for k := range out.grad {
		for i := 0; i < n; i++ {
			b1[i] = b[i].grad[k]
		}
		out.grad[k] = accurate.LinearCombination(w, b1)
	}
	return out, nil
}
