package diff

import (
	"fmt"
	"math"
)

// FieldGradient is the order-1 representation with field-valued
// coefficients: the value and each first partial derivative are elements of
// an arbitrary field T instead of plain float64. Nesting a derivative type
// as T yields derivatives of derivatives. Instances are immutable.
type FieldGradient[T Element[T]] struct {
	value T
	grad  []T
}

// NewFieldGradient builds a field gradient from a value and its first
// partial derivatives, one per free parameter.
func NewFieldGradient[T Element[T]](value T, gradient ...T) *FieldGradient[T] {
	g := &FieldGradient[T]{value: value, grad: make([]T, len(gradient))}
	copy(g.grad, gradient)
	return g
}

// NewFieldGradientConstant returns a constant: all partial derivatives are
// the field zero.
func NewFieldGradientConstant[T Element[T]](freeParameters int, value T) *FieldGradient[T] {
	g := &FieldGradient[T]{value: value, grad: make([]T, freeParameters)}
	for i := range g.grad {
		g.grad[i] = value.NewInstance(0)
	}
	return g
}

// NewFieldGradientVariable returns the free variable of the given index:
// its own partial derivative is the field one.
func NewFieldGradientVariable[T Element[T]](freeParameters, index int, value T) (*FieldGradient[T], error) {
	if index < 0 || index >= freeParameters {
		return nil, fmt.Errorf("%w: variable index %d not in [0, %d)",
			ErrOutOfRange, index, freeParameters)
	}
	g := NewFieldGradientConstant(freeParameters, value)
	g.grad[index] = value.NewInstance(1)
	return g, nil
}

// Value returns the function value.
func (g *FieldGradient[T]) Value() T { return g.value }

// Real returns the function value as a plain float64.
func (g *FieldGradient[T]) Real() float64 { return g.value.Real() }

// Order returns 1.
func (g *FieldGradient[T]) Order() int { return 1 }

// FreeParameters returns the number of free parameters.
func (g *FieldGradient[T]) FreeParameters() int { return len(g.grad) }

// Gradient returns a copy of the first partial derivatives.
func (g *FieldGradient[T]) Gradient() []T {
	out := make([]T, len(g.grad))
	copy(out, g.grad)
	return out
}

// Partial returns the first partial derivative with respect to parameter n.
func (g *FieldGradient[T]) Partial(n int) (T, error) {
	var zero T
	if n < 0 || n >= len(g.grad) {
		return zero, fmt.Errorf("%w: parameter %d not in [0, %d)", ErrOutOfRange, n, len(g.grad))
	}
	return g.grad[n], nil
}

// NewInstance returns a constant of the same shape.
func (g *FieldGradient[T]) NewInstance(value float64) *FieldGradient[T] {
	return NewFieldGradientConstant(len(g.grad), g.value.NewInstance(value))
}

// newLike returns a fresh gradient of the same shape with the given value
// and unset derivatives.
func (g *FieldGradient[T]) newLike(value T) *FieldGradient[T] {
	return &FieldGradient[T]{value: value, grad: make([]T, len(g.grad))}
}

func (g *FieldGradient[T]) checkCompatibility(a *FieldGradient[T]) {
	if len(g.grad) != len(a.grad) {
		panic(fmt.Errorf("%w: %d and %d free parameters",
			ErrDimensionMismatch, len(g.grad), len(a.grad)))
	}
}

// compose applies the chain rule for an outer function with value f0 and
// first derivative f1 at the instance's value.
func (g *FieldGradient[T]) compose(f0, f1 T) *FieldGradient[T] {
	out := g.newLike(f0)
	for i := range out.grad {
		out.grad[i] = f1.Multiply(g.grad[i])
	}
	return out
}

// AddScalar returns g + a.
func (g *FieldGradient[T]) AddScalar(a float64) *FieldGradient[T] {
	out := g.newLike(g.value.AddScalar(a))
	copy(out.grad, g.grad)
	return out
}

// Add returns g + a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *FieldGradient[T]) Add(a *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(a)
	out := g.newLike(g.value.Add(a.value))
	for i := range out.grad {
		out.grad[i] = g.grad[i].Add(a.grad[i])
	}
	return out
}

// SubtractScalar returns g - a.
func (g *FieldGradient[T]) SubtractScalar(a float64) *FieldGradient[T] {
	return g.AddScalar(-a)
}

// Subtract returns g - a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *FieldGradient[T]) Subtract(a *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(a)
	out := g.newLike(g.value.Subtract(a.value))
	for i := range out.grad {
		out.grad[i] = g.grad[i].Subtract(a.grad[i])
	}
	return out
}

// Negate returns -g.
func (g *FieldGradient[T]) Negate() *FieldGradient[T] {
	out := g.newLike(g.value.Negate())
	for i := range out.grad {
		out.grad[i] = g.grad[i].Negate()
	}
	return out
}

// MultiplyScalar returns g * a.
func (g *FieldGradient[T]) MultiplyScalar(a float64) *FieldGradient[T] {
	out := g.newLike(g.value.MultiplyScalar(a))
	for i := range out.grad {
		out.grad[i] = g.grad[i].MultiplyScalar(a)
	}
	return out
}

// Multiply returns g * a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *FieldGradient[T]) Multiply(a *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(a)
	out := g.newLike(g.value.Multiply(a.value))
	for i := range out.grad {
		out.grad[i] = g.grad[i].Multiply(a.value).Add(g.value.Multiply(a.grad[i]))
	}
	return out
}

// DivideScalar returns g / a.
func (g *FieldGradient[T]) DivideScalar(a float64) *FieldGradient[T] {
	return g.MultiplyScalar(1.0 / a)
}

// Divide returns g / a. It panics with ErrDimensionMismatch when shapes
// differ.
func (g *FieldGradient[T]) Divide(a *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(a)
	inv1 := a.value.Reciprocal()
	inv2 := inv1.Multiply(inv1)
	out := g.newLike(g.value.Multiply(inv1))
	for i := range out.grad {
		out.grad[i] = g.grad[i].Multiply(a.value).
			Subtract(g.value.Multiply(a.grad[i])).
			Multiply(inv2)
	}
	return out
}

// RemainderScalar returns the IEEE remainder of g by a; the derivatives are
// those of g.
func (g *FieldGradient[T]) RemainderScalar(a float64) *FieldGradient[T] {
	out := g.newLike(g.value.RemainderScalar(a))
	copy(out.grad, g.grad)
	return out
}

// Remainder returns the IEEE remainder of g by a. The derivatives follow
// g - k*a for the integer quotient k. It panics with ErrDimensionMismatch
// when shapes differ.
func (g *FieldGradient[T]) Remainder(a *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(a)
	rem := g.value.Remainder(a.value)
	k := math.Round((g.value.Real() - rem.Real()) / a.value.Real())
	out := g.newLike(rem)
	for i := range out.grad {
		out.grad[i] = g.grad[i].Subtract(a.grad[i].MultiplyScalar(k))
	}
	return out
}

// Abs returns the absolute value. The sign is decided on the value's raw
// bit pattern so that -0.0 counts as negative.
func (g *FieldGradient[T]) Abs() *FieldGradient[T] {
	if math.Signbit(g.value.Real()) {
		return g.Negate()
	}
	return g
}

// Ceil returns the ceiling of the value as a constant.
func (g *FieldGradient[T]) Ceil() *FieldGradient[T] {
	return NewFieldGradientConstant(len(g.grad), g.value.Ceil())
}

// Floor returns the floor of the value as a constant.
func (g *FieldGradient[T]) Floor() *FieldGradient[T] {
	return NewFieldGradientConstant(len(g.grad), g.value.Floor())
}

// Rint returns the value rounded to the nearest integer (ties to even) as a
// constant.
func (g *FieldGradient[T]) Rint() *FieldGradient[T] {
	return NewFieldGradientConstant(len(g.grad), g.value.Rint())
}

// Sign returns the signum of the value as a constant.
func (g *FieldGradient[T]) Sign() *FieldGradient[T] {
	return NewFieldGradientConstant(len(g.grad), g.value.Sign())
}

// CopySign returns g with the sign of the reference value, comparing raw
// bit patterns so that -0.0 counts as negative.
func (g *FieldGradient[T]) CopySign(sign *FieldGradient[T]) *FieldGradient[T] {
	return g.CopySignScalar(sign.value.Real())
}

// CopySignScalar returns g with the sign of the reference value.
func (g *FieldGradient[T]) CopySignScalar(sign float64) *FieldGradient[T] {
	if math.Signbit(g.value.Real()) == math.Signbit(sign) {
		return g
	}
	return g.Negate()
}

// Exponent returns the unbiased binary exponent of the value.
func (g *FieldGradient[T]) Exponent() int { return exponent(g.value.Real()) }

// Scalb multiplies the whole gradient by 2**n exactly.
func (g *FieldGradient[T]) Scalb(n int) *FieldGradient[T] {
	out := g.newLike(g.value.Scalb(n))
	for i := range out.grad {
		out.grad[i] = g.grad[i].Scalb(n)
	}
	return out
}

// Hypot returns sqrt(g^2+y^2) avoiding intermediate overflow and underflow,
// using the same scaled evaluation as the real representations. It panics
// with ErrDimensionMismatch when shapes differ.
func (g *FieldGradient[T]) Hypot(y *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(y)
	switch {
	case math.IsInf(g.value.Real(), 0) || math.IsInf(y.value.Real(), 0):
		return g.NewInstance(math.Inf(1))
	case math.IsNaN(g.value.Real()) || math.IsNaN(y.value.Real()):
		return g.NewInstance(math.NaN())
	}

	expX := g.Exponent()
	expY := y.Exponent()
	if expX > expY+27 {
		return g.Abs()
	}
	if expY > expX+27 {
		return y.Abs()
	}

	middleExp := (expX + expY) / 2
	scaledX := g.Scalb(-middleExp)
	scaledY := y.Scalb(-middleExp)
	scaledH := scaledX.Multiply(scaledX).Add(scaledY.Multiply(scaledY)).Sqrt()
	return scaledH.Scalb(middleExp)
}

// Reciprocal returns 1/g.
func (g *FieldGradient[T]) Reciprocal() *FieldGradient[T] {
	inv1 := g.value.Reciprocal()
	mInv2 := inv1.Multiply(inv1).Negate()
	return g.compose(inv1, mInv2)
}

// Sqrt returns the square root.
func (g *FieldGradient[T]) Sqrt() *FieldGradient[T] {
	s := g.value.Sqrt()
	return g.compose(s, s.MultiplyScalar(2).Reciprocal())
}

// Cbrt returns the cube root.
func (g *FieldGradient[T]) Cbrt() *FieldGradient[T] {
	c := g.value.Cbrt()
	return g.compose(c, c.Multiply(c).MultiplyScalar(3).Reciprocal())
}

// RootN returns the n-th root.
func (g *FieldGradient[T]) RootN(n int) *FieldGradient[T] {
	switch n {
	case 2:
		return g.Sqrt()
	case 3:
		return g.Cbrt()
	default:
		r := g.value.RootN(n)
		return g.compose(r, r.PowInt(n-1).MultiplyScalar(float64(n)).Reciprocal())
	}
}

// Pow returns g**p.
func (g *FieldGradient[T]) Pow(p float64) *FieldGradient[T] {
	if p == 0 {
		return g.NewInstance(1)
	}
	valuePm1 := g.value.Pow(p - 1)
	return g.compose(valuePm1.Multiply(g.value), valuePm1.MultiplyScalar(p))
}

// PowInt returns g**n for an integer exponent.
func (g *FieldGradient[T]) PowInt(n int) *FieldGradient[T] {
	if n == 0 {
		return g.NewInstance(1)
	}
	valueNm1 := g.value.PowInt(n - 1)
	return g.compose(valueNm1.Multiply(g.value), valueNm1.MultiplyScalar(float64(n)))
}

// Exp returns the exponential.
func (g *FieldGradient[T]) Exp() *FieldGradient[T] {
	e := g.value.Exp()
	return g.compose(e, e)
}

// Expm1 returns exp(g)-1.
func (g *FieldGradient[T]) Expm1() *FieldGradient[T] {
	return g.compose(g.value.Expm1(), g.value.Exp())
}

// Log returns the natural logarithm.
func (g *FieldGradient[T]) Log() *FieldGradient[T] {
	return g.compose(g.value.Log(), g.value.Reciprocal())
}

// Log1p returns log(1+g).
func (g *FieldGradient[T]) Log1p() *FieldGradient[T] {
	return g.compose(g.value.Log1p(), g.value.AddScalar(1).Reciprocal())
}

// Log10 returns the base-10 logarithm.
func (g *FieldGradient[T]) Log10() *FieldGradient[T] {
	return g.compose(g.value.Log10(), g.value.MultiplyScalar(math.Ln10).Reciprocal())
}

// Sin returns the sine.
func (g *FieldGradient[T]) Sin() *FieldGradient[T] {
	sin, cos := g.value.SinCos()
	return g.compose(sin, cos)
}

// Cos returns the cosine.
func (g *FieldGradient[T]) Cos() *FieldGradient[T] {
	sin, cos := g.value.SinCos()
	return g.compose(cos, sin.Negate())
}

// SinCos returns the sine and cosine together.
func (g *FieldGradient[T]) SinCos() (*FieldGradient[T], *FieldGradient[T]) {
	sin, cos := g.value.SinCos()
	return g.compose(sin, cos), g.compose(cos, sin.Negate())
}

// Tan returns the tangent.
func (g *FieldGradient[T]) Tan() *FieldGradient[T] {
	t := g.value.Tan()
	return g.compose(t, t.Multiply(t).AddScalar(1))
}

// Asin returns the arc sine.
func (g *FieldGradient[T]) Asin() *FieldGradient[T] {
	one := g.value.NewInstance(1)
	return g.compose(g.value.Asin(),
		one.Subtract(g.value.Multiply(g.value)).Sqrt().Reciprocal())
}

// Acos returns the arc cosine.
func (g *FieldGradient[T]) Acos() *FieldGradient[T] {
	one := g.value.NewInstance(1)
	return g.compose(g.value.Acos(),
		one.Subtract(g.value.Multiply(g.value)).Sqrt().Reciprocal().Negate())
}

// Atan returns the arc tangent.
func (g *FieldGradient[T]) Atan() *FieldGradient[T] {
	return g.compose(g.value.Atan(),
		g.value.Multiply(g.value).AddScalar(1).Reciprocal())
}

// Atan2 returns the two-argument arc tangent atan2(g, x), with g as the
// ordinate. It panics with ErrDimensionMismatch when shapes differ.
func (g *FieldGradient[T]) Atan2(x *FieldGradient[T]) *FieldGradient[T] {
	g.checkCompatibility(x)
	inv := g.value.Multiply(g.value).Add(x.value.Multiply(x.value)).Reciprocal()
	out := g.newLike(g.value.Atan2(x.value))
	for i := range out.grad {
		out.grad[i] = x.value.Multiply(g.grad[i]).
			Subtract(x.grad[i].Multiply(g.value)).
			Multiply(inv)
	}
	return out
}

// Sinh returns the hyperbolic sine.
func (g *FieldGradient[T]) Sinh() *FieldGradient[T] {
	return g.compose(g.value.Sinh(), g.value.Cosh())
}

// Cosh returns the hyperbolic cosine.
func (g *FieldGradient[T]) Cosh() *FieldGradient[T] {
	return g.compose(g.value.Cosh(), g.value.Sinh())
}

// SinhCosh returns the hyperbolic sine and cosine together.
func (g *FieldGradient[T]) SinhCosh() (*FieldGradient[T], *FieldGradient[T]) {
	sinh, cosh := g.value.SinhCosh()
	return g.compose(sinh, cosh), g.compose(cosh, sinh)
}

// Tanh returns the hyperbolic tangent.
func (g *FieldGradient[T]) Tanh() *FieldGradient[T] {
	t := g.value.Tanh()
	return g.compose(t, t.Multiply(t).Negate().AddScalar(1))
}

// Asinh returns the inverse hyperbolic sine.
func (g *FieldGradient[T]) Asinh() *FieldGradient[T] {
	return g.compose(g.value.Asinh(),
		g.value.Multiply(g.value).AddScalar(1).Sqrt().Reciprocal())
}

// Acosh returns the inverse hyperbolic cosine.
func (g *FieldGradient[T]) Acosh() *FieldGradient[T] {
	return g.compose(g.value.Acosh(),
		g.value.Multiply(g.value).SubtractScalar(1).Sqrt().Reciprocal())
}

// Atanh returns the inverse hyperbolic tangent.
func (g *FieldGradient[T]) Atanh() *FieldGradient[T] {
	one := g.value.NewInstance(1)
	return g.compose(g.value.Atanh(),
		one.Subtract(g.value.Multiply(g.value)).Reciprocal())
}

// ToDegrees converts from radians to degrees.
func (g *FieldGradient[T]) ToDegrees() *FieldGradient[T] {
	return g.MultiplyScalar(180 / math.Pi)
}

// ToRadians converts from degrees to radians.
func (g *FieldGradient[T]) ToRadians() *FieldGradient[T] {
	return g.MultiplyScalar(math.Pi / 180)
}

// Taylor evaluates the first-order Taylor expansion at the given parameter
// offsets.
func (g *FieldGradient[T]) Taylor(delta ...float64) (T, error) {
	var zero T
	if len(delta) != len(g.grad) {
		return zero, fmt.Errorf("%w: %d offsets for %d parameters",
			ErrDimensionMismatch, len(delta), len(g.grad))
	}
	value := g.value
	for i, d := range delta {
		value = value.Add(g.grad[i].MultiplyScalar(d))
	}
	return value, nil
}

// Equal reports structural equality of the underlying real coefficients,
// NaN comparing equal to NaN.
func (g *FieldGradient[T]) Equal(other *FieldGradient[T]) bool {
	if len(g.grad) != len(other.grad) {
		return false
	}
	if !floatEqual(g.value.Real(), other.value.Real()) {
		return false
	}
	for i := range g.grad {
		if !floatEqual(g.grad[i].Real(), other.grad[i].Real()) {
			return false
		}
	}
	return true
}
