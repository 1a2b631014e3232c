package diff

import (
	"fmt"
	"math"
)

// FieldUnivariateDerivative1 is the order-1, single-parameter
// representation with field-valued coefficients. Instances are immutable.
type FieldUnivariateDerivative1[T Element[T]] struct {
	f0 T
	f1 T
}

// NewFieldUD1 builds an instance from a value and its first derivative.
func NewFieldUD1[T Element[T]](f0, f1 T) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: f0, f1: f1}
}

// NewFieldUD1Variable returns the free variable at the given value: its
// first derivative is the field one.
func NewFieldUD1Variable[T Element[T]](value T) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: value, f1: value.NewInstance(1)}
}

// Value returns the function value.
func (u FieldUnivariateDerivative1[T]) Value() T { return u.f0 }

// Real returns the function value as a plain float64.
func (u FieldUnivariateDerivative1[T]) Real() float64 { return u.f0.Real() }

// FirstDerivative returns the first derivative.
func (u FieldUnivariateDerivative1[T]) FirstDerivative() T { return u.f1 }

// Order returns 1.
func (u FieldUnivariateDerivative1[T]) Order() int { return 1 }

// FreeParameters returns 1.
func (u FieldUnivariateDerivative1[T]) FreeParameters() int { return 1 }

// Derivative returns the n-th derivative, n in [0, 1].
func (u FieldUnivariateDerivative1[T]) Derivative(n int) (T, error) {
	var zero T
	switch n {
	case 0:
		return u.f0, nil
	case 1:
		return u.f1, nil
	default:
		return zero, fmt.Errorf("%w: derivation order %d", ErrDerivationOrderNotAllowed, n)
	}
}

// NewInstance returns a constant.
func (u FieldUnivariateDerivative1[T]) NewInstance(value float64) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.NewInstance(value), f1: u.f0.NewInstance(0)}
}

// compose applies the chain rule for an outer function with value f0 and
// first derivative f1 at the instance's value.
func (u FieldUnivariateDerivative1[T]) compose(f0, f1 T) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: f0, f1: f1.Multiply(u.f1)}
}

// AddScalar returns u + a.
func (u FieldUnivariateDerivative1[T]) AddScalar(a float64) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.AddScalar(a), f1: u.f1}
}

// Add returns u + a.
func (u FieldUnivariateDerivative1[T]) Add(a FieldUnivariateDerivative1[T]) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.Add(a.f0), f1: u.f1.Add(a.f1)}
}

// SubtractScalar returns u - a.
func (u FieldUnivariateDerivative1[T]) SubtractScalar(a float64) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.SubtractScalar(a), f1: u.f1}
}

// Subtract returns u - a.
func (u FieldUnivariateDerivative1[T]) Subtract(a FieldUnivariateDerivative1[T]) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.Subtract(a.f0), f1: u.f1.Subtract(a.f1)}
}

// Negate returns -u.
func (u FieldUnivariateDerivative1[T]) Negate() FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.Negate(), f1: u.f1.Negate()}
}

// MultiplyScalar returns u * a.
func (u FieldUnivariateDerivative1[T]) MultiplyScalar(a float64) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.MultiplyScalar(a), f1: u.f1.MultiplyScalar(a)}
}

// Multiply returns u * a.
func (u FieldUnivariateDerivative1[T]) Multiply(a FieldUnivariateDerivative1[T]) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{
		f0: u.f0.Multiply(a.f0),
		f1: u.f1.Multiply(a.f0).Add(u.f0.Multiply(a.f1)),
	}
}

// Divide returns u / a.
func (u FieldUnivariateDerivative1[T]) Divide(a FieldUnivariateDerivative1[T]) FieldUnivariateDerivative1[T] {
	inv1 := a.f0.Reciprocal()
	inv2 := inv1.Multiply(inv1)
	return FieldUnivariateDerivative1[T]{
		f0: u.f0.Multiply(inv1),
		f1: u.f1.Multiply(a.f0).Subtract(u.f0.Multiply(a.f1)).Multiply(inv2),
	}
}

// Remainder returns the IEEE remainder of u by a. The derivative follows
// u - k*a for the integer quotient k.
func (u FieldUnivariateDerivative1[T]) Remainder(a FieldUnivariateDerivative1[T]) FieldUnivariateDerivative1[T] {
	rem := u.f0.Remainder(a.f0)
	k := math.Round((u.f0.Real() - rem.Real()) / a.f0.Real())
	return FieldUnivariateDerivative1[T]{f0: rem, f1: u.f1.Subtract(a.f1.MultiplyScalar(k))}
}

// Abs returns the absolute value. -0.0 counts as negative.
func (u FieldUnivariateDerivative1[T]) Abs() FieldUnivariateDerivative1[T] {
	if math.Signbit(u.f0.Real()) {
		return u.Negate()
	}
	return u
}

// Scalb multiplies both components by 2**n exactly.
func (u FieldUnivariateDerivative1[T]) Scalb(n int) FieldUnivariateDerivative1[T] {
	return FieldUnivariateDerivative1[T]{f0: u.f0.Scalb(n), f1: u.f1.Scalb(n)}
}

// Reciprocal returns 1/u.
func (u FieldUnivariateDerivative1[T]) Reciprocal() FieldUnivariateDerivative1[T] {
	inv1 := u.f0.Reciprocal()
	return u.compose(inv1, inv1.Multiply(inv1).Negate())
}

// Sqrt returns the square root.
func (u FieldUnivariateDerivative1[T]) Sqrt() FieldUnivariateDerivative1[T] {
	s := u.f0.Sqrt()
	return u.compose(s, s.MultiplyScalar(2).Reciprocal())
}

// Exp returns the exponential.
func (u FieldUnivariateDerivative1[T]) Exp() FieldUnivariateDerivative1[T] {
	e := u.f0.Exp()
	return u.compose(e, e)
}

// Log returns the natural logarithm.
func (u FieldUnivariateDerivative1[T]) Log() FieldUnivariateDerivative1[T] {
	return u.compose(u.f0.Log(), u.f0.Reciprocal())
}

// Sin returns the sine.
func (u FieldUnivariateDerivative1[T]) Sin() FieldUnivariateDerivative1[T] {
	sin, cos := u.f0.SinCos()
	return u.compose(sin, cos)
}

// Cos returns the cosine.
func (u FieldUnivariateDerivative1[T]) Cos() FieldUnivariateDerivative1[T] {
	sin, cos := u.f0.SinCos()
	return u.compose(cos, sin.Negate())
}

// Tan returns the tangent.
func (u FieldUnivariateDerivative1[T]) Tan() FieldUnivariateDerivative1[T] {
	t := u.f0.Tan()
	return u.compose(t, t.Multiply(t).AddScalar(1))
}

// Atan returns the arc tangent.
func (u FieldUnivariateDerivative1[T]) Atan() FieldUnivariateDerivative1[T] {
	return u.compose(u.f0.Atan(), u.f0.Multiply(u.f0).AddScalar(1).Reciprocal())
}

// Sinh returns the hyperbolic sine.
func (u FieldUnivariateDerivative1[T]) Sinh() FieldUnivariateDerivative1[T] {
	return u.compose(u.f0.Sinh(), u.f0.Cosh())
}

// Cosh returns the hyperbolic cosine.
func (u FieldUnivariateDerivative1[T]) Cosh() FieldUnivariateDerivative1[T] {
	return u.compose(u.f0.Cosh(), u.f0.Sinh())
}

// Tanh returns the hyperbolic tangent.
func (u FieldUnivariateDerivative1[T]) Tanh() FieldUnivariateDerivative1[T] {
	t := u.f0.Tanh()
	return u.compose(t, t.Multiply(t).Negate().AddScalar(1))
}

// Taylor evaluates the first-order Taylor expansion at the given offset.
func (u FieldUnivariateDerivative1[T]) Taylor(delta float64) T {
	return u.f0.Add(u.f1.MultiplyScalar(delta))
}

// Equal reports componentwise equality of the underlying real
// coefficients, NaN comparing equal to NaN.
func (u FieldUnivariateDerivative1[T]) Equal(other FieldUnivariateDerivative1[T]) bool {
	return floatEqual(u.f0.Real(), other.f0.Real()) && floatEqual(u.f1.Real(), other.f1.Real())
}

// FieldUnivariateDerivative2 is the order-2, single-parameter
// representation with field-valued coefficients. Instances are immutable.
type FieldUnivariateDerivative2[T Element[T]] struct {
	f0 T
	f1 T
	f2 T
}

// NewFieldUD2 builds an instance from a value and its first two
// derivatives.
func NewFieldUD2[T Element[T]](f0, f1, f2 T) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{f0: f0, f1: f1, f2: f2}
}

// NewFieldUD2Variable returns the free variable at the given value: its
// first derivative is the field one, its second the field zero.
func NewFieldUD2Variable[T Element[T]](value T) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: value,
		f1: value.NewInstance(1),
		f2: value.NewInstance(0),
	}
}

// Value returns the function value.
func (u FieldUnivariateDerivative2[T]) Value() T { return u.f0 }

// Real returns the function value as a plain float64.
func (u FieldUnivariateDerivative2[T]) Real() float64 { return u.f0.Real() }

// FirstDerivative returns the first derivative.
func (u FieldUnivariateDerivative2[T]) FirstDerivative() T { return u.f1 }

// SecondDerivative returns the second derivative.
func (u FieldUnivariateDerivative2[T]) SecondDerivative() T { return u.f2 }

// Order returns 2.
func (u FieldUnivariateDerivative2[T]) Order() int { return 2 }

// FreeParameters returns 1.
func (u FieldUnivariateDerivative2[T]) FreeParameters() int { return 1 }

// Derivative returns the n-th derivative, n in [0, 2].
func (u FieldUnivariateDerivative2[T]) Derivative(n int) (T, error) {
	var zero T
	switch n {
	case 0:
		return u.f0, nil
	case 1:
		return u.f1, nil
	case 2:
		return u.f2, nil
	default:
		return zero, fmt.Errorf("%w: derivation order %d", ErrDerivationOrderNotAllowed, n)
	}
}

// NewInstance returns a constant.
func (u FieldUnivariateDerivative2[T]) NewInstance(value float64) FieldUnivariateDerivative2[T] {
	zero := u.f0.NewInstance(0)
	return FieldUnivariateDerivative2[T]{f0: u.f0.NewInstance(value), f1: zero, f2: zero}
}

// compose applies the chain rule for an outer function with value f0 and
// first two derivatives f1, f2 at the instance's value.
func (u FieldUnivariateDerivative2[T]) compose(f0, f1, f2 T) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: f0,
		f1: f1.Multiply(u.f1),
		f2: f1.Multiply(u.f2).Add(f2.Multiply(u.f1.Multiply(u.f1))),
	}
}

// AddScalar returns u + a.
func (u FieldUnivariateDerivative2[T]) AddScalar(a float64) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{f0: u.f0.AddScalar(a), f1: u.f1, f2: u.f2}
}

// Add returns u + a.
func (u FieldUnivariateDerivative2[T]) Add(a FieldUnivariateDerivative2[T]) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: u.f0.Add(a.f0),
		f1: u.f1.Add(a.f1),
		f2: u.f2.Add(a.f2),
	}
}

// SubtractScalar returns u - a.
func (u FieldUnivariateDerivative2[T]) SubtractScalar(a float64) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{f0: u.f0.SubtractScalar(a), f1: u.f1, f2: u.f2}
}

// Subtract returns u - a.
func (u FieldUnivariateDerivative2[T]) Subtract(a FieldUnivariateDerivative2[T]) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: u.f0.Subtract(a.f0),
		f1: u.f1.Subtract(a.f1),
		f2: u.f2.Subtract(a.f2),
	}
}

// Negate returns -u.
func (u FieldUnivariateDerivative2[T]) Negate() FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{f0: u.f0.Negate(), f1: u.f1.Negate(), f2: u.f2.Negate()}
}

// MultiplyScalar returns u * a.
func (u FieldUnivariateDerivative2[T]) MultiplyScalar(a float64) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: u.f0.MultiplyScalar(a),
		f1: u.f1.MultiplyScalar(a),
		f2: u.f2.MultiplyScalar(a),
	}
}

// Multiply returns u * a, the second derivative through the Leibniz rule.
func (u FieldUnivariateDerivative2[T]) Multiply(a FieldUnivariateDerivative2[T]) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{
		f0: u.f0.Multiply(a.f0),
		f1: u.f1.Multiply(a.f0).Add(u.f0.Multiply(a.f1)),
		f2: u.f2.Multiply(a.f0).
			Add(u.f1.Multiply(a.f1).MultiplyScalar(2)).
			Add(u.f0.Multiply(a.f2)),
	}
}

// Divide returns u / a.
func (u FieldUnivariateDerivative2[T]) Divide(a FieldUnivariateDerivative2[T]) FieldUnivariateDerivative2[T] {
	inv1 := a.f0.Reciprocal()
	inv2 := inv1.Multiply(inv1)
	inv3 := inv1.Multiply(inv2)
	return FieldUnivariateDerivative2[T]{
		f0: u.f0.Multiply(inv1),
		f1: u.f1.Multiply(a.f0).Subtract(u.f0.Multiply(a.f1)).Multiply(inv2),
		f2: u.f2.Multiply(a.f0.Multiply(a.f0)).
			Subtract(u.f1.Multiply(a.f0.Multiply(a.f1)).MultiplyScalar(2)).
			Add(u.f0.Multiply(a.f1.Multiply(a.f1)).MultiplyScalar(2)).
			Subtract(u.f0.Multiply(a.f0.Multiply(a.f2))).
			Multiply(inv3),
	}
}

// Abs returns the absolute value. -0.0 counts as negative.
func (u FieldUnivariateDerivative2[T]) Abs() FieldUnivariateDerivative2[T] {
	if math.Signbit(u.f0.Real()) {
		return u.Negate()
	}
	return u
}

// Scalb multiplies all components by 2**n exactly.
func (u FieldUnivariateDerivative2[T]) Scalb(n int) FieldUnivariateDerivative2[T] {
	return FieldUnivariateDerivative2[T]{f0: u.f0.Scalb(n), f1: u.f1.Scalb(n), f2: u.f2.Scalb(n)}
}

// Reciprocal returns 1/u.
func (u FieldUnivariateDerivative2[T]) Reciprocal() FieldUnivariateDerivative2[T] {
	inv1 := u.f0.Reciprocal()
	inv2 := inv1.Multiply(inv1)
	inv3 := inv1.Multiply(inv2)
	return FieldUnivariateDerivative2[T]{
		f0: inv1,
		f1: u.f1.Negate().Multiply(inv2),
		f2: u.f1.Multiply(u.f1).MultiplyScalar(2).
			Subtract(u.f0.Multiply(u.f2)).
			Multiply(inv3),
	}
}

// Sqrt returns the square root.
func (u FieldUnivariateDerivative2[T]) Sqrt() FieldUnivariateDerivative2[T] {
	s0 := u.f0.Sqrt()
	s0twice := s0.MultiplyScalar(2)
	s1 := u.f1.Divide(s0twice)
	s2 := u.f2.Subtract(s1.Multiply(s1).MultiplyScalar(2)).Divide(s0twice)
	return FieldUnivariateDerivative2[T]{f0: s0, f1: s1, f2: s2}
}

// Exp returns the exponential.
func (u FieldUnivariateDerivative2[T]) Exp() FieldUnivariateDerivative2[T] {
	e := u.f0.Exp()
	return u.compose(e, e, e)
}

// Log returns the natural logarithm.
func (u FieldUnivariateDerivative2[T]) Log() FieldUnivariateDerivative2[T] {
	inv := u.f0.Reciprocal()
	return u.compose(u.f0.Log(), inv, inv.Multiply(inv).Negate())
}

// Sin returns the sine.
func (u FieldUnivariateDerivative2[T]) Sin() FieldUnivariateDerivative2[T] {
	sin, cos := u.f0.SinCos()
	return u.compose(sin, cos, sin.Negate())
}

// Cos returns the cosine.
func (u FieldUnivariateDerivative2[T]) Cos() FieldUnivariateDerivative2[T] {
	sin, cos := u.f0.SinCos()
	return u.compose(cos, sin.Negate(), cos.Negate())
}

// Tan returns the tangent.
func (u FieldUnivariateDerivative2[T]) Tan() FieldUnivariateDerivative2[T] {
	tan := u.f0.Tan()
	sec2 := tan.Multiply(tan).AddScalar(1)
	return u.compose(tan, sec2, sec2.Multiply(tan).MultiplyScalar(2))
}

// Atan returns the arc tangent.
func (u FieldUnivariateDerivative2[T]) Atan() FieldUnivariateDerivative2[T] {
	inv := u.f0.Multiply(u.f0).AddScalar(1).Reciprocal()
	return u.compose(u.f0.Atan(), inv,
		u.f0.Multiply(inv).Multiply(inv).MultiplyScalar(-2))
}

// Sinh returns the hyperbolic sine.
func (u FieldUnivariateDerivative2[T]) Sinh() FieldUnivariateDerivative2[T] {
	s := u.f0.Sinh()
	c := u.f0.Cosh()
	return u.compose(s, c, s)
}

// Cosh returns the hyperbolic cosine.
func (u FieldUnivariateDerivative2[T]) Cosh() FieldUnivariateDerivative2[T] {
	s := u.f0.Sinh()
	c := u.f0.Cosh()
	return u.compose(c, s, c)
}

// Tanh returns the hyperbolic tangent.
func (u FieldUnivariateDerivative2[T]) Tanh() FieldUnivariateDerivative2[T] {
	tanh := u.f0.Tanh()
	sech2 := tanh.Multiply(tanh).Negate().AddScalar(1)
	return u.compose(tanh, sech2, sech2.Multiply(tanh).MultiplyScalar(-2))
}

// Taylor evaluates the second-order Taylor expansion at the given offset.
func (u FieldUnivariateDerivative2[T]) Taylor(delta float64) T {
	return u.f0.Add(u.f1.Add(u.f2.MultiplyScalar(0.5 * delta)).MultiplyScalar(delta))
}

// Equal reports componentwise equality of the underlying real
// coefficients, NaN comparing equal to NaN.
func (u FieldUnivariateDerivative2[T]) Equal(other FieldUnivariateDerivative2[T]) bool {
	return floatEqual(u.f0.Real(), other.f0.Real()) &&
		floatEqual(u.f1.Real(), other.f1.Real()) &&
		floatEqual(u.f2.Real(), other.f2.Real())
}
