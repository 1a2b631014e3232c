package diff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/calcforge/autodiff/internal/accurate"
)

// Factory creates DerivativeStructure values for one shape. All values
// built by the same factory share its compiler, so arithmetic between them
// never has to look the tables up again.
type Factory struct {
	compiler *Compiler
}

// NewFactory returns a factory for the given number of free parameters and
// derivation order, backed by the default compiler registry.
func NewFactory(parameters, order int) (*Factory, error) {
	return defaultRegistry.NewFactory(parameters, order)
}

// NewFactory returns a factory whose compiler is cached in this registry.
func (r *Registry) NewFactory(parameters, order int) (*Factory, error) {
	compiler, err := r.Compiler(parameters, order)
	if err != nil {
		return nil, err
	}
	return &Factory{compiler: compiler}, nil
}

// Compiler returns the compiler shared by all values of this factory.
func (f *Factory) Compiler() *Compiler { return f.compiler }

// Constant returns a value with all derivatives set to zero.
func (f *Factory) Constant(value float64) *DerivativeStructure {
	ds := f.zero()
	ds.data[0] = value
	return ds
}

// Variable returns the free variable of the given index: its value slot is
// set and its own first derivative is one.
func (f *Factory) Variable(index int, value float64) (*DerivativeStructure, error) {
	if index < 0 || index >= f.compiler.FreeParameters() {
		return nil, fmt.Errorf("%w: variable index %d not in [0, %d)",
			ErrOutOfRange, index, f.compiler.FreeParameters())
	}
	ds := f.zero()
	ds.data[0] = value
	if f.compiler.Order() > 0 {
		orders := make([]int, f.compiler.FreeParameters())
		orders[index] = 1
		slot, err := f.compiler.PartialDerivativeIndex(orders...)
		if err != nil {
			return nil, err
		}
		ds.data[slot] = 1.0
	}
	return ds, nil
}

// Build wraps a raw coefficient array, one entry per compiler slot in the
// canonical order.
func (f *Factory) Build(derivatives ...float64) (*DerivativeStructure, error) {
	if len(derivatives) != f.compiler.Size() {
		return nil, fmt.Errorf("%w: %d coefficients for size %d",
			ErrDimensionMismatch, len(derivatives), f.compiler.Size())
	}
	ds := f.zero()
	copy(ds.data, derivatives)
	return ds, nil
}

// Pi returns the constant pi for this shape.
func (f *Factory) Pi() *DerivativeStructure { return f.Constant(math.Pi) }

// zero returns a fresh all-zero structure.
func (f *Factory) zero() *DerivativeStructure {
	return &DerivativeStructure{
		factory: f,
		data:    make([]float64, f.compiler.Size()),
	}
}

// checkCompatibility panics when the two factories have different shapes.
// Mixing shapes inside an arithmetic expression is a programming error the
// caller cannot recover from locally.
func (f *Factory) checkCompatibility(other *Factory) {
	if err := f.compiler.CheckCompatibility(other.compiler); err != nil {
		panic(err)
	}
}

// DerivativeStructure is the general value-with-derivatives representation:
// any derivation order, any number of free parameters. Operations on it are
// driven by the compiler tables of its factory. Instances are immutable.
type DerivativeStructure struct {
	factory *Factory
	data    []float64
}

// Factory returns the factory that built the instance.
func (ds *DerivativeStructure) Factory() *Factory { return ds.factory }

// FreeParameters returns the number of free parameters.
func (ds *DerivativeStructure) FreeParameters() int { return ds.factory.compiler.FreeParameters() }

// Order returns the maximum derivation order.
func (ds *DerivativeStructure) Order() int { return ds.factory.compiler.Order() }

// Value returns the order-0 coefficient, the function value.
func (ds *DerivativeStructure) Value() float64 { return ds.data[0] }

// Real is an alias for Value, matching the contract interface.
func (ds *DerivativeStructure) Real() float64 { return ds.data[0] }

// NewInstance returns a constant of the same shape as the instance.
func (ds *DerivativeStructure) NewInstance(value float64) *DerivativeStructure {
	return ds.factory.Constant(value)
}

// PartialDerivative returns the raw partial derivative for the given
// derivation orders, one per free parameter. All-zero orders return the
// value.
func (ds *DerivativeStructure) PartialDerivative(orders ...int) (float64, error) {
	index, err := ds.factory.compiler.PartialDerivativeIndex(orders...)
	if err != nil {
		return 0, err
	}
	return ds.data[index], nil
}

// AllDerivatives returns a copy of the flat coefficient array, value first.
func (ds *DerivativeStructure) AllDerivatives() []float64 {
	out := make([]float64, len(ds.data))
	copy(out, ds.data)
	return out
}

// HasNullDerivatives reports whether the sum of absolute values of all
// derivative coefficients (every slot of nonzero order) stays below
// tolerance. A non-positive tolerance means the smallest positive normal
// float64.
func (ds *DerivativeStructure) HasNullDerivatives(tolerance float64) bool {
	if tolerance <= 0 {
		tolerance = 0x1p-1022
	}
	derivatives := make([]float64, 0, len(ds.data)-1)
	for i := 1; i < len(ds.data); i++ {
		if ds.factory.compiler.derivativesOrdersSum[i] > 0 {
			derivatives = append(derivatives, ds.data[i])
		}
	}
	return floats.Norm(derivatives, 1) < tolerance
}

// result allocates the output structure for an operation on ds.
func (ds *DerivativeStructure) result() *DerivativeStructure { return ds.factory.zero() }

// AddScalar returns ds + a.
func (ds *DerivativeStructure) AddScalar(a float64) *DerivativeStructure {
	out := ds.result()
	copy(out.data, ds.data)
	out.data[0] += a
	return out
}

// Add returns ds + a. It panics with ErrDimensionMismatch when shapes
// differ.
func (ds *DerivativeStructure) Add(a *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(a.factory)
	out := ds.result()
	ds.factory.compiler.Add(ds.data, a.data, out.data)
	return out
}

// SubtractScalar returns ds - a.
func (ds *DerivativeStructure) SubtractScalar(a float64) *DerivativeStructure {
	return ds.AddScalar(-a)
}

// Subtract returns ds - a. It panics with ErrDimensionMismatch when shapes
// differ.
func (ds *DerivativeStructure) Subtract(a *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(a.factory)
	out := ds.result()
	ds.factory.compiler.Subtract(ds.data, a.data, out.data)
	return out
}

// Negate returns -ds.
func (ds *DerivativeStructure) Negate() *DerivativeStructure {
	out := ds.result()
	for i, d := range ds.data {
		out.data[i] = -d
	}
	return out
}

// MultiplyScalar returns ds * a.
func (ds *DerivativeStructure) MultiplyScalar(a float64) *DerivativeStructure {
	out := ds.result()
	for i, d := range ds.data {
		out.data[i] = d * a
	}
	return out
}

// Multiply returns ds * a. It panics with ErrDimensionMismatch when shapes
// differ.
func (ds *DerivativeStructure) Multiply(a *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(a.factory)
	out := ds.result()
	ds.factory.compiler.Multiply(ds.data, a.data, out.data)
	return out
}

// DivideScalar returns ds / a.
func (ds *DerivativeStructure) DivideScalar(a float64) *DerivativeStructure {
	return ds.MultiplyScalar(1.0 / a)
}

// Divide returns ds / a. It panics with ErrDimensionMismatch when shapes
// differ.
func (ds *DerivativeStructure) Divide(a *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(a.factory)
	out := ds.result()
	ds.factory.compiler.Divide(ds.data, a.data, out.data)
	return out
}

// RemainderScalar returns the IEEE remainder of ds by a; the derivatives
// are those of ds.
func (ds *DerivativeStructure) RemainderScalar(a float64) *DerivativeStructure {
	out := ds.result()
	copy(out.data, ds.data)
	out.data[0] = math.Remainder(out.data[0], a)
	return out
}

// Remainder returns the IEEE remainder of ds by a. It panics with
// ErrDimensionMismatch when shapes differ.
func (ds *DerivativeStructure) Remainder(a *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(a.factory)
	out := ds.result()
	ds.factory.compiler.Remainder(ds.data, a.data, out.data)
	return out
}

// Abs returns the absolute value. The sign is decided on the raw bit
// pattern so that -0.0 counts as negative.
func (ds *DerivativeStructure) Abs() *DerivativeStructure {
	if math.Signbit(ds.data[0]) {
		return ds.Negate()
	}
	return ds
}

// Ceil returns the ceiling of the value as a constant; the function is a
// step function so all derivatives are zero.
func (ds *DerivativeStructure) Ceil() *DerivativeStructure {
	return ds.factory.Constant(math.Ceil(ds.data[0]))
}

// Floor returns the floor of the value as a constant.
func (ds *DerivativeStructure) Floor() *DerivativeStructure {
	return ds.factory.Constant(math.Floor(ds.data[0]))
}

// Rint returns the value rounded to the nearest integer (ties to even) as a
// constant.
func (ds *DerivativeStructure) Rint() *DerivativeStructure {
	return ds.factory.Constant(math.RoundToEven(ds.data[0]))
}

// Sign returns the signum of the value as a constant.
func (ds *DerivativeStructure) Sign() *DerivativeStructure {
	return ds.factory.Constant(signum(ds.data[0]))
}

// CopySign returns ds with the sign of the reference value, comparing raw
// bit patterns so that -0.0 counts as negative.
func (ds *DerivativeStructure) CopySign(sign *DerivativeStructure) *DerivativeStructure {
	return ds.CopySignScalar(sign.data[0])
}

// CopySignScalar returns ds with the sign of the reference value.
func (ds *DerivativeStructure) CopySignScalar(sign float64) *DerivativeStructure {
	if math.Signbit(ds.data[0]) == math.Signbit(sign) {
		return ds
	}
	return ds.Negate()
}

// Exponent returns the unbiased binary exponent of the value.
func (ds *DerivativeStructure) Exponent() int {
	return exponent(ds.data[0])
}

// Scalb multiplies the whole structure by 2**n exactly.
func (ds *DerivativeStructure) Scalb(n int) *DerivativeStructure {
	out := ds.result()
	for i, d := range ds.data {
		out.data[i] = math.Ldexp(d, n)
	}
	return out
}

// Ulp returns the unit in the last place of the value as a constant; ulp is
// a step function, so all derivatives are zero.
func (ds *DerivativeStructure) Ulp() *DerivativeStructure {
	out := ds.result()
	out.data[0] = ulp(ds.data[0])
	return out
}

// Hypot returns sqrt(ds^2+y^2) avoiding intermediate overflow and
// underflow. It panics with ErrDimensionMismatch when shapes differ.
func (ds *DerivativeStructure) Hypot(y *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(y.factory)
	return Hypot(ds, y)
}

// Compose applies a univariate outer function given by its value and
// derivatives at the instance's value: f[0]=g(v), f[1]=g'(v), ... It panics
// with ErrDimensionMismatch unless len(f) == Order()+1.
func (ds *DerivativeStructure) Compose(f ...float64) *DerivativeStructure {
	if len(f) != ds.Order()+1 {
		panic(fmt.Errorf("%w: %d outer coefficients for order %d",
			ErrDimensionMismatch, len(f), ds.Order()))
	}
	out := ds.result()
	ds.factory.compiler.Compose(ds.data, f, out.data)
	return out
}

// Reciprocal returns 1/ds.
func (ds *DerivativeStructure) Reciprocal() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.PowInt(ds.data, -1, out.data)
	return out
}

// Sqrt returns the square root.
func (ds *DerivativeStructure) Sqrt() *DerivativeStructure { return ds.RootN(2) }

// Cbrt returns the cube root.
func (ds *DerivativeStructure) Cbrt() *DerivativeStructure { return ds.RootN(3) }

// RootN returns the n-th root.
func (ds *DerivativeStructure) RootN(n int) *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.RootN(ds.data, n, out.data)
	return out
}

// Pow returns ds**p.
func (ds *DerivativeStructure) Pow(p float64) *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Pow(ds.data, p, out.data)
	return out
}

// PowInt returns ds**n for an integer exponent.
func (ds *DerivativeStructure) PowInt(n int) *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.PowInt(ds.data, n, out.data)
	return out
}

// PowStructure returns ds**e. It panics with ErrDimensionMismatch when
// shapes differ.
func (ds *DerivativeStructure) PowStructure(e *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(e.factory)
	out := ds.result()
	ds.factory.compiler.PowPair(ds.data, e.data, out.data)
	return out
}

// PowBase returns a**x for a plain scalar base.
func PowBase(a float64, x *DerivativeStructure) *DerivativeStructure {
	out := x.result()
	x.factory.compiler.PowBase(a, x.data, out.data)
	return out
}

// Exp returns the exponential.
func (ds *DerivativeStructure) Exp() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Exp(ds.data, out.data)
	return out
}

// Expm1 returns exp(ds)-1.
func (ds *DerivativeStructure) Expm1() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Expm1(ds.data, out.data)
	return out
}

// Log returns the natural logarithm.
func (ds *DerivativeStructure) Log() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Log(ds.data, out.data)
	return out
}

// Log1p returns log(1+ds).
func (ds *DerivativeStructure) Log1p() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Log1p(ds.data, out.data)
	return out
}

// Log10 returns the base-10 logarithm.
func (ds *DerivativeStructure) Log10() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Log10(ds.data, out.data)
	return out
}

// Sin returns the sine.
func (ds *DerivativeStructure) Sin() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Sin(ds.data, out.data)
	return out
}

// Cos returns the cosine.
func (ds *DerivativeStructure) Cos() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Cos(ds.data, out.data)
	return out
}

// SinCos returns the sine and cosine together, sharing the scalar
// evaluation.
func (ds *DerivativeStructure) SinCos() (*DerivativeStructure, *DerivativeStructure) {
	sin := ds.result()
	cos := ds.result()
	ds.factory.compiler.SinCos(ds.data, sin.data, cos.data)
	return sin, cos
}

// Tan returns the tangent.
func (ds *DerivativeStructure) Tan() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Tan(ds.data, out.data)
	return out
}

// Asin returns the arc sine.
func (ds *DerivativeStructure) Asin() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Asin(ds.data, out.data)
	return out
}

// Acos returns the arc cosine.
func (ds *DerivativeStructure) Acos() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Acos(ds.data, out.data)
	return out
}

// Atan returns the arc tangent.
func (ds *DerivativeStructure) Atan() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Atan(ds.data, out.data)
	return out
}

// Atan2 returns the two-argument arc tangent atan2(ds, x), with ds as the
// ordinate. It panics with ErrDimensionMismatch when shapes differ.
func (ds *DerivativeStructure) Atan2(x *DerivativeStructure) *DerivativeStructure {
	ds.factory.checkCompatibility(x.factory)
	out := ds.result()
	ds.factory.compiler.Atan2(ds.data, x.data, out.data)
	return out
}

// Sinh returns the hyperbolic sine.
func (ds *DerivativeStructure) Sinh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Sinh(ds.data, out.data)
	return out
}

// Cosh returns the hyperbolic cosine.
func (ds *DerivativeStructure) Cosh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Cosh(ds.data, out.data)
	return out
}

// SinhCosh returns the hyperbolic sine and cosine together.
func (ds *DerivativeStructure) SinhCosh() (*DerivativeStructure, *DerivativeStructure) {
	sinh := ds.result()
	cosh := ds.result()
	ds.factory.compiler.SinhCosh(ds.data, sinh.data, cosh.data)
	return sinh, cosh
}

// Tanh returns the hyperbolic tangent.
func (ds *DerivativeStructure) Tanh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Tanh(ds.data, out.data)
	return out
}

// Asinh returns the inverse hyperbolic sine.
func (ds *DerivativeStructure) Asinh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Asinh(ds.data, out.data)
	return out
}

// Acosh returns the inverse hyperbolic cosine.
func (ds *DerivativeStructure) Acosh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Acosh(ds.data, out.data)
	return out
}

// Atanh returns the inverse hyperbolic tangent.
func (ds *DerivativeStructure) Atanh() *DerivativeStructure {
	out := ds.result()
	ds.factory.compiler.Atanh(ds.data, out.data)
	return out
}

// ToDegrees converts from radians to degrees.
func (ds *DerivativeStructure) ToDegrees() *DerivativeStructure {
	return ds.MultiplyScalar(180 / math.Pi)
}

// ToRadians converts from degrees to radians.
func (ds *DerivativeStructure) ToRadians() *DerivativeStructure {
	return ds.MultiplyScalar(math.Pi / 180)
}

// Taylor evaluates the Taylor expansion at the given parameter offsets:
// the value of the represented function at x+delta[0], y+delta[1], ...
func (ds *DerivativeStructure) Taylor(delta ...float64) (float64, error) {
	return ds.factory.compiler.Taylor(ds.data, delta...)
}

// Equal reports structural equality: same shape and bit-identical
// coefficients (NaN coefficients compare equal to NaN).
func (ds *DerivativeStructure) Equal(other *DerivativeStructure) bool {
	if ds.FreeParameters() != other.FreeParameters() || ds.Order() != other.Order() {
		return false
	}
	for i := range ds.data {
		a, b := ds.data[i], other.data[i]
		if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
			return false
		}
	}
	return true
}

// String formats the value and its first-order partials.
func (ds *DerivativeStructure) String() string {
	return fmt.Sprintf("DerivativeStructure{p=%d, o=%d, value=%g}",
		ds.FreeParameters(), ds.Order(), ds.data[0])
}

// Dot returns the sum of products a[i]*b[i]. The value slot is evaluated
// with compensated summation; the derivative slots come from the plain
// product-and-add chain. It panics with ErrDimensionMismatch when shapes
// differ, and returns an error for empty or unequal-length inputs.
func Dot(a, b []*DerivativeStructure) (*DerivativeStructure, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d operands", ErrDimensionMismatch, len(a), len(b))
	}

	aValues := make([]float64, len(a))
	bValues := make([]float64, len(b))
	for i := range a {
		aValues[i] = a[i].Value()
		bValues[i] = b[i].Value()
	}
	accurateValue := accurate.LinearCombination(aValues, bValues)

	sum := a[0].factory.Constant(0)
	for i := range a {
		sum = sum.Add(a[i].Multiply(b[i]))
	}

	// keep the accurately summed value, the derivatives from the simple sum
	sum.data[0] = accurateValue
	return sum, nil
}

// ScaledSum returns the sum of w[i]*b[i] for scalar weights, with a
// compensated value slot.
func ScaledSum(w []float64, b []*DerivativeStructure) (*DerivativeStructure, error) {
	if len(w) == 0 || len(w) != len(b) {
		return nil, fmt.Errorf("%w: %d weights and %d operands", ErrDimensionMismatch, len(w), len(b))
	}

	bValues := make([]float64, len(b))
	for i := range b {
		bValues[i] = b[i].Value()
	}
	accurateValue := accurate.LinearCombination(w, bValues)

	sum := b[0].factory.Constant(0)
	for i := range b {
		sum = sum.Add(b[i].MultiplyScalar(w[i]))
	}

	sum.data[0] = accurateValue
	return sum, nil
}
