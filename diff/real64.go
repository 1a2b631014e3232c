package diff

import (
	"fmt"
	"math"
)

// Real64 wraps a plain float64 as a field element, so the field-valued
// representations can be instantiated with ordinary numbers. Arithmetic on
// it is plain IEEE 754 double precision.
type Real64 float64

// Real returns the wrapped value.
func (x Real64) Real() float64 { return float64(x) }

// Value returns the wrapped value.
func (x Real64) Value() float64 { return float64(x) }

// NewInstance wraps a value.
func (x Real64) NewInstance(value float64) Real64 { return Real64(value) }

func (x Real64) Add(a Real64) Real64              { return x + a }
func (x Real64) AddScalar(a float64) Real64       { return x + Real64(a) }
func (x Real64) Subtract(a Real64) Real64         { return x - a }
func (x Real64) SubtractScalar(a float64) Real64  { return x - Real64(a) }
func (x Real64) Negate() Real64                   { return -x }
func (x Real64) Multiply(a Real64) Real64         { return x * a }
func (x Real64) MultiplyScalar(a float64) Real64  { return x * Real64(a) }
func (x Real64) Divide(a Real64) Real64           { return x / a }
func (x Real64) DivideScalar(a float64) Real64    { return x / Real64(a) }
func (x Real64) Remainder(a Real64) Real64        { return Real64(math.Remainder(float64(x), float64(a))) }
func (x Real64) RemainderScalar(a float64) Real64 { return Real64(math.Remainder(float64(x), a)) }

func (x Real64) Abs() Real64   { return Real64(math.Abs(float64(x))) }
func (x Real64) Ceil() Real64  { return Real64(math.Ceil(float64(x))) }
func (x Real64) Floor() Real64 { return Real64(math.Floor(float64(x))) }
func (x Real64) Rint() Real64  { return Real64(math.RoundToEven(float64(x))) }
func (x Real64) Sign() Real64  { return Real64(signum(float64(x))) }
func (x Real64) CopySign(sign Real64) Real64 {
	return Real64(math.Copysign(float64(x), float64(sign)))
}
func (x Real64) CopySignScalar(sign float64) Real64 {
	return Real64(math.Copysign(float64(x), sign))
}
func (x Real64) Exponent() int     { return exponent(float64(x)) }
func (x Real64) Scalb(n int) Real64 { return Real64(math.Ldexp(float64(x), n)) }
func (x Real64) Ulp() Real64        { return Real64(ulp(float64(x))) }
func (x Real64) Hypot(y Real64) Real64 {
	return Real64(math.Hypot(float64(x), float64(y)))
}

func (x Real64) Reciprocal() Real64 { return 1 / x }
func (x Real64) Sqrt() Real64       { return Real64(math.Sqrt(float64(x))) }
func (x Real64) Cbrt() Real64       { return Real64(math.Cbrt(float64(x))) }
func (x Real64) RootN(n int) Real64 {
	if float64(x) < 0 && n%2 == 1 {
		return Real64(-math.Pow(-float64(x), 1.0/float64(n)))
	}
	return Real64(math.Pow(float64(x), 1.0/float64(n)))
}
func (x Real64) Pow(p float64) Real64 { return Real64(math.Pow(float64(x), p)) }
func (x Real64) PowInt(n int) Real64  { return Real64(math.Pow(float64(x), float64(n))) }
func (x Real64) Exp() Real64          { return Real64(math.Exp(float64(x))) }
func (x Real64) Expm1() Real64        { return Real64(math.Expm1(float64(x))) }
func (x Real64) Log() Real64          { return Real64(math.Log(float64(x))) }
func (x Real64) Log1p() Real64        { return Real64(math.Log1p(float64(x))) }
func (x Real64) Log10() Real64        { return Real64(math.Log10(float64(x))) }
func (x Real64) Sin() Real64          { return Real64(math.Sin(float64(x))) }
func (x Real64) Cos() Real64          { return Real64(math.Cos(float64(x))) }
func (x Real64) SinCos() (Real64, Real64) {
	sin, cos := math.Sincos(float64(x))
	return Real64(sin), Real64(cos)
}
func (x Real64) Tan() Real64  { return Real64(math.Tan(float64(x))) }
func (x Real64) Asin() Real64 { return Real64(math.Asin(float64(x))) }
func (x Real64) Acos() Real64 { return Real64(math.Acos(float64(x))) }
func (x Real64) Atan() Real64 { return Real64(math.Atan(float64(x))) }
func (x Real64) Atan2(a Real64) Real64 {
	return Real64(math.Atan2(float64(x), float64(a)))
}
func (x Real64) Sinh() Real64 { return Real64(math.Sinh(float64(x))) }
func (x Real64) Cosh() Real64 { return Real64(math.Cosh(float64(x))) }
func (x Real64) SinhCosh() (Real64, Real64) {
	return Real64(math.Sinh(float64(x))), Real64(math.Cosh(float64(x)))
}
func (x Real64) Tanh() Real64      { return Real64(math.Tanh(float64(x))) }
func (x Real64) Asinh() Real64     { return Real64(math.Asinh(float64(x))) }
func (x Real64) Acosh() Real64     { return Real64(math.Acosh(float64(x))) }
func (x Real64) Atanh() Real64     { return Real64(math.Atanh(float64(x))) }
func (x Real64) ToDegrees() Real64 { return x * Real64(180/math.Pi) }
func (x Real64) ToRadians() Real64 { return x * Real64(math.Pi/180) }

// String formats the wrapped value.
func (x Real64) String() string { return fmt.Sprintf("%g", float64(x)) }
