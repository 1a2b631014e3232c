package diff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientVariable(t *testing.T, parameters, index int, value float64) *Gradient {
	t.Helper()
	g, err := NewGradientVariable(parameters, index, value)
	require.NoError(t, err)
	return g
}

func TestGradientConstructors(t *testing.T) {
	t.Run("constant", func(t *testing.T) {
		g := NewGradientConstant(3, 2.5)
		assert.Equal(t, 2.5, g.Value())
		assert.Equal(t, []float64{0, 0, 0}, g.Gradient())
	})

	t.Run("variable", func(t *testing.T) {
		g := gradientVariable(t, 3, 1, 2.5)
		assert.Equal(t, []float64{0, 1, 0}, g.Gradient())
	})

	t.Run("variable out of range", func(t *testing.T) {
		_, err := NewGradientVariable(3, 3, 1.0)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("explicit coefficients", func(t *testing.T) {
		g := NewGradient(1.0, 2.0, 3.0)
		assert.Equal(t, 1.0, g.Value())
		d, err := g.Partial(1)
		require.NoError(t, err)
		assert.Equal(t, 3.0, d)
		_, err = g.Partial(2)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestGradientSumOfSquares(t *testing.T) {
	x := gradientVariable(t, 2, 0, 3.0)
	y := gradientVariable(t, 2, 1, 4.0)
	z := x.Multiply(x).Add(y.Multiply(y))

	assert.Equal(t, 25.0, z.Value())
	assert.Equal(t, []float64{6, 8}, z.Gradient())
}

func TestGradientPartialDerivative(t *testing.T) {
	z := NewGradient(1.0, 2.0, 3.0)

	v, err := z.PartialDerivative(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = z.PartialDerivative(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = z.PartialDerivative(0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = z.PartialDerivative(2, 0)
	assert.ErrorIs(t, err, ErrDerivationOrderNotAllowed)
	_, err = z.PartialDerivative(1, 1)
	assert.ErrorIs(t, err, ErrDerivationOrderNotAllowed)
}

func TestGradientMatchesStructure(t *testing.T) {
	factory, err := NewFactory(2, 1)
	require.NoError(t, err)

	type binary struct {
		name string
		g    func(x, y *Gradient) *Gradient
		ds   func(x, y *DerivativeStructure) *DerivativeStructure
	}
	cases := []binary{
		{"add", (*Gradient).Add, (*DerivativeStructure).Add},
		{"subtract", (*Gradient).Subtract, (*DerivativeStructure).Subtract},
		{"multiply", (*Gradient).Multiply, (*DerivativeStructure).Multiply},
		{"divide", (*Gradient).Divide, (*DerivativeStructure).Divide},
		{"remainder", (*Gradient).Remainder, (*DerivativeStructure).Remainder},
		{"atan2", (*Gradient).Atan2, (*DerivativeStructure).Atan2},
		{"hypot", (*Gradient).Hypot, (*DerivativeStructure).Hypot},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gx := gradientVariable(t, 2, 0, 1.7)
			gy := gradientVariable(t, 2, 1, 0.9)
			gz := tc.g(gx, gy)

			sx := variable2(t, factory, 0, 1.7)
			sy := variable2(t, factory, 1, 0.9)
			sz := tc.ds(sx, sy)

			assert.InDelta(t, sz.Value(), gz.Value(), 1e-14)
			d0, err := sz.PartialDerivative(1, 0)
			require.NoError(t, err)
			d1, err := sz.PartialDerivative(0, 1)
			require.NoError(t, err)
			assert.InDelta(t, d0, gz.Gradient()[0], 1e-13)
			assert.InDelta(t, d1, gz.Gradient()[1], 1e-13)
		})
	}

	type unary struct {
		name string
		g    func(x *Gradient) *Gradient
		ds   func(x *DerivativeStructure) *DerivativeStructure
	}
	unaries := []unary{
		{"negate", (*Gradient).Negate, (*DerivativeStructure).Negate},
		{"reciprocal", (*Gradient).Reciprocal, (*DerivativeStructure).Reciprocal},
		{"sqrt", (*Gradient).Sqrt, (*DerivativeStructure).Sqrt},
		{"cbrt", (*Gradient).Cbrt, (*DerivativeStructure).Cbrt},
		{"exp", (*Gradient).Exp, (*DerivativeStructure).Exp},
		{"expm1", (*Gradient).Expm1, (*DerivativeStructure).Expm1},
		{"log", (*Gradient).Log, (*DerivativeStructure).Log},
		{"log1p", (*Gradient).Log1p, (*DerivativeStructure).Log1p},
		{"log10", (*Gradient).Log10, (*DerivativeStructure).Log10},
		{"sin", (*Gradient).Sin, (*DerivativeStructure).Sin},
		{"cos", (*Gradient).Cos, (*DerivativeStructure).Cos},
		{"tan", (*Gradient).Tan, (*DerivativeStructure).Tan},
		{"asin", (*Gradient).Asin, (*DerivativeStructure).Asin},
		{"acos", (*Gradient).Acos, (*DerivativeStructure).Acos},
		{"atan", (*Gradient).Atan, (*DerivativeStructure).Atan},
		{"sinh", (*Gradient).Sinh, (*DerivativeStructure).Sinh},
		{"cosh", (*Gradient).Cosh, (*DerivativeStructure).Cosh},
		{"tanh", (*Gradient).Tanh, (*DerivativeStructure).Tanh},
		{"asinh", (*Gradient).Asinh, (*DerivativeStructure).Asinh},
		{"acosh", (*Gradient).Acosh, (*DerivativeStructure).Acosh},
		{"atanh", (*Gradient).Atanh, (*DerivativeStructure).Atanh},
	}

	for _, tc := range unaries {
		t.Run(tc.name, func(t *testing.T) {
			value := 0.6
			if tc.name == "acosh" {
				value = 1.6
			}
			gx := gradientVariable(t, 2, 0, value)
			gz := tc.g(gx)

			sx := variable2(t, factory, 0, value)
			sz := tc.ds(sx)

			assert.InDelta(t, sz.Value(), gz.Value(), 1e-14)
			d0, err := sz.PartialDerivative(1, 0)
			require.NoError(t, err)
			assert.InDelta(t, d0, gz.Gradient()[0], 1e-13)
			assert.InDelta(t, 0.0, gz.Gradient()[1], 1e-15)
		})
	}
}

func TestGradientConversionRoundTrip(t *testing.T) {
	g := NewGradient(1.5, -2.0, 0.25)

	ds, err := g.ToDerivativeStructure()
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Order())
	assert.Equal(t, 2, ds.FreeParameters())

	back, err := NewGradientFromStructure(ds)
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
	// bit-for-bit, not just approximately
	assert.Equal(t, g.Value(), back.Value())
	assert.Equal(t, g.Gradient(), back.Gradient())
}

func TestGradientConversionRejectsWrongOrder(t *testing.T) {
	factory, err := NewFactory(2, 2)
	require.NoError(t, err)
	_, err = NewGradientFromStructure(factory.Constant(1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGradientShapePanics(t *testing.T) {
	a := NewGradientConstant(2, 1)
	b := NewGradientConstant(3, 1)
	assert.Panics(t, func() { a.Add(b) })
	assert.Panics(t, func() { a.Divide(b) })
}

func TestGradientTaylor(t *testing.T) {
	x := gradientVariable(t, 2, 0, 1.0)
	y := gradientVariable(t, 2, 1, 2.0)
	z := x.MultiplyScalar(3).Add(y.MultiplyScalar(-2)).AddScalar(5)

	value, err := z.Taylor(0.1, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 3*1.1-2*2.2+5, value, 1e-14)

	_, err = z.Taylor(0.1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGradientSignOperations(t *testing.T) {
	t.Run("abs flips negative zero", func(t *testing.T) {
		g := NewGradient(math.Copysign(0, -1), 1.0)
		abs := g.Abs()
		assert.False(t, math.Signbit(abs.Value()))
		assert.Equal(t, []float64{-1}, abs.Gradient())
	})

	t.Run("copySign", func(t *testing.T) {
		g := NewGradient(2.0, 1.0)
		assert.Equal(t, -2.0, g.CopySignScalar(-1).Value())
		assert.Equal(t, 2.0, g.CopySignScalar(1).Value())
		assert.Equal(t, -2.0, g.CopySign(NewGradient(math.Copysign(0, -1), 0)).Value())
	})
}

func TestGradientCompose(t *testing.T) {
	g := NewGradient(0.5, 2.0, -1.0)
	e := math.Exp(0.5)
	z := g.Compose(e, e)
	assert.True(t, z.Equal(g.Exp()))

	assert.Panics(t, func() { g.Compose(1, 2, 3) })
}

func TestGradientDotCompensation(t *testing.T) {
	// values that cancel catastrophically under naive summation
	u := []*Gradient{
		NewGradientConstant(1, 0x1p512),
		NewGradientConstant(1, 1),
		NewGradientConstant(1, -0x1p512),
	}
	v := []*Gradient{
		NewGradientConstant(1, 0x1p400),
		NewGradientConstant(1, 1),
		NewGradientConstant(1, 0x1p400),
	}

	dot, err := GradientDot(u, v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dot.Value())

	_, err = GradientDot(u, v[:2])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGradientScaledSum(t *testing.T) {
	x := gradientVariable(t, 2, 0, 1.0)
	y := gradientVariable(t, 2, 1, 1.0)

	s, err := GradientScaledSum([]float64{3, -2}, []*Gradient{x, y})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Value())
	assert.Equal(t, []float64{3, -2}, s.Gradient())
}

func TestGradientPowVariants(t *testing.T) {
	x := gradientVariable(t, 1, 0, 1.3)

	t.Run("zero exponent", func(t *testing.T) {
		assert.True(t, x.Pow(0).Equal(NewGradientConstant(1, 1)))
		assert.True(t, x.PowInt(0).Equal(NewGradientConstant(1, 1)))
	})

	t.Run("int agrees with real", func(t *testing.T) {
		a := x.PowInt(3)
		b := x.Pow(3)
		assert.InDelta(t, a.Value(), b.Value(), 1e-14)
		assert.InDelta(t, a.Gradient()[0], b.Gradient()[0], 1e-13)
	})

	t.Run("scalar base", func(t *testing.T) {
		z := GradientPowBase(2, x)
		assert.InDelta(t, math.Pow(2, 1.3), z.Value(), 1e-14)
		assert.InDelta(t, math.Pow(2, 1.3)*math.Ln2, z.Gradient()[0], 1e-13)

		zero := GradientPowBase(0, x)
		assert.Equal(t, 0.0, zero.Value())
	})

	t.Run("generic pair", func(t *testing.T) {
		y := gradientVariable(t, 1, 0, 1.3)
		z := Pow(x, y)
		ref := x.Log().Multiply(y).Exp()
		assert.InDelta(t, ref.Value(), z.Value(), 1e-14)
		assert.InDelta(t, ref.Gradient()[0], z.Gradient()[0], 1e-13)
	})
}

func TestGradientRootN(t *testing.T) {
	x := gradientVariable(t, 1, 0, 2.2)
	z := x.RootN(5)
	assert.InDelta(t, math.Pow(2.2, 0.2), z.Value(), 1e-14)
	assert.InDelta(t, 0.2*math.Pow(2.2, 0.2-1), z.Gradient()[0], 1e-13)
}
