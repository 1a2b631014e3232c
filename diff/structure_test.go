package diff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func variable2(t *testing.T, factory *Factory, index int, value float64) *DerivativeStructure {
	t.Helper()
	v, err := factory.Variable(index, value)
	require.NoError(t, err)
	return v
}

func TestFactoryConstructors(t *testing.T) {
	factory, err := NewFactory(2, 2)
	require.NoError(t, err)

	t.Run("constant has null derivatives", func(t *testing.T) {
		c := factory.Constant(3.5)
		assert.Equal(t, 3.5, c.Value())
		assert.True(t, c.HasNullDerivatives(0))
	})

	t.Run("variable carries unit first derivative", func(t *testing.T) {
		v := variable2(t, factory, 1, 2.0)
		assert.Equal(t, 2.0, v.Value())
		d, err := v.PartialDerivative(0, 1)
		require.NoError(t, err)
		assert.Equal(t, 1.0, d)
		d, err = v.PartialDerivative(1, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	})

	t.Run("variable index out of range", func(t *testing.T) {
		_, err := factory.Variable(2, 1.0)
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = factory.Variable(-1, 1.0)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("build length check", func(t *testing.T) {
		_, err := factory.Build(1, 2, 3)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		ds, err := factory.Build(1, 2, 3, 4, 5, 6)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, ds.AllDerivatives())
	})

	t.Run("pi", func(t *testing.T) {
		assert.Equal(t, math.Pi, factory.Pi().Value())
	})
}

func TestSumOfSquares(t *testing.T) {
	factory, err := NewFactory(2, 2)
	require.NoError(t, err)

	x := variable2(t, factory, 0, 3.0)
	y := variable2(t, factory, 1, 4.0)
	z := x.Multiply(x).Add(y.Multiply(y))

	assert.Equal(t, 25.0, z.Value())

	dx, err := z.PartialDerivative(1, 0)
	require.NoError(t, err)
	dy, err := z.PartialDerivative(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 6.0, dx)
	assert.Equal(t, 8.0, dy)

	dxx, err := z.PartialDerivative(2, 0)
	require.NoError(t, err)
	dxy, err := z.PartialDerivative(1, 1)
	require.NoError(t, err)
	dyy, err := z.PartialDerivative(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, dxx)
	assert.Equal(t, 0.0, dxy)
	assert.Equal(t, 2.0, dyy)
}

func TestConstantLinearCombinationOfVariables(t *testing.T) {
	// when the coefficients sum to zero on identical variables, the result
	// collapses to a constant with null derivatives
	factory, err := NewFactory(1, 3)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.7)

	z := x.MultiplyScalar(3).Subtract(x.MultiplyScalar(2)).Subtract(x)
	assert.Equal(t, 0.0, z.Value())
	assert.True(t, z.HasNullDerivatives(0))
}

func TestProductRule(t *testing.T) {
	factory, err := NewFactory(2, 1)
	require.NoError(t, err)

	f := func(v []float64) *DerivativeStructure {
		x := variable2(t, factory, 0, v[0])
		y := variable2(t, factory, 1, v[1])
		return x.Sin().Multiply(y.Exp()).Add(x.Multiply(y).Cos())
	}
	scalarF := func(v []float64) float64 {
		return math.Sin(v[0])*math.Exp(v[1]) + math.Cos(v[0]*v[1])
	}

	point := []float64{0.7, -0.3}
	z := f(point)
	assert.InDelta(t, scalarF(point), z.Value(), 1e-15)

	grad := fd.Gradient(nil, scalarF, point, nil)
	dx, err := z.PartialDerivative(1, 0)
	require.NoError(t, err)
	dy, err := z.PartialDerivative(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, grad[0], dx, 1e-6)
	assert.InDelta(t, grad[1], dy, 1e-6)
}

func TestElementaryFunctionsAgainstFiniteDifferences(t *testing.T) {
	factory, err := NewFactory(1, 1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		ds     func(x *DerivativeStructure) *DerivativeStructure
		scalar func(x float64) float64
		point  float64
	}{
		{"exp", (*DerivativeStructure).Exp, math.Exp, 0.7},
		{"expm1", (*DerivativeStructure).Expm1, math.Expm1, 0.3},
		{"log", (*DerivativeStructure).Log, math.Log, 2.1},
		{"log1p", (*DerivativeStructure).Log1p, math.Log1p, 0.4},
		{"log10", (*DerivativeStructure).Log10, math.Log10, 5.0},
		{"sqrt", (*DerivativeStructure).Sqrt, math.Sqrt, 2.0},
		{"cbrt", (*DerivativeStructure).Cbrt, math.Cbrt, 2.7},
		{"sin", (*DerivativeStructure).Sin, math.Sin, 1.1},
		{"cos", (*DerivativeStructure).Cos, math.Cos, 1.1},
		{"tan", (*DerivativeStructure).Tan, math.Tan, 0.4},
		{"asin", (*DerivativeStructure).Asin, math.Asin, 0.6},
		{"acos", (*DerivativeStructure).Acos, math.Acos, 0.6},
		{"atan", (*DerivativeStructure).Atan, math.Atan, 0.9},
		{"sinh", (*DerivativeStructure).Sinh, math.Sinh, 0.8},
		{"cosh", (*DerivativeStructure).Cosh, math.Cosh, 0.8},
		{"tanh", (*DerivativeStructure).Tanh, math.Tanh, 0.8},
		{"asinh", (*DerivativeStructure).Asinh, math.Asinh, 1.3},
		{"acosh", (*DerivativeStructure).Acosh, math.Acosh, 1.7},
		{"atanh", (*DerivativeStructure).Atanh, math.Atanh, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := variable2(t, factory, 0, tc.point)
			z := tc.ds(x)
			assert.InDelta(t, tc.scalar(tc.point), z.Value(), 1e-14)

			derivative := fd.Derivative(tc.scalar, tc.point, nil)
			d, err := z.PartialDerivative(1)
			require.NoError(t, err)
			assert.InDelta(t, derivative, d, 1e-6)
		})
	}
}

func TestHigherOrderDerivatives(t *testing.T) {
	factory, err := NewFactory(1, 4)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 0.9)

	t.Run("exp reproduces itself", func(t *testing.T) {
		z := x.Exp()
		for n := 0; n <= 4; n++ {
			d, err := z.PartialDerivative(n)
			require.NoError(t, err)
			assert.InDelta(t, math.Exp(0.9), d, 1e-13)
		}
	})

	t.Run("sin cycles with period four", func(t *testing.T) {
		z := x.Sin()
		expected := []float64{math.Sin(0.9), math.Cos(0.9), -math.Sin(0.9), -math.Cos(0.9), math.Sin(0.9)}
		for n := 0; n <= 4; n++ {
			d, err := z.PartialDerivative(n)
			require.NoError(t, err)
			assert.InDelta(t, expected[n], d, 1e-13, "order %d", n)
		}
	})

	t.Run("power four", func(t *testing.T) {
		z := x.PowInt(4)
		v := 0.9
		expected := []float64{v * v * v * v, 4 * v * v * v, 12 * v * v, 24 * v, 24}
		for n := 0; n <= 4; n++ {
			d, err := z.PartialDerivative(n)
			require.NoError(t, err)
			assert.InDelta(t, expected[n], d, 1e-12, "order %d", n)
		}
	})
}

func TestDivisionIdentities(t *testing.T) {
	factory, err := NewFactory(2, 3)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.3)
	y := variable2(t, factory, 1, -0.7)

	t.Run("multiply then divide is identity", func(t *testing.T) {
		z := x.Multiply(y).Divide(y)
		for i, d := range z.AllDerivatives() {
			assert.InDelta(t, x.AllDerivatives()[i], d, 1e-13, "slot %d", i)
		}
	})

	t.Run("reciprocal of reciprocal is identity", func(t *testing.T) {
		z := x.Reciprocal().Reciprocal()
		for i, d := range z.AllDerivatives() {
			assert.InDelta(t, x.AllDerivatives()[i], d, 1e-13, "slot %d", i)
		}
	})

	t.Run("sqrt squared is identity", func(t *testing.T) {
		z := x.Sqrt()
		back := z.Multiply(z)
		for i, d := range back.AllDerivatives() {
			assert.InDelta(t, x.AllDerivatives()[i], d, 1e-13, "slot %d", i)
		}
	})

	t.Run("rootN against pow", func(t *testing.T) {
		z := x.RootN(5)
		ref := x.Pow(1.0 / 5.0)
		for i, d := range z.AllDerivatives() {
			assert.InDelta(t, ref.AllDerivatives()[i], d, 1e-12, "slot %d", i)
		}
	})
}

func TestPowVariants(t *testing.T) {
	factory, err := NewFactory(1, 2)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.6)

	t.Run("pow zero exponent", func(t *testing.T) {
		z := x.Pow(0)
		assert.Equal(t, 1.0, z.Value())
		assert.True(t, z.HasNullDerivatives(0))
	})

	t.Run("int and real exponents agree", func(t *testing.T) {
		a := x.PowInt(3)
		b := x.Pow(3)
		for i := range a.AllDerivatives() {
			assert.InDelta(t, a.AllDerivatives()[i], b.AllDerivatives()[i], 1e-12)
		}
	})

	t.Run("negative int exponent", func(t *testing.T) {
		a := x.PowInt(-2)
		b := x.Multiply(x).Reciprocal()
		for i := range a.AllDerivatives() {
			assert.InDelta(t, b.AllDerivatives()[i], a.AllDerivatives()[i], 1e-13)
		}
	})

	t.Run("structure exponent via exp log", func(t *testing.T) {
		y := variable2(t, factory, 0, 1.6)
		z := x.PowStructure(y)
		ref := x.Log().Multiply(y).Exp()
		for i := range z.AllDerivatives() {
			assert.InDelta(t, ref.AllDerivatives()[i], z.AllDerivatives()[i], 1e-12)
		}
	})

	t.Run("scalar base", func(t *testing.T) {
		z := PowBase(2.0, x)
		assert.InDelta(t, math.Pow(2, 1.6), z.Value(), 1e-14)
		d, err := z.PartialDerivative(1)
		require.NoError(t, err)
		assert.InDelta(t, math.Pow(2, 1.6)*math.Ln2, d, 1e-13)
	})
}

func TestAtan2Structure(t *testing.T) {
	factory, err := NewFactory(2, 2)
	require.NoError(t, err)

	points := [][2]float64{{1.5, 2.0}, {-1.5, 2.0}, {1.5, -2.0}, {-1.5, -2.0}}
	for _, p := range points {
		y := variable2(t, factory, 0, p[0])
		x := variable2(t, factory, 1, p[1])
		z := y.Atan2(x)

		assert.InDelta(t, math.Atan2(p[0], p[1]), z.Value(), 1e-14)

		r2 := p[0]*p[0] + p[1]*p[1]
		dy, err := z.PartialDerivative(1, 0)
		require.NoError(t, err)
		dx, err := z.PartialDerivative(0, 1)
		require.NoError(t, err)
		assert.InDelta(t, p[1]/r2, dy, 1e-13)
		assert.InDelta(t, -p[0]/r2, dx, 1e-13)
	}
}

func TestSinCosPair(t *testing.T) {
	factory, err := NewFactory(1, 3)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 0.8)

	sin, cos := x.SinCos()
	assert.True(t, sin.Equal(x.Sin()))
	assert.True(t, cos.Equal(x.Cos()))

	sinh, cosh := x.SinhCosh()
	assert.True(t, sinh.Equal(x.Sinh()))
	assert.True(t, cosh.Equal(x.Cosh()))

	// sin^2 + cos^2 stays 1 including all derivatives
	one := sin.Multiply(sin).Add(cos.Multiply(cos))
	assert.InDelta(t, 1.0, one.Value(), 1e-15)
	assert.True(t, one.HasNullDerivatives(1e-13))
}

func TestHypotEdgeCases(t *testing.T) {
	factory, err := NewFactory(2, 1)
	require.NoError(t, err)

	t.Run("zero second operand yields abs", func(t *testing.T) {
		x := variable2(t, factory, 0, -3.0)
		zero := factory.Constant(0)
		h := x.Hypot(zero)
		assert.Equal(t, 3.0, h.Value())
		d, err := h.PartialDerivative(1, 0)
		require.NoError(t, err)
		assert.Equal(t, -1.0, d)
	})

	t.Run("infinity wins over NaN", func(t *testing.T) {
		inf := factory.Constant(math.Inf(-1))
		nan := factory.Constant(math.NaN())
		assert.True(t, math.IsInf(inf.Hypot(nan).Value(), 1))
		assert.True(t, math.IsInf(nan.Hypot(inf).Value(), 1))
	})

	t.Run("NaN propagates", func(t *testing.T) {
		nan := factory.Constant(math.NaN())
		one := factory.Constant(1)
		assert.True(t, math.IsNaN(one.Hypot(nan).Value()))
	})

	t.Run("widely separated exponents return larger magnitude exactly", func(t *testing.T) {
		big := variable2(t, factory, 0, -0x1p300)
		small := variable2(t, factory, 1, 0x1p-300)
		h := big.Hypot(small)
		assert.Equal(t, 0x1p300, h.Value())
		d, err := h.PartialDerivative(1, 0)
		require.NoError(t, err)
		assert.Equal(t, -1.0, d)
	})

	t.Run("no intermediate overflow", func(t *testing.T) {
		x := factory.Constant(3 * 0x1p600)
		y := factory.Constant(4 * 0x1p600)
		assert.InDelta(t, 5*0x1p600, x.Hypot(y).Value(), 0x1p570)
	})

	t.Run("matches pythagoras", func(t *testing.T) {
		x := variable2(t, factory, 0, 3.0)
		y := variable2(t, factory, 1, 4.0)
		h := x.Hypot(y)
		ref := x.Multiply(x).Add(y.Multiply(y)).Sqrt()
		assert.InDelta(t, 5.0, h.Value(), 1e-15)
		for i := range h.AllDerivatives() {
			assert.InDelta(t, ref.AllDerivatives()[i], h.AllDerivatives()[i], 1e-14)
		}
	})
}

func TestSignOperations(t *testing.T) {
	factory, err := NewFactory(1, 1)
	require.NoError(t, err)

	t.Run("abs of negative zero negates", func(t *testing.T) {
		z := variable2(t, factory, 0, math.Copysign(0, -1))
		abs := z.Abs()
		assert.False(t, math.Signbit(abs.Value()))
		d, err := abs.PartialDerivative(1)
		require.NoError(t, err)
		assert.Equal(t, -1.0, d)
	})

	t.Run("copySign honors negative zero reference", func(t *testing.T) {
		x := variable2(t, factory, 0, 2.5)
		flipped := x.CopySignScalar(math.Copysign(0, -1))
		assert.Equal(t, -2.5, flipped.Value())
		d, err := flipped.PartialDerivative(1)
		require.NoError(t, err)
		assert.Equal(t, -1.0, d)

		kept := x.CopySignScalar(0.0)
		assert.True(t, kept.Equal(x))
	})

	t.Run("sign is a step constant", func(t *testing.T) {
		x := variable2(t, factory, 0, -7.0)
		s := x.Sign()
		assert.Equal(t, -1.0, s.Value())
		assert.True(t, s.HasNullDerivatives(0))
	})

	t.Run("floor ceil rint are constants", func(t *testing.T) {
		x := variable2(t, factory, 0, 2.5)
		assert.Equal(t, 3.0, x.Ceil().Value())
		assert.Equal(t, 2.0, x.Floor().Value())
		assert.Equal(t, 2.0, x.Rint().Value()) // ties to even
		assert.True(t, x.Ceil().HasNullDerivatives(0))
	})
}

func TestScalbAndExponent(t *testing.T) {
	factory, err := NewFactory(1, 2)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.5)

	z := x.Exp().Scalb(3)
	ref := x.Exp().MultiplyScalar(8)
	assert.True(t, z.Equal(ref))

	assert.Equal(t, 0, factory.Constant(1.5).Exponent())
	assert.Equal(t, 4, factory.Constant(17).Exponent())
	assert.Equal(t, -1023, factory.Constant(0).Exponent())
}

func TestRemainderStructure(t *testing.T) {
	factory, err := NewFactory(2, 1)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 7.25)
	y := variable2(t, factory, 1, 2.0)

	z := x.Remainder(y)
	// 7.25 = 4 * 2.0 - 0.75
	assert.InDelta(t, -0.75, z.Value(), 1e-15)
	dx, err := z.PartialDerivative(1, 0)
	require.NoError(t, err)
	dy, err := z.PartialDerivative(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, -4.0, dy)

	s := x.RemainderScalar(2.0)
	assert.InDelta(t, -0.75, s.Value(), 1e-15)
	dx, err = s.PartialDerivative(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dx)
}

func TestTaylorEvaluation(t *testing.T) {
	factory, err := NewFactory(2, 3)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.0)
	y := variable2(t, factory, 1, 2.0)

	// polynomial of total degree <= 3: Taylor is exact
	f := func(xv, yv *DerivativeStructure) *DerivativeStructure {
		return xv.Multiply(xv).Multiply(yv).Add(yv.MultiplyScalar(3)).SubtractScalar(1)
	}
	z := f(x, y)

	value, err := z.Taylor(0.1, -0.2)
	require.NoError(t, err)
	xa, ya := 1.1, 1.8
	assert.InDelta(t, xa*xa*ya+3*ya-1, value, 1e-13)

	_, err = z.Taylor(0.1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestComposeChecksLength(t *testing.T) {
	factory, err := NewFactory(1, 2)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 0.5)

	assert.PanicsWithError(t, "diff: dimension mismatch: 2 outer coefficients for order 2", func() {
		x.Compose(1, 2)
	})

	// exp supplied manually through compose
	e := math.Exp(0.5)
	z := x.Compose(e, e, e)
	assert.True(t, z.Equal(x.Exp()))
}

func TestArithmeticShapePanics(t *testing.T) {
	a, err := NewFactory(2, 2)
	require.NoError(t, err)
	b, err := NewFactory(2, 1)
	require.NoError(t, err)

	x := a.Constant(1)
	y := b.Constant(1)

	assert.Panics(t, func() { x.Add(y) })
	assert.Panics(t, func() { x.Multiply(y) })
	assert.Panics(t, func() { x.Atan2(y) })
}

func TestDegreesRadiansRoundTrip(t *testing.T) {
	factory, err := NewFactory(1, 2)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 1.2)

	back := x.ToDegrees().ToRadians()
	for i, d := range back.AllDerivatives() {
		assert.InDelta(t, x.AllDerivatives()[i], d, 1e-15, "slot %d", i)
	}
}

func TestDotAndScaledSum(t *testing.T) {
	factory, err := NewFactory(1, 1)
	require.NoError(t, err)
	x := variable2(t, factory, 0, 2.0)

	a := []*DerivativeStructure{x, x.Exp()}
	b := []*DerivativeStructure{x.Sin(), factory.Constant(1)}

	dot, err := Dot(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Sin(2)+math.Exp(2), dot.Value(), 1e-14)
	d, err := dot.PartialDerivative(1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(2)+2*math.Cos(2)+math.Exp(2), d, 1e-13)

	sum, err := ScaledSum([]float64{2, -1}, []*DerivativeStructure{x, x.Multiply(x)})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sum.Value(), 1e-15)
	d, err = sum.PartialDerivative(1)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, d, 1e-15)

	_, err = Dot(a, b[:1])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = ScaledSum(nil, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStructureEqual(t *testing.T) {
	factory, err := NewFactory(1, 1)
	require.NoError(t, err)

	x := variable2(t, factory, 0, 1.0)
	assert.True(t, x.Equal(variable2(t, factory, 0, 1.0)))
	assert.False(t, x.Equal(variable2(t, factory, 0, 2.0)))

	nan := factory.Constant(math.NaN())
	assert.True(t, nan.Equal(factory.Constant(math.NaN())))

	other, err := NewFactory(2, 1)
	require.NoError(t, err)
	assert.False(t, x.Equal(other.Constant(1)))
}
