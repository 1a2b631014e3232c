package diff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

// logistic is written once against the contract interface and evaluated
// below with every representation.
func logistic[T Derivative[T]](x T) T {
	return x.Negate().Exp().AddScalar(1).Reciprocal()
}

func logisticDerivatives(x float64) (f, d1, d2 float64) {
	f = 1 / (1 + math.Exp(-x))
	d1 = f * (1 - f)
	d2 = d1 * (1 - 2*f)
	return f, d1, d2
}

func TestGenericFuncAcrossRepresentations(t *testing.T) {
	const x = 0.8
	f, d1, d2 := logisticDerivatives(x)

	var fn Func[UnivariateDerivative2] = logistic[UnivariateDerivative2]

	t.Run("univariate order 2", func(t *testing.T) {
		z := fn(NewUD2Variable(x))
		assert.InDelta(t, f, z.Value(), 1e-14)
		assert.InDelta(t, d1, z.FirstDerivative(), 1e-14)
		assert.InDelta(t, d2, z.SecondDerivative(), 1e-13)
	})

	t.Run("univariate order 1", func(t *testing.T) {
		z := logistic(NewUD1Variable(x))
		assert.InDelta(t, f, z.Value(), 1e-14)
		assert.InDelta(t, d1, z.FirstDerivative(), 1e-14)
	})

	t.Run("gradient", func(t *testing.T) {
		g, err := NewGradientVariable(3, 1, x)
		require.NoError(t, err)
		z := logistic(g)
		assert.InDelta(t, f, z.Value(), 1e-14)
		assert.InDelta(t, 0.0, z.Gradient()[0], 1e-15)
		assert.InDelta(t, d1, z.Gradient()[1], 1e-14)
		assert.InDelta(t, 0.0, z.Gradient()[2], 1e-15)
	})

	t.Run("structure", func(t *testing.T) {
		factory, err := NewFactory(1, 2)
		require.NoError(t, err)
		v, err := factory.Variable(0, x)
		require.NoError(t, err)
		z := logistic(v)
		assert.InDelta(t, f, z.Value(), 1e-14)
		p1, err := z.PartialDerivative(1)
		require.NoError(t, err)
		p2, err := z.PartialDerivative(2)
		require.NoError(t, err)
		assert.InDelta(t, d1, p1, 1e-14)
		assert.InDelta(t, d2, p2, 1e-13)
	})
}

func TestGenericHypot(t *testing.T) {
	t.Run("extreme magnitudes per representation", func(t *testing.T) {
		assert.Equal(t, 0x1p300, Hypot(NewUD1(0x1p300, 1), NewUD1(0x1p-300, 1)).Value())
		assert.Equal(t, 0x1p300, Hypot(NewUD2(0x1p300, 1, 0), NewUD2(0x1p-300, 1, 0)).Value())
		assert.Equal(t, 0x1p300,
			Hypot(NewGradient(0x1p300, 1), NewGradient(0x1p-300, 1)).Value())
	})

	t.Run("no intermediate overflow", func(t *testing.T) {
		x := NewUD1(3*0x1p600, 1)
		y := NewUD1(4*0x1p600, 1)
		assert.Equal(t, 5*0x1p600, x.Hypot(y).Value())
	})

	t.Run("derivative is direction cosine", func(t *testing.T) {
		x, err := NewGradientVariable(2, 0, 3)
		require.NoError(t, err)
		y, err := NewGradientVariable(2, 1, 4)
		require.NoError(t, err)
		h := Hypot(x, y)
		assert.True(t, scalar.EqualWithinAbs(5.0, h.Value(), 1e-14))
		assert.True(t, scalar.EqualWithinAbs(3.0/5.0, h.Gradient()[0], 1e-14))
		assert.True(t, scalar.EqualWithinAbs(4.0/5.0, h.Gradient()[1], 1e-14))
	})

	t.Run("special values", func(t *testing.T) {
		inf := NewUD1(math.Inf(-1), 1)
		nan := NewUD1(math.NaN(), 1)
		finite := NewUD1(2, 1)
		assert.True(t, math.IsInf(Hypot(inf, nan).Value(), 1))
		assert.True(t, math.IsInf(Hypot(nan, inf).Value(), 1))
		assert.True(t, math.IsNaN(Hypot(nan, finite).Value()))
	})
}

func TestGenericPow(t *testing.T) {
	t.Run("univariate order 2", func(t *testing.T) {
		x := NewUD2Variable(1.4)
		z := Pow(x, x)
		ref := x.Log().Multiply(x).Exp()
		assert.InDelta(t, ref.Value(), z.Value(), 1e-13)
		assert.InDelta(t, ref.FirstDerivative(), z.FirstDerivative(), 1e-12)
		assert.InDelta(t, ref.SecondDerivative(), z.SecondDerivative(), 1e-12)
	})

	t.Run("structure", func(t *testing.T) {
		factory, err := NewFactory(2, 2)
		require.NoError(t, err)
		x, err := factory.Variable(0, 1.4)
		require.NoError(t, err)
		y, err := factory.Variable(1, 0.9)
		require.NoError(t, err)
		z := Pow(x, y)
		ref := x.PowStructure(y)
		assert.InDeltaSlice(t, ref.AllDerivatives(), z.AllDerivatives(), 1e-12)
	})
}

func TestSignumHelper(t *testing.T) {
	assert.Equal(t, 1.0, signum(2.5))
	assert.Equal(t, -1.0, signum(-2.5))
	assert.Equal(t, 0.0, signum(0))
	assert.True(t, math.Signbit(signum(math.Copysign(0, -1))))
	assert.True(t, math.IsNaN(signum(math.NaN())))
}

func TestUlpHelper(t *testing.T) {
	assert.Equal(t, 0x1p-52, ulp(1.0))
	assert.Equal(t, 0x1p-51, ulp(2.0))
	assert.True(t, math.IsInf(ulp(math.Inf(1)), 1))
}
