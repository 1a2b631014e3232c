package diff

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilerSize(t *testing.T) {
	// size is C(parameters+order, order)
	cases := []struct {
		parameters, order, size int
	}{
		{0, 0, 1},
		{0, 5, 1},
		{3, 0, 1},
		{1, 1, 2},
		{1, 4, 5},
		{2, 2, 6},
		{3, 3, 20},
		{4, 2, 15},
	}
	for _, tc := range cases {
		c := CompilerFor(tc.parameters, tc.order)
		assert.Equal(t, tc.size, c.Size(), "p=%d o=%d", tc.parameters, tc.order)
		assert.Equal(t, tc.parameters, c.FreeParameters())
		assert.Equal(t, tc.order, c.Order())
	}
}

func TestCompilerIndexBijection(t *testing.T) {
	for p := 1; p <= 4; p++ {
		for o := 0; o <= 4; o++ {
			c := CompilerFor(p, o)
			seen := make(map[int]bool)
			for index := 0; index < c.Size(); index++ {
				orders, err := c.PartialDerivativeOrders(index)
				require.NoError(t, err)
				back, err := c.PartialDerivativeIndex(orders...)
				require.NoError(t, err)
				assert.Equal(t, index, back, "p=%d o=%d slot %d", p, o, index)
				assert.False(t, seen[back])
				seen[back] = true

				sum := 0
				for _, v := range orders {
					sum += v
				}
				slotSum, err := c.PartialDerivativeOrdersSum(index)
				require.NoError(t, err)
				assert.Equal(t, sum, slotSum)
				assert.LessOrEqual(t, sum, o)
			}
		}
	}
}

func TestCompilerFixedSlots(t *testing.T) {
	t.Run("value is slot zero", func(t *testing.T) {
		c := CompilerFor(3, 2)
		index, err := c.PartialDerivativeIndex(0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, index)
	})

	t.Run("single parameter slots follow derivation order", func(t *testing.T) {
		c := CompilerFor(1, 5)
		for n := 0; n <= 5; n++ {
			index, err := c.PartialDerivativeIndex(n)
			require.NoError(t, err)
			assert.Equal(t, n, index)
		}
	})

	t.Run("order one slots follow parameter index", func(t *testing.T) {
		c := CompilerFor(4, 1)
		for k := 0; k < 4; k++ {
			orders := make([]int, 4)
			orders[k] = 1
			index, err := c.PartialDerivativeIndex(orders...)
			require.NoError(t, err)
			assert.Equal(t, k+1, index)
		}
	})
}

func TestCompilerIndexErrors(t *testing.T) {
	c := CompilerFor(2, 2)

	t.Run("wrong orders length", func(t *testing.T) {
		_, err := c.PartialDerivativeIndex(1)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("negative order", func(t *testing.T) {
		_, err := c.PartialDerivativeIndex(-1, 0)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("total order too high", func(t *testing.T) {
		_, err := c.PartialDerivativeIndex(2, 1)
		assert.ErrorIs(t, err, ErrDerivationOrderNotAllowed)
	})

	t.Run("slot out of range", func(t *testing.T) {
		_, err := c.PartialDerivativeOrders(c.Size())
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = c.PartialDerivativeOrdersSum(-1)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestCompilerCompatibility(t *testing.T) {
	a := CompilerFor(2, 3)
	assert.NoError(t, a.CheckCompatibility(CompilerFor(2, 3)))
	assert.ErrorIs(t, a.CheckCompatibility(CompilerFor(3, 3)), ErrDimensionMismatch)
	assert.ErrorIs(t, a.CheckCompatibility(CompilerFor(2, 2)), ErrDimensionMismatch)
}

func TestRegistryRejectsNegativeShape(t *testing.T) {
	r := NewRegistry()
	_, err := r.Compiler(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = r.Compiler(2, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRegistryConstructsOnce(t *testing.T) {
	r := NewRegistry()

	first, err := r.Compiler(3, 4)
	require.NoError(t, err)
	built := r.constructions()

	again, err := r.Compiler(3, 4)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, built, r.constructions(), "second request must not rebuild")

	// lower shapes were filled by the recursion and are reused as well
	lower, err := r.Compiler(2, 4)
	require.NoError(t, err)
	assert.NotNil(t, lower)
	assert.Equal(t, built, r.constructions())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	const goroutines = 32
	results := make([]*Compiler, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			c, err := r.Compiler(3, 3)
			if err != nil {
				t.Error(err)
				return
			}
			results[g] = c
		}(g)
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		assert.Same(t, results[0], results[g])
	}
	// (3,3) pulls in every (p<=3, o<=3) shape, one construction each
	assert.Equal(t, 16, r.constructions())
}

func TestTaylorSinglePoint(t *testing.T) {
	// 1 + 2x + 3x^2/2 evaluated away from the expansion point
	c := CompilerFor(1, 2)
	value, err := c.Taylor([]float64{1, 2, 3}, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1+2*0.5+3*0.25/2, value, 1e-15)

	_, err = c.Taylor([]float64{1, 2, 3}, 0.5, 0.5)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}
