package diff

import (
	"fmt"
	"math"

	"github.com/calcforge/autodiff/internal/accurate"
)

// The operations in this file work on flat coefficient slices laid out
// according to the compiler's slot numbering. Unless noted otherwise the
// result slice may alias an input; multiplication-based operations state
// explicitly when it may not.

// Add stores lhs + rhs into result. result may alias either input.
func (c *Compiler) Add(lhs, rhs, result []float64) {
	for i := 0; i < c.Size(); i++ {
		result[i] = lhs[i] + rhs[i]
	}
}

// Subtract stores lhs - rhs into result. result may alias either input.
func (c *Compiler) Subtract(lhs, rhs, result []float64) {
	for i := 0; i < c.Size(); i++ {
		result[i] = lhs[i] - rhs[i]
	}
}

// Multiply stores the truncated Cauchy product lhs*rhs into result.
// result must not alias either input.
func (c *Compiler) Multiply(lhs, rhs, result []float64) {
	for i, row := range c.multIndirection {
		r := 0.0
		for _, m := range row {
			r += float64(m.coeff) * lhs[m.lhs] * rhs[m.rhs]
		}
		result[i] = r
	}
}

// Divide stores lhs / rhs into result by back-substitution through the
// multiplication table. result must not alias either input.
func (c *Compiler) Divide(lhs, rhs, result []float64) {
	result[0] = lhs[0] / rhs[0]
	for i := 1; i < len(c.multIndirection); i++ {
		row := c.multIndirection[i]
		result[i] = lhs[i]
		for j := 0; j < len(row)-1; j++ {
			m := row[j]
			result[i] -= float64(m.coeff) * (result[m.lhs] * rhs[m.rhs])
		}
		result[i] /= rhs[0] * float64(row[0].coeff)
	}
}

// Reciprocal stores 1 / operand into result. result must not alias the
// input.
func (c *Compiler) Reciprocal(operand, result []float64) {
	result[0] = 1.0 / operand[0]
	for i := 1; i < len(c.multIndirection); i++ {
		row := c.multIndirection[i]
		result[i] = 0
		for j := 0; j < len(row)-1; j++ {
			m := row[j]
			result[i] -= float64(m.coeff) * (result[m.lhs] * operand[m.rhs])
		}
		result[i] /= operand[0] * float64(row[0].coeff)
	}
}

// Remainder stores the IEEE remainder of lhs by rhs into result. The
// derivatives follow lhs - k*rhs for the integer quotient k, so they jump
// at the discontinuities of the remainder. result may alias either input.
func (c *Compiler) Remainder(lhs, rhs, result []float64) {
	// compute k such that lhs % rhs = lhs - k rhs
	rem := math.Remainder(lhs[0], rhs[0])
	k := math.Round((lhs[0] - rem) / rhs[0])

	result[0] = rem
	for i := 1; i < c.Size(); i++ {
		result[i] = lhs[i] - k*rhs[i]
	}
}

// LinearCombination2 stores a1*c1 + a2*c2 into result using compensated
// products slot by slot.
func (c *Compiler) LinearCombination2(a1 float64, c1 []float64, a2 float64, c2 []float64, result []float64) {
	for i := 0; i < c.Size(); i++ {
		result[i] = accurate.LinearCombination2(a1, c1[i], a2, c2[i])
	}
}

// LinearCombination3 stores a1*c1 + a2*c2 + a3*c3 into result using
// compensated products slot by slot.
func (c *Compiler) LinearCombination3(a1 float64, c1 []float64, a2 float64, c2 []float64,
	a3 float64, c3 []float64, result []float64) {
	for i := 0; i < c.Size(); i++ {
		result[i] = accurate.LinearCombination3(a1, c1[i], a2, c2[i], a3, c3[i])
	}
}

// LinearCombination4 stores a1*c1 + a2*c2 + a3*c3 + a4*c4 into result using
// compensated products slot by slot.
func (c *Compiler) LinearCombination4(a1 float64, c1 []float64, a2 float64, c2 []float64,
	a3 float64, c3 []float64, a4 float64, c4 []float64, result []float64) {
	for i := 0; i < c.Size(); i++ {
		result[i] = accurate.LinearCombination4(a1, c1[i], a2, c2[i], a3, c3[i], a4, c4[i])
	}
}

// Taylor evaluates the Taylor expansion represented by ds at the offsets
// delta, one offset per free parameter.
func (c *Compiler) Taylor(ds []float64, delta ...float64) (float64, error) {
	if len(delta) != c.parameters {
		return 0, fmt.Errorf("%w: %d offsets for %d parameters", ErrDimensionMismatch, len(delta), c.parameters)
	}
	value := 0.0
	for i := c.Size() - 1; i >= 0; i-- {
		orders := c.derivativesOrders[i]
		term := ds[i]
		for k, o := range orders {
			if o > 0 {
				term *= math.Pow(delta[k], float64(o)) / factorial(o)
			}
		}
		value += term
	}
	return value, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
