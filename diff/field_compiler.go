package diff

import "fmt"

// The drivers below run the compiler tables over slices of field elements
// instead of float64. Methods cannot carry type parameters, so they are
// package-level functions taking the compiler explicitly.

// AddField stores lhs + rhs into result. result may alias either input.
func AddField[T Element[T]](c *Compiler, lhs, rhs, result []T) {
	for i := 0; i < c.Size(); i++ {
		result[i] = lhs[i].Add(rhs[i])
	}
}

// SubtractField stores lhs - rhs into result. result may alias either
// input.
func SubtractField[T Element[T]](c *Compiler, lhs, rhs, result []T) {
	for i := 0; i < c.Size(); i++ {
		result[i] = lhs[i].Subtract(rhs[i])
	}
}

// MultiplyField stores the truncated Cauchy product lhs*rhs into result.
// result must not alias either input.
func MultiplyField[T Element[T]](c *Compiler, lhs, rhs, result []T) {
	zero := lhs[0].NewInstance(0)
	for i, row := range c.multIndirection {
		r := zero
		for _, m := range row {
			r = r.Add(lhs[m.lhs].Multiply(rhs[m.rhs]).MultiplyScalar(float64(m.coeff)))
		}
		result[i] = r
	}
}

// DivideField stores lhs / rhs into result by back-substitution through the
// multiplication table. result must not alias either input.
func DivideField[T Element[T]](c *Compiler, lhs, rhs, result []T) {
	result[0] = lhs[0].Divide(rhs[0])
	for i := 1; i < len(c.multIndirection); i++ {
		row := c.multIndirection[i]
		result[i] = lhs[i]
		for j := 0; j < len(row)-1; j++ {
			m := row[j]
			result[i] = result[i].Subtract(
				result[m.lhs].Multiply(rhs[m.rhs]).MultiplyScalar(float64(m.coeff)))
		}
		result[i] = result[i].Divide(rhs[0].MultiplyScalar(float64(row[0].coeff)))
	}
}

// ReciprocalField stores 1 / operand into result. result must not alias
// the input.
func ReciprocalField[T Element[T]](c *Compiler, operand, result []T) {
	result[0] = operand[0].Reciprocal()
	zero := operand[0].NewInstance(0)
	for i := 1; i < len(c.multIndirection); i++ {
		row := c.multIndirection[i]
		result[i] = zero
		for j := 0; j < len(row)-1; j++ {
			m := row[j]
			result[i] = result[i].Subtract(
				result[m.lhs].Multiply(operand[m.rhs]).MultiplyScalar(float64(m.coeff)))
		}
		result[i] = result[i].Divide(operand[0].MultiplyScalar(float64(row[0].coeff)))
	}
}

// ComposeField applies the univariate composition table: f holds the outer
// function's value and derivatives at operand's value, one per order.
// result must not alias operand.
func ComposeField[T Element[T]](c *Compiler, operand []T, f []T, result []T) {
	zero := operand[0].NewInstance(0)
	for i, row := range c.compIndirection {
		r := zero
		for _, term := range row {
			product := f[term.fIndex].MultiplyScalar(float64(term.coeff))
			for _, dsIndex := range term.dsIndices {
				product = product.Multiply(operand[dsIndex])
			}
			r = r.Add(product)
		}
		result[i] = r
	}
}

// TaylorField evaluates the Taylor expansion represented by ds at the
// offsets delta, one offset per free parameter.
func TaylorField[T Element[T]](c *Compiler, ds []T, delta ...float64) (T, error) {
	var zero T
	if len(delta) != c.parameters {
		return zero, fmt.Errorf("%w: %d offsets for %d parameters",
			ErrDimensionMismatch, len(delta), c.parameters)
	}
	value := ds[0].NewInstance(0)
	for i := c.Size() - 1; i >= 0; i-- {
		orders := c.derivativesOrders[i]
		scale := 1.0
		for k, o := range orders {
			for j := 1; j <= o; j++ {
				scale *= delta[k] / float64(j)
			}
		}
		value = value.Add(ds[i].MultiplyScalar(scale))
	}
	return value, nil
}
