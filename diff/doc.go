// Package diff implements forward-mode automatic differentiation based on
// truncated multivariate Taylor expansions.
//
// Values are carried together with their partial derivatives up to a fixed
// order, and every arithmetic or elementary operation propagates the
// derivatives exactly (to floating-point accuracy), with no symbolic
// manipulation and no finite differences.
//
// Representations:
//   - DerivativeStructure: arbitrary derivation order and number of free
//     parameters, driven by a per-shape Compiler holding precomputed
//     multiplication and composition tables
//   - Gradient: first order only, any number of free parameters, with
//     hand-expanded differentiation rules
//   - UnivariateDerivative1, UnivariateDerivative2: one free parameter,
//     order 1 or 2, the cheapest representations
//
// All value types are immutable: operations return new values and operands
// may be shared freely between goroutines. The only shared mutable state is
// the compiler Registry, which caches one Compiler per (parameters, order)
// shape for the life of the process.
//
// Example:
//
//	x, _ := diff.NewGradientVariable(2, 0, 3.0)
//	y, _ := diff.NewGradientVariable(2, 1, 4.0)
//	z := x.Multiply(x).Add(y.Multiply(y))
//	// z.Value() == 25, z.Partial(0) == 6, z.Partial(1) == 8
package diff
