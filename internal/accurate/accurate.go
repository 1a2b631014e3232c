// Package accurate provides compensated floating-point primitives.
//
// The linear combination routines evaluate sums of products a1*b1 + ... + an*bn
// with an error bound close to one ulp of the exact result, instead of the
// much larger bound of a naive evaluation. Each product is split into a
// rounded part and an exact residual using FMA, and the rounded parts are
// accumulated with error-free two-sums. The residuals are folded in last.
//
// Term order is significant: callers rely on the exact pairing and rounding
// sequence, so these routines never reassociate their inputs.
package accurate

import "math"

// productLow returns the rounding error of the product a*b, i.e. the exact
// value of a*b - prodHigh, where prodHigh = a*b rounded to nearest.
func productLow(a, b, prodHigh float64) float64 {
	return math.FMA(a, b, -prodHigh)
}

// TwoSum computes s = a + b together with the exact rounding error e, so
// that a + b = s + e in exact arithmetic. Knuth's branch-free algorithm.
func TwoSum(a, b float64) (s, e float64) {
	s = a + b
	aPrime := s - b
	bPrime := s - aPrime
	deltaA := a - aPrime
	deltaB := b - bPrime
	return s, deltaA + deltaB
}

// LinearCombination2 computes a1*b1 + a2*b2 to high accuracy.
func LinearCombination2(a1, b1, a2, b2 float64) float64 {
	prodHigh1 := a1 * b1
	prodLow1 := productLow(a1, b1, prodHigh1)
	prodHigh2 := a2 * b2
	prodLow2 := productLow(a2, b2, prodHigh2)

	s, sLow := TwoSum(prodHigh1, prodHigh2)
	result := s + (prodLow2 + prodLow1 + sLow)

	if math.IsNaN(result) || math.IsInf(result, 0) {
		// the compensation scheme produces spurious NaN for infinite
		// inputs; the naive evaluation handles IEEE special values
		result = a1*b1 + a2*b2
	}
	return result
}

// LinearCombination3 computes a1*b1 + a2*b2 + a3*b3 to high accuracy.
func LinearCombination3(a1, b1, a2, b2, a3, b3 float64) float64 {
	prodHigh1 := a1 * b1
	prodLow1 := productLow(a1, b1, prodHigh1)
	prodHigh2 := a2 * b2
	prodLow2 := productLow(a2, b2, prodHigh2)
	prodHigh3 := a3 * b3
	prodLow3 := productLow(a3, b3, prodHigh3)

	s12, s12Low := TwoSum(prodHigh1, prodHigh2)
	s123, s123Low := TwoSum(s12, prodHigh3)
	result := s123 + (prodLow3 + prodLow2 + prodLow1 + s123Low + s12Low)

	if math.IsNaN(result) || math.IsInf(result, 0) {
		result = a1*b1 + a2*b2 + a3*b3
	}
	return result
}

// LinearCombination4 computes a1*b1 + a2*b2 + a3*b3 + a4*b4 to high accuracy.
func LinearCombination4(a1, b1, a2, b2, a3, b3, a4, b4 float64) float64 {
	prodHigh1 := a1 * b1
	prodLow1 := productLow(a1, b1, prodHigh1)
	prodHigh2 := a2 * b2
	prodLow2 := productLow(a2, b2, prodHigh2)
	prodHigh3 := a3 * b3
	prodLow3 := productLow(a3, b3, prodHigh3)
	prodHigh4 := a4 * b4
	prodLow4 := productLow(a4, b4, prodHigh4)

	s12, s12Low := TwoSum(prodHigh1, prodHigh2)
	s123, s123Low := TwoSum(s12, prodHigh3)
	s1234, s1234Low := TwoSum(s123, prodHigh4)
	result := s1234 + (prodLow4 + prodLow3 + prodLow2 + prodLow1 + s1234Low + s123Low + s12Low)

	if math.IsNaN(result) || math.IsInf(result, 0) {
		result = a1*b1 + a2*b2 + a3*b3 + a4*b4
	}
	return result
}

// LinearCombination computes the dot product of a and b to high accuracy.
// It panics if the slices have different lengths.
func LinearCombination(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("accurate: dimension mismatch")
	}
	switch len(a) {
	case 0:
		return 0
	case 1:
		return a[0] * b[0]
	case 2:
		return LinearCombination2(a[0], b[0], a[1], b[1])
	case 3:
		return LinearCombination3(a[0], b[0], a[1], b[1], a[2], b[2])
	case 4:
		return LinearCombination4(a[0], b[0], a[1], b[1], a[2], b[2], a[3], b[3])
	}

	prodLowSum := 0.0
	sum := a[0] * b[0]
	compensation := productLow(a[0], b[0], sum)
	for i := 1; i < len(a); i++ {
		prodHigh := a[i] * b[i]
		prodLowSum += productLow(a[i], b[i], prodHigh)
		var sLow float64
		sum, sLow = TwoSum(sum, prodHigh)
		compensation += sLow
	}
	result := sum + (prodLowSum + compensation)

	if math.IsNaN(result) || math.IsInf(result, 0) {
		result = 0
		for i := range a {
			result += a[i] * b[i]
		}
	}
	return result
}
