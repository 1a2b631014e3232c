package diff

import "math"

// Elementary functions are all computed the same way: evaluate the
// univariate outer function's value and first N derivatives at the
// operand's value with a closed-form recurrence, then feed them through
// Compose. None of the result slices may alias the operand.

// Compose applies the Faa di Bruno formula: given f, the array of the outer
// function's value and derivatives at the operand's value (length order+1),
// it stores the derivatives of f(operand) into result.
func (c *Compiler) Compose(operand, f, result []float64) {
	for i, row := range c.compIndirection {
		r := 0.0
		for _, t := range row {
			product := float64(t.coeff) * f[t.fIndex]
			for _, dsIndex := range t.dsIndices {
				product *= operand[dsIndex]
			}
			r += product
		}
		result[i] = r
	}
}

// PowBase stores a**operand into result.
func (c *Compiler) PowBase(a float64, operand, result []float64) {
	// [a^x, ln(a) a^x, ln(a)^2 a^x, ...]
	function := make([]float64, 1+c.order)
	if a == 0 {
		if operand[0] == 0 {
			function[0] = 1
			infinity := math.Inf(1)
			for i := 1; i < len(function); i++ {
				infinity = -infinity
				function[i] = infinity
			}
		} else if operand[0] < 0 {
			for i := range function {
				function[i] = math.NaN()
			}
		}
	} else {
		function[0] = math.Pow(a, operand[0])
		lnA := math.Log(a)
		for i := 1; i < len(function); i++ {
			function[i] = lnA * function[i-1]
		}
	}
	c.Compose(operand, function, result)
}

// Pow stores operand**p into result.
func (c *Compiler) Pow(operand []float64, p float64, result []float64) {
	if p == 0 {
		// x^0 = 1 for all x
		result[0] = 1.0
		for i := 1; i < c.Size(); i++ {
			result[i] = 0
		}
		return
	}

	if operand[0] == 0 {
		// 0^p = 0 for all p
		for i := 0; i < c.Size(); i++ {
			result[i] = 0
		}
		return
	}

	// [x^p, px^(p-1), p(p-1)x^(p-2), ...]
	function := make([]float64, 1+c.order)
	xk := math.Pow(operand[0], p-float64(c.order))
	for i := c.order; i > 0; i-- {
		function[i] = xk
		xk *= operand[0]
	}
	function[0] = xk
	coefficient := p
	for i := 1; i <= c.order; i++ {
		function[i] *= coefficient
		coefficient *= p - float64(i)
	}

	c.Compose(operand, function, result)
}

// PowInt stores operand**n into result for an integer exponent.
func (c *Compiler) PowInt(operand []float64, n int, result []float64) {
	if n == 0 {
		result[0] = 1.0
		for i := 1; i < c.Size(); i++ {
			result[i] = 0
		}
		return
	}

	// [x^n, nx^(n-1), n(n-1)x^(n-2), ...]
	function := make([]float64, 1+c.order)

	if n > 0 {
		maxOrder := c.order
		if n < maxOrder {
			maxOrder = n
		}
		xk := math.Pow(operand[0], float64(n-maxOrder))
		for i := maxOrder; i > 0; i-- {
			function[i] = xk
			xk *= operand[0]
		}
		function[0] = xk
	} else {
		inv := 1.0 / operand[0]
		xk := math.Pow(inv, float64(-n))
		for i := 0; i <= c.order; i++ {
			function[i] = xk
			xk *= inv
		}
	}

	coefficient := float64(n)
	for i := 1; i <= c.order; i++ {
		function[i] *= coefficient
		coefficient *= float64(n - i)
	}

	c.Compose(operand, function, result)
}

// PowPair stores x**y into result, via exp(y*log(x)).
func (c *Compiler) PowPair(x, y, result []float64) {
	logX := make([]float64, c.Size())
	c.Log(x, logX)
	yLogX := make([]float64, c.Size())
	c.Multiply(logX, y, yLogX)
	c.Exp(yLogX, result)
}

// Sqrt stores the square root of operand into result. The first-derivative
// slots are obtained by back-substitution through the multiplication table,
// which is cheaper than the general composition path.
func (c *Compiler) Sqrt(operand, result []float64) {
	sqrtConstant := math.Sqrt(operand[0])
	result[0] = sqrtConstant
	for i := 1; i < len(c.multIndirection); i++ {
		row := c.multIndirection[i]
		result[i] = operand[i]
		for j := 1; j < len(row)-1; j++ {
			m := row[j]
			result[i] -= float64(m.coeff) * (result[m.lhs] * result[m.rhs])
		}
		result[i] /= sqrtConstant * float64(row[len(row)-1].coeff+row[0].coeff)
	}
}

// RootN stores the n-th root of operand into result.
func (c *Compiler) RootN(operand []float64, n int, result []float64) {
	// [x^(1/n), (1/n)x^((1/n)-1), ...]
	function := make([]float64, 1+c.order)
	var xk float64
	switch n {
	case 2:
		function[0] = math.Sqrt(operand[0])
		xk = 0.5 / function[0]
	case 3:
		function[0] = math.Cbrt(operand[0])
		xk = 1.0 / (3.0 * function[0] * function[0])
	default:
		function[0] = math.Pow(operand[0], 1.0/float64(n))
		xk = 1.0 / (float64(n) * math.Pow(function[0], float64(n-1)))
	}
	nReciprocal := 1.0 / float64(n)
	xReciprocal := 1.0 / operand[0]
	for i := 1; i <= c.order; i++ {
		function[i] = xk
		xk *= xReciprocal * (nReciprocal - float64(i))
	}

	c.Compose(operand, function, result)
}

// Exp stores the exponential of operand into result.
func (c *Compiler) Exp(operand, result []float64) {
	function := make([]float64, 1+c.order)
	e := math.Exp(operand[0])
	for i := range function {
		function[i] = e
	}
	c.Compose(operand, function, result)
}

// Expm1 stores exp(operand)-1 into result, keeping the accuracy of expm1
// near zero for the value slot.
func (c *Compiler) Expm1(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Expm1(operand[0])
	e := math.Exp(operand[0])
	for i := 1; i <= c.order; i++ {
		function[i] = e
	}
	c.Compose(operand, function, result)
}

// Log stores the natural logarithm of operand into result.
func (c *Compiler) Log(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Log(operand[0])
	if c.order > 0 {
		inv := 1.0 / operand[0]
		xk := inv
		for i := 1; i <= c.order; i++ {
			function[i] = xk
			xk *= float64(-i) * inv
		}
	}
	c.Compose(operand, function, result)
}

// Log1p stores log(1+operand) into result, keeping the accuracy of log1p
// near zero for the value slot.
func (c *Compiler) Log1p(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Log1p(operand[0])
	if c.order > 0 {
		inv := 1.0 / (1.0 + operand[0])
		xk := inv
		for i := 1; i <= c.order; i++ {
			function[i] = xk
			xk *= float64(-i) * inv
		}
	}
	c.Compose(operand, function, result)
}

// Log10 stores the base-10 logarithm of operand into result.
func (c *Compiler) Log10(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Log10(operand[0])
	if c.order > 0 {
		inv := 1.0 / operand[0]
		xk := inv / math.Ln10
		for i := 1; i <= c.order; i++ {
			function[i] = xk
			xk *= float64(-i) * inv
		}
	}
	c.Compose(operand, function, result)
}

// Cos stores the cosine of operand into result.
func (c *Compiler) Cos(operand, result []float64) {
	function := make([]float64, 1+c.order)
	sin, cos := math.Sincos(operand[0])
	function[0] = cos
	if c.order > 0 {
		function[1] = -sin
		for i := 2; i <= c.order; i++ {
			function[i] = -function[i-2]
		}
	}
	c.Compose(operand, function, result)
}

// Sin stores the sine of operand into result.
func (c *Compiler) Sin(operand, result []float64) {
	function := make([]float64, 1+c.order)
	sin, cos := math.Sincos(operand[0])
	function[0] = sin
	if c.order > 0 {
		function[1] = cos
		for i := 2; i <= c.order; i++ {
			function[i] = -function[i-2]
		}
	}
	c.Compose(operand, function, result)
}

// SinCos stores the sine and cosine of operand into sin and cos, sharing
// the single scalar sincos evaluation.
func (c *Compiler) SinCos(operand, sin, cos []float64) {
	functionSin := make([]float64, 1+c.order)
	functionCos := make([]float64, 1+c.order)
	s, co := math.Sincos(operand[0])
	functionSin[0] = s
	functionCos[0] = co
	if c.order > 0 {
		functionSin[1] = co
		functionCos[1] = -s
		for i := 2; i <= c.order; i++ {
			functionSin[i] = -functionSin[i-2]
			functionCos[i] = -functionCos[i-2]
		}
	}
	c.Compose(operand, functionSin, sin)
	c.Compose(operand, functionCos, cos)
}

// Tan stores the tangent of operand into result.
func (c *Compiler) Tan(operand, result []float64) {
	function := make([]float64, 1+c.order)
	t := math.Tan(operand[0])
	function[0] = t

	if c.order > 0 {
		// the nth derivative of tan is P_n(tan(x)) where P_n is a degree
		// n+1 polynomial with the parity of n+1:
		// P_0(t) = t, P_1(t) = 1 + t^2, P_n(t) = (1+t^2) P_(n-1)'(t)
		// thanks to the parity, P_(n-1) and P_n can share one array
		p := make([]float64, c.order+2)
		p[1] = 1
		t2 := t * t
		for n := 1; n <= c.order; n++ {
			v := 0.0
			p[n+1] = float64(n) * p[n]
			for k := n + 1; k >= 0; k -= 2 {
				v = v*t2 + p[k]
				if k > 2 {
					p[k-2] = float64(k-1)*p[k-1] + float64(k-3)*p[k-3]
				} else if k == 2 {
					p[0] = p[1]
				}
			}
			if n&0x1 == 0 {
				v *= t
			}
			function[n] = v
		}
	}

	c.Compose(operand, function, result)
}

// Acos stores the arc cosine of operand into result.
func (c *Compiler) Acos(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Acos(x)
	if c.order > 0 {
		// the nth derivative of acos is P_n(x) / (1-x^2)^((2n-1)/2) where
		// P_n is a degree n-1 polynomial with the parity of n-1:
		// P_1(x) = -1, P_n(x) = (1-x^2) P_(n-1)'(x) + (2n-3) x P_(n-1)(x)
		p := make([]float64, c.order)
		p[0] = -1
		x2 := x * x
		f := 1.0 / (1 - x2)
		coeff := math.Sqrt(f)
		function[1] = coeff * p[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			p[n-1] = float64(n-1) * p[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + p[k]
				if k > 2 {
					p[k-2] = float64(k-1)*p[k-1] + float64(2*n-k)*p[k-3]
				} else if k == 2 {
					p[0] = p[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}

// Asin stores the arc sine of operand into result.
func (c *Compiler) Asin(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Asin(x)
	if c.order > 0 {
		// same polynomial recurrence as acos with P_1(x) = 1
		p := make([]float64, c.order)
		p[0] = 1
		x2 := x * x
		f := 1.0 / (1 - x2)
		coeff := math.Sqrt(f)
		function[1] = coeff * p[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			p[n-1] = float64(n-1) * p[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + p[k]
				if k > 2 {
					p[k-2] = float64(k-1)*p[k-1] + float64(2*n-k)*p[k-3]
				} else if k == 2 {
					p[0] = p[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}

// Atan stores the arc tangent of operand into result.
func (c *Compiler) Atan(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Atan(x)
	if c.order > 0 {
		// the nth derivative of atan is Q_n(x) / (1+x^2)^n where Q_n is a
		// degree n-1 polynomial with the parity of n-1:
		// Q_1(x) = 1, Q_n(x) = (1+x^2) Q_(n-1)'(x) - 2(n-1) x Q_(n-1)(x)
		q := make([]float64, c.order)
		q[0] = 1
		x2 := x * x
		f := 1.0 / (1 + x2)
		coeff := f
		function[1] = coeff * q[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			q[n-1] = float64(-n) * q[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + q[k]
				if k > 2 {
					q[k-2] = float64(k-1)*q[k-1] + float64(k-1-2*n)*q[k-3]
				} else if k == 2 {
					q[0] = q[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}

// Atan2 stores the two-argument arc tangent of y and x into result.
// result must not alias either input.
func (c *Compiler) Atan2(y, x, result []float64) {
	// r = sqrt(x^2+y^2)
	tmp1 := make([]float64, c.Size())
	c.Multiply(x, x, tmp1)
	tmp2 := make([]float64, c.Size())
	c.Multiply(y, y, tmp2)
	c.Add(tmp1, tmp2, tmp2)
	c.RootN(tmp2, 2, tmp1)

	if x[0] >= 0 {
		// atan2(y, x) = 2 atan(y / (r + x))
		c.Add(tmp1, x, tmp2)
		c.Divide(y, tmp2, tmp1)
		c.Atan(tmp1, tmp2)
		for i := range tmp2 {
			result[i] = 2 * tmp2[i]
		}
	} else {
		// atan2(y, x) = +/- pi - 2 atan(y / (r - x))
		c.Subtract(tmp1, x, tmp2)
		c.Divide(y, tmp2, tmp1)
		c.Atan(tmp1, tmp2)
		pi := math.Pi
		if tmp2[0] <= 0 {
			pi = -math.Pi
		}
		result[0] = pi - 2*tmp2[0]
		for i := 1; i < len(tmp2); i++ {
			result[i] = -2 * tmp2[i]
		}
	}

	// fix the value slot so the zero and infinity sign conventions of the
	// scalar atan2 are honored
	result[0] = math.Atan2(y[0], x[0])
}

// Cosh stores the hyperbolic cosine of operand into result.
func (c *Compiler) Cosh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Cosh(operand[0])
	if c.order > 0 {
		function[1] = math.Sinh(operand[0])
		for i := 2; i <= c.order; i++ {
			function[i] = function[i-2]
		}
	}
	c.Compose(operand, function, result)
}

// Sinh stores the hyperbolic sine of operand into result.
func (c *Compiler) Sinh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	function[0] = math.Sinh(operand[0])
	if c.order > 0 {
		function[1] = math.Cosh(operand[0])
		for i := 2; i <= c.order; i++ {
			function[i] = function[i-2]
		}
	}
	c.Compose(operand, function, result)
}

// SinhCosh stores the hyperbolic sine and cosine of operand into sinh and
// cosh.
func (c *Compiler) SinhCosh(operand, sinh, cosh []float64) {
	functionSinh := make([]float64, 1+c.order)
	functionCosh := make([]float64, 1+c.order)
	functionSinh[0] = math.Sinh(operand[0])
	functionCosh[0] = math.Cosh(operand[0])
	if c.order > 0 {
		functionSinh[1] = functionCosh[0]
		functionCosh[1] = functionSinh[0]
		for i := 2; i <= c.order; i++ {
			functionSinh[i] = functionSinh[i-2]
			functionCosh[i] = functionCosh[i-2]
		}
	}
	c.Compose(operand, functionSinh, sinh)
	c.Compose(operand, functionCosh, cosh)
}

// Tanh stores the hyperbolic tangent of operand into result.
func (c *Compiler) Tanh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	t := math.Tanh(operand[0])
	function[0] = t

	if c.order > 0 {
		// the nth derivative of tanh is P_n(tanh(x)) where P_n is a degree
		// n+1 polynomial with the parity of n+1:
		// P_0(t) = t, P_1(t) = 1 - t^2, P_n(t) = (1-t^2) P_(n-1)'(t)
		p := make([]float64, c.order+2)
		p[1] = 1
		t2 := t * t
		for n := 1; n <= c.order; n++ {
			v := 0.0
			p[n+1] = float64(-n) * p[n]
			for k := n + 1; k >= 0; k -= 2 {
				v = v*t2 + p[k]
				if k > 2 {
					p[k-2] = float64(k-1)*p[k-1] - float64(k-3)*p[k-3]
				} else if k == 2 {
					p[0] = p[1]
				}
			}
			if n&0x1 == 0 {
				v *= t
			}
			function[n] = v
		}
	}

	c.Compose(operand, function, result)
}

// Acosh stores the inverse hyperbolic cosine of operand into result.
func (c *Compiler) Acosh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Acosh(x)
	if c.order > 0 {
		// the nth derivative of acosh is P_n(x) / (x^2-1)^((2n-1)/2) where
		// P_n is a degree n-1 polynomial with the parity of n-1:
		// P_1(x) = 1, P_n(x) = (x^2-1) P_(n-1)'(x) - (2n-3) x P_(n-1)(x)
		p := make([]float64, c.order)
		p[0] = 1
		x2 := x * x
		f := 1.0 / (x2 - 1)
		coeff := math.Sqrt(f)
		function[1] = coeff * p[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			p[n-1] = float64(1-n) * p[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + p[k]
				if k > 2 {
					p[k-2] = float64(1-k)*p[k-1] + float64(k-2*n)*p[k-3]
				} else if k == 2 {
					p[0] = -p[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}

// Asinh stores the inverse hyperbolic sine of operand into result.
func (c *Compiler) Asinh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Asinh(x)
	if c.order > 0 {
		// the nth derivative of asinh is P_n(x) / (x^2+1)^((2n-1)/2) where
		// P_n is a degree n-1 polynomial with the parity of n-1:
		// P_1(x) = 1, P_n(x) = (x^2+1) P_(n-1)'(x) - (2n-3) x P_(n-1)(x)
		p := make([]float64, c.order)
		p[0] = 1
		x2 := x * x
		f := 1.0 / (1 + x2)
		coeff := math.Sqrt(f)
		function[1] = coeff * p[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			p[n-1] = float64(1-n) * p[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + p[k]
				if k > 2 {
					p[k-2] = float64(k-1)*p[k-1] + float64(k-2*n)*p[k-3]
				} else if k == 2 {
					p[0] = p[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}

// Atanh stores the inverse hyperbolic tangent of operand into result.
func (c *Compiler) Atanh(operand, result []float64) {
	function := make([]float64, 1+c.order)
	x := operand[0]
	function[0] = math.Atanh(x)
	if c.order > 0 {
		// the nth derivative of atanh is Q_n(x) / (1-x^2)^n where Q_n is a
		// degree n-1 polynomial with the parity of n-1:
		// Q_1(x) = 1, Q_n(x) = (1-x^2) Q_(n-1)'(x) + 2(n-1) x Q_(n-1)(x)
		q := make([]float64, c.order)
		q[0] = 1
		x2 := x * x
		f := 1.0 / (1 - x2)
		coeff := f
		function[1] = coeff * q[0]
		for n := 2; n <= c.order; n++ {
			v := 0.0
			q[n-1] = float64(n) * q[n-2]
			for k := n - 1; k >= 0; k -= 2 {
				v = v*x2 + q[k]
				if k > 2 {
					q[k-2] = float64(k-1)*q[k-1] + float64(2*n-k+1)*q[k-3]
				} else if k == 2 {
					q[0] = q[1]
				}
			}
			if n&0x1 == 0 {
				v *= x
			}
			coeff *= f
			function[n] = coeff * v
		}
	}
	c.Compose(operand, function, result)
}
