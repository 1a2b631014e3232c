package diff

import (
	"fmt"
	"sort"
	"sync"
)

// Compiler holds the precomputed index tables for one derivative shape,
// i.e. one (free parameters, derivation order) pair. It knows how partial
// derivatives are packed into a flat coefficient array and how to combine
// two such arrays under multiplication, division and function composition.
//
// The layout and the tables follow Dan Kalman's doubly recursive approach
// (Doubly Recursive Multivariate Automatic Differentiation, Mathematics
// Magazine 75, 2002), with the recursion unrolled into indirection tables
// so that the hot operations are plain table-driven loops.
//
// Compilers are immutable once built and are shared: all values of the same
// shape use the same instance, obtained from a Registry.
//
// Guaranteed slot positions: slot 0 always holds the value. With a single
// free parameter, slot k holds the k-th derivative. At order 1, slot k
// (k >= 1) holds the partial derivative with respect to parameter k-1.
// Other layouts are fixed per compiler but not otherwise specified.
type Compiler struct {
	parameters int
	order      int

	// sizes[p][o] is the number of slots for p parameters at order o;
	// this is the Pascal-like table sizes[p][o] = C(p+o, o).
	sizes [][]int

	// derivativesOrders[slot] is the multi-index of the slot, one
	// derivation order per free parameter.
	derivativesOrders [][]int

	// derivativesOrdersSum[slot] is the total derivation order of the slot.
	derivativesOrdersSum []int

	// lowerIndirection maps the slots of the (order-1) structure into the
	// slots of this structure.
	lowerIndirection []int

	// multIndirection[slot] lists the (coeff, lhs, rhs) products feeding
	// the slot in a multiplication.
	multIndirection [][]multTerm

	// compIndirection[slot] lists the Faa di Bruno terms feeding the slot
	// in a univariate composition.
	compIndirection [][]compTerm
}

// multTerm is one product contribution a[lhs]*b[rhs], scaled by coeff, in a
// multiplication table row.
type multTerm struct {
	coeff int
	lhs   int
	rhs   int
}

// compTerm is one Faa di Bruno contribution in a composition table row:
// coeff * f[fIndex] * product of operand[dsIndices...].
type compTerm struct {
	coeff     int
	fIndex    int
	dsIndices []int
}

// shape is a cache key: a (free parameters, derivation order) pair.
type shape struct {
	parameters int
	order      int
}

// Registry caches compilers per shape. Building the tables for a shape is
// expensive and the result is immutable, so each shape is constructed
// exactly once and reused for the life of the registry. All methods are
// safe for concurrent use.
//
// Most code uses the package-level default registry through CompilerFor;
// a dedicated registry only matters for tests or for isolating cache
// growth between subsystems.
type Registry struct {
	mu        sync.Mutex
	compilers map[shape]*Compiler
	built     int

	// field descriptors share the cache discipline of the compilers
	gradientFields  map[int]*GradientField
	structureFields map[shape]*StructureField
}

// NewRegistry returns an empty compiler registry.
func NewRegistry() *Registry {
	return &Registry{
		compilers:       make(map[shape]*Compiler),
		gradientFields:  make(map[int]*GradientField),
		structureFields: make(map[shape]*StructureField),
	}
}

// Compiler returns the compiler for the given number of free parameters and
// derivation order, building and caching it on first request.
func (r *Registry) Compiler(parameters, order int) (*Compiler, error) {
	if parameters < 0 {
		return nil, fmt.Errorf("%w: negative parameter count %d", ErrOutOfRange, parameters)
	}
	if order < 0 {
		return nil, fmt.Errorf("%w: negative derivation order %d", ErrOutOfRange, order)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compilerLocked(parameters, order), nil
}

// constructions returns how many compilers this registry has built. Used by
// tests to assert the construct-once guarantee.
func (r *Registry) constructions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.built
}

// compilerLocked resolves a shape under the registry lock. A compiler for
// (p, o) is built from the compilers for (p-1, o) and (p, o-1), so the
// recursion fills the cache diagonally down to (0, 0).
func (r *Registry) compilerLocked(parameters, order int) *Compiler {
	key := shape{parameters, order}
	if c, ok := r.compilers[key]; ok {
		return c
	}

	var valueCompiler, derivativeCompiler *Compiler
	if parameters > 0 {
		valueCompiler = r.compilerLocked(parameters-1, order)
	}
	if order > 0 {
		derivativeCompiler = r.compilerLocked(parameters, order-1)
	}

	c := newCompiler(parameters, order, valueCompiler, derivativeCompiler)
	r.compilers[key] = c
	r.built++
	return c
}

var defaultRegistry = NewRegistry()

// CompilerFor returns the shared compiler for the given number of free
// parameters and derivation order from the default registry. It panics if
// either argument is negative.
func CompilerFor(parameters, order int) *Compiler {
	c, err := defaultRegistry.Compiler(parameters, order)
	if err != nil {
		panic(err)
	}
	return c
}

// newCompiler builds the full table set for one shape. valueCompiler is the
// compiler for (parameters-1, order), derivativeCompiler the one for
// (parameters, order-1); either may be nil when the corresponding dimension
// is zero.
func newCompiler(parameters, order int, valueCompiler, derivativeCompiler *Compiler) *Compiler {
	c := &Compiler{parameters: parameters, order: order}
	c.sizes = compileSizes(parameters, order, valueCompiler)
	c.derivativesOrders = compileDerivativesOrders(parameters, valueCompiler, derivativeCompiler)
	c.derivativesOrdersSum = compileDerivativesOrdersSum(c.derivativesOrders)
	c.lowerIndirection = compileLowerIndirection(parameters, order, valueCompiler, derivativeCompiler)
	c.multIndirection = compileMultIndirection(parameters, order, valueCompiler, derivativeCompiler, c.lowerIndirection)
	c.compIndirection = compileCompIndirection(parameters, order, valueCompiler, derivativeCompiler, c.sizes, c.derivativesOrders)
	return c
}

func compileSizes(parameters, order int, valueCompiler *Compiler) [][]int {
	sizes := make([][]int, parameters+1)
	for i := range sizes {
		sizes[i] = make([]int, order+1)
	}
	if parameters == 0 {
		for i := range sizes[0] {
			sizes[0][i] = 1
		}
		return sizes
	}
	for i := 0; i < parameters; i++ {
		copy(sizes[i], valueCompiler.sizes[i])
	}
	sizes[parameters][0] = 1
	for i := 0; i < order; i++ {
		sizes[parameters][i+1] = sizes[parameters][i] + sizes[parameters-1][i+1]
	}
	return sizes
}

func compileDerivativesOrders(parameters int, valueCompiler, derivativeCompiler *Compiler) [][]int {
	if valueCompiler == nil || derivativeCompiler == nil {
		// zero parameters or zero order: a single value slot
		return [][]int{make([]int, parameters)}
	}

	vSize := len(valueCompiler.derivativesOrders)
	dSize := len(derivativeCompiler.derivativesOrders)
	orders := make([][]int, vSize+dSize)

	// value part: same multi-indices, last parameter left at order 0
	for i := 0; i < vSize; i++ {
		orders[i] = make([]int, parameters)
		copy(orders[i], valueCompiler.derivativesOrders[i])
	}

	// derivative part: one more derivation with respect to the last parameter
	for i := 0; i < dSize; i++ {
		orders[vSize+i] = make([]int, parameters)
		copy(orders[vSize+i], derivativeCompiler.derivativesOrders[i])
		orders[vSize+i][parameters-1]++
	}

	return orders
}

func compileDerivativesOrdersSum(derivativesOrders [][]int) []int {
	sums := make([]int, len(derivativesOrders))
	for i, orders := range derivativesOrders {
		for _, o := range orders {
			sums[i] += o
		}
	}
	return sums
}

func compileLowerIndirection(parameters, order int, valueCompiler, derivativeCompiler *Compiler) []int {
	if parameters == 0 || order <= 1 {
		return []int{0}
	}

	// definition 6 in Kalman's paper
	vSize := len(valueCompiler.lowerIndirection)
	dSize := len(derivativeCompiler.lowerIndirection)
	lower := make([]int, vSize+dSize)
	copy(lower, valueCompiler.lowerIndirection)
	for i := 0; i < dSize; i++ {
		lower[vSize+i] = valueCompiler.Size() + derivativeCompiler.lowerIndirection[i]
	}
	return lower
}

func compileMultIndirection(parameters, order int, valueCompiler, derivativeCompiler *Compiler, lowerIndirection []int) [][]multTerm {
	if parameters == 0 || order == 0 {
		return [][]multTerm{{{coeff: 1, lhs: 0, rhs: 0}}}
	}

	// definition 3 in Kalman's paper: the value part of the product reuses
	// the lower multiplication table, the derivative part applies the
	// product rule to it
	vSize := len(valueCompiler.multIndirection)
	dSize := len(derivativeCompiler.multIndirection)
	mult := make([][]multTerm, vSize+dSize)
	copy(mult, valueCompiler.multIndirection)

	for i := 0; i < dSize; i++ {
		dRow := derivativeCompiler.multIndirection[i]
		row := make([]multTerm, 0, 2*len(dRow))
		for _, dj := range dRow {
			row = append(row,
				multTerm{coeff: dj.coeff, lhs: lowerIndirection[dj.lhs], rhs: vSize + dj.rhs},
				multTerm{coeff: dj.coeff, lhs: vSize + dj.lhs, rhs: lowerIndirection[dj.rhs]})
		}
		mult[vSize+i] = combineMultTerms(row)
	}

	return mult
}

func compileCompIndirection(parameters, order int, valueCompiler, derivativeCompiler *Compiler,
	sizes [][]int, derivativesOrders [][]int) [][]compTerm {

	if parameters == 0 || order == 0 {
		return [][]compTerm{{{coeff: 1, fIndex: 0}}}
	}

	vSize := len(valueCompiler.compIndirection)
	dSize := len(derivativeCompiler.compIndirection)
	comp := make([][]compTerm, vSize+dSize)

	// the composition rules from the value part are reused as is
	copy(comp, valueCompiler.compIndirection)

	// the rules for the derivative part are obtained by differentiating the
	// lower-order rules once with respect to the parameter the lower
	// compiler did not handle
	for i := 0; i < dSize; i++ {
		var row []compTerm
		for _, term := range derivativeCompiler.compIndirection[i] {

			// term is coeff * f_k(g(x)) * g_l1(x) * ... * g_lp(x)

			// differentiate the outer factor f_k
			derivedF := compTerm{
				coeff:     term.coeff,
				fIndex:    term.fIndex + 1,
				dsIndices: make([]int, len(term.dsIndices)+1),
			}
			orders := make([]int, parameters)
			orders[parameters-1] = 1
			derivedF.dsIndices[len(term.dsIndices)] = mustPartialDerivativeIndex(parameters, order, sizes, orders)
			for j, dsIndex := range term.dsIndices {
				// slot numbering differs between the two orders
				derivedF.dsIndices[j] = convertIndex(dsIndex, parameters,
					derivativeCompiler.derivativesOrders, parameters, order, sizes)
			}
			sort.Ints(derivedF.dsIndices)
			row = append(row, derivedF)

			// differentiate each inner factor g_l in turn
			for l := range term.dsIndices {
				derivedG := compTerm{
					coeff:     term.coeff,
					fIndex:    term.fIndex,
					dsIndices: make([]int, len(term.dsIndices)),
				}
				for j, dsIndex := range term.dsIndices {
					derivedG.dsIndices[j] = convertIndex(dsIndex, parameters,
						derivativeCompiler.derivativesOrders, parameters, order, sizes)
					if j == l {
						copy(orders, derivativesOrders[derivedG.dsIndices[j]])
						orders[parameters-1]++
						derivedG.dsIndices[j] = mustPartialDerivativeIndex(parameters, order, sizes, orders)
					}
				}
				sort.Ints(derivedG.dsIndices)
				row = append(row, derivedG)
			}
		}

		comp[vSize+i] = combineCompTerms(row)
	}

	return comp
}

// combineMultTerms merges multiplication terms addressing the same slot
// pair, summing their coefficients.
func combineMultTerms(terms []multTerm) []multTerm {
	combined := make([]multTerm, 0, len(terms))
	for j := range terms {
		if terms[j].coeff <= 0 {
			continue
		}
		for k := j + 1; k < len(terms); k++ {
			if terms[j].lhs == terms[k].lhs && terms[j].rhs == terms[k].rhs {
				terms[j].coeff += terms[k].coeff
				terms[k].coeff = 0
			}
		}
		combined = append(combined, terms[j])
	}
	return combined
}

// combineCompTerms merges composition terms with identical outer index and
// inner slot products, summing their coefficients.
func combineCompTerms(terms []compTerm) []compTerm {
	combined := make([]compTerm, 0, len(terms))
	for j := range terms {
		if terms[j].coeff <= 0 {
			continue
		}
		for k := j + 1; k < len(terms); k++ {
			if sameCompTerm(terms[j], terms[k]) {
				terms[j].coeff += terms[k].coeff
				terms[k].coeff = 0
			}
		}
		combined = append(combined, terms[j])
	}
	return combined
}

func sameCompTerm(a, b compTerm) bool {
	if a.fIndex != b.fIndex || len(a.dsIndices) != len(b.dsIndices) {
		return false
	}
	for i := range a.dsIndices {
		if a.dsIndices[i] != b.dsIndices[i] {
			return false
		}
	}
	return true
}

// partialDerivativeIndex walks Kalman's recursive structure iteratively
// (theorem 2 of the paper): each derivation with respect to parameter i
// skips the value part at the current remaining order.
func partialDerivativeIndex(parameters, order int, sizes [][]int, orders []int) (int, error) {
	index := 0
	m := order
	ordersSum := 0
	for i := parameters - 1; i >= 0; i-- {
		derivativeOrder := orders[i]
		ordersSum += derivativeOrder
		if ordersSum > order {
			return 0, fmt.Errorf("%w: total order %d exceeds %d", ErrDerivationOrderNotAllowed, ordersSum, order)
		}
		for derivativeOrder > 0 {
			derivativeOrder--
			index += sizes[i][m]
			m--
		}
	}
	return index, nil
}

// mustPartialDerivativeIndex is partialDerivativeIndex for table
// construction, where the orders are produced internally and always valid.
func mustPartialDerivativeIndex(parameters, order int, sizes [][]int, orders []int) int {
	index, err := partialDerivativeIndex(parameters, order, sizes, orders)
	if err != nil {
		panic(err)
	}
	return index
}

// convertIndex maps a slot from a source shape to the slot with the same
// multi-index in a destination shape.
func convertIndex(index, srcP int, srcDerivativesOrders [][]int, destP, destO int, destSizes [][]int) int {
	orders := make([]int, destP)
	n := srcP
	if destP < n {
		n = destP
	}
	copy(orders, srcDerivativesOrders[index][:n])
	return mustPartialDerivativeIndex(destP, destO, destSizes, orders)
}

// FreeParameters returns the number of free parameters.
func (c *Compiler) FreeParameters() int { return c.parameters }

// Order returns the maximum derivation order.
func (c *Compiler) Order() int { return c.order }

// Size returns the number of slots in a coefficient array for this shape,
// including the order-0 value slot, i.e. C(parameters+order, order).
func (c *Compiler) Size() int { return c.sizes[c.parameters][c.order] }

// PartialDerivativeIndex returns the slot of the partial derivative
// described by the given derivation orders, one per free parameter. The
// all-zero orders select slot 0, the value.
func (c *Compiler) PartialDerivativeIndex(orders ...int) (int, error) {
	if len(orders) != c.parameters {
		return 0, fmt.Errorf("%w: %d derivation orders for %d parameters", ErrDimensionMismatch, len(orders), c.parameters)
	}
	for _, o := range orders {
		if o < 0 {
			return 0, fmt.Errorf("%w: negative derivation order %d", ErrOutOfRange, o)
		}
	}
	return partialDerivativeIndex(c.parameters, c.order, c.sizes, orders)
}

// PartialDerivativeOrders returns the multi-index stored at a slot, the
// inverse of PartialDerivativeIndex.
func (c *Compiler) PartialDerivativeOrders(index int) ([]int, error) {
	if index < 0 || index >= c.Size() {
		return nil, fmt.Errorf("%w: slot %d not in [0, %d)", ErrOutOfRange, index, c.Size())
	}
	orders := make([]int, c.parameters)
	copy(orders, c.derivativesOrders[index])
	return orders, nil
}

// PartialDerivativeOrdersSum returns the total derivation order of a slot.
func (c *Compiler) PartialDerivativeOrdersSum(index int) (int, error) {
	if index < 0 || index >= c.Size() {
		return 0, fmt.Errorf("%w: slot %d not in [0, %d)", ErrOutOfRange, index, c.Size())
	}
	return c.derivativesOrdersSum[index], nil
}

// CheckCompatibility verifies that another compiler has the same shape.
func (c *Compiler) CheckCompatibility(other *Compiler) error {
	if c.parameters != other.parameters {
		return fmt.Errorf("%w: %d free parameters vs %d", ErrDimensionMismatch, c.parameters, other.parameters)
	}
	if c.order != other.order {
		return fmt.Errorf("%w: order %d vs %d", ErrDimensionMismatch, c.order, other.order)
	}
	return nil
}
