package diff

import (
	"fmt"
	"math"
)

// GradientField describes the algebra of gradients with a fixed number of
// free parameters: its zero, one and pi constants. Descriptors are cached
// in the registry with the same construct-once discipline as compilers.
type GradientField struct {
	parameters int
	zero       *Gradient
	one        *Gradient
	pi         *Gradient
}

// FreeParameters returns the number of free parameters of the field.
func (f *GradientField) FreeParameters() int { return f.parameters }

// Zero returns the additive identity.
func (f *GradientField) Zero() *Gradient { return f.zero }

// One returns the multiplicative identity.
func (f *GradientField) One() *Gradient { return f.one }

// Pi returns the constant pi.
func (f *GradientField) Pi() *Gradient { return f.pi }

// GradientField returns the cached descriptor for the given number of free
// parameters, building it on first request.
func (r *Registry) GradientField(parameters int) (*GradientField, error) {
	if parameters < 0 {
		return nil, fmt.Errorf("%w: negative parameter count %d", ErrOutOfRange, parameters)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.gradientFields[parameters]; ok {
		return f, nil
	}
	f := &GradientField{
		parameters: parameters,
		zero:       NewGradientConstant(parameters, 0),
		one:        NewGradientConstant(parameters, 1),
		pi:         NewGradientConstant(parameters, math.Pi),
	}
	r.gradientFields[parameters] = f
	return f, nil
}

// GradientFieldOf returns the descriptor from the default registry. It
// panics if parameters is negative.
func GradientFieldOf(parameters int) *GradientField {
	f, err := defaultRegistry.GradientField(parameters)
	if err != nil {
		panic(err)
	}
	return f
}

// StructureField describes the algebra of derivative structures of one
// shape: its factory and its zero, one and pi constants.
type StructureField struct {
	factory *Factory
	zero    *DerivativeStructure
	one     *DerivativeStructure
	pi      *DerivativeStructure
}

// Factory returns the factory of the field's shape.
func (f *StructureField) Factory() *Factory { return f.factory }

// Zero returns the additive identity.
func (f *StructureField) Zero() *DerivativeStructure { return f.zero }

// One returns the multiplicative identity.
func (f *StructureField) One() *DerivativeStructure { return f.one }

// Pi returns the constant pi.
func (f *StructureField) Pi() *DerivativeStructure { return f.pi }

// StructureField returns the cached descriptor for the given shape,
// building it (and its compiler) on first request.
func (r *Registry) StructureField(parameters, order int) (*StructureField, error) {
	compiler, err := r.Compiler(parameters, order)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := shape{parameters, order}
	if f, ok := r.structureFields[key]; ok {
		return f, nil
	}
	factory := &Factory{compiler: compiler}
	f := &StructureField{
		factory: factory,
		zero:    factory.Constant(0),
		one:     factory.Constant(1),
		pi:      factory.Pi(),
	}
	r.structureFields[key] = f
	return f, nil
}

// StructureFieldOf returns the descriptor from the default registry. It
// panics if either argument is negative.
func StructureFieldOf(parameters, order int) *StructureField {
	f, err := defaultRegistry.StructureField(parameters, order)
	if err != nil {
		panic(err)
	}
	return f
}

// UD1Zero, UD1One, UD1Pi are the constants of the order-1 univariate
// algebra; the shape is fixed, so no registry lookup is involved.
var (
	UD1Zero = UnivariateDerivative1{}
	UD1One  = UnivariateDerivative1{f0: 1}
	UD1Pi   = UnivariateDerivative1{f0: math.Pi}
)

// UD2Zero, UD2One, UD2Pi are the constants of the order-2 univariate
// algebra.
var (
	UD2Zero = UnivariateDerivative2{}
	UD2One  = UnivariateDerivative2{f0: 1}
	UD2Pi   = UnivariateDerivative2{f0: math.Pi}
)
