package diff

import "errors"

// Engine preconditions are programmer errors, not transient faults. Query
// and conversion entry points return them wrapped with context; arithmetic
// operations panic with them, since mixing incompatible shapes in the middle
// of an expression cannot be handled locally by the caller.
var (
	// ErrDimensionMismatch signals operands or argument arrays whose
	// dimensions disagree: different shapes, a derivation orders array of
	// the wrong length, or a composition coefficient array whose length is
	// not order+1.
	ErrDimensionMismatch = errors.New("diff: dimension mismatch")

	// ErrDerivationOrderNotAllowed signals a requested derivative beyond
	// the maximum order a value carries.
	ErrDerivationOrderNotAllowed = errors.New("diff: derivation order not allowed")

	// ErrOutOfRange signals a parameter or derivative index outside the
	// valid range.
	ErrOutOfRange = errors.New("diff: index out of range")
)
