package meta

import (
	"fmt"

	"github.com/psykit/psykit/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrKernelNoArgs       = "E101" // at least one argument required
	ErrUnknownIterSpace   = "E102" // iterates_over not cells or dofs
	ErrUnknownAccess      = "E103" // unrecognised access mode
	ErrUnknownKind        = "E104" // unrecognised argument kind
	ErrMissingSpace       = "E105" // field argument without a function space
	ErrStencilDepth       = "E106" // stencil depth < 1
	ErrVectorSize         = "E107" // vector size < 2
	ErrIncOnDiscontinuous = "E108" // inc access on a discontinuous space
	ErrScalarAccess       = "E109" // scalar access other than read/reduce_sum
	ErrStencilNonField    = "E110" // stencil on a non-field argument
)

// ValidationError represents a metadata validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled KernelMeta against the argument rules.
// Returns all errors found (does not fail-fast).
func Validate(m *ir.KernelMeta) []ValidationError {
	var errs []ValidationError

	if len(m.Args) == 0 {
		errs = append(errs, ValidationError{
			Field:   "args",
			Message: fmt.Sprintf("kernel %q has no arguments", m.Name),
			Code:    ErrKernelNoArgs,
		})
	}

	switch m.IteratesOver {
	case ir.IterCells, ir.IterDofs:
	default:
		errs = append(errs, ValidationError{
			Field:   "iterates_over",
			Message: fmt.Sprintf("unknown iteration space %q", m.IteratesOver),
			Code:    ErrUnknownIterSpace,
		})
	}

	for i, arg := range m.Args {
		field := fmt.Sprintf("args[%d]", i)

		if _, err := ir.ParseAccess(string(arg.Access)); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".access",
				Message: err.Error(),
				Code:    ErrUnknownAccess,
			})
		}

		switch arg.Kind {
		case ir.KindField, ir.KindOperator, ir.KindScalar:
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown argument kind %q", arg.Kind),
				Code:    ErrUnknownKind,
			})
			continue
		}

		if arg.Kind == ir.KindField && arg.Space == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".space",
				Message: "field arguments must name a function space",
				Code:    ErrMissingSpace,
			})
		}

		if arg.Stencil != nil {
			if arg.Kind != ir.KindField {
				errs = append(errs, ValidationError{
					Field:   field + ".stencil",
					Message: fmt.Sprintf("stencil on %s argument", arg.Kind),
					Code:    ErrStencilNonField,
				})
			}
			if arg.Stencil.Depth < 1 {
				errs = append(errs, ValidationError{
					Field:   field + ".stencil.depth",
					Message: fmt.Sprintf("stencil depth must be >= 1, got %d", arg.Stencil.Depth),
					Code:    ErrStencilDepth,
				})
			}
		}

		if arg.VectorSize != 0 && arg.VectorSize < 2 {
			errs = append(errs, ValidationError{
				Field:   field + ".vector",
				Message: fmt.Sprintf("vector size must be >= 2, got %d", arg.VectorSize),
				Code:    ErrVectorSize,
			})
		}

		if arg.Kind == ir.KindField && arg.Access == ir.AccessInc &&
			ir.SpaceIsDiscontinuous(arg.Space) {
			errs = append(errs, ValidationError{
				Field:   field + ".access",
				Message: fmt.Sprintf("inc access on discontinuous space %q has no shared dofs to increment", arg.Space),
				Code:    ErrIncOnDiscontinuous,
			})
		}

		if arg.Kind == ir.KindScalar &&
			arg.Access != ir.AccessRead && arg.Access != ir.AccessReduceSum {
			errs = append(errs, ValidationError{
				Field:   field + ".access",
				Message: fmt.Sprintf("scalars are read or reduced, got %q", arg.Access),
				Code:    ErrScalarAccess,
			})
		}
	}

	return errs
}
