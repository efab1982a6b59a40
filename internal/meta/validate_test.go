package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/psykit/psykit/internal/ir"
)

// codes extracts the error codes of a validation result.
func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

// TestValidate_CleanKernel tests that well-formed metadata passes.
func TestValidate_CleanKernel(t *testing.T) {
	m := &ir.KernelMeta{
		Name:         "matrix_vector_kernel",
		IteratesOver: ir.IterCells,
		Args: []ir.ArgDescriptor{
			{Kind: ir.KindField, Access: ir.AccessInc, Space: "w1"},
			{Kind: ir.KindField, Access: ir.AccessRead, Space: "w3"},
			{Kind: ir.KindOperator, Access: ir.AccessRead},
		},
	}
	assert.Empty(t, Validate(m))
}

// TestValidate_CollectsAllErrors tests that every violation is reported,
// not just the first.
func TestValidate_CollectsAllErrors(t *testing.T) {
	m := &ir.KernelMeta{
		Name:         "broken",
		IteratesOver: "vertices",
		Args: []ir.ArgDescriptor{
			{Kind: ir.KindField, Access: "increment", Space: "w1"},
			{Kind: ir.KindField, Access: ir.AccessRead},
			{Kind: ir.KindField, Access: ir.AccessRead, Space: "w3",
				Stencil: &ir.Stencil{Shape: "cross", Depth: 0}},
			{Kind: ir.KindField, Access: ir.AccessRead, Space: "w0", VectorSize: 1},
		},
	}
	assert.ElementsMatch(t,
		[]string{ErrUnknownIterSpace, ErrUnknownAccess, ErrMissingSpace, ErrStencilDepth, ErrVectorSize},
		codes(Validate(m)))
}

// TestValidate_IncOnDiscontinuous tests the shared-dof increment rule.
func TestValidate_IncOnDiscontinuous(t *testing.T) {
	m := &ir.KernelMeta{
		Name:         "bad_inc",
		IteratesOver: ir.IterCells,
		Args: []ir.ArgDescriptor{
			{Kind: ir.KindField, Access: ir.AccessInc, Space: "w3"},
		},
	}
	assert.Equal(t, []string{ErrIncOnDiscontinuous}, codes(Validate(m)))
}

// TestValidate_ScalarAndStencilRules tests scalar access and stencil
// placement rules.
func TestValidate_ScalarAndStencilRules(t *testing.T) {
	m := &ir.KernelMeta{
		Name:         "bad_scalar",
		IteratesOver: ir.IterDofs,
		Args: []ir.ArgDescriptor{
			{Kind: ir.KindScalar, Access: ir.AccessWrite},
			{Kind: ir.KindScalar, Access: ir.AccessReduceSum},
			{Kind: ir.KindOperator, Access: ir.AccessRead,
				Stencil: &ir.Stencil{Shape: "cross", Depth: 1}},
		},
	}
	assert.ElementsMatch(t,
		[]string{ErrScalarAccess, ErrStencilNonField},
		codes(Validate(m)))
}

// TestValidate_NoArgs tests the empty argument list rule.
func TestValidate_NoArgs(t *testing.T) {
	m := &ir.KernelMeta{Name: "empty", IteratesOver: ir.IterCells}
	assert.Equal(t, []string{ErrKernelNoArgs}, codes(Validate(m)))
}
