package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykit/psykit/internal/ir"
)

// testLibrary builds a small library without going through CUE.
func testLibrary() *Library {
	return &Library{kernels: map[string]ir.KernelMeta{
		"matrix_vector_kernel": {
			Name:         "matrix_vector_kernel",
			IteratesOver: ir.IterCells,
			Args: []ir.ArgDescriptor{
				{Kind: ir.KindField, Access: ir.AccessInc, Space: "w1"},
				{Kind: ir.KindField, Access: ir.AccessRead, Space: "w3",
					Stencil: &ir.Stencil{Shape: "cross", Depth: 1}},
			},
		},
		"setval_c": {
			Name:         "setval_c",
			IteratesOver: ir.IterDofs,
			Builtin:      true,
			Args: []ir.ArgDescriptor{
				{Kind: ir.KindField, Access: ir.AccessWrite, Space: "any_space_1"},
				{Kind: ir.KindScalar, Access: ir.AccessRead},
			},
		},
	}}
}

// TestParseInvocation_RejectsBadInput tests the structural checks.
func TestParseInvocation_RejectsBadInput(t *testing.T) {
	_, err := ParseInvocation([]byte("calls:\n  - kernel: k\n    args: [x]\n"))
	assert.ErrorContains(t, err, "no invoke name")

	_, err = ParseInvocation([]byte("invoke: invoke_0\n"))
	assert.ErrorContains(t, err, "no calls")

	_, err = ParseInvocation([]byte("invoke: invoke_0\nkernels: []\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

// TestBuildSchedule_OneLoopPerCall tests the initial schedule shape.
func TestBuildSchedule_OneLoopPerCall(t *testing.T) {
	inv, err := ParseInvocation([]byte(`
invoke: invoke_0
calls:
  - builtin: setval_c
    args: [x, zero]
  - kernel: matrix_vector_kernel
    args: [x, b]
`))
	require.NoError(t, err)

	s, err := BuildSchedule(testLibrary(), inv)
	require.NoError(t, err)

	want := "Schedule[invoke='invoke_0']\n" +
		"    Loop[dofs, var='df', upper='owned']\n" +
		"        BuiltinCall['setval_c' write(x:any_space_1), read(zero)]\n" +
		"    Loop[cells, var='cell', upper='owned']\n" +
		"        KernelCall['matrix_vector_kernel' inc(x:w1), read(b:w3,stencil=cross(1))]\n"
	assert.Equal(t, want, s.View())
}

// TestBuildSchedule_DescriptorMismatches tests binding errors.
func TestBuildSchedule_DescriptorMismatches(t *testing.T) {
	lib := testLibrary()

	_, err := BuildSchedule(lib, &Invocation{Name: "invoke_0", Calls: []InvokeCall{
		{Kernel: "missing_kernel", Args: []string{"x"}},
	}})
	assert.ErrorContains(t, err, "unknown kernel")

	_, err = BuildSchedule(lib, &Invocation{Name: "invoke_0", Calls: []InvokeCall{
		{Kernel: "matrix_vector_kernel", Args: []string{"x"}},
	}})
	assert.ErrorContains(t, err, "takes 2 arguments")

	_, err = BuildSchedule(lib, &Invocation{Name: "invoke_0", Calls: []InvokeCall{
		{Kernel: "setval_c", Args: []string{"x", "zero"}},
	}})
	assert.ErrorContains(t, err, "is a builtin")

	_, err = BuildSchedule(lib, &Invocation{Name: "invoke_0", Calls: []InvokeCall{
		{Kernel: "matrix_vector_kernel", Builtin: "setval_c", Args: nil},
	}})
	assert.ErrorContains(t, err, "both kernel and builtin")
}

// TestBuildSchedule_CopiesStencil tests that descriptor stencils are not
// shared between built schedules.
func TestBuildSchedule_CopiesStencil(t *testing.T) {
	lib := testLibrary()
	inv := &Invocation{Name: "invoke_0", Calls: []InvokeCall{
		{Kernel: "matrix_vector_kernel", Args: []string{"x", "b"}},
	}}

	s, err := BuildSchedule(lib, inv)
	require.NoError(t, err)

	loop := s.Children(s.Root())[0]
	args := s.Args(loop)
	require.Len(t, args, 2)
	m, _ := lib.Lookup("matrix_vector_kernel")
	assert.NotSame(t, m.Args[1].Stencil, args[1].Stencil)
	assert.Equal(t, *m.Args[1].Stencil, *args[1].Stencil)
}
