package meta

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykit/psykit/internal/ir"
)

// compileString compiles a CUE source and looks up the named kernel.
func compileString(t *testing.T, src, name string) (*ir.KernelMeta, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileKernel(v.LookupPath(cue.ParsePath("kernel." + name)))
}

// TestCompileKernel_Full tests a kernel with stencil and vector arguments.
func TestCompileKernel_Full(t *testing.T) {
	m, err := compileString(t, `
kernel: stencil_kernel: {
	iterates_over: "cells"
	args: [
		{kind: "field", access: "write", space: "w3"},
		{kind: "field", access: "read", space: "w2", stencil: {shape: "cross", depth: 2}},
		{kind: "field", access: "read", space: "w0", vector: 3},
	]
}
`, "stencil_kernel")
	require.NoError(t, err)

	assert.Equal(t, "stencil_kernel", m.Name)
	assert.Equal(t, ir.IterCells, m.IteratesOver)
	assert.False(t, m.Builtin)
	require.Len(t, m.Args, 3)

	assert.Equal(t, ir.ArgDescriptor{Kind: ir.KindField, Access: ir.AccessWrite, Space: "w3"}, m.Args[0])
	require.NotNil(t, m.Args[1].Stencil)
	assert.Equal(t, ir.Stencil{Shape: "cross", Depth: 2}, *m.Args[1].Stencil)
	assert.Equal(t, 3, m.Args[2].VectorSize)
}

// TestCompileKernel_Builtin tests the builtin flag.
func TestCompileKernel_Builtin(t *testing.T) {
	m, err := compileString(t, `
kernel: x_innerproduct_y: {
	iterates_over: "dofs"
	builtin:       true
	args: [
		{kind: "scalar", access: "reduce_sum"},
		{kind: "field", access: "read", space: "any_space_1"},
		{kind: "field", access: "read", space: "any_space_1"},
	]
}
`, "x_innerproduct_y")
	require.NoError(t, err)
	assert.True(t, m.Builtin)
	assert.Equal(t, ir.IterDofs, m.IteratesOver)
}

// TestCompileKernel_MissingFields tests required-field errors.
func TestCompileKernel_MissingFields(t *testing.T) {
	_, err := compileString(t, `
kernel: broken: {
	args: [{kind: "field", access: "read", space: "w3"}]
}
`, "broken")
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "iterates_over", ce.Field)

	_, err = compileString(t, `
kernel: broken: {iterates_over: "cells"}
`, "broken")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "args", ce.Field)

	_, err = compileString(t, `
kernel: broken: {
	iterates_over: "cells"
	args: [{kind: "field", access: "read", space: "w3", stencil: {shape: "cross"}}]
}
`, "broken")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "stencil.depth", ce.Field)
}
