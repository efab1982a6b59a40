// Package testutil provides schedule builders shared by tests.
//
// The builders construct the small invocation shapes the analyzer and
// transformation tests reason about (write-then-read chains, increment
// loops, reductions) so individual tests stay focused on behaviour rather
// than tree assembly.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psykit/psykit/internal/ir"
)

// AddCellLoop appends a cells Loop with a single KernelCall child to the
// schedule root and returns (loop, call).
func AddCellLoop(t *testing.T, s *ir.Schedule, callee string, args ...ir.Argument) (ir.NodeID, ir.NodeID) {
	t.Helper()
	loop := s.NewLoopNode(ir.Loop{IterSpace: ir.IterCells, Variable: "cell"})
	require.NoError(t, s.AppendChild(s.Root(), loop))
	call := s.NewKernelCallNode(ir.Call{Callee: callee, Args: args})
	require.NoError(t, s.AppendChild(loop, call))
	return loop, call
}

// AddDofLoop appends a dofs Loop with a single BuiltinCall child to the
// schedule root and returns (loop, call).
func AddDofLoop(t *testing.T, s *ir.Schedule, callee string, args ...ir.Argument) (ir.NodeID, ir.NodeID) {
	t.Helper()
	loop := s.NewLoopNode(ir.Loop{IterSpace: ir.IterDofs, Variable: "df"})
	require.NoError(t, s.AppendChild(s.Root(), loop))
	call := s.NewBuiltinCallNode(ir.Call{Callee: callee, Args: args})
	require.NoError(t, s.AppendChild(loop, call))
	return loop, call
}

// FieldArg builds a plain field argument.
func FieldArg(name string, access ir.Access, space string) ir.Argument {
	return ir.Argument{Name: name, Kind: ir.KindField, Access: access, Space: space}
}

// StencilArg builds a field argument read through a stencil.
func StencilArg(name string, space, shape string, depth int) ir.Argument {
	return ir.Argument{
		Name:    name,
		Kind:    ir.KindField,
		Access:  ir.AccessRead,
		Space:   space,
		Stencil: &ir.Stencil{Shape: shape, Depth: depth},
	}
}

// ScalarSumArg builds a reduce-sum scalar argument.
func ScalarSumArg(name string) ir.Argument {
	return ir.Argument{Name: name, Kind: ir.KindScalar, Access: ir.AccessReduceSum}
}

// WriteThenReadSchedule builds the canonical two-loop dependence shape:
// Loop-1 writes field a on space w1, Loop-2 reads a through a depth-1
// stencil. Returns the schedule and the two loop ids.
func WriteThenReadSchedule(t *testing.T) (*ir.Schedule, ir.NodeID, ir.NodeID) {
	t.Helper()
	s := ir.NewSchedule("invoke_0")
	w, _ := AddCellLoop(t, s, "assemble_kernel", FieldArg("a", ir.AccessWrite, "w1"))
	r, _ := AddCellLoop(t, s, "stencil_kernel",
		StencilArg("a", "w1", "cross", 1),
		FieldArg("out", ir.AccessWrite, "w3"))
	return s, w, r
}

// IncrementSchedule builds a single cells loop whose kernel increments
// field x on a continuous space, the shape the colouring engine targets.
func IncrementSchedule(t *testing.T) (*ir.Schedule, ir.NodeID) {
	t.Helper()
	s := ir.NewSchedule("invoke_0")
	loop, _ := AddCellLoop(t, s, "matrix_vector_kernel",
		FieldArg("x", ir.AccessInc, "w1"),
		FieldArg("b", ir.AccessRead, "w3"))
	return s, loop
}

// ReductionSchedule builds a dofs loop whose builtin accumulates the inner
// product of two fields into scalar asum.
func ReductionSchedule(t *testing.T) (*ir.Schedule, ir.NodeID) {
	t.Helper()
	s := ir.NewSchedule("invoke_0")
	loop, _ := AddDofLoop(t, s, "x_innerproduct_y",
		ScalarSumArg("asum"),
		FieldArg("x", ir.AccessRead, "any_space_1"),
		FieldArg("y", ir.AccessRead, "any_space_1"))
	return s, loop
}
