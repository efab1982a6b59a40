package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTwoLoops constructs Schedule -> [Loop[kern], Loop[builtin]] and
// returns the schedule plus the four non-root ids.
func buildTwoLoops(t *testing.T) (*Schedule, NodeID, NodeID, NodeID, NodeID) {
	t.Helper()
	s := NewSchedule("invoke_0")

	l1 := s.NewLoopNode(Loop{IterSpace: IterCells, Variable: "cell"})
	require.NoError(t, s.AppendChild(s.Root(), l1))
	k1 := s.NewKernelCallNode(Call{Callee: "testkern", Args: []Argument{
		{Name: "a", Kind: KindField, Access: AccessWrite, Space: "w1"},
	}})
	require.NoError(t, s.AppendChild(l1, k1))

	l2 := s.NewLoopNode(Loop{IterSpace: IterDofs, Variable: "df"})
	require.NoError(t, s.AppendChild(s.Root(), l2))
	b2 := s.NewBuiltinCallNode(Call{Callee: "setval_c", Args: []Argument{
		{Name: "b", Kind: KindField, Access: AccessWrite, Space: "w3"},
	}})
	require.NoError(t, s.AppendChild(l2, b2))

	return s, l1, k1, l2, b2
}

// TestWalk_PreOrder tests that Walk yields the whole tree in pre-order.
func TestWalk_PreOrder(t *testing.T) {
	s, l1, k1, l2, b2 := buildTwoLoops(t)

	var got []NodeID
	for id := range s.Walk(s.Root()) {
		got = append(got, id)
	}
	assert.Equal(t, []NodeID{s.Root(), l1, k1, l2, b2}, got)
}

// TestWalk_Restartable tests that ranging twice yields the same sequence.
func TestWalk_Restartable(t *testing.T) {
	s, _, _, _, _ := buildTwoLoops(t)

	seq := s.Walk(s.Root())
	var first, second []NodeID
	for id := range seq {
		first = append(first, id)
	}
	for id := range seq {
		second = append(second, id)
	}
	assert.Equal(t, first, second)
}

// TestWalk_EarlyStop tests that a traversal can be abandoned mid-tree.
func TestWalk_EarlyStop(t *testing.T) {
	s, l1, _, _, _ := buildTwoLoops(t)

	var got []NodeID
	for id := range s.Walk(s.Root()) {
		got = append(got, id)
		if id == l1 {
			break
		}
	}
	assert.Equal(t, []NodeID{s.Root(), l1}, got)
}

// TestAncestors_NearestFirst tests ancestor ordering from a leaf call.
func TestAncestors_NearestFirst(t *testing.T) {
	s, l1, k1, _, _ := buildTwoLoops(t)

	assert.Equal(t, []NodeID{l1, s.Root()}, s.Ancestors(k1))
	assert.Nil(t, s.Ancestors(s.Root()))
	assert.Equal(t, l1, s.Ancestor(k1, KindLoop))
	assert.Equal(t, InvalidNode, s.Ancestor(k1, KindDirective))
}

// TestPosition_AmongSiblings tests sibling indices at the top level.
func TestPosition_AmongSiblings(t *testing.T) {
	s, l1, _, l2, _ := buildTwoLoops(t)

	assert.Equal(t, 0, s.Position(l1))
	assert.Equal(t, 1, s.Position(l2))
	assert.Equal(t, 0, s.Position(s.Root()))
}

// TestInsertChildAt_Order tests inserting a halo exchange before a loop.
func TestInsertChildAt_Order(t *testing.T) {
	s, l1, _, l2, _ := buildTwoLoops(t)

	hx := s.NewHaloExchangeNode(HaloExchange{Field: "a", Depth: 1})
	require.NoError(t, s.InsertChildAt(s.Root(), s.Position(l2), hx))

	assert.Equal(t, []NodeID{l1, hx, l2}, s.Children(s.Root()))
	assert.Equal(t, s.Root(), s.Parent(hx))
}

// TestReplace_SwapsSubtree tests atomic substitution preserving position.
func TestReplace_SwapsSubtree(t *testing.T) {
	s, l1, _, l2, _ := buildTwoLoops(t)

	repl := s.NewLoopNode(Loop{IterSpace: IterColours, Variable: "colour"})
	require.NoError(t, s.Replace(l1, repl))

	assert.Equal(t, []NodeID{repl, l2}, s.Children(s.Root()))
	assert.False(t, s.Reachable(l1), "replaced subtree must be detached")
	assert.True(t, s.Reachable(repl))
	assert.Equal(t, 0, s.Position(repl))
}

// TestReplace_DetachedTarget tests that replacing an unreachable node is a
// StructureError and leaves the tree unchanged.
func TestReplace_DetachedTarget(t *testing.T) {
	s, l1, _, _, _ := buildTwoLoops(t)
	require.NoError(t, s.Detach(l1))

	before := s.Fingerprint()
	repl := s.NewLoopNode(Loop{IterSpace: IterCells, Variable: "cell"})
	err := s.Replace(l1, repl)

	require.Error(t, err)
	assert.True(t, IsStructureError(err))
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeUnreachableNode, se.Code)
	assert.Equal(t, before, s.Fingerprint(), "failed replace must not change the tree")
}

// TestReplace_AttachedReplacement tests that an already-attached subtree
// cannot be used as a replacement.
func TestReplace_AttachedReplacement(t *testing.T) {
	s, l1, _, l2, _ := buildTwoLoops(t)

	err := s.Replace(l1, l2)
	require.Error(t, err)
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotDetached, se.Code)
}

// TestDetach_Root tests that the root cannot be detached.
func TestDetach_Root(t *testing.T) {
	s, _, _, _, _ := buildTwoLoops(t)

	err := s.Detach(s.Root())
	require.Error(t, err)
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeRootImmutable, se.Code)
}

// TestDetach_KeepsSubtree tests that a detached loop keeps its children.
func TestDetach_KeepsSubtree(t *testing.T) {
	s, l1, k1, _, _ := buildTwoLoops(t)

	require.NoError(t, s.Detach(l1))
	assert.False(t, s.Reachable(k1), "child of detached loop is unreachable")
	assert.Equal(t, []NodeID{k1}, s.Children(l1), "detached subtree stays intact")
}

// TestCopy_Independent tests that mutating a copy leaves the original alone.
func TestCopy_Independent(t *testing.T) {
	s, l1, _, _, _ := buildTwoLoops(t)
	orig := s.Fingerprint()

	c := s.Copy()
	assert.Equal(t, orig, c.Fingerprint(), "copy fingerprints identically")

	require.NoError(t, c.Detach(l1))
	assert.Equal(t, orig, s.Fingerprint(), "original unaffected by copy mutation")
	assert.NotEqual(t, orig, c.Fingerprint())
}

// TestArgs_CollectsCallArguments tests pre-order argument collection.
func TestArgs_CollectsCallArguments(t *testing.T) {
	s, _, _, _, _ := buildTwoLoops(t)

	args := s.Args(s.Root())
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].Name)
	assert.Equal(t, "b", args[1].Name)
}

// TestAppendChild_UnreachableParent tests attaching under a detached parent.
func TestAppendChild_UnreachableParent(t *testing.T) {
	s, l1, _, _, _ := buildTwoLoops(t)
	require.NoError(t, s.Detach(l1))

	k := s.NewKernelCallNode(Call{Callee: "other"})
	err := s.AppendChild(l1, k)
	require.Error(t, err)
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeUnreachableNode, se.Code)
}
