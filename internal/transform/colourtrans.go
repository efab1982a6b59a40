package transform

import (
	"github.com/psykit/psykit/internal/colour"
	"github.com/psykit/psykit/internal/ir"
)

// ColourTrans rewrites a cells Loop carrying exactly one increment-access
// argument into an outer loop over colours whose body iterates the cells
// of one colour, so that no two concurrently-updated cells share a dof of
// the incremented argument's space.
type ColourTrans struct {
	Mesh *colour.QuadMesh
}

// Name implements Transformation.
func (t *ColourTrans) Name() string { return "colour" }

// Validate implements Transformation.
func (t *ColourTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	loop, err := singleTarget(s, targets, t.Name(), ir.KindLoop)
	if err != nil {
		return err
	}
	if partOfColourNest(s, loop) {
		return transErr(ErrCodeAlreadyColoured, t.Name(), loop, "loop already coloured")
	}
	l := s.Loop(loop)
	if l.IterSpace != ir.IterCells {
		return transErr(ErrCodeWrongIterSpace, t.Name(), loop,
			"colouring applies to cells loops, got "+string(l.IterSpace))
	}
	if err := checkNoComm(s, []ir.NodeID{loop}, t.Name()); err != nil {
		return err
	}
	incs := incArgs(s, loop)
	if len(incs) != 1 {
		return transErr(ErrCodeIncArgCount, t.Name(), loop,
			"colouring requires exactly one increment-access argument")
	}
	return nil
}

// Apply implements Transformation.
func (t *ColourTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}
	loop := targets[0]
	l := s.Loop(loop)
	inc := incArgs(s, loop)[0]

	colouring := colour.Greedy(t.Mesh.DofMap(inc.Space))

	body := s.Children(loop)
	for _, c := range body {
		if err := s.Detach(c); err != nil {
			return ir.InvalidNode, err
		}
	}

	outer := s.NewLoopNode(ir.Loop{
		IterSpace: ir.IterColours,
		Variable:  "colour",
		ColourMap: colouring.Classes,
	})
	// The inner loop inherits the original bounds so a halo-extended loop
	// stays halo-extended after colouring.
	inner := s.NewLoopNode(ir.Loop{
		IterSpace:  ir.IterColourCells,
		Variable:   l.Variable,
		UpperBound: l.UpperBound,
	})

	if err := s.Replace(loop, outer); err != nil {
		return ir.InvalidNode, err
	}
	if err := s.AppendChild(outer, inner); err != nil {
		return ir.InvalidNode, err
	}
	for _, c := range body {
		if err := s.AppendChild(inner, c); err != nil {
			return ir.InvalidNode, err
		}
	}
	return outer, nil
}
