package transform

import "github.com/psykit/psykit/internal/ir"

// LoopFuseTrans fuses two adjacent Loops with identical iteration spaces
// and bounds into one, concatenating their bodies in order.
type LoopFuseTrans struct{}

// Name implements Transformation.
func (t *LoopFuseTrans) Name() string { return "loop_fuse" }

// Validate implements Transformation.
func (t *LoopFuseTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	if len(targets) != 2 {
		return transErr(ErrCodeBadTarget, t.Name(), ir.InvalidNode,
			"fusion takes exactly two loops")
	}
	if err := checkContiguousSiblings(s, targets, t.Name()); err != nil {
		return err
	}
	first, second := targets[0], targets[1]
	if s.Kind(first) != ir.KindLoop || s.Kind(second) != ir.KindLoop {
		return transErr(ErrCodeBadTarget, t.Name(), first, "both targets must be loops")
	}
	l1, l2 := s.Loop(first), s.Loop(second)
	if l1.IterSpace != l2.IterSpace {
		return transErr(ErrCodeFuseMismatch, t.Name(), second,
			"iteration spaces differ: "+string(l1.IterSpace)+" vs "+string(l2.IterSpace))
	}
	if l1.UpperBound != l2.UpperBound {
		return transErr(ErrCodeFuseMismatch, t.Name(), second, "loop bounds differ")
	}
	if partOfColourNest(s, first) || partOfColourNest(s, second) {
		return transErr(ErrCodeAlreadyColoured, t.Name(), first,
			"cannot fuse coloured loops")
	}
	return nil
}

// Apply implements Transformation.
func (t *LoopFuseTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}
	first, second := targets[0], targets[1]

	body := s.Children(second)
	for _, c := range body {
		if err := s.Detach(c); err != nil {
			return ir.InvalidNode, err
		}
	}
	if err := s.Detach(second); err != nil {
		return ir.InvalidNode, err
	}
	for _, c := range body {
		if err := s.AppendChild(first, c); err != nil {
			return ir.InvalidNode, err
		}
	}
	return first, nil
}
