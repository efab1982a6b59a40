package transform

import "github.com/psykit/psykit/internal/ir"

// ACCRegionTrans wraps one or more contiguous sibling nodes in an OpenACC
// parallel or kernels region.
type ACCRegionTrans struct {
	kind ir.DirectiveKind
}

// Name implements Transformation.
func (t *ACCRegionTrans) Name() string { return string(t.kind) }

// Validate implements Transformation.
func (t *ACCRegionTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	if err := checkContiguousSiblings(s, targets, t.Name()); err != nil {
		return err
	}
	for _, tgt := range targets {
		switch s.Kind(tgt) {
		case ir.KindHaloExchange, ir.KindGlobalReduction:
			return transErr(ErrCodeContainsComm, t.Name(), tgt,
				"cannot offload a communication node")
		}
	}
	if err := checkNoComm(s, targets, t.Name()); err != nil {
		return err
	}
	for _, tgt := range targets {
		if d := insideDirective(s, tgt, func(k ir.DirectiveKind) bool { return k.IsACC() }); d != ir.InvalidNode {
			return transErr(ErrCodeNestedDirective, t.Name(), tgt,
				"target already inside an OpenACC region")
		}
		for id := range s.Walk(tgt) {
			if d := s.Directive(id); d != nil && d.Kind.IsACC() {
				return transErr(ErrCodeNestedDirective, t.Name(), id,
					"target already contains an OpenACC region")
			}
		}
	}
	return nil
}

// Apply implements Transformation.
func (t *ACCRegionTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}

	parent := s.Parent(targets[0])
	first := s.Position(targets[0])

	dir := s.NewDirectiveNode(ir.Directive{
		Kind:       t.kind,
		Private:    privateVars(s, targets),
		Reductions: reductionScalars(s, targets),
	})

	for _, tgt := range targets {
		if err := s.Detach(tgt); err != nil {
			return ir.InvalidNode, err
		}
	}
	if err := s.InsertChildAt(parent, first, dir); err != nil {
		return ir.InvalidNode, err
	}
	for _, tgt := range targets {
		if err := s.AppendChild(dir, tgt); err != nil {
			return ir.InvalidNode, err
		}
	}
	return dir, nil
}
