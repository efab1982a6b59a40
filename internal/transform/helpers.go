package transform

import "github.com/psykit/psykit/internal/ir"

// singleTarget unwraps a one-element target list of the required kinds.
func singleTarget(s *ir.Schedule, targets []ir.NodeID, trans string, kinds ...ir.Kind) (ir.NodeID, error) {
	if len(targets) != 1 {
		return ir.InvalidNode, transErr(ErrCodeBadTarget, trans, ir.InvalidNode,
			"exactly one target node required")
	}
	id := targets[0]
	if !s.Reachable(id) {
		return ir.InvalidNode, transErr(ErrCodeBadTarget, trans, id,
			"target not attached to schedule")
	}
	for _, k := range kinds {
		if s.Kind(id) == k {
			return id, nil
		}
	}
	return ir.InvalidNode, transErr(ErrCodeBadTarget, trans, id,
		"target has kind "+s.Kind(id).String())
}

// checkNoComm fails when the subtree rooted at any target contains a
// HaloExchange or GlobalReduction node. Communication stays outside
// directive regions.
func checkNoComm(s *ir.Schedule, targets []ir.NodeID, trans string) error {
	for _, t := range targets {
		for id := range s.Walk(t) {
			switch s.Kind(id) {
			case ir.KindHaloExchange, ir.KindGlobalReduction:
				return transErr(ErrCodeContainsComm, trans, id,
					"subtree contains a communication node")
			}
		}
	}
	return nil
}

// checkContiguousSiblings fails unless the targets are distinct siblings
// occupying consecutive positions under one parent, in order.
func checkContiguousSiblings(s *ir.Schedule, targets []ir.NodeID, trans string) error {
	if len(targets) == 0 {
		return transErr(ErrCodeBadTarget, trans, ir.InvalidNode, "no target nodes")
	}
	parent := s.Parent(targets[0])
	for _, t := range targets {
		if !s.Reachable(t) {
			return transErr(ErrCodeBadTarget, trans, t, "target not attached to schedule")
		}
	}
	prev := s.Position(targets[0])
	for _, t := range targets[1:] {
		if s.Parent(t) != parent {
			return transErr(ErrCodeNotContiguous, trans, t, "targets have different parents")
		}
		if s.Position(t) != prev+1 {
			return transErr(ErrCodeNotContiguous, trans, t, "targets are not consecutive siblings")
		}
		prev++
	}
	return nil
}

// insideDirective returns the nearest enclosing directive of id matching
// the predicate, or InvalidNode.
func insideDirective(s *ir.Schedule, id ir.NodeID, match func(ir.DirectiveKind) bool) ir.NodeID {
	for _, a := range s.Ancestors(id) {
		if d := s.Directive(a); d != nil && match(d.Kind) {
			return a
		}
	}
	return ir.InvalidNode
}

// reductionScalars returns the reduce-sum scalars of the targets'
// subtrees, each exactly once, in first-seen order.
func reductionScalars(s *ir.Schedule, targets []ir.NodeID) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		for _, arg := range s.Args(t) {
			if arg.Access == ir.AccessReduceSum && !seen[arg.Name] {
				seen[arg.Name] = true
				out = append(out, arg.Name)
			}
		}
	}
	return out
}

// privateVars returns the loop variables introduced strictly inside the
// targets' subtrees, each exactly once, in first-seen order.
func privateVars(s *ir.Schedule, targets []ir.NodeID) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		for id := range s.Walk(t) {
			if l := s.Loop(id); l != nil && l.Variable != "" && !seen[l.Variable] {
				seen[l.Variable] = true
				out = append(out, l.Variable)
			}
		}
	}
	return out
}

// incArgs returns the increment-access field arguments in the subtree.
func incArgs(s *ir.Schedule, id ir.NodeID) []ir.Argument {
	var out []ir.Argument
	for _, arg := range s.Args(id) {
		if arg.Access == ir.AccessInc && arg.Kind == ir.KindField {
			out = append(out, arg)
		}
	}
	return out
}

// partOfColourNest reports whether id is a colour loop or sits inside one.
func partOfColourNest(s *ir.Schedule, id ir.NodeID) bool {
	check := func(n ir.NodeID) bool {
		l := s.Loop(n)
		return l != nil && (l.IterSpace == ir.IterColours || l.IterSpace == ir.IterColourCells)
	}
	if check(id) {
		return true
	}
	for _, a := range s.Ancestors(id) {
		if check(a) {
			return true
		}
	}
	return false
}
