package ir

import (
	"fmt"
	"strings"
)

// View renders the tree as an indented text outline, one node per line.
// The output is deterministic and is what the CLI prints and the golden
// tests pin down; lowering to actual source text is not this package's job.
func (s *Schedule) View() string {
	var b strings.Builder
	s.viewNode(&b, 0, 0)
	return b.String()
}

func (s *Schedule) viewNode(b *strings.Builder, id NodeID, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(s.describe(id))
	b.WriteByte('\n')
	for _, c := range s.nodes[id].children {
		s.viewNode(b, c, depth+1)
	}
}

// describe returns the single-line description of one node.
func (s *Schedule) describe(id NodeID) string {
	n := &s.nodes[id]
	switch n.kind {
	case KindSchedule:
		return fmt.Sprintf("Schedule[invoke='%s']", s.Name)
	case KindLoop:
		return fmt.Sprintf("Loop[%s, var='%s', upper='%s']",
			n.loop.IterSpace, n.loop.Variable, boundString(n.loop.UpperBound))
	case KindKernelCall:
		return fmt.Sprintf("KernelCall['%s' %s]", n.call.Callee, argsString(n.call.Args))
	case KindBuiltinCall:
		return fmt.Sprintf("BuiltinCall['%s' %s]", n.call.Callee, argsString(n.call.Args))
	case KindDirective:
		return directiveString(n.directive)
	case KindHaloExchange:
		return haloString(n.halo)
	case KindGlobalReduction:
		r := n.reduction
		if r.Reproducible {
			return fmt.Sprintf("GlobalReduction[scalar='%s', op=%s, reproducible]", r.Scalar, r.Op)
		}
		return fmt.Sprintf("GlobalReduction[scalar='%s', op=%s]", r.Scalar, r.Op)
	default:
		return "Unknown[]"
	}
}

func boundString(b Bound) string {
	if b.Halo {
		return fmt.Sprintf("halo(%d)", b.Depth)
	}
	return "owned"
}

func argsString(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		name := a.Name
		if a.VectorComponent > 0 {
			name = fmt.Sprintf("%s%%%d", a.Name, a.VectorComponent)
		}
		desc := string(a.Access) + "(" + name
		if a.Space != "" {
			desc += ":" + a.Space
		}
		if a.Stencil != nil {
			desc += fmt.Sprintf(",stencil=%s(%d)", a.Stencil.Shape, a.Stencil.Depth)
		}
		parts[i] = desc + ")"
	}
	return strings.Join(parts, ", ")
}

func directiveString(d *Directive) string {
	desc := "Directive[" + string(d.Kind)
	if len(d.Private) > 0 {
		desc += ", private=[" + strings.Join(d.Private, ",") + "]"
	}
	if len(d.Reductions) > 0 {
		desc += ", reduction=[" + strings.Join(d.Reductions, ",") + "]"
	}
	return desc + "]"
}

func haloString(h *HaloExchange) string {
	depth := fmt.Sprintf("%d", h.Depth)
	if h.DepthAll {
		depth = "all"
	}
	if h.VectorComponent > 0 {
		return fmt.Sprintf("HaloExchange[field='%s', component=%d/%d, depth=%s]",
			h.Field, h.VectorComponent, h.VectorSize, depth)
	}
	return fmt.Sprintf("HaloExchange[field='%s', depth=%s]", h.Field, depth)
}
