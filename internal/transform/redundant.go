package transform

import (
	"fmt"

	"github.com/psykit/psykit/internal/config"
	"github.com/psykit/psykit/internal/ir"
)

// RedundantComputationTrans extends a Loop's iteration space Depth levels
// into the halo, trading redundant computation for the elimination of a
// downstream halo exchange. The caller re-runs the dependence analyzer
// afterwards; the analyzer then sees the deeper write coverage and drops
// exchanges the extension made unnecessary.
type RedundantComputationTrans struct {
	Ctx   config.Context
	Depth int
}

// Name implements Transformation.
func (t *RedundantComputationTrans) Name() string { return "redundant_computation" }

// Validate implements Transformation.
func (t *RedundantComputationTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	loop, err := singleTarget(s, targets, t.Name(), ir.KindLoop)
	if err != nil {
		return err
	}
	if !t.Ctx.DistributedMemory {
		return transErr(ErrCodeNeedsDistributedMemory, t.Name(), loop,
			"redundant computation only pays off under distributed memory")
	}
	l := s.Loop(loop)
	if l.IterSpace != ir.IterCells && l.IterSpace != ir.IterDofs {
		return transErr(ErrCodeWrongIterSpace, t.Name(), loop,
			"cannot extend a "+string(l.IterSpace)+" loop")
	}
	if partOfColourNest(s, loop) {
		return transErr(ErrCodeAlreadyColoured, t.Name(), loop,
			"colour the loop after extending it, not before")
	}
	if t.Depth < 1 || t.Depth > t.Ctx.MaxHaloDepth {
		return transErr(ErrCodeBadDepth, t.Name(), loop,
			fmt.Sprintf("depth %d outside halo range 1..%d", t.Depth, t.Ctx.MaxHaloDepth))
	}
	if l.UpperBound.Halo && l.UpperBound.Depth >= t.Depth {
		return transErr(ErrCodeBadDepth, t.Name(), loop,
			fmt.Sprintf("loop already extended to depth %d", l.UpperBound.Depth))
	}
	// Every stencil input read at the extended footprint needs its own
	// halo that much deeper; refuse extensions the mesh cannot serve.
	for _, arg := range s.Args(loop) {
		if arg.Kind != ir.KindField || !arg.Access.Reads() {
			continue
		}
		if need := arg.StencilDepth() + t.Depth; arg.Stencil != nil && need > t.Ctx.MaxHaloDepth {
			return transErr(ErrCodeBadDepth, t.Name(), loop,
				fmt.Sprintf("input '%s' would need halo depth %d, max is %d",
					arg.Name, need, t.Ctx.MaxHaloDepth))
		}
	}
	return nil
}

// Apply implements Transformation.
func (t *RedundantComputationTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}
	loop := targets[0]
	s.Loop(loop).UpperBound = ir.Bound{Halo: true, Depth: t.Depth}
	return loop, nil
}
