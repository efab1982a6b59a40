package deps

import (
	"sort"

	"github.com/psykit/psykit/internal/config"
	"github.com/psykit/psykit/internal/ir"
)

// Analyzer inserts and elides communication nodes for one Schedule.
// It is stateless between runs; all tracking lives on the stack of Run.
type Analyzer struct {
	ctx config.Context
}

// New creates an Analyzer with the given configuration context.
func New(ctx config.Context) *Analyzer {
	return &Analyzer{ctx: ctx}
}

// fieldKey identifies one tracked unit of field data: a whole field, or a
// single component of a vector field (comp is 1-based; 0 = whole field).
type fieldKey struct {
	field string
	comp  int
}

// cleanState records how clean one field component currently is.
// depth is the halo depth known clean; annexed reports whether the annexed
// dofs are clean independently of halo depth.
type cleanState struct {
	depth   int
	annexed bool
}

// requirement is what reads in one compute unit demand of a field
// component before the unit may run.
type requirement struct {
	depth   int  // deepest stencil read, 0 if none
	annexed bool // reads annexed dofs of a continuous field
	vecSize int  // vector size of the field, for exchange bookkeeping
}

// Run analyzes the Schedule and inserts or elides HaloExchange and
// GlobalReduction nodes in place. Without distributed memory configured it
// only checks access/space consistency and inserts nothing.
//
// Run is idempotent: a second invocation on the tree it produced changes
// nothing.
func (a *Analyzer) Run(s *ir.Schedule) error {
	if err := a.checkAccess(s); err != nil {
		return err
	}
	if !a.ctx.DistributedMemory {
		return nil
	}

	// Snapshot the compute units before any insertion moves siblings.
	var units []ir.NodeID
	for _, c := range s.Children(s.Root()) {
		switch s.Kind(c) {
		case ir.KindHaloExchange, ir.KindGlobalReduction:
			// Communication nodes are re-derived, not units themselves.
		default:
			units = append(units, c)
		}
	}

	state := make(map[fieldKey]cleanState)
	for _, unit := range units {
		if err := a.placeExchanges(s, unit, state); err != nil {
			return err
		}
		a.recordWrites(s, unit, state)
		if err := a.placeReductions(s, unit); err != nil {
			return err
		}
	}
	return nil
}

// checkAccess rejects argument access modes that contradict their declared
// space or data kind, anywhere in the tree.
func (a *Analyzer) checkAccess(s *ir.Schedule) error {
	for id := range s.Walk(s.Root()) {
		c := s.Call(id)
		if c == nil {
			continue
		}
		for _, arg := range c.Args {
			switch {
			case arg.Access == ir.AccessInc && arg.Kind == ir.KindField &&
				ir.SpaceIsDiscontinuous(arg.Space):
				return &DependenceError{
					Code: ErrCodeIncOnDiscontinuous, Field: arg.Name, Space: arg.Space,
					Access: arg.Access, Callee: c.Callee, Node: id,
				}
			case arg.Access == ir.AccessReduceSum && arg.Kind != ir.KindScalar:
				return &DependenceError{
					Code: ErrCodeReduceNonScalar, Field: arg.Name, Space: arg.Space,
					Access: arg.Access, Callee: c.Callee, Node: id,
				}
			case arg.Stencil != nil && arg.Kind != ir.KindField:
				return &DependenceError{
					Code: ErrCodeStencilOnNonField, Field: arg.Name, Space: arg.Space,
					Access: arg.Access, Callee: c.Callee, Node: id,
				}
			}
		}
	}
	return nil
}

// forEachCall visits every call in the subtree rooted at id along with its
// nearest enclosing Loop payload inside that subtree (nil when the call is
// not inside a loop).
func forEachCall(s *ir.Schedule, id ir.NodeID, visit func(call ir.NodeID, c *ir.Call, loop *ir.Loop)) {
	var rec func(n ir.NodeID, loop *ir.Loop)
	rec = func(n ir.NodeID, loop *ir.Loop) {
		if l := s.Loop(n); l != nil {
			loop = l
		}
		if c := s.Call(n); c != nil {
			visit(n, c, loop)
		}
		for _, child := range s.Children(n) {
			rec(child, loop)
		}
	}
	rec(id, nil)
}

// componentKeys expands an argument into the field components it touches.
func componentKeys(arg ir.Argument) []fieldKey {
	if arg.VectorSize > 1 {
		if arg.VectorComponent > 0 {
			return []fieldKey{{arg.Name, arg.VectorComponent}}
		}
		keys := make([]fieldKey, arg.VectorSize)
		for i := range keys {
			keys[i] = fieldKey{arg.Name, i + 1}
		}
		return keys
	}
	return []fieldKey{{arg.Name, 0}}
}

// requirements collects what the unit's reads demand per field component.
func (a *Analyzer) requirements(s *ir.Schedule, unit ir.NodeID) map[fieldKey]requirement {
	reqs := make(map[fieldKey]requirement)
	forEachCall(s, unit, func(_ ir.NodeID, c *ir.Call, loop *ir.Loop) {
		boundDepth := 0
		if loop != nil && loop.UpperBound.Halo {
			boundDepth = loop.UpperBound.Depth
		}
		for _, arg := range c.Args {
			if arg.Kind != ir.KindField || !arg.Access.Reads() {
				continue
			}
			// A loop extended boundDepth levels into the halo reads every
			// field that far out, plus any stencil on top of that.
			depth := arg.StencilDepth()
			if depth > 0 || boundDepth > 0 {
				depth += boundDepth
			}
			annexed := false
			if depth == 0 {
				// A cell kernel reading a continuous field touches the
				// annexed dofs on the boundary of the owned cells.
				if loop != nil && (loop.IterSpace == ir.IterCells || loop.IterSpace == ir.IterColourCells) &&
					!ir.SpaceIsDiscontinuous(arg.Space) {
					annexed = true
				}
			}
			if depth == 0 && !annexed {
				continue
			}
			for _, key := range componentKeys(arg) {
				r := reqs[key]
				if depth > r.depth {
					r.depth = depth
				}
				r.annexed = r.annexed || annexed
				r.vecSize = arg.VectorSize
				reqs[key] = r
			}
		}
	})
	return reqs
}

// placeExchanges reconciles the HaloExchange nodes directly before unit
// with what the unit's reads require given the current state: required
// exchanges are kept or inserted, stale ones are detached.
func (a *Analyzer) placeExchanges(s *ir.Schedule, unit ir.NodeID, state map[fieldKey]cleanState) error {
	reqs := a.requirements(s, unit)

	// The contiguous run of exchanges directly before unit belongs to it.
	existing := precedingExchanges(s, unit)
	used := make(map[ir.NodeID]bool)

	keys := make([]fieldKey, 0, len(reqs))
	for k := range reqs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].field != keys[j].field {
			return keys[i].field < keys[j].field
		}
		return keys[i].comp < keys[j].comp
	})

	for _, key := range keys {
		req := reqs[key]
		st := state[key]

		needDepth := 0
		if req.depth > st.depth {
			needDepth = req.depth
		}
		if req.annexed && !st.annexed && st.depth < 1 && needDepth < 1 {
			// Annexed dofs are refreshed by any depth-1 exchange.
			needDepth = 1
		}
		if needDepth == 0 {
			continue // already clean: elide
		}

		if id := findExchange(s, existing, used, key, needDepth); id != ir.InvalidNode {
			used[id] = true
			hx := s.Halo(id)
			st.depth = hx.Depth
			if hx.DepthAll {
				st.depth = a.ctx.MaxHaloDepth
			}
		} else {
			nid := s.NewHaloExchangeNode(ir.HaloExchange{
				Field:           key.field,
				Depth:           needDepth,
				VectorComponent: key.comp,
				VectorSize:      req.vecSize,
			})
			if err := s.InsertChildAt(s.Parent(unit), s.Position(unit), nid); err != nil {
				return err
			}
			used[nid] = true
			st.depth = needDepth
		}
		st.annexed = st.depth >= 1
		state[key] = st
	}

	// Anything left in the run is no longer required.
	for _, id := range existing {
		if !used[id] {
			if err := s.Detach(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// precedingExchanges returns the contiguous HaloExchange siblings directly
// before unit, in tree order.
func precedingExchanges(s *ir.Schedule, unit ir.NodeID) []ir.NodeID {
	siblings := s.Children(s.Parent(unit))
	pos := s.Position(unit)
	var run []ir.NodeID
	for i := pos - 1; i >= 0; i-- {
		if s.Kind(siblings[i]) != ir.KindHaloExchange {
			break
		}
		run = append([]ir.NodeID{siblings[i]}, run...)
	}
	return run
}

// findExchange locates an unused exchange in the run that covers the
// required depth for key.
func findExchange(s *ir.Schedule, run []ir.NodeID, used map[ir.NodeID]bool, key fieldKey, depth int) ir.NodeID {
	for _, id := range run {
		if used[id] {
			continue
		}
		hx := s.Halo(id)
		if hx.Field == key.field && hx.VectorComponent == key.comp &&
			(hx.DepthAll || hx.Depth >= depth) {
			return id
		}
	}
	return ir.InvalidNode
}

// recordWrites folds the unit's writes into the clean-depth state.
func (a *Analyzer) recordWrites(s *ir.Schedule, unit ir.NodeID, state map[fieldKey]cleanState) {
	forEachCall(s, unit, func(_ ir.NodeID, c *ir.Call, loop *ir.Loop) {
		for _, arg := range c.Args {
			if arg.Kind != ir.KindField || !arg.Access.Writes() {
				continue
			}
			st := cleanState{}
			if loop != nil && loop.UpperBound.Halo {
				// Redundant computation: the writer itself refreshed the
				// halo out to its extended footprint.
				st.depth = loop.UpperBound.Depth
			}
			switch {
			case ir.SpaceIsDiscontinuous(arg.Space):
				// No shared dofs, so there is nothing annexed to dirty.
				st.annexed = true
			case loop != nil && (loop.IterSpace == ir.IterCells || loop.IterSpace == ir.IterColourCells):
				// A cells loop writes every dof of its owned cells,
				// annexed ones included.
				st.annexed = true
			case loop != nil && loop.IterSpace == ir.IterDofs:
				st.annexed = a.ctx.ComputeAnnexedDofs
			}
			if st.depth >= 1 {
				st.annexed = true
			}
			for _, key := range componentKeys(arg) {
				state[key] = st
			}
		}
	})
}

// placeReductions reconciles the GlobalReduction nodes directly after unit
// with the reduce-sum scalars its calls accumulate.
func (a *Analyzer) placeReductions(s *ir.Schedule, unit ir.NodeID) error {
	var scalars []string
	seen := make(map[string]bool)
	forEachCall(s, unit, func(_ ir.NodeID, c *ir.Call, _ *ir.Loop) {
		for _, arg := range c.Args {
			if arg.Access == ir.AccessReduceSum && !seen[arg.Name] {
				seen[arg.Name] = true
				scalars = append(scalars, arg.Name)
			}
		}
	})

	existing := followingReductions(s, unit)
	used := make(map[ir.NodeID]bool)

	inserted := 0
	for _, scalar := range scalars {
		reused := false
		for _, id := range existing {
			if !used[id] && s.Reduction(id).Scalar == scalar {
				used[id] = true
				reused = true
				break
			}
		}
		if reused {
			continue
		}
		nid := s.NewGlobalReductionNode(ir.GlobalReduction{
			Scalar:       scalar,
			Op:           ir.ReduceSum,
			Reproducible: a.ctx.ReproducibleReductions,
		})
		if err := s.InsertChildAt(s.Parent(unit), s.Position(unit)+1+inserted, nid); err != nil {
			return err
		}
		inserted++
	}

	for _, id := range existing {
		if !used[id] {
			if err := s.Detach(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// followingReductions returns the contiguous GlobalReduction siblings
// directly after unit, in tree order.
func followingReductions(s *ir.Schedule, unit ir.NodeID) []ir.NodeID {
	siblings := s.Children(s.Parent(unit))
	var run []ir.NodeID
	for i := s.Position(unit) + 1; i < len(siblings); i++ {
		if s.Kind(siblings[i]) != ir.KindGlobalReduction {
			break
		}
		run = append(run, siblings[i])
	}
	return run
}
