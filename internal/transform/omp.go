package transform

import "github.com/psykit/psykit/internal/ir"

// OMPParallelDoTrans wraps one Loop in an OpenMP parallel loop directive.
// When the loop accumulates reduce-sum scalars the directive becomes the
// reduction flavour and lists every reduced scalar exactly once.
type OMPParallelDoTrans struct{}

// Name implements Transformation.
func (t *OMPParallelDoTrans) Name() string { return "omp_parallel_do" }

// Validate implements Transformation.
func (t *OMPParallelDoTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	loop, err := singleTarget(s, targets, t.Name(), ir.KindLoop)
	if err != nil {
		return err
	}
	if err := checkNoComm(s, []ir.NodeID{loop}, t.Name()); err != nil {
		return err
	}
	if d := insideDirective(s, loop, func(k ir.DirectiveKind) bool { return !k.IsACC() }); d != ir.InvalidNode {
		return transErr(ErrCodeNestedDirective, t.Name(), loop,
			"loop already inside an OpenMP region")
	}
	return nil
}

// Apply implements Transformation.
func (t *OMPParallelDoTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}
	loop := targets[0]

	d := ir.Directive{
		Kind:    ir.DirOMPParallelDo,
		Private: privateVars(s, []ir.NodeID{loop}),
	}
	if reds := reductionScalars(s, []ir.NodeID{loop}); len(reds) > 0 {
		d.Kind = ir.DirOMPParallelDoReduction
		d.Reductions = reds
	}

	dir := s.NewDirectiveNode(d)
	if err := s.Replace(loop, dir); err != nil {
		return ir.InvalidNode, err
	}
	if err := s.AppendChild(dir, loop); err != nil {
		return ir.InvalidNode, err
	}
	return dir, nil
}
