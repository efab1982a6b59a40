package transform

import "github.com/psykit/psykit/internal/ir"

// KernelInlineTrans marks a KernelCall for in-unit inlining at the
// lowering stage. The IR's argument list and access modes are untouched;
// only the call's inline flag changes.
type KernelInlineTrans struct{}

// Name implements Transformation.
func (t *KernelInlineTrans) Name() string { return "kernel_inline" }

// Validate implements Transformation.
func (t *KernelInlineTrans) Validate(s *ir.Schedule, targets []ir.NodeID) error {
	call, err := singleTarget(s, targets, t.Name(), ir.KindKernelCall, ir.KindBuiltinCall)
	if err != nil {
		return err
	}
	if s.Kind(call) == ir.KindBuiltinCall {
		return transErr(ErrCodeNotInlinable, t.Name(), call,
			"builtins have no user code to inline")
	}
	if s.Call(call).Inline {
		return transErr(ErrCodeNotInlinable, t.Name(), call, "kernel already inlined")
	}
	// A kernel inside an accelerator region is compiled for the device;
	// inlining it into host code is incompatible.
	if d := insideDirective(s, call, func(k ir.DirectiveKind) bool { return k.IsACC() }); d != ir.InvalidNode {
		return transErr(ErrCodeNotInlinable, t.Name(), call,
			"kernel is compiled for the accelerator")
	}
	return nil
}

// Apply implements Transformation.
func (t *KernelInlineTrans) Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error) {
	if err := t.Validate(s, targets); err != nil {
		return ir.InvalidNode, err
	}
	call := targets[0]
	s.Call(call).Inline = true
	return call, nil
}
