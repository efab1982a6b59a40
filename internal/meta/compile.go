package meta

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/psykit/psykit/internal/ir"
)

// CompileKernel parses a CUE value into a KernelMeta.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the kernel struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`kernel: matrix_vector_kernel: { ... }`)
//	m, err := CompileKernel(v.LookupPath(cue.ParsePath("kernel.matrix_vector_kernel")))
func CompileKernel(v cue.Value) (*ir.KernelMeta, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.KernelMeta{}

	// Kernel name comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	iterVal := v.LookupPath(cue.ParsePath("iterates_over"))
	if !iterVal.Exists() {
		return nil, &CompileError{
			Field:   "iterates_over",
			Message: "iterates_over is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := iterVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m.IteratesOver = ir.IterSpace(iter)

	builtinVal := v.LookupPath(cue.ParsePath("builtin"))
	if builtinVal.Exists() {
		b, err := builtinVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Builtin = b
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return nil, &CompileError{
			Field:   "args",
			Message: "args list is required",
			Pos:     v.Pos(),
		}
	}
	argIter, err := argsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for argIter.Next() {
		desc, err := compileArg(argIter.Value())
		if err != nil {
			return nil, err
		}
		m.Args = append(m.Args, desc)
	}

	return m, nil
}

// compileArg parses one argument descriptor.
func compileArg(v cue.Value) (ir.ArgDescriptor, error) {
	var desc ir.ArgDescriptor

	kind, err := requiredString(v, "kind")
	if err != nil {
		return desc, err
	}
	desc.Kind = ir.DataKind(kind)

	access, err := requiredString(v, "access")
	if err != nil {
		return desc, err
	}
	desc.Access = ir.Access(access)

	spaceVal := v.LookupPath(cue.ParsePath("space"))
	if spaceVal.Exists() {
		space, err := spaceVal.String()
		if err != nil {
			return desc, formatCUEError(err)
		}
		desc.Space = space
	}

	stencilVal := v.LookupPath(cue.ParsePath("stencil"))
	if stencilVal.Exists() {
		shape, err := requiredString(stencilVal, "shape")
		if err != nil {
			return desc, err
		}
		depthVal := stencilVal.LookupPath(cue.ParsePath("depth"))
		if !depthVal.Exists() {
			return desc, &CompileError{
				Field:   "stencil.depth",
				Message: "stencil depth is required",
				Pos:     stencilVal.Pos(),
			}
		}
		depth, err := depthVal.Int64()
		if err != nil {
			return desc, formatCUEError(err)
		}
		desc.Stencil = &ir.Stencil{Shape: shape, Depth: int(depth)}
	}

	vectorVal := v.LookupPath(cue.ParsePath("vector"))
	if vectorVal.Exists() {
		size, err := vectorVal.Int64()
		if err != nil {
			return desc, formatCUEError(err)
		}
		desc.VectorSize = int(size)
	}

	return desc, nil
}

// requiredString reads a required string field of v.
func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
