package ir

import "fmt"

// DataKind classifies what a kernel argument names.
type DataKind string

const (
	// KindField is distributed field data with per-entity dofs.
	KindField DataKind = "field"
	// KindOperator is a local matrix assembled between two spaces.
	KindOperator DataKind = "operator"
	// KindScalar is a single value, typically a reduction target.
	KindScalar DataKind = "scalar"
)

// Access is a kernel argument's declared access mode.
type Access string

const (
	// AccessRead reads the argument only.
	AccessRead Access = "read"
	// AccessWrite overwrites the argument without reading it.
	AccessWrite Access = "write"
	// AccessReadWrite reads and writes owned entities only.
	AccessReadWrite Access = "readwrite"
	// AccessInc increments shared dofs; cell contributions to the same dof
	// race unless the loop is coloured.
	AccessInc Access = "inc"
	// AccessReduceSum accumulates into a scalar that must be globally
	// summed under distributed memory.
	AccessReduceSum Access = "reduce_sum"
)

// ParseAccess converts a metadata access string to an Access.
func ParseAccess(s string) (Access, error) {
	switch Access(s) {
	case AccessRead, AccessWrite, AccessReadWrite, AccessInc, AccessReduceSum:
		return Access(s), nil
	default:
		return "", fmt.Errorf("unknown access mode %q", s)
	}
}

// Reads reports whether the mode observes existing data.
func (a Access) Reads() bool {
	return a == AccessRead || a == AccessReadWrite || a == AccessInc
}

// Writes reports whether the mode modifies data.
func (a Access) Writes() bool {
	return a == AccessWrite || a == AccessReadWrite || a == AccessInc
}

// Stencil describes the mesh footprint a kernel reads around each entity.
type Stencil struct {
	// Shape is a symbolic tag ("cross", "region", "x1d", "y1d").
	Shape string `json:"shape"`
	// Depth is the number of cell layers the stencil extends, >= 1.
	Depth int `json:"depth"`
}

// Argument identifies one bound kernel argument. All fields are fixed when
// the Argument is attached to a Call and are never mutated afterwards;
// transformations only add, remove or restructure nodes around it.
type Argument struct {
	Name    string   `json:"name"`
	Kind    DataKind `json:"kind"`
	Access  Access   `json:"access"`
	Space   string   `json:"space,omitempty"`
	Stencil *Stencil `json:"stencil,omitempty"`
	// VectorComponent is the 1-based component accessed for a multi-
	// component field, or 0 for the whole field.
	VectorComponent int `json:"vector_component,omitempty"`
	// VectorSize is the number of components (1 for plain fields).
	VectorSize int `json:"vector_size,omitempty"`
}

// StencilDepth returns the argument's stencil depth, or 0 without a stencil.
func (a Argument) StencilDepth() int {
	if a.Stencil == nil {
		return 0
	}
	return a.Stencil.Depth
}

// components returns the number of tracked components (at least 1).
func (a Argument) components() int {
	if a.VectorSize > 1 {
		return a.VectorSize
	}
	return 1
}

// ArgDescriptor is the static per-argument metadata produced by the kernel
// metadata loader. It is the ground truth the builder consults when binding
// concrete names in an invocation.
type ArgDescriptor struct {
	Kind       DataKind `json:"kind"`
	Access     Access   `json:"access"`
	Space      string   `json:"space,omitempty"`
	Stencil    *Stencil `json:"stencil,omitempty"`
	VectorSize int      `json:"vector_size,omitempty"`
}

// KernelMeta is the compiled metadata for one kernel or builtin.
type KernelMeta struct {
	Name string `json:"name"`
	// IteratesOver is the natural iteration space of the kernel.
	IteratesOver IterSpace       `json:"iterates_over"`
	Builtin      bool            `json:"builtin,omitempty"`
	Args         []ArgDescriptor `json:"args"`
}
