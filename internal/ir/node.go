package ir

// NodeID is an index into a Schedule's node arena.
// The zero value addresses the Schedule root; InvalidNode addresses nothing.
type NodeID int

// InvalidNode is returned by lookups that find no node.
const InvalidNode NodeID = -1

// Kind identifies the variant of a node. The set is closed: transformations
// and the analyzer switch exhaustively over it.
type Kind uint8

const (
	// KindSchedule is the root of an invocation unit. Exactly one per tree.
	KindSchedule Kind = iota

	// KindLoop is a loop over mesh entities (cells, dofs, colours or the
	// cells of one colour).
	KindLoop

	// KindKernelCall is a call to opaque user kernel code.
	KindKernelCall

	// KindBuiltinCall is a call whose semantics the compiler knows
	// (elementwise field arithmetic, reductions).
	KindBuiltinCall

	// KindDirective wraps a subtree in a shared-memory or accelerator
	// offload region.
	KindDirective

	// KindHaloExchange refreshes a field's halo before it is read.
	// Exchanges are inbound only: "make clean before read".
	KindHaloExchange

	// KindGlobalReduction combines a scalar across partitions.
	KindGlobalReduction
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSchedule:
		return "schedule"
	case KindLoop:
		return "loop"
	case KindKernelCall:
		return "kernel_call"
	case KindBuiltinCall:
		return "builtin_call"
	case KindDirective:
		return "directive"
	case KindHaloExchange:
		return "halo_exchange"
	case KindGlobalReduction:
		return "global_reduction"
	default:
		return "unknown"
	}
}

// IterSpace identifies what a Loop iterates over.
type IterSpace string

const (
	// IterCells iterates over mesh cells.
	IterCells IterSpace = "cells"
	// IterDofs iterates over degrees of freedom.
	IterDofs IterSpace = "dofs"
	// IterColours iterates over colour classes (outer loop after colouring).
	IterColours IterSpace = "colours"
	// IterColourCells iterates over the cells of one colour (inner loop
	// after colouring).
	IterColourCells IterSpace = "colour_cells"
)

// Bound is a symbolic loop upper bound. A zero Bound means "all owned
// entities". Halo=true with Depth=d means the iteration space extends d
// levels into the halo (redundant computation).
type Bound struct {
	Halo  bool `json:"halo,omitempty"`
	Depth int  `json:"depth,omitempty"`
}

// Loop is the payload of a KindLoop node.
type Loop struct {
	IterSpace IterSpace `json:"iter_space"`
	// Variable is the symbolic loop variable ("cell", "df", "colour").
	// It is what a wrapping directive declares private.
	Variable   string `json:"variable"`
	UpperBound Bound  `json:"upper_bound"`
	// ColourMap holds, on an IterColours loop, the cells of each colour
	// class as produced by the colouring engine. Nil elsewhere.
	ColourMap [][]int `json:"colour_map,omitempty"`
}

// Call is the payload of a KindKernelCall or KindBuiltinCall node.
type Call struct {
	Callee string     `json:"callee"`
	Args   []Argument `json:"args"`
	// Inline marks a kernel for in-unit inlining at the lowering stage.
	Inline bool `json:"inline,omitempty"`
}

// HaloExchange is the payload of a KindHaloExchange node.
type HaloExchange struct {
	Field string `json:"field"`
	// Depth is the exchange depth; ignored when DepthAll is set.
	Depth    int  `json:"depth"`
	DepthAll bool `json:"depth_all,omitempty"`
	// VectorComponent is the 1-based component refreshed by this exchange,
	// or 0 for a whole (non-vector) field. An exchange on component k never
	// cleans component k' != k.
	VectorComponent int `json:"vector_component,omitempty"`
	VectorSize      int `json:"vector_size,omitempty"`
}

// ReduceOp identifies a reduction operator.
type ReduceOp string

// ReduceSum is the only reduction operator the core supports.
const ReduceSum ReduceOp = "sum"

// GlobalReduction is the payload of a KindGlobalReduction node.
type GlobalReduction struct {
	Scalar string   `json:"scalar"`
	Op     ReduceOp `json:"op"`
	// Reproducible requests bit-reproducible combination at the lowering
	// stage. It does not change insertion logic.
	Reproducible bool `json:"reproducible,omitempty"`
}

// DirectiveKind identifies the flavour of a Directive node.
type DirectiveKind string

const (
	// DirOMPParallelDo is an OpenMP parallel loop directive.
	DirOMPParallelDo DirectiveKind = "omp_parallel_do"
	// DirOMPParallelDoReduction is an OpenMP parallel loop directive
	// carrying a reduction clause.
	DirOMPParallelDoReduction DirectiveKind = "omp_parallel_do_reduction"
	// DirACCParallel is an OpenACC parallel region.
	DirACCParallel DirectiveKind = "acc_parallel"
	// DirACCKernels is an OpenACC kernels region.
	DirACCKernels DirectiveKind = "acc_kernels"
)

// IsACC reports whether the directive targets an accelerator.
func (k DirectiveKind) IsACC() bool {
	return k == DirACCParallel || k == DirACCKernels
}

// Directive is the payload of a KindDirective node. Private and Reductions
// are derived from the wrapped subtree's Arguments at construction time.
type Directive struct {
	Kind DirectiveKind `json:"kind"`
	// Private lists loop variables introduced strictly inside the wrapped
	// subtree.
	Private []string `json:"private,omitempty"`
	// Reductions lists the reduce-sum scalars of the wrapped subtree,
	// each exactly once.
	Reductions []string `json:"reductions,omitempty"`
}

// node is one arena slot. Exactly one payload pointer is non-nil, matching
// kind; the root has none.
type node struct {
	kind      Kind
	parent    NodeID
	children  []NodeID
	loop      *Loop
	call      *Call
	directive *Directive
	halo      *HaloExchange
	reduction *GlobalReduction
}
