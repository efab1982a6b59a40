package transform

import (
	"fmt"
	"sort"

	"github.com/psykit/psykit/internal/colour"
	"github.com/psykit/psykit/internal/config"
	"github.com/psykit/psykit/internal/ir"
)

// Transformation is the validate/apply capability every rewrite exposes.
//
// Validate must be run against the current tree state; Apply re-validates
// defensively and returns the root of the rewritten subtree. When Validate
// returns an error the tree is guaranteed untouched.
type Transformation interface {
	// Name returns the registry name of the transformation.
	Name() string
	// Validate checks the preconditions on the target nodes.
	Validate(s *ir.Schedule, targets []ir.NodeID) error
	// Apply performs the rewrite and returns the new subtree root.
	Apply(s *ir.Schedule, targets []ir.NodeID) (ir.NodeID, error)
}

// Options carries the per-application parameters a scripted driver can set.
type Options struct {
	// Depth is the halo depth for redundant computation.
	Depth int
}

// Deps bundles what transformation factories may need: the configuration
// context and the mesh colouring works on.
type Deps struct {
	Ctx  config.Context
	Mesh *colour.QuadMesh
}

// Factory constructs a ready-to-use transformation.
type Factory func(deps Deps, opts Options) (Transformation, error)

// Spec describes one registered transformation.
type Spec struct {
	Name        string
	Description string
	New         Factory
}

// Registry maps transformation names to factories.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec, replacing any previous entry with the same name.
func (r *Registry) Register(spec Spec) {
	r.specs[spec.Name] = spec
}

// Get returns the spec for name.
func (r *Registry) Get(name string) (Spec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("unknown transformation %q", name)
	}
	return spec, nil
}

// List returns all specs sorted by name.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultRegistry returns a registry with every built-in transformation.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Spec{
		Name:        "omp_parallel_do",
		Description: "wrap a loop in an OpenMP parallel do directive",
		New: func(Deps, Options) (Transformation, error) {
			return &OMPParallelDoTrans{}, nil
		},
	})
	r.Register(Spec{
		Name:        "acc_parallel",
		Description: "wrap contiguous nodes in an OpenACC parallel region",
		New: func(Deps, Options) (Transformation, error) {
			return &ACCRegionTrans{kind: ir.DirACCParallel}, nil
		},
	})
	r.Register(Spec{
		Name:        "acc_kernels",
		Description: "wrap contiguous nodes in an OpenACC kernels region",
		New: func(Deps, Options) (Transformation, error) {
			return &ACCRegionTrans{kind: ir.DirACCKernels}, nil
		},
	})
	r.Register(Spec{
		Name:        "colour",
		Description: "rewrite an increment cells loop into a race-free colour nest",
		New: func(deps Deps, _ Options) (Transformation, error) {
			if deps.Mesh == nil {
				return nil, fmt.Errorf("colour: no mesh configured")
			}
			return &ColourTrans{Mesh: deps.Mesh}, nil
		},
	})
	r.Register(Spec{
		Name:        "redundant_computation",
		Description: "extend a loop into the halo to elide a downstream exchange",
		New: func(deps Deps, opts Options) (Transformation, error) {
			return &RedundantComputationTrans{Ctx: deps.Ctx, Depth: opts.Depth}, nil
		},
	})
	r.Register(Spec{
		Name:        "kernel_inline",
		Description: "mark a kernel for in-unit inlining",
		New: func(Deps, Options) (Transformation, error) {
			return &KernelInlineTrans{}, nil
		},
	})
	r.Register(Spec{
		Name:        "loop_fuse",
		Description: "fuse two adjacent loops with identical iteration spaces",
		New: func(Deps, Options) (Transformation, error) {
			return &LoopFuseTrans{}, nil
		},
	})
	return r
}
