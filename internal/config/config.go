// Package config loads generator options into an immutable Context.
//
// The Context is threaded explicitly through the dependence analyzer and
// every transformation; nothing in the core reads ambient process-wide
// state. Options come from a YAML file or from Default().
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MeshSpec sizes the structured mesh the colouring engine works on.
type MeshSpec struct {
	NX int `yaml:"nx"`
	NY int `yaml:"ny"`
}

// Context carries the configuration consumed by the core. It is a plain
// value: copy it freely, never mutate a shared instance.
type Context struct {
	// DistributedMemory enables halo-exchange and global-reduction
	// insertion. When false the analyzer is a no-op.
	DistributedMemory bool `yaml:"distributed_memory"`

	// ReproducibleReductions marks inserted GlobalReduction nodes as
	// bit-reproducible. Affects lowering only, never insertion logic.
	ReproducibleReductions bool `yaml:"reproducible_reductions"`

	// ReprodPadSize is passed through untouched to the lowering stage
	// (per-thread accumulator padding for reproducible sums).
	ReprodPadSize int `yaml:"reprod_pad_size"`

	// ComputeAnnexedDofs makes loops over dofs also compute annexed dofs,
	// letting the analyzer elide exchanges that would only refresh them.
	ComputeAnnexedDofs bool `yaml:"compute_annexed_dofs"`

	// MaxHaloDepth bounds redundant-computation extension. Zero means the
	// default of 2.
	MaxHaloDepth int `yaml:"max_halo_depth"`

	// Mesh sizes the structured mesh used when colouring.
	Mesh MeshSpec `yaml:"mesh"`
}

// Default returns the options used when no config file is given:
// distributed memory on, no reproducible reductions, annexed dofs not
// computed, halo depth limit 2, a 4x4 mesh.
func Default() Context {
	return Context{
		DistributedMemory: true,
		ReprodPadSize:     8,
		MaxHaloDepth:      2,
		Mesh:              MeshSpec{NX: 4, NY: 4},
	}
}

// Load reads a YAML options file, applying Default values for keys the
// file omits. Unknown keys are rejected so typos surface immediately.
func Load(path string) (Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Context{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML option bytes over the Default context.
func Parse(data []byte) (Context, error) {
	ctx := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ctx); err != nil {
		return Context{}, fmt.Errorf("parse config: %w", err)
	}
	if err := ctx.validate(); err != nil {
		return Context{}, err
	}
	return ctx, nil
}

func (c Context) validate() error {
	if c.MaxHaloDepth < 1 {
		return fmt.Errorf("config: max_halo_depth must be >= 1, got %d", c.MaxHaloDepth)
	}
	if c.Mesh.NX < 1 || c.Mesh.NY < 1 {
		return fmt.Errorf("config: mesh dimensions must be >= 1, got %dx%d", c.Mesh.NX, c.Mesh.NY)
	}
	if c.ReprodPadSize < 0 {
		return fmt.Errorf("config: reprod_pad_size must not be negative, got %d", c.ReprodPadSize)
	}
	return nil
}
