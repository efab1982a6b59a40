package meta

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/psykit/psykit/internal/ir"
)

// InvokeCall is one entry of an invocation's call list. Exactly one of
// Kernel or Builtin names the callee; Args binds concrete data names to
// the callee's argument descriptors, in order.
type InvokeCall struct {
	Kernel  string   `yaml:"kernel,omitempty"`
	Builtin string   `yaml:"builtin,omitempty"`
	Args    []string `yaml:"args"`
}

// Invocation is one parsed invocation file.
type Invocation struct {
	Name  string       `yaml:"invoke"`
	Calls []InvokeCall `yaml:"calls"`
}

// LoadInvocation reads and parses an invocation YAML file.
func LoadInvocation(path string) (*Invocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading invocation: %w", err)
	}
	inv, err := ParseInvocation(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

// ParseInvocation parses invocation YAML. Unknown keys are rejected.
func ParseInvocation(data []byte) (*Invocation, error) {
	var inv Invocation
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&inv); err != nil {
		return nil, fmt.Errorf("parsing invocation: %w", err)
	}
	if inv.Name == "" {
		return nil, fmt.Errorf("invocation has no invoke name")
	}
	if len(inv.Calls) == 0 {
		return nil, fmt.Errorf("invocation %q has no calls", inv.Name)
	}
	return &inv, nil
}

// BuildSchedule turns an invocation into the initial schedule: one loop
// per call, iterating the callee's natural space over owned entities,
// with the bound argument names attached to the call node.
func BuildSchedule(lib *Library, inv *Invocation) (*ir.Schedule, error) {
	s := ir.NewSchedule(inv.Name)

	for i, call := range inv.Calls {
		name, builtin, err := calleeName(call)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		m, ok := lib.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("call %d: unknown kernel %q", i, name)
		}
		if m.Builtin != builtin {
			if m.Builtin {
				return nil, fmt.Errorf("call %d: %q is a builtin, use builtin:", i, name)
			}
			return nil, fmt.Errorf("call %d: %q is a kernel, use kernel:", i, name)
		}
		if len(call.Args) != len(m.Args) {
			return nil, fmt.Errorf("call %d: %q takes %d arguments, got %d",
				i, name, len(m.Args), len(call.Args))
		}

		args := make([]ir.Argument, len(m.Args))
		for j, desc := range m.Args {
			args[j] = bindArg(call.Args[j], desc)
		}

		loop := s.NewLoopNode(ir.Loop{
			IterSpace: m.IteratesOver,
			Variable:  loopVariable(m.IteratesOver),
		})
		if err := s.AppendChild(s.Root(), loop); err != nil {
			return nil, err
		}

		c := ir.Call{Callee: name, Args: args}
		var node ir.NodeID
		if m.Builtin {
			node = s.NewBuiltinCallNode(c)
		} else {
			node = s.NewKernelCallNode(c)
		}
		if err := s.AppendChild(loop, node); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// calleeName resolves the kernel-or-builtin choice of one call.
func calleeName(call InvokeCall) (name string, builtin bool, err error) {
	switch {
	case call.Kernel != "" && call.Builtin != "":
		return "", false, fmt.Errorf("both kernel and builtin named")
	case call.Kernel != "":
		return call.Kernel, false, nil
	case call.Builtin != "":
		return call.Builtin, true, nil
	default:
		return "", false, fmt.Errorf("neither kernel nor builtin named")
	}
}

// bindArg instantiates a descriptor with a concrete argument name.
func bindArg(name string, desc ir.ArgDescriptor) ir.Argument {
	arg := ir.Argument{
		Name:       name,
		Kind:       desc.Kind,
		Access:     desc.Access,
		Space:      desc.Space,
		VectorSize: desc.VectorSize,
	}
	if desc.Stencil != nil {
		st := *desc.Stencil
		arg.Stencil = &st
	}
	return arg
}

// loopVariable names the induction variable for an iteration space.
func loopVariable(space ir.IterSpace) string {
	if space == ir.IterDofs {
		return "df"
	}
	return "cell"
}
