package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psykit/psykit/internal/ir"
)

// ScriptStep is one scripted transformation application. Target is the
// child-index path of the target node from the schedule root; multi-node
// transformations (acc regions, fusion) list one path per target.
type ScriptStep struct {
	Name    string        `yaml:"name"`
	Target  []int         `yaml:"target,omitempty"`
	Targets [][]int       `yaml:"targets,omitempty"`
	Options ScriptOptions `yaml:"options,omitempty"`
}

// ScriptOptions carries per-step parameters.
type ScriptOptions struct {
	Depth int `yaml:"depth,omitempty"`
}

// Script is a parsed transformation script.
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
	// RerunAnalyzer re-runs dependence analysis after the steps, so
	// extensions like redundant computation get their exchanges elided.
	RerunAnalyzer bool `yaml:"rerun_analyzer,omitempty"`
}

// LoadScript reads and parses a transformation script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("script %s has no steps", path)
	}
	for i, step := range script.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("script %s: step %d has no name", path, i)
		}
		if len(step.Target) > 0 && len(step.Targets) > 0 {
			return nil, fmt.Errorf("script %s: step %d sets both target and targets", path, i)
		}
	}
	return &script, nil
}

// targetPaths returns the step's target paths, normalising the single
// target form.
func (s ScriptStep) targetPaths() [][]int {
	if len(s.Targets) > 0 {
		return s.Targets
	}
	if len(s.Target) > 0 {
		return [][]int{s.Target}
	}
	return nil
}

// resolvePath descends the schedule by child indices from the root.
func resolvePath(s *ir.Schedule, path []int) (ir.NodeID, error) {
	id := s.Root()
	for _, idx := range path {
		children := s.Children(id)
		if idx < 0 || idx >= len(children) {
			return ir.InvalidNode, fmt.Errorf("path %s: index %d out of range (%d children)",
				formatPath(path), idx, len(children))
		}
		id = children[idx]
	}
	return id, nil
}

// formatPath renders a child-index path for provenance and messages.
func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "/")
}

// formatPaths renders all of a step's paths.
func formatPaths(paths [][]int) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = formatPath(p)
	}
	return strings.Join(parts, ",")
}
