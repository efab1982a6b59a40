package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykit/psykit/internal/testutil"
)

// writeScript writes a script file into a temp directory.
func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// TestLoadScript_ParsesSteps tests the script format.
func TestLoadScript_ParsesSteps(t *testing.T) {
	script, err := LoadScript(writeScript(t, `
steps:
  - name: redundant_computation
    target: [0]
    options:
      depth: 2
  - name: loop_fuse
    targets: [[0], [1]]
rerun_analyzer: true
`))
	require.NoError(t, err)

	require.Len(t, script.Steps, 2)
	assert.True(t, script.RerunAnalyzer)
	assert.Equal(t, [][]int{{0}}, script.Steps[0].targetPaths())
	assert.Equal(t, 2, script.Steps[0].Options.Depth)
	assert.Equal(t, [][]int{{0}, {1}}, script.Steps[1].targetPaths())
}

// TestLoadScript_RejectsBadScripts tests the structural checks.
func TestLoadScript_RejectsBadScripts(t *testing.T) {
	_, err := LoadScript(writeScript(t, "steps: []\n"))
	assert.ErrorContains(t, err, "no steps")

	_, err = LoadScript(writeScript(t, "steps:\n  - target: [0]\n"))
	assert.ErrorContains(t, err, "no name")

	_, err = LoadScript(writeScript(t, `
steps:
  - name: colour
    target: [0]
    targets: [[1]]
`))
	assert.ErrorContains(t, err, "both target and targets")

	_, err = LoadScript(writeScript(t, "transforms:\n  - colour\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

// TestResolvePath_DescendsByChildIndex tests target resolution.
func TestResolvePath_DescendsByChildIndex(t *testing.T) {
	s, loop := testutil.IncrementSchedule(t)
	call := s.Children(loop)[0]

	got, err := resolvePath(s, []int{0})
	require.NoError(t, err)
	assert.Equal(t, loop, got)

	got, err = resolvePath(s, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, call, got)

	root, err := resolvePath(s, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Root(), root)

	_, err = resolvePath(s, []int{3})
	assert.ErrorContains(t, err, "out of range")
}

// TestFormatPath tests path rendering.
func TestFormatPath(t *testing.T) {
	assert.Equal(t, "0/2/1", formatPath([]int{0, 2, 1}))
	assert.Equal(t, "0,1", formatPaths([][]int{{0}, {1}}))
}
