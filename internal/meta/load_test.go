package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykit/psykit/internal/ir"
)

// writeMetadata writes a CUE metadata file into a fresh directory.
func writeMetadata(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kernels.cue"), []byte(src), 0o644))
	return dir
}

// TestLoadDir_CompilesKernels tests a clean metadata directory.
func TestLoadDir_CompilesKernels(t *testing.T) {
	dir := writeMetadata(t, `
kernel: {
	matrix_vector_kernel: {
		iterates_over: "cells"
		args: [
			{kind: "field", access: "inc", space: "w1"},
			{kind: "field", access: "read", space: "w3"},
		]
	}
	setval_c: {
		iterates_over: "dofs"
		builtin:       true
		args: [
			{kind: "field", access: "write", space: "any_space_1"},
			{kind: "scalar", access: "read"},
		]
	}
}
`)

	lib, errs := LoadDir(dir)
	require.Empty(t, errs)
	assert.Equal(t, []string{"matrix_vector_kernel", "setval_c"}, lib.Names())

	m, ok := lib.Lookup("matrix_vector_kernel")
	require.True(t, ok)
	assert.Equal(t, ir.IterCells, m.IteratesOver)
	assert.Equal(t, ir.AccessInc, m.Args[0].Access)
}

// TestLoadDir_CollectsValidationErrors tests that a bad kernel does not
// hide a good one.
func TestLoadDir_CollectsValidationErrors(t *testing.T) {
	dir := writeMetadata(t, `
kernel: {
	good: {
		iterates_over: "cells"
		args: [{kind: "field", access: "write", space: "w3"}]
	}
	bad: {
		iterates_over: "cells"
		args: [{kind: "field", access: "inc", space: "w3"}]
	}
}
`)

	lib, errs := LoadDir(dir)
	require.Len(t, errs, 1)
	var verr ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrIncOnDiscontinuous, verr.Code)
	assert.Contains(t, verr.Field, "kernel.bad")

	_, ok := lib.Lookup("good")
	assert.True(t, ok)
}

// TestLoadDir_PathErrors tests the directory precondition codes.
func TestLoadDir_PathErrors(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Len(t, errs, 1)
	var lerr *LoadError
	require.ErrorAs(t, errs[0], &lerr)
	assert.Equal(t, ErrCodeNotFound, lerr.Code)

	_, errs = LoadDir(t.TempDir())
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &lerr)
	assert.Equal(t, ErrCodeNoFiles, lerr.Code)
}
