package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args, capturing output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// TestRootCommand_RejectsBadFormat tests the global format flag check.
func TestRootCommand_RejectsBadFormat(t *testing.T) {
	_, err := executeCommand(t, "--format", "xml", "transforms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// TestRootCommand_HasSubcommands tests that every command is wired.
func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"compile", "validate", "transforms", "history"} {
		assert.Contains(t, names, want)
	}
}

// TestGetExitCode tests exit code extraction.
func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
