package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore opens a store in a temp directory and closes it with the test.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "provenance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestOpen_Idempotent tests that reopening an existing database works.
func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

// TestWriteReadRun_RoundTrip tests the run log round trip.
func TestWriteReadRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := NewRun("invoke_0", "sha256:abc")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	require.NoError(t, s.WriteRun(ctx, run))

	steps := []Step{
		{RunID: run.ID, Position: 0, Name: "redundant_computation", Target: "0", HashAfter: "sha256:def"},
		{RunID: run.ID, Position: 1, Name: "colour", Target: "0", HashAfter: "sha256:abc"},
	}
	require.NoError(t, s.WriteSteps(ctx, steps))

	runs, err := s.ReadRuns(ctx, "invoke_0")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "sha256:abc", runs[0].ScheduleHash)
	assert.WithinDuration(t, run.CreatedAt, runs[0].CreatedAt, time.Second)

	got, err := s.ReadSteps(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, steps, got)
}

// TestWriteRun_DuplicateIgnored tests insert idempotency.
func TestWriteRun_DuplicateIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := NewRun("invoke_0", "sha256:abc")
	require.NoError(t, err)
	require.NoError(t, s.WriteRun(ctx, run))
	require.NoError(t, s.WriteRun(ctx, run))

	runs, err := s.ReadRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// TestReadRuns_FiltersByInvoke tests invoke filtering and ordering.
func TestReadRuns_FiltersByInvoke(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, invoke := range []string{"invoke_0", "invoke_1", "invoke_0"} {
		run, err := NewRun(invoke, "sha256:x")
		require.NoError(t, err)
		require.NoError(t, s.WriteRun(ctx, run))
	}

	runs, err := s.ReadRuns(ctx, "invoke_0")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// UUIDv7 ids sort by creation time, so newest-first means descending ids.
	assert.Greater(t, runs[0].ID, runs[1].ID)

	empty, err := s.ReadRuns(ctx, "invoke_9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// TestWriteSteps_RequiresRun tests the foreign key constraint.
func TestWriteSteps_RequiresRun(t *testing.T) {
	s := openTestStore(t)

	err := s.WriteSteps(context.Background(), []Step{
		{RunID: "no-such-run", Position: 0, Name: "colour", Target: "0", HashAfter: "h"},
	})
	assert.Error(t, err)
}
