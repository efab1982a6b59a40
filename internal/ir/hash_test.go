package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFingerprint_IgnoresDetachedGarbage tests that nodes left in the arena
// by Replace do not affect the hash.
func TestFingerprint_IgnoresDetachedGarbage(t *testing.T) {
	s := NewSchedule("invoke_0")
	l := s.NewLoopNode(Loop{IterSpace: IterCells, Variable: "cell"})
	require.NoError(t, s.AppendChild(s.Root(), l))

	want := s.Fingerprint()

	// Allocate and abandon a detached node; reachable shape is unchanged.
	s.NewHaloExchangeNode(HaloExchange{Field: "junk", Depth: 9})
	assert.Equal(t, want, s.Fingerprint())
}

// TestFingerprint_SensitiveToPayload tests that bound and argument changes
// change the hash.
func TestFingerprint_SensitiveToPayload(t *testing.T) {
	a := NewSchedule("invoke_0")
	la := a.NewLoopNode(Loop{IterSpace: IterCells, Variable: "cell"})
	require.NoError(t, a.AppendChild(a.Root(), la))

	b := NewSchedule("invoke_0")
	lb := b.NewLoopNode(Loop{IterSpace: IterCells, Variable: "cell", UpperBound: Bound{Halo: true, Depth: 2}})
	require.NoError(t, b.AppendChild(b.Root(), lb))

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

// TestFingerprint_NFCNormalization tests that composed and decomposed forms
// of the same identifier hash identically.
func TestFingerprint_NFCNormalization(t *testing.T) {
	composed := NewSchedule("invoke_café")
	decomposed := NewSchedule("invoke_café")

	assert.Equal(t, composed.Fingerprint(), decomposed.Fingerprint())
}
