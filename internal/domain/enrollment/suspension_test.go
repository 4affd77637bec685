package enrollment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuspensionSet(t *testing.T) {
	s := NewSuspensionSet()
	now := time.Now()

	assert.False(t, s.IsSuspended("12345"))

	s.Suspend("12345", "cheating", 42, now)
	assert.True(t, s.IsSuspended("12345"))

	// Lookup normalizes the code.
	assert.True(t, s.IsSuspended("١٢٣٤٥"))

	sus, ok := s.Get("12345")
	require.True(t, ok)
	assert.Equal(t, "cheating", sus.Reason)
	assert.Equal(t, int64(42), sus.SuspendedBy)

	s.Lift("12345")
	assert.False(t, s.IsSuspended("12345"))

	// Lifting again is a no-op.
	s.Lift("12345")
}
