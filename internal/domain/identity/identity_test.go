package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitySet(t *testing.T) {
	s := NewCapabilitySet(CapContent, CapStats)

	assert.True(t, s.Has(CapContent))
	assert.False(t, s.Has(CapBroadcast))

	assert.True(t, s.Toggle(CapBroadcast))
	assert.True(t, s.Has(CapBroadcast))
	assert.False(t, s.Toggle(CapBroadcast))
	assert.False(t, s.Has(CapBroadcast))
}

func TestCapabilitySet_NilSafe(t *testing.T) {
	var s CapabilitySet
	assert.False(t, s.Has(CapContent))
}

func TestCapabilitySet_ListKeepsDisplayOrder(t *testing.T) {
	s := NewCapabilitySet(CapBroadcast, CapContent, CapSuspend)
	assert.Equal(t, []Capability{CapContent, CapSuspend, CapBroadcast}, s.List())
}

func TestFullCapabilitySet(t *testing.T) {
	s := FullCapabilitySet()
	for _, c := range AllCapabilities {
		assert.True(t, s.Has(c), string(c))
	}
}

func TestCapabilityValid(t *testing.T) {
	assert.True(t, CapContent.Valid())
	assert.False(t, Capability("made_up").Valid())
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{
			name: "full identity",
			id:   Identity{ID: 42, Name: "Ali", Username: "ali_h", LastCode: "12345"},
			want: "ID:42 | Ali (@ali_h) | كود: 12345",
		},
		{
			name: "no username or code",
			id:   Identity{ID: 7, Name: "Sara"},
			want: "ID:7 | Sara (-)",
		},
		{
			name: "unknown name",
			id:   Identity{ID: 9},
			want: "ID:9 | - (-)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayLabel(tt.id))
		})
	}
}
