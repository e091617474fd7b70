package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEdgeRefComposite(t *testing.T) {
	ref := ParseEdgeRef("n1-n2-supports")

	assert.True(t, ref.Composite)
	assert.Equal(t, "n1", ref.FromID)
	assert.Equal(t, "n2", ref.ToID)
	assert.Equal(t, "supports", ref.Relation)
}

func TestParseEdgeRefUUIDIsDirect(t *testing.T) {
	// A UUID splits into five parts and must not read as composite.
	raw := "3f2a1b4c-9d8e-4f00-a1b2-c3d4e5f60789"
	ref := ParseEdgeRef(raw)

	assert.False(t, ref.Composite)
	assert.Equal(t, raw, ref.ID)
}

func TestParseEdgeRefEmptyPartIsDirect(t *testing.T) {
	for _, raw := range []string{"a--b", "-a-b", "a-b-", "plain", "a-b"} {
		ref := ParseEdgeRef(raw)
		assert.False(t, ref.Composite, "raw=%q", raw)
		assert.Equal(t, raw, ref.ID)
	}
}
