package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterExhaustsBucket(t *testing.T) {
	limiter := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("key"), "request %d", i)
	}
	assert.False(t, limiter.Allow("key"))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}
