package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevResolverRoundTrip(t *testing.T) {
	resolver := NewDevResolver("test-secret")

	token, err := SignDevToken("test-secret", "user-1", "dev@localhost", time.Hour)
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, "dev@localhost", user.Email)
}

func TestDevResolverRejectsWrongSecret(t *testing.T) {
	resolver := NewDevResolver("right")

	token, err := SignDevToken("wrong", "user-1", "dev@localhost", time.Hour)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDevResolverRejectsExpiredToken(t *testing.T) {
	resolver := NewDevResolver("test-secret")

	token, err := SignDevToken("test-secret", "user-1", "dev@localhost", -time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestDevResolverRejectsGarbage(t *testing.T) {
	resolver := NewDevResolver("test-secret")

	_, err := resolver.Resolve(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
