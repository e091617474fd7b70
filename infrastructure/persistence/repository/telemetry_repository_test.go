package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAnalyticsEventsLimitBounds(t *testing.T) {
	db := openTestDB(t)
	repo := NewTelemetryRepository(db)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		_, err := repo.CreateAnalyticsEvent(ctx, "user-1", fmt.Sprintf("event-%d", i), nil)
		require.NoError(t, err)
	}

	events, err := repo.ListAnalyticsEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 100, "zero limit falls back to the default")

	events, err = repo.ListAnalyticsEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// An oversized limit clamps to 1000 instead of resetting to the default.
	events, err = repo.ListAnalyticsEvents(ctx, 5000)
	require.NoError(t, err)
	assert.Len(t, events, 120)
}
