package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscriberIsNoop(t *testing.T) {
	b := NewProgressBroadcaster()

	assert.False(t, b.Publish("upload-1", map[string]any{"percent": 50}))
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := NewProgressBroadcaster()
	events, cancel := b.Subscribe("upload-1")
	defer cancel()

	require.True(t, b.Publish("upload-1", "hello"))

	payload := <-events
	assert.Equal(t, "hello", payload)
}

func TestSecondSubscribeReplacesFirst(t *testing.T) {
	b := NewProgressBroadcaster()
	first, cancelFirst := b.Subscribe("upload-1")
	defer cancelFirst()

	second, cancelSecond := b.Subscribe("upload-1")
	defer cancelSecond()

	// The first channel is closed on replacement.
	_, open := <-first
	assert.False(t, open)

	require.True(t, b.Publish("upload-1", 42))
	assert.Equal(t, 42, <-second)
}

func TestCancelRemovesSubscription(t *testing.T) {
	b := NewProgressBroadcaster()
	_, cancel := b.Subscribe("upload-1")
	cancel()

	assert.False(t, b.Publish("upload-1", "late"))

	// Cancel is idempotent.
	cancel()
}

func TestStaleCancelDoesNotRemoveReplacement(t *testing.T) {
	b := NewProgressBroadcaster()
	_, cancelFirst := b.Subscribe("upload-1")

	events, cancelSecond := b.Subscribe("upload-1")
	defer cancelSecond()

	// The first subscriber's cancel must not tear down the second.
	cancelFirst()

	require.True(t, b.Publish("upload-1", "still here"))
	assert.Equal(t, "still here", <-events)
}

func TestFullChannelDropsEvent(t *testing.T) {
	b := NewProgressBroadcaster()
	_, cancel := b.Subscribe("upload-1")
	defer cancel()

	for i := 0; i < 8; i++ {
		require.True(t, b.Publish("upload-1", i))
	}
	assert.False(t, b.Publish("upload-1", "overflow"))
}
