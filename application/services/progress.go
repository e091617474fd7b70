package services

import "sync"

// ProgressBroadcaster bridges upload-progress POSTs to the long-lived SSE
// stream watching the same upload id.
//
// Contract: at most one subscriber per id. A second Subscribe for the same
// id replaces the first, whose channel is closed. Publish before any
// subscriber is a silent no-op; events are not buffered and delivery is not
// guaranteed.
type ProgressBroadcaster struct {
	mu          sync.Mutex
	subscribers map[string]chan any
}

// NewProgressBroadcaster creates an empty registry.
func NewProgressBroadcaster() *ProgressBroadcaster {
	return &ProgressBroadcaster{subscribers: make(map[string]chan any)}
}

// Subscribe registers the stream for id and returns its event channel plus a
// cancel function. Cancel is idempotent and removes the registration only if
// it is still the current one.
func (b *ProgressBroadcaster) Subscribe(id string) (<-chan any, func()) {
	ch := make(chan any, 8)

	b.mu.Lock()
	if prev, ok := b.subscribers[id]; ok {
		close(prev)
	}
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if current, ok := b.subscribers[id]; ok && current == ch {
				delete(b.subscribers, id)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers payload to the subscriber of id, if any. Returns whether
// the event was handed to a stream. A full channel drops the event rather
// than blocking the publishing request.
func (b *ProgressBroadcaster) Publish(id string, payload any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return false
	}
	select {
	case ch <- payload:
		return true
	default:
		return false
	}
}
