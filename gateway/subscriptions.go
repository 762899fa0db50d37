package gateway

import "sync"

// SubscriptionTable tracks which resource URIs have at least one
// interested client. It is a global interest set: it deliberately does
// not record which connection subscribed, matching the dispatcher's
// broadcast-to-all fan-out policy.
type SubscriptionTable struct {
	mu   sync.Mutex
	uris map[string]struct{}
}

// NewSubscriptionTable creates an empty subscription table.
func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{uris: make(map[string]struct{})}
}

// Subscribe adds uri to the set and reports whether it was newly added.
// Callers use the first-add signal to emit an immediate current-state
// notification.
func (t *SubscriptionTable) Subscribe(uri string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.uris[uri]; exists {
		return false
	}
	t.uris[uri] = struct{}{}
	return true
}

// Unsubscribe removes uri from the set. Idempotent.
func (t *SubscriptionTable) Unsubscribe(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.uris, uri)
}

// IsSubscribed reports whether uri has registered interest.
func (t *SubscriptionTable) IsSubscribed(uri string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.uris[uri]
	return ok
}

// All returns a snapshot of subscribed URIs.
func (t *SubscriptionTable) All() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	uris := make([]string, 0, len(t.uris))
	for uri := range t.uris {
		uris = append(uris, uri)
	}
	return uris
}

// Len returns the number of subscribed URIs.
func (t *SubscriptionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.uris)
}
