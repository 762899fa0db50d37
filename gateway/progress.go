package gateway

import (
	"fmt"
	"sync"
)

// ProgressEntry pairs an in-flight progress token with the tool it
// belongs to.
type ProgressEntry struct {
	Token string `json:"token"`
	Tool  string `json:"tool"`
}

// ProgressTracker tracks in-flight tool invocations keyed by their
// client-supplied progress token. The orchestrator guarantees that every
// Begin has exactly one matching End on the invocation's terminal path;
// the tracker itself only enforces token uniqueness.
type ProgressTracker struct {
	mu     sync.Mutex
	active map[string]string // token -> tool name
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{active: make(map[string]string)}
}

// Begin records token as in flight for tool. A token already in flight
// is rejected.
func (t *ProgressTracker) Begin(token, tool string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.active[token]; ok {
		return fmt.Errorf("%w: %q held by %s", ErrDuplicateToken, token, existing)
	}
	t.active[token] = tool
	return nil
}

// End removes token from tracking. No-op when absent, tolerating a
// double completion from a racing error path.
func (t *ProgressTracker) End(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, token)
}

// ActiveTokens returns a snapshot of in-flight entries for status
// resources.
func (t *ProgressTracker) ActiveTokens() []ProgressEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]ProgressEntry, 0, len(t.active))
	for token, tool := range t.active {
		entries = append(entries, ProgressEntry{Token: token, Tool: tool})
	}
	return entries
}

// Len returns the number of in-flight tokens.
func (t *ProgressTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
