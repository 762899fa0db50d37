package gateway

import (
	"errors"
	"testing"
)

func TestProgressTrackerRejectsDuplicateToken(t *testing.T) {
	p := NewProgressTracker()

	if err := p.Begin("t1", "execute_workflow"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	err := p.Begin("t1", "create_agent")
	if !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}

	// The original mapping survives the rejected begin.
	entries := p.ActiveTokens()
	if len(entries) != 1 || entries[0].Tool != "execute_workflow" {
		t.Fatalf("unexpected active entries: %v", entries)
	}
}

func TestProgressTrackerEndIsIdempotent(t *testing.T) {
	p := NewProgressTracker()
	if err := p.Begin("t1", "execute_workflow"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	p.End("t1")
	p.End("t1")
	p.End("never-began")

	if p.Len() != 0 {
		t.Fatalf("expected no active tokens, got %d", p.Len())
	}

	// The token is reusable after End.
	if err := p.Begin("t1", "create_agent"); err != nil {
		t.Fatalf("token not reusable after end: %v", err)
	}
}

func TestProgressTrackerSnapshot(t *testing.T) {
	p := NewProgressTracker()
	_ = p.Begin("a", "execute_workflow")
	_ = p.Begin("b", "create_agent")

	entries := p.ActiveTokens()
	p.End("a")

	if len(entries) != 2 {
		t.Fatalf("snapshot mutated by later end: %v", entries)
	}
}
