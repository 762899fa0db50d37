package gateway

import "testing"

func TestSubscribeReportsFirstAdd(t *testing.T) {
	s := NewSubscriptionTable()

	if !s.Subscribe("autogen://agents/list") {
		t.Fatal("first subscribe should report newly added")
	}
	if s.Subscribe("autogen://agents/list") {
		t.Fatal("second subscribe should not report newly added")
	}
	if !s.IsSubscribed("autogen://agents/list") {
		t.Fatal("uri should be subscribed")
	}
	if s.Len() != 1 {
		t.Fatalf("duplicate subscribes must collapse to one entry, got %d", s.Len())
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := NewSubscriptionTable()
	s.Subscribe("autogen://chat/history")

	s.Unsubscribe("autogen://chat/history")
	if s.IsSubscribed("autogen://chat/history") {
		t.Fatal("uri should no longer be subscribed")
	}
	s.Unsubscribe("autogen://chat/history")
	s.Unsubscribe("never-subscribed")
	if s.Len() != 0 {
		t.Fatalf("expected empty table, got %d", s.Len())
	}
}

func TestSubscriptionSnapshot(t *testing.T) {
	s := NewSubscriptionTable()
	s.Subscribe("a")
	s.Subscribe("b")

	all := s.All()
	s.Unsubscribe("a")

	if len(all) != 2 {
		t.Fatalf("snapshot mutated by later unsubscribe: %v", all)
	}
}
