package gateway

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	logger "autogenmcp/logger/v2"
)

// fakeConn is a test connection that records sent notifications and can
// be configured to fail sends or closes.
type fakeConn struct {
	id        string
	kind      string
	failSend  bool
	failClose bool

	mu     sync.Mutex
	sent   []Notification
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, kind: "test"}
}

func (c *fakeConn) ID() string        { return c.id }
func (c *fakeConn) Transport() string { return c.kind }

func (c *fakeConn) Send(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return fmt.Errorf("send failed for %s", c.id)
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.failClose {
		return fmt.Errorf("close failed for %s", c.id)
	}
	return nil
}

func (c *fakeConn) notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.sent))
	copy(out, c.sent)
	return out
}

func TestRegistryRejectsDuplicateSession(t *testing.T) {
	r := NewRegistry(logger.NewNoop())

	if err := r.Register(newFakeConn("s1")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := r.Register(newFakeConn("s1"))
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Len())
	}
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry(logger.NewNoop())
	if err := r.Register(newFakeConn("s1")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.Unregister("s1")
	r.Unregister("s1")
	r.Unregister("never-existed")

	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistrySnapshotIsStable(t *testing.T) {
	r := NewRegistry(logger.NewNoop())
	for i := 0; i < 3; i++ {
		if err := r.Register(newFakeConn(fmt.Sprintf("s%d", i))); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	snapshot := r.AllOpen()
	r.Unregister("s0")
	r.Unregister("s1")

	if len(snapshot) != 3 {
		t.Fatalf("snapshot mutated by later unregisters: %d", len(snapshot))
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 live connection, got %d", r.Len())
	}
}

func TestRegistryCloseIsBestEffort(t *testing.T) {
	r := NewRegistry(logger.NewNoop())
	conn := newFakeConn("s1")
	conn.failClose = true
	if err := r.Register(conn); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := r.Close("s1"); err == nil {
		t.Fatal("expected close error to be reported")
	}
	if r.Len() != 0 {
		t.Fatal("connection must be unregistered even when close fails")
	}
	if !conn.closed {
		t.Fatal("transport close was never attempted")
	}

	// Closing a gone session is a no-op.
	if err := r.Close("s1"); err != nil {
		t.Fatalf("closing absent session returned error: %v", err)
	}
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry(logger.NewNoop())
	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	for _, c := range conns {
		if err := r.Register(c); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	r.CloseAll()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
	for _, c := range conns {
		if !c.closed {
			t.Errorf("connection %s was not closed", c.id)
		}
	}
}
