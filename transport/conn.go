package transport

import (
	"encoding/json"
	"fmt"
	"sync"

	"autogenmcp/gateway"
)

// sendBuffer is the per-connection outbound queue depth. A client that
// stops reading sees send errors instead of blocking broadcasts.
const sendBuffer = 32

// streamConn is the connection type behind the SSE and streamable-HTTP
// transports. Outbound payloads are queued on a channel and drained by
// the single goroutine that owns the event stream, keeping writes to
// the stream serialized.
type streamConn struct {
	id        string
	transport string

	out chan json.RawMessage

	closeOnce sync.Once
	done      chan struct{}
}

func newStreamConn(id, transport string) *streamConn {
	return &streamConn{
		id:        id,
		transport: transport,
		out:       make(chan json.RawMessage, sendBuffer),
		done:      make(chan struct{}),
	}
}

func (c *streamConn) ID() string        { return c.id }
func (c *streamConn) Transport() string { return c.transport }

// Send queues one notification for the stream writer. It never blocks:
// a closed or congested connection returns an error and the dispatcher
// treats it as a delivery failure.
func (c *streamConn) Send(n gateway.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return c.enqueue(payload)
}

func (c *streamConn) enqueue(payload json.RawMessage) error {
	select {
	case <-c.done:
		return fmt.Errorf("session %s is closed", c.id)
	default:
	}
	select {
	case c.out <- payload:
		return nil
	default:
		return fmt.Errorf("session %s send queue is full", c.id)
	}
}

func (c *streamConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
