package gateway

import (
	"fmt"
	"sync"

	logger "autogenmcp/logger/v2"
)

// Connection is one logical client link. Implementations live in the
// transport package; the gateway core only sends notifications through
// it and closes it on shutdown.
type Connection interface {
	// ID returns the session identifier, unique while the connection
	// is open.
	ID() string

	// Transport returns the transport kind (stdio, sse, http).
	Transport() string

	// Send delivers one notification. It must not block indefinitely;
	// a closed or congested connection returns an error instead.
	Send(n Notification) error

	// Close tears down the underlying transport stream.
	Close() error
}

// Registry holds the set of currently open client connections keyed by
// session id. It owns connection lifecycle; every other component
// references connections only through snapshots and must tolerate a
// connection being gone by the time it is used.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Connection
	log   logger.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		conns: make(map[string]Connection),
		log:   log,
	}
}

// Register adds a connection. Session ids may be client-supplied (the SSE
// sessionId query parameter), so a duplicate is a client error, not a bug.
func (r *Registry) Register(conn Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	if _, exists := r.conns[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSession, id)
	}
	r.conns[id] = conn

	r.log.Info("session registered",
		logger.String("session_id", id),
		logger.String("transport", conn.Transport()),
		logger.Int("open_connections", len(r.conns)))
	return nil
}

// Unregister removes a connection by id. Idempotent.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; !exists {
		return
	}
	delete(r.conns, id)

	r.log.Info("session unregistered",
		logger.String("session_id", id),
		logger.Int("open_connections", len(r.conns)))
}

// Get returns the connection for id, if still open.
func (r *Registry) Get(id string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// AllOpen returns a snapshot of open connections, safe to iterate while
// the registry is mutated concurrently.
func (r *Registry) AllOpen() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Len returns the number of open connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Close tears down the connection's transport and unregisters it. The
// connection is unregistered even when the transport close fails.
func (r *Registry) Close(id string) error {
	conn, ok := r.Get(id)
	if !ok {
		return nil
	}

	err := conn.Close()
	r.Unregister(id)
	if err != nil {
		r.log.Warn("session close failed",
			logger.String("session_id", id),
			logger.Error(err))
	}
	return err
}

// CloseAll closes every open connection. Used on shutdown.
func (r *Registry) CloseAll() {
	for _, conn := range r.AllOpen() {
		_ = r.Close(conn.ID())
	}
}
