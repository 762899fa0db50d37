package gateway

import (
	"encoding/json"

	logger "autogenmcp/logger/v2"
)

// Dispatcher fans a single logical event out to every currently open
// connection. Delivery is broadcast-to-all rather than per-subscriber
// routing; the policy is confined to this type so a routing table can
// replace it without touching callers.
//
// Partial failure is isolated per connection: a failed send is logged
// and never aborts delivery to the remaining connections or fails the
// originating tool call.
type Dispatcher struct {
	registry *Registry
	subs     *SubscriptionTable
	log      logger.Logger
}

// NewDispatcher creates a dispatcher over the given registry and
// subscription table.
func NewDispatcher(registry *Registry, subs *SubscriptionTable, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		subs:     subs,
		log:      log,
	}
}

// BroadcastProgress delivers a progress notification for token to every
// open connection. progress is a percentage in [0,100], or -1 for the
// error terminal.
func (d *Dispatcher) BroadcastProgress(token string, progress float64, message string) {
	d.broadcast(newProgressNotification(token, progress, message))
}

// BroadcastResourceUpdate delivers a resource_updated notification for
// uri, but only while uri has registered interest. data may be nil when
// the resource could not be resolved.
func (d *Dispatcher) BroadcastResourceUpdate(uri string, data json.RawMessage) {
	if !d.subs.IsSubscribed(uri) {
		return
	}
	d.broadcast(newResourceUpdatedNotification(uri, data))
}

// BroadcastStreamingChunk delivers a streaming_update notification
// carrying a streaming tool's payload to every open connection.
func (d *Dispatcher) BroadcastStreamingChunk(tool string, progress float64, data json.RawMessage) {
	d.broadcast(newStreamingUpdateNotification(tool, progress, data))
}

// broadcast attempts delivery to a snapshot of open connections. A
// connection present at snapshot time may be gone by delivery time;
// that surfaces as a send error and is handled like any other delivery
// failure.
func (d *Dispatcher) broadcast(n Notification) {
	for _, conn := range d.registry.AllOpen() {
		if err := conn.Send(n); err != nil {
			d.log.Warn("notification delivery failed",
				logger.String("session_id", conn.ID()),
				logger.String("method", n.Method),
				logger.Error(err))
		}
	}
}
