package gateway

import (
	"encoding/json"
	"time"
)

// Notification method names on the wire.
const (
	MethodProgress        = "notifications/progress"
	MethodResourceUpdated = "notifications/resource_updated"
	MethodStreamingUpdate = "notifications/streaming_update"
)

// Notification is an ephemeral server-to-client message. Notifications are
// never persisted; they exist only in flight.
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// ProgressParams is the payload of a notifications/progress message.
type ProgressParams struct {
	ProgressToken string  `json:"progressToken"`
	Progress      float64 `json:"progress"`
	Message       string  `json:"message"`
	Timestamp     string  `json:"timestamp"`
}

// ResourceUpdatedParams is the payload of a notifications/resource_updated
// message. Data is nil when the resource could not be resolved.
type ResourceUpdatedParams struct {
	URI       string          `json:"uri"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// StreamingUpdateParams is the payload of a notifications/streaming_update
// message carrying a streaming tool's result to every connection.
type StreamingUpdateParams struct {
	Tool     string          `json:"tool"`
	Progress float64         `json:"progress"`
	Data     json.RawMessage `json:"data"`
}

func newProgressNotification(token string, progress float64, message string) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  MethodProgress,
		Params: ProgressParams{
			ProgressToken: token,
			Progress:      progress,
			Message:       message,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func newResourceUpdatedNotification(uri string, data json.RawMessage) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  MethodResourceUpdated,
		Params: ResourceUpdatedParams{
			URI:       uri,
			Data:      data,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func newStreamingUpdateNotification(tool string, progress float64, data json.RawMessage) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  MethodStreamingUpdate,
		Params: StreamingUpdateParams{
			Tool:     tool,
			Progress: progress,
			Data:     data,
		},
	}
}
