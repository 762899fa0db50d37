package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"autogenmcp/backend"
	logger "autogenmcp/logger/v2"
	"autogenmcp/schema"
)

// Stats holds process-lifetime counters shared by the orchestrator and
// the locally answered status resources.
type Stats struct {
	mu           sync.Mutex
	startedAt    time.Time
	lastActivity time.Time
}

// NewStats starts the uptime clock.
func NewStats() *Stats {
	now := time.Now().UTC()
	return &Stats{startedAt: now, lastActivity: now}
}

// Touch records gateway activity.
func (s *Stats) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now().UTC()
}

// LastActivity returns the most recent activity timestamp.
func (s *Stats) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Uptime returns time since process start.
func (s *Stats) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startedAt)
}

// Service is the transport-facing facade over the multiplexer state and
// the orchestrator. One instance is constructed at process start and
// threaded through every transport explicitly; there are no package
// globals.
type Service struct {
	Registry     *Registry
	Subs         *SubscriptionTable
	Tracker      *ProgressTracker
	Dispatcher   *Dispatcher
	Orchestrator *Orchestrator
	Stats        *Stats

	invoker backend.Invoker
	log     logger.Logger
}

// NewService assembles the gateway core around a backend invoker.
func NewService(invoker backend.Invoker, log logger.Logger) *Service {
	registry := NewRegistry(log)
	subs := NewSubscriptionTable()
	tracker := NewProgressTracker()
	dispatcher := NewDispatcher(registry, subs, log)
	stats := NewStats()
	return &Service{
		Registry:     registry,
		Subs:         subs,
		Tracker:      tracker,
		Dispatcher:   dispatcher,
		Orchestrator: NewOrchestrator(tracker, dispatcher, registry, stats, invoker, log),
		Stats:        stats,
		invoker:      invoker,
		log:          log,
	}
}

// CallTool executes one tool invocation.
func (s *Service) CallTool(ctx context.Context, name string, args map[string]interface{}, token string) (json.RawMessage, error) {
	return s.Orchestrator.Call(ctx, name, args, token)
}

// ReadResource resolves a resource URI. System and subscription
// resources are answered locally; everything else in the autogen://
// namespace delegates to the backend through a synthetic get_resource
// call.
func (s *Service) ReadResource(ctx context.Context, uri string) (json.RawMessage, error) {
	switch uri {
	case schema.URISystemMetrics:
		return s.metricsJSON()
	case schema.URISubscriptionsList:
		return s.subscriptionsJSON()
	}
	if !strings.HasPrefix(uri, "autogen://") {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	return s.invoker.Invoke(ctx, "get_resource", map[string]interface{}{"uri": uri})
}

// Subscribe registers interest in uri. On first subscription one
// immediate resource_updated broadcast is attempted with the current
// value; a resolution failure downgrades the payload to null rather
// than failing the subscribe.
func (s *Service) Subscribe(ctx context.Context, uri string) {
	if !s.Subs.Subscribe(uri) {
		return
	}
	data, err := s.ReadResource(ctx, uri)
	if err != nil {
		s.log.Warn("initial resource resolution failed",
			logger.String("uri", uri),
			logger.Error(err))
		data = nil
	}
	s.Dispatcher.BroadcastResourceUpdate(uri, data)
}

// Unsubscribe withdraws interest in uri. Idempotent.
func (s *Service) Unsubscribe(uri string) {
	s.Subs.Unsubscribe(uri)
}

func (s *Service) metricsJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}{
		"uptime_seconds": int(s.Stats.Uptime().Seconds()),
		"connections":    s.Registry.Len(),
		"active_tokens":  s.Tracker.Len(),
		"subscriptions":  s.Subs.Len(),
		"last_activity":  s.Stats.LastActivity().Format(time.RFC3339),
	})
}

func (s *Service) subscriptionsJSON() (json.RawMessage, error) {
	uris := s.Subs.All()
	return json.Marshal(map[string]interface{}{
		"subscriptions": uris,
		"count":         len(uris),
	})
}
