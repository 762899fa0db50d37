package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autogenmcp/backend"
	logger "autogenmcp/logger/v2"
	"autogenmcp/schema"
)

// streamingSteps is the fixed step count for streaming-category tools.
// Each step advances progress by streamingStepSpan percent from the 25%
// announce point, staying below the terminal 100.
const (
	streamingSteps    = 10
	streamingStart    = 25.0
	streamingStepSpan = 7.0
)

// Orchestrator drives one tool call from arrival to completion. It owns
// the progress-token lifecycle: a call that supplies a token has Begin
// called exactly once before its first progress notification and End
// called exactly once on its terminal path, success or error. Token
// presence gates observability only; the branch logic and backend call
// run identically without one.
type Orchestrator struct {
	tracker    *ProgressTracker
	dispatcher *Dispatcher
	registry   *Registry
	stats      *Stats
	invoker    backend.Invoker
	log        logger.Logger

	// StepDelay paces streaming-tool steps. Tests set it to zero.
	StepDelay time.Duration
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(tracker *ProgressTracker, dispatcher *Dispatcher, registry *Registry, stats *Stats, invoker backend.Invoker, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		tracker:    tracker,
		dispatcher: dispatcher,
		registry:   registry,
		stats:      stats,
		invoker:    invoker,
		log:        log,
		StepDelay:  150 * time.Millisecond,
	}
}

// Call executes the named tool. token is the client-supplied progress
// token, empty when the request carried none.
func (o *Orchestrator) Call(ctx context.Context, name string, args map[string]interface{}, token string) (json.RawMessage, error) {
	def, ok := schema.LookupTool(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if token != "" {
		if err := o.tracker.Begin(token, name); err != nil {
			return nil, err
		}
		o.dispatcher.BroadcastProgress(token, 0, "Starting "+name)
	}

	o.stats.Touch()

	result, err := o.run(ctx, def, args, token)
	if err != nil {
		if token != "" {
			o.dispatcher.BroadcastProgress(token, -1, fmt.Sprintf("Error in %s: %s", name, errorMessage(err)))
			o.tracker.End(token)
		}
		return nil, err
	}

	if token != "" {
		o.dispatcher.BroadcastProgress(token, 100, "Completed "+name)
		o.tracker.End(token)
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, def schema.ToolDef, args map[string]interface{}, token string) (json.RawMessage, error) {
	name := def.Tool.Name
	switch def.Category {
	case schema.CategoryStreaming:
		return o.runStreaming(ctx, name, args, token)
	case schema.CategoryBroadcast:
		return o.runBroadcast(name)
	default:
		if token != "" {
			o.dispatcher.BroadcastProgress(token, 50, "Processing "+name)
		}
		return o.invoker.Invoke(ctx, name, args)
	}
}

// runStreaming drives the deterministic multi-step progress sequence,
// then the backend call, then a streaming_update broadcast when the
// caller asked for streaming and anyone is connected to receive it.
func (o *Orchestrator) runStreaming(ctx context.Context, name string, args map[string]interface{}, token string) (json.RawMessage, error) {
	if token != "" {
		o.dispatcher.BroadcastProgress(token, streamingStart, "Initializing streaming workflow")
	}
	for i := 1; i <= streamingSteps; i++ {
		if o.StepDelay > 0 {
			select {
			case <-time.After(o.StepDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if token != "" {
			progress := streamingStart + streamingStepSpan*float64(i)
			o.dispatcher.BroadcastProgress(token, progress, fmt.Sprintf("step %d/%d", i, streamingSteps))
		}
	}

	result, err := o.invoker.Invoke(ctx, name, args)
	if err != nil {
		return nil, err
	}

	if wantStreaming(args) && o.registry.Len() > 0 {
		o.dispatcher.BroadcastStreamingChunk(name, 100, result)
	}
	return result, nil
}

// runBroadcast updates shared gateway state and returns locally; no
// backend process is spawned.
func (o *Orchestrator) runBroadcast(name string) (json.RawMessage, error) {
	now := time.Now().UTC()
	result, err := json.Marshal(map[string]interface{}{
		"tool":        name,
		"connections": o.registry.Len(),
		"timestamp":   now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	o.dispatcher.BroadcastResourceUpdate(schema.URISystemMetrics, result)
	return result, nil
}

func wantStreaming(args map[string]interface{}) bool {
	v, ok := args["streaming"].(bool)
	return ok && v
}

// errorMessage prefers the backend's own stderr diagnostic over the
// wrapper text so clients see the original failure.
func errorMessage(err error) string {
	var perr *backend.ProcessError
	if errors.As(err, &perr) && perr.Stderr != "" {
		return perr.Stderr
	}
	return err.Error()
}
